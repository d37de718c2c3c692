package enrich

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadops-cli/internal/model"
	"github.com/sells-group/leadops-cli/internal/repair"
	"github.com/sells-group/leadops-cli/pkg/azureopenai"
)

const (
	metricsMaxTokens   = 5000
	metricsTemperature = 0.5
	metricsTimeout     = 30 * time.Second
)

// MetricsGenerator produces synthetic market metrics for a batch of business
// names in a single generative call.
type MetricsGenerator struct {
	client azureopenai.Client
}

// NewMetricsGenerator creates a batch metrics generator.
func NewMetricsGenerator(client azureopenai.Client) *MetricsGenerator {
	return &MetricsGenerator{client: client}
}

// rawMetrics matches the schema the prompt requests. Numeric fields are
// passed through as received; only rank is ever clamped (see RankScorer).
type rawMetrics struct {
	BusinessName     string  `json:"business_name"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
	MarketShare      float64 `json:"market_share"`
	CreditScore      int     `json:"credit_score"`
	LocationRating   float64 `json:"location_rating"`
}

// Generate requests metrics for every name in one call. The batch is
// all-or-nothing: a service failure or unparseable response yields an empty
// slice and an error, never a partial result. Names the service omitted are
// dropped from the output without being treated as a batch failure.
func (g *MetricsGenerator) Generate(ctx context.Context, names []string) ([]model.SyntheticMetrics, error) {
	if len(names) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, metricsTimeout)
	defer cancel()

	text, err := g.client.Complete(ctx, azureopenai.CompletionRequest{
		Prompt:      metricsPrompt(names),
		MaxTokens:   metricsMaxTokens,
		Temperature: metricsTemperature,
	})
	if err != nil {
		return nil, eris.Wrap(err, "metrics: batch completion")
	}

	repaired := repair.Array(text)

	var raw []rawMetrics
	if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
		zap.L().Warn("metrics: response did not parse after repair",
			zap.Int("batch_size", len(names)),
			zap.Error(err),
		)
		return nil, eris.Wrap(ErrMalformedResponse, "metrics: parse batch")
	}

	// Match generated entries back to the requested names by exact equality.
	byName := make(map[string]rawMetrics, len(raw))
	for _, r := range raw {
		byName[r.BusinessName] = r
	}

	out := make([]model.SyntheticMetrics, 0, len(names))
	for _, name := range names {
		r, ok := byName[name]
		if !ok {
			zap.L().Debug("metrics: business missing from batch response",
				zap.String("business", name),
			)
			continue
		}
		out = append(out, model.SyntheticMetrics{
			BusinessName:     r.BusinessName,
			EstimatedRevenue: r.EstimatedRevenue,
			MarketShare:      r.MarketShare,
			CreditScore:      r.CreditScore,
			LocationRating:   r.LocationRating,
		})
	}

	zap.L().Info("metrics: batch generated",
		zap.Int("requested", len(names)),
		zap.Int("returned", len(out)),
	)
	return out, nil
}
