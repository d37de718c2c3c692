package enrich

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadops-cli/internal/model"
	"github.com/sells-group/leadops-cli/pkg/azureopenai"
)

const (
	rankMaxTokens   = 50
	rankTemperature = 0.5
	rankTimeout     = 30 * time.Second

	// RankBest and RankWorst bound every rank the pipeline produces.
	RankBest  = 1
	RankWorst = 100
)

// RankScorer asks the generative service for a 1-100 rank for one business.
// This is the one stage whose failure is surfaced rather than defaulted:
// callers decide whether to skip the lead or substitute FallbackRank.
type RankScorer struct {
	client azureopenai.Client
	randn  func(n int) int
}

// NewRankScorer creates a rank scorer. A nil randn uses a time-seeded source;
// tests inject a deterministic one.
func NewRankScorer(client azureopenai.Client, randn func(n int) int) *RankScorer {
	if randn == nil {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		randn = rng.Intn
	}
	return &RankScorer{client: client, randn: randn}
}

// Rank returns a rank in [RankBest, RankWorst] for the given metrics.
// Absent metrics short-circuit to FallbackRank with no external call, so
// ranking always yields a total order even when enrichment produced nothing.
func (s *RankScorer) Rank(ctx context.Context, m *model.SyntheticMetrics) (int, error) {
	if m == nil {
		return s.FallbackRank(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, rankTimeout)
	defer cancel()

	text, err := s.client.Complete(ctx, azureopenai.CompletionRequest{
		Prompt:      rankPrompt(*m),
		MaxTokens:   rankMaxTokens,
		Temperature: rankTemperature,
	})
	if err != nil {
		return 0, eris.Wrapf(err, "rank: completion for %s", m.BusinessName)
	}

	rank, err := strconv.Atoi(text)
	if err != nil {
		return 0, eris.Wrapf(ErrMalformedResponse, "rank: %s: response %q is not an integer", m.BusinessName, text)
	}

	return clampRank(rank), nil
}

// FallbackRank draws a uniform rank in [RankBest, RankWorst].
func (s *RankScorer) FallbackRank() int {
	return RankBest + s.randn(RankWorst-RankBest+1)
}

func clampRank(r int) int {
	if r < RankBest {
		return RankBest
	}
	if r > RankWorst {
		return RankWorst
	}
	return r
}
