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
	matchMaxTokens   = 500
	matchTemperature = 0.5
	matchTimeout     = 30 * time.Second
)

// matchKeys are the five keys the matcher response must carry. A response
// missing any of them is rejected outright: assignment identity matters
// downstream, so a guessed salesperson is worse than none.
var matchKeys = []string{"Sales Person ID", "Name", "Experience", "Expertise", "Location"}

// Matcher recommends a salesperson for a lead by enumerating the full roster
// into the prompt. No pre-filtering: the service reasons over the list.
type Matcher struct {
	client azureopenai.Client
}

// NewMatcher creates a salesperson matcher.
func NewMatcher(client azureopenai.Client) *Matcher {
	return &Matcher{client: client}
}

// Match asks for the best-fit salesperson. On any failure (service, parse,
// missing key) the result is nil with a classified error; the caller must
// report an explicit no-assignment, never substitute a default. A repeated
// call with the same roster may pick a different salesperson; the result is
// a point-in-time decision, not a stable key.
func (m *Matcher) Match(ctx context.Context, leadName, expertiseNeeded string, roster []model.Salesperson) (*model.Assignment, error) {
	if len(roster) == 0 {
		return nil, eris.Wrap(ErrMissingPrecondition, "match: empty roster")
	}

	ctx, cancel := context.WithTimeout(ctx, matchTimeout)
	defer cancel()

	text, err := m.client.Complete(ctx, azureopenai.CompletionRequest{
		Prompt:      matchPrompt(leadName, expertiseNeeded, roster),
		MaxTokens:   matchMaxTokens,
		Temperature: matchTemperature,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "match: completion for %s", leadName)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(repair.Object(text)), &fields); err != nil {
		zap.L().Warn("match: response is not valid JSON",
			zap.String("business", leadName),
			zap.Error(err),
		)
		return nil, eris.Wrapf(ErrMalformedResponse, "match: parse response for %s", leadName)
	}

	for _, key := range matchKeys {
		if _, ok := fields[key]; !ok {
			zap.L().Warn("match: response missing required key",
				zap.String("business", leadName),
				zap.String("key", key),
			)
			return nil, eris.Wrapf(ErrMalformedResponse, "match: %s: response missing %q", leadName, key)
		}
	}

	return &model.Assignment{
		BusinessName:    leadName,
		SalespersonID:   asString(fields["Sales Person ID"]),
		SalespersonName: asString(fields["Name"]),
		Experience:      asString(fields["Experience"]),
		Expertise:       asString(fields["Expertise"]),
		Location:        asString(fields["Location"]),
	}, nil
}

// asString renders a JSON value as a string; the service sometimes returns
// experience as a bare number instead of a quoted one.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
