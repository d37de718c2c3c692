package enrich

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadops-cli/internal/model"
	"github.com/sells-group/leadops-cli/pkg/azureopenai"
)

// Templated single-shot generators. Each builds one prompt from structured
// fields already known to the pipeline and returns the trimmed text. No
// repair, no caching: every invocation regenerates fresh content.

const (
	intelligenceMaxTokens = 800
	intelligenceTemp      = 0.6
	intelligenceTimeout   = 40 * time.Second

	summaryMaxTokens = 250
	summaryTemp      = 0.7
	summaryTimeout   = 30 * time.Second

	emailMaxTokens = 600
	emailTemp      = 0.7
	emailTimeout   = 40 * time.Second

	strategyMaxTokens = 800
	strategyTemp      = 0.7
	strategyTimeout   = 40 * time.Second
)

// EmailContext carries the structured fields embedded into the outreach
// email prompt.
type EmailContext struct {
	CompanyName           string
	Offering              string
	BusinessName          string
	BusinessContext       string
	SalespersonName       string
	SalespersonExperience string
	SalespersonExpertise  string
	SalespersonLocation   string
}

// TextGenerator issues the single-shot prose generations.
type TextGenerator struct {
	client azureopenai.Client
}

// NewTextGenerator creates a text generator.
func NewTextGenerator(client azureopenai.Client) *TextGenerator {
	return &TextGenerator{client: client}
}

// BusinessIntelligence returns a markdown intelligence summary for a company.
func (g *TextGenerator) BusinessIntelligence(ctx context.Context, name, address string) (string, error) {
	return g.complete(ctx, intelligencePrompt(name, address), intelligenceMaxTokens, intelligenceTemp, intelligenceTimeout, "intelligence")
}

// BusinessSummary returns a 2-3 sentence blurb suitable for an email.
func (g *TextGenerator) BusinessSummary(ctx context.Context, name, address string) (string, error) {
	return g.complete(ctx, summaryPrompt(name, address), summaryMaxTokens, summaryTemp, summaryTimeout, "summary")
}

// SalesEmail returns a personalized outreach email body.
func (g *TextGenerator) SalesEmail(ctx context.Context, ec EmailContext) (string, error) {
	return g.complete(ctx, emailPrompt(ec), emailMaxTokens, emailTemp, emailTimeout, "email")
}

// MarketingStrategy returns a markdown strategy document for approaching a
// business. Metrics may be nil when the business was never enriched.
func (g *TextGenerator) MarketingStrategy(ctx context.Context, name, address string, m *model.SyntheticMetrics) (string, error) {
	return g.complete(ctx, strategyPrompt(name, address, m), strategyMaxTokens, strategyTemp, strategyTimeout, "strategy")
}

func (g *TextGenerator) complete(ctx context.Context, prompt string, maxTokens int, temp float64, timeout time.Duration, stage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := g.client.Complete(ctx, azureopenai.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temp,
	})
	if err != nil {
		return "", eris.Wrapf(err, "generate: %s", stage)
	}
	return text, nil
}
