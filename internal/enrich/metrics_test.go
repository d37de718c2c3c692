package enrich

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadops-cli/pkg/azureopenai"
)

const twoBusinessArray = `[
  {"business_name": "Trattoria Roma", "estimated_revenue": 1200000, "market_share": 2.5, "credit_score": 86, "location_rating": 4.5},
  {"business_name": "Pizzeria Napoli", "estimated_revenue": 900000, "market_share": 1.8, "credit_score": 78, "location_rating": 4.0}
]`

func TestGenerateBatch(t *testing.T) {
	client := &fakeClient{respond: func(req azureopenai.CompletionRequest) (string, error) {
		assert.Equal(t, 5000, req.MaxTokens)
		assert.InDelta(t, 0.5, req.Temperature, 0.001)
		assert.Contains(t, req.Prompt, "Business Name: Trattoria Roma")
		assert.Contains(t, req.Prompt, "Business Name: Pizzeria Napoli")
		return twoBusinessArray, nil
	}}
	gen := NewMetricsGenerator(client)

	batch, err := gen.Generate(context.Background(), []string{"Trattoria Roma", "Pizzeria Napoli"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "Trattoria Roma", batch[0].BusinessName)
	assert.InDelta(t, 1200000, batch[0].EstimatedRevenue, 0.001)
	assert.Equal(t, 86, batch[0].CreditScore)
	assert.Equal(t, "Pizzeria Napoli", batch[1].BusinessName)
	assert.Equal(t, 1, client.callCount(), "the whole batch goes out in one call")
}

func TestGenerateDropsUnmatchedNames(t *testing.T) {
	// The service answered for one of the two requested names: the missing
	// one is silently dropped, the batch itself is not a failure.
	client := &fakeClient{respond: func(azureopenai.CompletionRequest) (string, error) {
		return `[{"business_name": "Trattoria Roma", "estimated_revenue": 1200000, "market_share": 2.5, "credit_score": 86, "location_rating": 4.5}]`, nil
	}}
	gen := NewMetricsGenerator(client)

	batch, err := gen.Generate(context.Background(), []string{"Trattoria Roma", "Pizzeria Napoli"})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "Trattoria Roma", batch[0].BusinessName)
}

func TestGenerateAllOrNothingOnServiceFailure(t *testing.T) {
	client := &fakeClient{respond: func(azureopenai.CompletionRequest) (string, error) {
		return "", &azureopenai.StatusError{Code: 500, Body: "boom"}
	}}
	gen := NewMetricsGenerator(client)

	batch, err := gen.Generate(context.Background(), []string{"A", "B", "C"})
	require.Error(t, err)
	assert.Empty(t, batch, "a failed batch never yields a partial collection")
	assert.True(t, IsServiceUnavailable(err))
}

func TestGenerateAllOrNothingOnUnrepairableResponse(t *testing.T) {
	client := &fakeClient{respond: func(azureopenai.CompletionRequest) (string, error) {
		return `[{business_name: broken`, nil
	}}
	gen := NewMetricsGenerator(client)

	batch, err := gen.Generate(context.Background(), []string{"A"})
	require.Error(t, err)
	assert.Empty(t, batch)
	assert.True(t, IsMalformedResponse(err))
}

func TestGenerateRepairsKnownMalformations(t *testing.T) {
	// Fenced, with a stray closing brace after the array.
	malformed := "```json\n" + strings.TrimSuffix(strings.TrimSpace(twoBusinessArray), "]") + "] }\n```"
	client := &fakeClient{respond: func(azureopenai.CompletionRequest) (string, error) {
		return malformed, nil
	}}
	gen := NewMetricsGenerator(client)

	batch, err := gen.Generate(context.Background(), []string{"Trattoria Roma", "Pizzeria Napoli"})
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestGenerateEmptyInputMakesNoCall(t *testing.T) {
	client := &fakeClient{respond: func(azureopenai.CompletionRequest) (string, error) {
		t.Fatal("no call expected for an empty batch")
		return "", nil
	}}
	gen := NewMetricsGenerator(client)

	batch, err := gen.Generate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.Zero(t, client.callCount())
}

func TestGeneratePassesNumericValuesThrough(t *testing.T) {
	// Out-of-range values are not clamped at this stage; only rank clamps.
	client := &fakeClient{respond: func(azureopenai.CompletionRequest) (string, error) {
		return `[{"business_name": "A", "estimated_revenue": -5, "market_share": 180.0, "credit_score": 750, "location_rating": 9.9}]`, nil
	}}
	gen := NewMetricsGenerator(client)

	batch, err := gen.Generate(context.Background(), []string{"A"})
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.InDelta(t, -5, batch[0].EstimatedRevenue, 0.001)
	assert.InDelta(t, 180.0, batch[0].MarketShare, 0.001)
	assert.Equal(t, 750, batch[0].CreditScore)
	assert.InDelta(t, 9.9, batch[0].LocationRating, 0.001)
}
