package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadops-cli/internal/enrich"
	"github.com/sells-group/leadops-cli/internal/store"
	"github.com/sells-group/leadops-cli/pkg/azureopenai"
)

// pipelineEnv holds the initialized stores and pipeline needed by the
// enrichment commands.
type pipelineEnv struct {
	Data     *store.CSVStore
	History  *store.SQLiteHistory
	Pipeline *enrich.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.History != nil {
		_ = pe.History.Close()
	}
}

func csvPaths() store.CSVPaths {
	dir := cfg.Store.DataDir
	return store.CSVPaths{
		Listing:     filepath.Join(dir, cfg.Store.Listing),
		Leads:       filepath.Join(dir, cfg.Store.Leads),
		Customers:   filepath.Join(dir, cfg.Store.Customers),
		Roster:      filepath.Join(dir, cfg.Store.Roster),
		Assignments: filepath.Join(dir, cfg.Store.Assignments),
	}
}

// initHistory opens and migrates the run-history database.
func initHistory(ctx context.Context) (*store.SQLiteHistory, error) {
	h, err := store.NewSQLite(filepath.Join(cfg.Store.DataDir, cfg.Store.HistoryDB))
	if err != nil {
		return nil, err
	}
	if err := h.Migrate(ctx); err != nil {
		_ = h.Close()
		return nil, eris.Wrap(err, "migrate history")
	}
	return h, nil
}

// initPipeline sets up the stores, the generative client, and the pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate("enrich"); err != nil {
		return nil, err
	}

	history, err := initHistory(ctx)
	if err != nil {
		return nil, err
	}

	client := azureopenai.NewClient(azureopenai.ClientConfig{
		Endpoint:   cfg.AzureOpenAI.Endpoint,
		Deployment: cfg.AzureOpenAI.Deployment,
		APIVersion: cfg.AzureOpenAI.APIVersion,
		APIKey:     cfg.AzureOpenAI.Key,
	}, azureopenai.WithTimeout(time.Duration(cfg.AzureOpenAI.TimeoutSecs)*time.Second))

	data := store.NewCSV(csvPaths())
	return &pipelineEnv{
		Data:    data,
		History: history,
		Pipeline: &enrich.Pipeline{
			Data:            data,
			History:         history,
			Cache:           enrich.NewCache(enrich.NewMetricsGenerator(client), enrich.NewRankScorer(client, nil)),
			Matcher:         enrich.NewMatcher(client),
			Texts:           enrich.NewTextGenerator(client),
			CompanyName:     cfg.Company.Name,
			Offering:        cfg.Company.Offering,
			ExpertiseNeeded: cfg.Company.ExpertiseNeeded,
		},
	}, nil
}
