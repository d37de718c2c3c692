package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadops-cli/internal/model"
	"github.com/sells-group/leadops-cli/internal/store"
	"github.com/sells-group/leadops-cli/pkg/places"
)

var discoverConcurrency int

var discoverCmd = &cobra.Command{
	Use:   "discover <query>...",
	Short: "Search Google Places for businesses and add them to the listing",
	Long:  `Runs one text search per query (e.g. "restaurants in Rome") and merges the results into the business listing.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("discover"); err != nil {
			return err
		}

		client := places.NewClient(cfg.Places.Key,
			places.WithBaseURL(cfg.Places.BaseURL),
			places.WithLanguage(cfg.Places.Language),
			places.WithRateLimit(cfg.Places.RatePerSec),
			places.WithPageDelay(time.Duration(cfg.Places.PageDelaySec)*time.Second),
			places.WithMaxPages(cfg.Places.MaxPages),
		)

		var mu sync.Mutex
		var found []places.Place

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(discoverConcurrency)
		for _, query := range args {
			g.Go(func() error {
				results, err := client.TextSearch(gctx, query)
				if err != nil {
					return err
				}
				zap.L().Info("discover: search complete",
					zap.String("query", query),
					zap.Int("results", len(results)),
				)
				mu.Lock()
				found = append(found, results...)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		data := store.NewCSV(csvPaths())
		added, err := data.AppendListing(ctx, placesToRecords(found))
		if err != nil {
			return err
		}
		fmt.Printf("Discovered %d business(es), %d new.\n", len(found), added)
		return nil
	},
}

func init() {
	discoverCmd.Flags().IntVar(&discoverConcurrency, "concurrency", 3, "max concurrent searches")
	rootCmd.AddCommand(discoverCmd)
}

// placesToRecords maps search results onto listing rows. Rating stands in
// for popularity; profit stays unknown until enrichment.
func placesToRecords(found []places.Place) []model.BusinessRecord {
	records := make([]model.BusinessRecord, 0, len(found))
	for _, p := range found {
		r := model.BusinessRecord{
			Name:    p.Name,
			Address: p.Address,
		}
		if len(p.Types) > 0 {
			r.Type = p.Types[0]
		}
		if p.Rating > 0 {
			rating := p.Rating
			r.Popularity = &rating
		}
		records = append(records, r)
	}
	return records
}
