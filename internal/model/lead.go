// Package model defines the core types shared across the enrichment pipeline.
package model

// BusinessRecord is a row from the business listing source. The pipeline
// treats it as read-only; Name is the unique key within a batch.
type BusinessRecord struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Type       string   `json:"type,omitempty"`
	Popularity *float64 `json:"popularity,omitempty"`
	RawProfit  *float64 `json:"raw_profit,omitempty"`
}

// SyntheticMetrics holds the generated market indicators for one business.
// At most one record exists per business per pipeline run; absence means the
// generator dropped the business or the batch failed.
type SyntheticMetrics struct {
	BusinessName     string  `json:"business_name"`
	EstimatedRevenue float64 `json:"estimated_revenue"`
	MarketShare      float64 `json:"market_share"`
	CreditScore      int     `json:"credit_score"`
	LocationRating   float64 `json:"location_rating"`
}

// RankedLead composes a business record with its metrics and rank.
// Rank is always within [1,100]; 1 is best. Metrics is nil when the business
// had no generated metrics and the rank is a randomized fallback.
type RankedLead struct {
	Rank     int               `json:"rank"`
	Business BusinessRecord    `json:"business"`
	Metrics  *SyntheticMetrics `json:"metrics,omitempty"`
}

// Salesperson is a row from the sales roster.
type Salesperson struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	ExperienceYears int    `json:"experience_years"`
	Expertise       string `json:"expertise"`
	Location        string `json:"location"`
}

// Assignment binds a lead to a salesperson. The salesperson fields are
// denormalized as returned by the matcher; Experience stays a string because
// the generative service does not reliably return a bare number.
type Assignment struct {
	BusinessName    string `json:"business_name"`
	BusinessAddress string `json:"business_address"`
	SalespersonID   string `json:"salesperson_id"`
	SalespersonName string `json:"salesperson_name"`
	Location        string `json:"location"`
	Expertise       string `json:"expertise"`
	Experience      string `json:"experience"`
}
