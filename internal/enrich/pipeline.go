package enrich

import (
	"context"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadops-cli/internal/model"
)

// DataStore is the tabular persistence collaborator. Reads are full-table
// scans; writes are append or full-overwrite. The pipeline hands it copies,
// never live references.
type DataStore interface {
	Listing(ctx context.Context) ([]model.BusinessRecord, error)
	Leads(ctx context.Context) ([]model.BusinessRecord, error)
	Customers(ctx context.Context) ([]model.BusinessRecord, error)
	AppendLeads(ctx context.Context, leads []model.BusinessRecord) (int, error)
	Roster(ctx context.Context) ([]model.Salesperson, error)
	WriteAssignments(ctx context.Context, assignments []model.Assignment) error
}

// History records runs, stage outcomes, and assignment history for auditing
// and for the deterministic no-assignment fallback.
type History interface {
	BeginRun(ctx context.Context, command string) (string, error)
	EndRun(ctx context.Context, runID string, status model.RunStatus) error
	RecordStage(ctx context.Context, runID, stage string, ok bool, detail string) error
	RecordAssignment(ctx context.Context, a model.Assignment) error
	LastAssignment(ctx context.Context, businessName string) (*model.Assignment, error)
	LeastRecentlyAssigned(ctx context.Context, roster []model.Salesperson) (*model.Salesperson, error)
}

// Pipeline sequences enrichment, ranking, assignment, and generation over
// the data store. It is pure given its cache: repeated invocations with an
// unchanged input set issue no duplicate generator calls.
type Pipeline struct {
	Data    DataStore
	History History
	Cache   *Cache
	Matcher *Matcher
	Texts   *TextGenerator

	// CompanyName, Offering, and ExpertiseNeeded parameterize the matcher
	// and email prompts; they come from configuration.
	CompanyName     string
	Offering        string
	ExpertiseNeeded string
}

// AssignReport is the outcome of one assignment run. Unassigned leads are
// reported explicitly, never silently substituted.
type AssignReport struct {
	Assigned   []model.Assignment `json:"assigned"`
	Unassigned []UnassignedLead   `json:"unassigned,omitempty"`
}

// UnassignedLead names a lead the matcher could not assign and why.
type UnassignedLead struct {
	BusinessName string `json:"business_name"`
	Reason       string `json:"reason"`
}

// EmailResult carries a generated outreach email and the context it was
// personalized with.
type EmailResult struct {
	BusinessName string            `json:"business_name"`
	Salesperson  model.Salesperson `json:"salesperson"`
	Summary      string            `json:"summary,omitempty"`
	Body         string            `json:"body"`
}

// Prospects enriches and ranks every listed business not already present in
// leads or customers. Businesses the generator dropped keep a randomized
// fallback rank so the ordering stays total. Sorted best-first.
func (p *Pipeline) Prospects(ctx context.Context) ([]model.RankedLead, error) {
	runID := p.beginRun(ctx, "prospects")

	listing, err := p.Data.Listing(ctx)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrap(ErrMissingPrecondition, "prospects: business listing unavailable")
	}

	existing, err := p.existingNames(ctx)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, err
	}

	var fresh []model.BusinessRecord
	for _, b := range listing {
		if !existing[b.Name] {
			fresh = append(fresh, b)
		}
	}

	ranked, err := p.rankBusinesses(ctx, runID, fresh)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, err
	}

	p.endRun(ctx, runID, model.RunStatusCompleted)
	return ranked, nil
}

// Leads enriches and ranks the current lead set.
func (p *Pipeline) Leads(ctx context.Context) ([]model.RankedLead, error) {
	runID := p.beginRun(ctx, "leads")

	leads, err := p.Data.Leads(ctx)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrap(err, "leads: load")
	}
	if len(leads) == 0 {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrap(ErrMissingPrecondition, "leads: none found, generate leads first")
	}

	ranked, err := p.rankBusinesses(ctx, runID, leads)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, err
	}

	p.endRun(ctx, runID, model.RunStatusCompleted)
	return ranked, nil
}

// PromoteLeads copies the named businesses from the listing into the lead
// set, deduplicating by name and address. Returns how many were added.
func (p *Pipeline) PromoteLeads(ctx context.Context, names []string) (int, error) {
	listing, err := p.Data.Listing(ctx)
	if err != nil {
		return 0, eris.Wrap(ErrMissingPrecondition, "promote: business listing unavailable")
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var selected []model.BusinessRecord
	for _, b := range listing {
		if wanted[b.Name] {
			selected = append(selected, b)
		}
	}
	if len(selected) == 0 {
		return 0, eris.New("promote: no selected prospects found in listing")
	}

	return p.Data.AppendLeads(ctx, selected)
}

// Assign matches every current lead to a salesperson and persists the
// result. Re-running overwrites: one assignment per business. Matcher
// failures become explicit unassigned entries.
func (p *Pipeline) Assign(ctx context.Context) (*AssignReport, error) {
	runID := p.beginRun(ctx, "assign")

	leads, err := p.Data.Leads(ctx)
	if err != nil || len(leads) == 0 {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrap(ErrMissingPrecondition, "assign: no leads available")
	}

	roster, err := p.Data.Roster(ctx)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrap(ErrMissingPrecondition, "assign: salesperson roster unavailable")
	}

	report := &AssignReport{}
	for _, lead := range leads {
		a, err := p.Matcher.Match(ctx, lead.Name, p.ExpertiseNeeded, roster)
		if err != nil {
			zap.L().Warn("assign: no salesperson recommendation",
				zap.String("business", lead.Name),
				zap.Error(err),
			)
			p.recordStage(ctx, runID, "match", false, lead.Name)
			report.Unassigned = append(report.Unassigned, UnassignedLead{
				BusinessName: lead.Name,
				Reason:       eris.Cause(err).Error(),
			})
			continue
		}

		a.BusinessAddress = lead.Address
		report.Assigned = append(report.Assigned, *a)
		p.recordStage(ctx, runID, "match", true, lead.Name)
		if p.History != nil {
			if err := p.History.RecordAssignment(ctx, *a); err != nil {
				zap.L().Warn("assign: record history", zap.String("business", lead.Name), zap.Error(err))
			}
		}
	}

	if len(report.Assigned) > 0 {
		if err := p.Data.WriteAssignments(ctx, report.Assigned); err != nil {
			p.endRun(ctx, runID, model.RunStatusFailed)
			return nil, eris.Wrap(err, "assign: persist")
		}
	}

	p.endRun(ctx, runID, model.RunStatusCompleted)
	return report, nil
}

// Email generates a personalized outreach email for one lead. The sender is
// the lead's recorded assignee; when no assignment exists the least recently
// assigned salesperson is chosen, a deterministic stand-in for the legacy
// random draw.
func (p *Pipeline) Email(ctx context.Context, leadName string) (*EmailResult, error) {
	runID := p.beginRun(ctx, "email")

	lead, err := p.findLead(ctx, leadName)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, err
	}

	roster, err := p.Data.Roster(ctx)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrap(ErrMissingPrecondition, "email: salesperson roster unavailable")
	}

	sp, err := p.senderFor(ctx, leadName, roster)
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, err
	}

	summary, err := p.Texts.BusinessSummary(ctx, lead.Name, lead.Address)
	if err != nil {
		// The summary is context, not substance: an email without it is
		// still useful, matching the legacy behavior of an empty context.
		zap.L().Warn("email: business summary failed",
			zap.String("business", lead.Name),
			zap.Error(err),
		)
		summary = ""
	}

	body, err := p.Texts.SalesEmail(ctx, EmailContext{
		CompanyName:           p.CompanyName,
		Offering:              p.Offering,
		BusinessName:          lead.Name,
		BusinessContext:       summary,
		SalespersonName:       sp.Name,
		SalespersonExperience: strconv.Itoa(sp.ExperienceYears),
		SalespersonExpertise:  sp.Expertise,
		SalespersonLocation:   sp.Location,
	})
	if err != nil {
		p.endRun(ctx, runID, model.RunStatusFailed)
		return nil, eris.Wrapf(err, "email: generate for %s", lead.Name)
	}

	p.endRun(ctx, runID, model.RunStatusCompleted)
	return &EmailResult{
		BusinessName: lead.Name,
		Salesperson:  *sp,
		Summary:      summary,
		Body:         body,
	}, nil
}

// Intelligence generates the business-intelligence summary for one lead.
func (p *Pipeline) Intelligence(ctx context.Context, leadName string) (string, error) {
	lead, err := p.findLead(ctx, leadName)
	if err != nil {
		return "", err
	}
	return p.Texts.BusinessIntelligence(ctx, lead.Name, lead.Address)
}

// Strategy generates a marketing-strategy document for one lead, using its
// cached metrics when the lead batch has already been enriched.
func (p *Pipeline) Strategy(ctx context.Context, leadName string) (string, error) {
	lead, err := p.findLead(ctx, leadName)
	if err != nil {
		return "", err
	}

	var metrics *model.SyntheticMetrics
	if leads, err := p.Data.Leads(ctx); err == nil && len(leads) > 0 {
		if batch, err := p.Cache.GetOrCompute(ctx, businessNames(leads)); err == nil {
			for i := range batch {
				if batch[i].BusinessName == lead.Name {
					metrics = &batch[i]
					break
				}
			}
		}
	}

	return p.Texts.MarketingStrategy(ctx, lead.Name, lead.Address, metrics)
}

// rankBusinesses runs the memoized metrics+rank stages over a business set
// and composes sorted RankedLeads.
func (p *Pipeline) rankBusinesses(ctx context.Context, runID string, businesses []model.BusinessRecord) ([]model.RankedLead, error) {
	if len(businesses) == 0 {
		return nil, nil
	}

	names := businessNames(businesses)

	batch, err := p.Cache.GetOrCompute(ctx, names)
	if err != nil {
		p.recordStage(ctx, runID, "metrics", false, err.Error())
		return nil, eris.Wrap(err, "enrich: metrics batch")
	}
	p.recordStage(ctx, runID, "metrics", true, "")

	ranks, err := p.Cache.GetOrComputeRanks(ctx, names)
	if err != nil {
		p.recordStage(ctx, runID, "rank", false, err.Error())
		return nil, eris.Wrap(err, "enrich: ranks")
	}
	p.recordStage(ctx, runID, "rank", true, "")

	byName := make(map[string]*model.SyntheticMetrics, len(batch))
	for i := range batch {
		byName[batch[i].BusinessName] = &batch[i]
	}

	ranked := make([]model.RankedLead, 0, len(businesses))
	for _, b := range businesses {
		ranked = append(ranked, model.RankedLead{
			Rank:     ranks[b.Name],
			Business: b,
			Metrics:  byName[b.Name],
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank < ranked[j].Rank
		}
		return ranked[i].Business.Name < ranked[j].Business.Name
	})
	return ranked, nil
}

// senderFor resolves the salesperson an email should come from: the lead's
// recorded assignee if the roster still carries them, otherwise the least
// recently assigned roster member.
func (p *Pipeline) senderFor(ctx context.Context, leadName string, roster []model.Salesperson) (*model.Salesperson, error) {
	if p.History != nil {
		if last, err := p.History.LastAssignment(ctx, leadName); err == nil && last != nil {
			for i := range roster {
				if roster[i].ID == last.SalespersonID {
					return &roster[i], nil
				}
			}
		}
		if sp, err := p.History.LeastRecentlyAssigned(ctx, roster); err == nil && sp != nil {
			return sp, nil
		}
	}
	if len(roster) == 0 {
		return nil, eris.Wrap(ErrMissingPrecondition, "email: empty roster")
	}
	return &roster[0], nil
}

func (p *Pipeline) findLead(ctx context.Context, name string) (*model.BusinessRecord, error) {
	leads, err := p.Data.Leads(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "leads: load")
	}
	for i := range leads {
		if leads[i].Name == name {
			return &leads[i], nil
		}
	}
	return nil, eris.Wrapf(ErrMissingPrecondition, "lead %q not found", name)
}

func (p *Pipeline) existingNames(ctx context.Context) (map[string]bool, error) {
	existing := make(map[string]bool)

	leads, err := p.Data.Leads(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "leads: load")
	}
	for _, b := range leads {
		existing[b.Name] = true
	}

	customers, err := p.Data.Customers(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "customers: load")
	}
	for _, b := range customers {
		existing[b.Name] = true
	}
	return existing, nil
}

func businessNames(businesses []model.BusinessRecord) []string {
	names := make([]string, len(businesses))
	for i, b := range businesses {
		names[i] = b.Name
	}
	return names
}

// Run-history helpers tolerate a nil History so the pipeline stays usable
// in one-shot contexts without a database.

func (p *Pipeline) beginRun(ctx context.Context, command string) string {
	if p.History == nil {
		return ""
	}
	runID, err := p.History.BeginRun(ctx, command)
	if err != nil {
		zap.L().Warn("history: begin run", zap.String("command", command), zap.Error(err))
		return ""
	}
	return runID
}

func (p *Pipeline) endRun(ctx context.Context, runID string, status model.RunStatus) {
	if p.History == nil || runID == "" {
		return
	}
	if err := p.History.EndRun(ctx, runID, status); err != nil {
		zap.L().Warn("history: end run", zap.Error(err))
	}
}

func (p *Pipeline) recordStage(ctx context.Context, runID, stage string, ok bool, detail string) {
	if p.History == nil || runID == "" {
		return
	}
	if err := p.History.RecordStage(ctx, runID, stage, ok, detail); err != nil {
		zap.L().Warn("history: record stage", zap.String("stage", stage), zap.Error(err))
	}
}
