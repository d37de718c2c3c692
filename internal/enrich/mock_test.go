package enrich

import (
	"context"
	"strconv"
	"sync"

	"github.com/sells-group/leadops-cli/internal/model"
	"github.com/sells-group/leadops-cli/pkg/azureopenai"
)

// fakeClient scripts generative responses. respond inspects the prompt and
// returns the canned text; every request is recorded for call accounting.
type fakeClient struct {
	mu      sync.Mutex
	respond func(req azureopenai.CompletionRequest) (string, error)
	calls   []azureopenai.CompletionRequest
}

func (f *fakeClient) Complete(_ context.Context, req azureopenai.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fixedRandn returns a deterministic stand-in for the scorer's random draw:
// always n-1, the top of the [0,n) interval.
func fixedRandn(n int) int { return n - 1 }

// memStore is an in-memory DataStore for orchestrator tests.
type memStore struct {
	listing     []model.BusinessRecord
	leads       []model.BusinessRecord
	customers   []model.BusinessRecord
	roster      []model.Salesperson
	assignments []model.Assignment
}

func (s *memStore) Listing(context.Context) ([]model.BusinessRecord, error) {
	return s.listing, nil
}

func (s *memStore) Leads(context.Context) ([]model.BusinessRecord, error) {
	return s.leads, nil
}

func (s *memStore) Customers(context.Context) ([]model.BusinessRecord, error) {
	return s.customers, nil
}

func (s *memStore) AppendLeads(_ context.Context, leads []model.BusinessRecord) (int, error) {
	seen := make(map[string]bool, len(s.leads))
	for _, l := range s.leads {
		seen[l.Name+"\x1f"+l.Address] = true
	}
	added := 0
	for _, l := range leads {
		key := l.Name + "\x1f" + l.Address
		if seen[key] {
			continue
		}
		seen[key] = true
		s.leads = append(s.leads, l)
		added++
	}
	return added, nil
}

func (s *memStore) Roster(context.Context) ([]model.Salesperson, error) {
	return s.roster, nil
}

func (s *memStore) WriteAssignments(_ context.Context, assignments []model.Assignment) error {
	s.assignments = assignments
	return nil
}

// memHistory is an in-memory History that records run outcomes. Run IDs are
// "<command>-<n>" in begin order so tests can address them directly.
type memHistory struct {
	mu       sync.Mutex
	seq      int
	statuses map[string]model.RunStatus
	last     map[string]model.Assignment
}

func newMemHistory() *memHistory {
	return &memHistory{
		statuses: make(map[string]model.RunStatus),
		last:     make(map[string]model.Assignment),
	}
}

func (h *memHistory) BeginRun(_ context.Context, command string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	id := command + "-" + strconv.Itoa(h.seq)
	h.statuses[id] = model.RunStatusRunning
	return id, nil
}

func (h *memHistory) EndRun(_ context.Context, runID string, status model.RunStatus) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses[runID] = status
	return nil
}

func (h *memHistory) RecordStage(context.Context, string, string, bool, string) error { return nil }

func (h *memHistory) RecordAssignment(_ context.Context, a model.Assignment) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[a.BusinessName] = a
	return nil
}

func (h *memHistory) LastAssignment(_ context.Context, businessName string) (*model.Assignment, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a, ok := h.last[businessName]; ok {
		return &a, nil
	}
	return nil, nil
}

func (h *memHistory) LeastRecentlyAssigned(context.Context, []model.Salesperson) (*model.Salesperson, error) {
	return nil, nil
}

func (h *memHistory) runStatus(runID string) model.RunStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statuses[runID]
}
