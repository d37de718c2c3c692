package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadops-cli/internal/model"
)

func newTestCSVStore(t *testing.T) (*CSVStore, string) {
	t.Helper()
	dir := t.TempDir()
	s := NewCSV(CSVPaths{
		Listing:     filepath.Join(dir, "businesses.csv"),
		Leads:       filepath.Join(dir, "leads.csv"),
		Customers:   filepath.Join(dir, "customers.csv"),
		Roster:      filepath.Join(dir, "sales_persons.csv"),
		Assignments: filepath.Join(dir, "assignments.csv"),
	})
	return s, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCSV_Listing(t *testing.T) {
	s, dir := newTestCSVStore(t)
	writeFile(t, filepath.Join(dir, "businesses.csv"),
		"Name,Address,Type,Popularity,Profit\n"+
			"Trattoria Roma,\"Via Appia 12, Roma\",Restaurant,4.5,120000\n"+
			"Pizzeria Napoli,\"Via Toledo 5, Napoli\",Restaurant,,\n")

	listing, err := s.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 2)

	assert.Equal(t, "Trattoria Roma", listing[0].Name)
	assert.Equal(t, "Via Appia 12, Roma", listing[0].Address)
	require.NotNil(t, listing[0].Popularity)
	assert.InDelta(t, 4.5, *listing[0].Popularity, 0.001)
	require.NotNil(t, listing[0].RawProfit)
	assert.InDelta(t, 120000, *listing[0].RawProfit, 0.001)

	assert.Nil(t, listing[1].Popularity)
	assert.Nil(t, listing[1].RawProfit)
}

func TestCSV_ListingMissingFileIsError(t *testing.T) {
	s, _ := newTestCSVStore(t)
	_, err := s.Listing(context.Background())
	assert.Error(t, err)
}

func TestCSV_ListingPlaceholderValues(t *testing.T) {
	s, dir := newTestCSVStore(t)
	writeFile(t, filepath.Join(dir, "businesses.csv"),
		"Name,Address,Type,Popularity,Profit\n"+
			"Trattoria Roma,Via Appia 12,Restaurant,N/A,Not Available\n")

	listing, err := s.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Nil(t, listing[0].Popularity)
	assert.Nil(t, listing[0].RawProfit)
}

func TestCSV_ListingColumnOrderIndependent(t *testing.T) {
	s, dir := newTestCSVStore(t)
	writeFile(t, filepath.Join(dir, "businesses.csv"),
		"Profit,Name,Popularity,Address,Type\n"+
			"90000,Trattoria Roma,3.9,Via Appia 12,Restaurant\n")

	listing, err := s.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, "Trattoria Roma", listing[0].Name)
	require.NotNil(t, listing[0].RawProfit)
	assert.InDelta(t, 90000, *listing[0].RawProfit, 0.001)
}

func TestCSV_LeadsMissingFileIsEmpty(t *testing.T) {
	s, _ := newTestCSVStore(t)

	leads, err := s.Leads(context.Background())
	require.NoError(t, err)
	assert.Empty(t, leads)

	customers, err := s.Customers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, customers)
}

func TestCSV_AppendLeads(t *testing.T) {
	s, _ := newTestCSVStore(t)
	ctx := context.Background()

	pop := 4.5
	added, err := s.AppendLeads(ctx, []model.BusinessRecord{
		{Name: "Trattoria Roma", Address: "Via Appia 12", Type: "Restaurant", Popularity: &pop},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	// Appending the same lead again is a no-op.
	added, err = s.AppendLeads(ctx, []model.BusinessRecord{
		{Name: "Trattoria Roma", Address: "Via Appia 12"},
	})
	require.NoError(t, err)
	assert.Zero(t, added)

	// Same name at a different address is a distinct lead.
	added, err = s.AppendLeads(ctx, []model.BusinessRecord{
		{Name: "Trattoria Roma", Address: "Corso Venezia 3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	leads, err := s.Leads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	require.NotNil(t, leads[0].Popularity)
	assert.InDelta(t, 4.5, *leads[0].Popularity, 0.001)
}

func TestCSV_Roster(t *testing.T) {
	s, dir := newTestCSVStore(t)
	writeFile(t, filepath.Join(dir, "sales_persons.csv"),
		"Sales Person ID,Name,Experience (Years),Expertise in Off-Grid Energy,Location (City in Italy)\n"+
			"SP-1001,Anna Rossi,8,Off-Grid Solutions,Milan\n"+
			"SP-1002,Luca Bianchi,3,Solar Power,Rome\n")

	roster, err := s.Roster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "SP-1001", roster[0].ID)
	assert.Equal(t, 8, roster[0].ExperienceYears)
	assert.Equal(t, "Off-Grid Solutions", roster[0].Expertise)
	assert.Equal(t, "Rome", roster[1].Location)
}

func TestCSV_RosterMissingFileIsError(t *testing.T) {
	s, _ := newTestCSVStore(t)
	_, err := s.Roster(context.Background())
	assert.Error(t, err)
}

func TestCSV_WriteRosterRoundTrip(t *testing.T) {
	s, _ := newTestCSVStore(t)
	ctx := context.Background()

	in := []model.Salesperson{
		{ID: "SP-1001", Name: "Anna Rossi", ExperienceYears: 8, Expertise: "Off-Grid Solutions", Location: "Milan"},
	}
	require.NoError(t, s.WriteRoster(ctx, in))

	out, err := s.Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCSV_WriteAssignmentsOverwrites(t *testing.T) {
	s, dir := newTestCSVStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAssignments(ctx, []model.Assignment{
		{BusinessName: "Trattoria Roma", SalespersonID: "SP-1001", SalespersonName: "Anna Rossi"},
		{BusinessName: "Pizzeria Napoli", SalespersonID: "SP-1002", SalespersonName: "Luca Bianchi"},
	}))
	require.NoError(t, s.WriteAssignments(ctx, []model.Assignment{
		{BusinessName: "Trattoria Roma", SalespersonID: "SP-1002", SalespersonName: "Luca Bianchi"},
	}))

	raw, err := os.ReadFile(filepath.Join(dir, "assignments.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2, "header plus one row after overwrite")
	assert.Equal(t, "Business Name,Location,Sales Person ID,Sales Person Name,Sales Person Location,Expertise,Experience", lines[0])
	assert.Contains(t, lines[1], "SP-1002")
}

func TestCSV_AppendListing(t *testing.T) {
	s, _ := newTestCSVStore(t)
	ctx := context.Background()

	added, err := s.AppendListing(ctx, []model.BusinessRecord{
		{Name: "Trattoria Roma", Address: "Via Appia 12", Type: "Restaurant"},
		{Name: "Pizzeria Napoli", Address: "Via Toledo 5", Type: "Restaurant"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = s.AppendListing(ctx, []model.BusinessRecord{
		{Name: "Pizzeria Napoli", Address: "Via Toledo 5", Type: "Restaurant"},
		{Name: "Osteria Milano", Address: "Corso Buenos Aires 1", Type: "Restaurant"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	listing, err := s.Listing(ctx)
	require.NoError(t, err)
	assert.Len(t, listing, 3)
}

func TestCSV_SkipsBlankRows(t *testing.T) {
	s, dir := newTestCSVStore(t)
	writeFile(t, filepath.Join(dir, "businesses.csv"),
		"Name,Address,Type,Popularity,Profit\n"+
			",,,,\n"+
			"Trattoria Roma,Via Appia 12,Restaurant,4.5,120000\n")

	listing, err := s.Listing(context.Background())
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.Equal(t, "Trattoria Roma", listing[0].Name)
}
