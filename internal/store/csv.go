// Package store persists pipeline data: the legacy flat CSV files shared
// with the spreadsheet tooling, and a local SQLite database for run and
// assignment history.
package store

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadops-cli/internal/model"
)

// Legacy CSV headers. The files are shared with external tooling, so the
// column names are contractual.
var (
	businessHeader   = []string{"Name", "Address", "Type", "Popularity", "Profit"}
	rosterHeader     = []string{"Sales Person ID", "Name", "Experience (Years)", "Expertise in Off-Grid Energy", "Location (City in Italy)"}
	assignmentHeader = []string{"Business Name", "Location", "Sales Person ID", "Sales Person Name", "Sales Person Location", "Expertise", "Experience"}
)

// CSVPaths locates the flat files.
type CSVPaths struct {
	Listing     string
	Leads       string
	Customers   string
	Roster      string
	Assignments string
}

// CSVStore reads and writes the legacy CSV files. Reads are full-table
// scans; writes are append (leads) or full overwrite (assignments). Writes
// are not transactional: concurrent re-runs are last-write-wins.
type CSVStore struct {
	paths CSVPaths
}

// NewCSV creates a CSV store over the given file paths.
func NewCSV(paths CSVPaths) *CSVStore {
	return &CSVStore{paths: paths}
}

// Listing loads the business listing. A missing file is an error: the
// listing is a precondition for prospecting.
func (s *CSVStore) Listing(ctx context.Context) ([]model.BusinessRecord, error) {
	return s.readBusinesses(ctx, s.paths.Listing, true)
}

// Leads loads the current lead set. A missing file means no leads yet.
func (s *CSVStore) Leads(ctx context.Context) ([]model.BusinessRecord, error) {
	return s.readBusinesses(ctx, s.paths.Leads, false)
}

// Customers loads the existing customer set. A missing file means none.
func (s *CSVStore) Customers(ctx context.Context) ([]model.BusinessRecord, error) {
	return s.readBusinesses(ctx, s.paths.Customers, false)
}

func (s *CSVStore) readBusinesses(ctx context.Context, path string, required bool) ([]model.BusinessRecord, error) {
	rows, header, err := s.readAll(ctx, path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil, nil
		}
		return nil, err
	}

	col := columnIndex(header)
	out := make([]model.BusinessRecord, 0, len(rows))
	for _, row := range rows {
		name := field(row, col, "Name")
		if name == "" {
			continue
		}
		out = append(out, model.BusinessRecord{
			Name:       name,
			Address:    field(row, col, "Address"),
			Type:       field(row, col, "Type"),
			Popularity: optFloat(field(row, col, "Popularity")),
			RawProfit:  optFloat(field(row, col, "Profit")),
		})
	}
	return out, nil
}

// AppendLeads merges new leads into the leads file, deduplicating by name
// and address, and rewrites the file. Returns how many rows were added.
func (s *CSVStore) AppendLeads(ctx context.Context, leads []model.BusinessRecord) (int, error) {
	existing, err := s.Leads(ctx)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.Name+"\x1f"+b.Address] = true
	}

	merged := existing
	added := 0
	for _, b := range leads {
		key := b.Name + "\x1f" + b.Address
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, b)
		added++
	}

	records := make([][]string, 0, len(merged))
	for _, b := range merged {
		records = append(records, []string{
			b.Name, b.Address, b.Type, floatField(b.Popularity), floatField(b.RawProfit),
		})
	}
	if err := s.writeAll(s.paths.Leads, businessHeader, records); err != nil {
		return 0, err
	}
	return added, nil
}

// Roster loads the salesperson table. A missing file is a hard failure:
// assignment cannot proceed without it.
func (s *CSVStore) Roster(ctx context.Context) ([]model.Salesperson, error) {
	rows, header, err := s.readAll(ctx, s.paths.Roster)
	if err != nil {
		return nil, err
	}

	col := columnIndex(header)
	out := make([]model.Salesperson, 0, len(rows))
	for _, row := range rows {
		id := field(row, col, "Sales Person ID")
		if id == "" {
			continue
		}
		years, _ := strconv.Atoi(field(row, col, "Experience (Years)"))
		out = append(out, model.Salesperson{
			ID:              id,
			Name:            field(row, col, "Name"),
			ExperienceYears: years,
			Expertise:       field(row, col, "Expertise in Off-Grid Energy"),
			Location:        field(row, col, "Location (City in Italy)"),
		})
	}
	return out, nil
}

// WriteRoster writes a full roster, overwriting any existing file.
func (s *CSVStore) WriteRoster(_ context.Context, roster []model.Salesperson) error {
	records := make([][]string, 0, len(roster))
	for _, sp := range roster {
		records = append(records, []string{
			sp.ID, sp.Name, strconv.Itoa(sp.ExperienceYears), sp.Expertise, sp.Location,
		})
	}
	return s.writeAll(s.paths.Roster, rosterHeader, records)
}

// WriteAssignments overwrites the assignments file with the given set.
func (s *CSVStore) WriteAssignments(_ context.Context, assignments []model.Assignment) error {
	records := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		records = append(records, []string{
			a.BusinessName, a.BusinessAddress, a.SalespersonID, a.SalespersonName,
			a.Location, a.Expertise, a.Experience,
		})
	}
	return s.writeAll(s.paths.Assignments, assignmentHeader, records)
}

// AppendListing merges discovered businesses into the listing file,
// deduplicating by name and address.
func (s *CSVStore) AppendListing(ctx context.Context, businesses []model.BusinessRecord) (int, error) {
	existing, err := s.readBusinesses(ctx, s.paths.Listing, false)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[b.Name+"\x1f"+b.Address] = true
	}

	merged := existing
	added := 0
	for _, b := range businesses {
		key := b.Name + "\x1f" + b.Address
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, b)
		added++
	}

	records := make([][]string, 0, len(merged))
	for _, b := range merged {
		records = append(records, []string{
			b.Name, b.Address, b.Type, floatField(b.Popularity), floatField(b.RawProfit),
		})
	}
	if err := s.writeAll(s.paths.Listing, businessHeader, records); err != nil {
		return 0, err
	}
	return added, nil
}

func (s *CSVStore) readAll(ctx context.Context, path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var header []string
	var rows [][]string
	first := true
	for {
		if ctx.Err() != nil {
			return nil, nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrapf(err, "csv: read %s", path)
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if first {
			header = record
			first = false
			continue
		}
		rows = append(rows, record)
	}
	return rows, header, nil
}

func (s *CSVStore) writeAll(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "csv: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "csv: write header %s", path)
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			return eris.Wrapf(err, "csv: write row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "csv: flush %s", path)
	}
	return nil
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	return col
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// optFloat parses an optional numeric field. Placeholder values from the
// legacy tooling ("N/A", "Not Available") read as absent.
func optFloat(s string) *float64 {
	if s == "" || s == "N/A" || s == "Not Available" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
