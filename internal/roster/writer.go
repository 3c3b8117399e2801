package roster

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blitzmed/censusrecon/internal/model"
)

// OutputPrefix marks processed files so they are never mistaken for (or
// re-uploaded as) source rosters.
const OutputPrefix = "PROCESSED______"

// PreferredOrder is the documented output column order for the code-based
// profiles. Derived columns lead; any remaining original columns follow in
// file order.
var PreferredOrder = []string{
	"ID1", "ID2", "ID3",
	"Date of Service", "Date Billed", "Facility", "Patient Account #",
	"Patient MRN", "Patient DOB", "Patient Name", "Last Name", "First Name",
	"E&M (Fac)", "E&M (Pro)", "Status", "Census Reconciliation", "UNBILLED",
	"Provider",
}

// ConcordOrder leads with the concord profile's derived columns.
var ConcordOrder = []string{
	"ID (DOS_ACCT)", "ID2 (DOS_MRN)", "ID3 (DOS_Patient Name)",
	"Patient Name ", "Facility", "Carrier", "Provider",
}

// OutputPath returns the processed-file path next to the input:
// prefix + original stem, always .csv.
func OutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(dir, OutputPrefix+stem+".csv")
}

// Write saves the table as a new CSV with columns ordered preferred-first.
// Refuses to write over the input file.
func Write(table *model.RosterTable, inputPath string, preferred []string) (string, error) {
	outPath := OutputPath(inputPath)
	if sameFile(outPath, inputPath) {
		return "", fmt.Errorf("output path %s would overwrite the input", outPath)
	}

	cols := orderColumns(table.Columns, preferred)

	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(cols))
	for _, row := range table.Rows {
		for i, col := range cols {
			rec[i] = row.Get(col)
		}
		if err := w.Write(rec); err != nil {
			return "", fmt.Errorf("write row %d: %w", row.Number, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush output: %w", err)
	}
	return outPath, nil
}

// orderColumns returns preferred columns that exist in the table, then the
// remaining table columns in their original order.
func orderColumns(columns, preferred []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var out []string
	taken := make(map[string]bool, len(preferred))
	for _, c := range preferred {
		if present[c] {
			out = append(out, c)
			taken[c] = true
		}
	}
	for _, c := range columns {
		if !taken[c] {
			out = append(out, c)
		}
	}
	return out
}

func sameFile(a, b string) bool {
	ai, err1 := os.Stat(a)
	bi, err2 := os.Stat(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
