package recon

import (
	"strings"

	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

// IDs are the deterministic composite keys joined against other files
// outside this system. Concatenation order and the 1899-12-30 serial base
// are format commitments, not choices.
type IDs struct {
	ID1 string
	ID2 string
	ID3 string
}

// GenerateIDs derives the surrogate IDs for one roster row under the given
// scheme. Pure: identical field values always produce identical IDs, and an
// unparseable date contributes an empty serial rather than failing.
func GenerateIDs(scheme model.IDScheme, row *model.RosterRow) IDs {
	switch scheme {
	case model.IDSchemeMRNSerial:
		dos := normalize.SerialString(normalize.ParseDate(row.Get(ColDOS)))
		dob := normalize.SerialString(normalize.ParseDate(row.Get(ColDOB)))
		return IDs{
			ID1: row.Get(ColMRN) + dos,
			ID2: dos + dob + row.Get(ColLastName),
			ID3: "", // reserved
		}
	case model.IDSchemeSerialFirst:
		dos := normalize.SerialString(normalize.ParseDate(row.Get(ColDOS)))
		if dos == "" {
			return IDs{}
		}
		var ids IDs
		if acct := normalize.Digits(row.Get(ColConcordAccount)); acct != "" {
			ids.ID1 = dos + acct
		}
		if mrn := normalize.Digits(row.Get(ColConcordMRN)); mrn != "" {
			ids.ID2 = dos + mrn
		}
		if name := strings.TrimSpace(patientName(row)); name != "" {
			ids.ID3 = dos + name
		}
		return ids
	}
	return IDs{}
}

// generateTableIDs writes scheme IDs onto every row under the standard
// ID1/ID2/ID3 column names. The concord profile writes its own column names
// per row instead.
func generateTableIDs(table *model.RosterTable, scheme model.IDScheme) {
	table.EnsureColumns(ColID1, ColID2, ColID3)
	for _, row := range table.Rows {
		ids := GenerateIDs(scheme, row)
		row.Set(ColID1, ids.ID1)
		row.Set(ColID2, ids.ID2)
		row.Set(ColID3, ids.ID3)
	}
}
