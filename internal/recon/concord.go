package recon

import (
	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

// locDept is a (Location Code, Department Code) pair.
type locDept struct{ loc, dept string }

// concordExclusions are visit types reconciled by other workflows; their
// rows are dropped before cross-referencing.
var concordExclusions = map[locDept]bool{
	{"CMG_ADVHMA", "ED"}:        true,
	{"CMG_BREMH", "URGENTCARE"}: true,
	{"CMG_BREMH", "ED"}:         true,
	{"CMG_CHSAL", "TELEPULM"}:   true,
	{"CMG_CHSBV", "TELEPULM"}:   true,
	{"CMG_CHSKV", "TELEPULM"}:   true,
	{"CMG_DEMFD", "ED"}:         true,
	{"CMG_MCGHTN", "ED"}:        true,
	{"CMG_RMCTN", "ED"}:         true,
	{"CMG_SUCCH", "ED"}:         true,
	{"CMG_TAYRH", "ED"}:         true,
	{"CMG_WDLN", "HOSPITALIST"}: true,
}

// concordColumns are the derived columns, in the order they lead the output.
var concordColumns = []string{
	ColConcordID1, ColConcordID2, ColConcordID3,
	ColConcordName, ColFacility, ColCarrier, ColProvider,
}

// FilterConcordRows drops roster rows whose location/department pair is
// excluded from this reconciliation. Returns the filtered table and how many
// rows were dropped.
func FilterConcordRows(table *model.RosterTable) (*model.RosterTable, int) {
	out := table.Filter(func(row *model.RosterRow) bool {
		return !concordExclusions[locDept{
			loc:  row.Get(ColLocationCode),
			dept: row.Get(ColDepartmentCode),
		}]
	})
	return out, len(table.Rows) - len(out.Rows)
}

// reconcileConcord cross-references each roster row against the encounter
// source by (name, DOS) or (name, MRN) and borrows identity fields from the
// match. No charge-code semantics apply to this profile.
func reconcileConcord(table *model.RosterTable, ctx *Context) (*Result, error) {
	table.EnsureColumns(concordColumns...)

	res := &Result{}
	total := len(table.Rows)
	for i, row := range table.Rows {
		concordRow(row, ctx, res)
		ctx.step(i+1, total)
	}

	res.RowsClassified = int64(total)
	return res, nil
}

func concordRow(row *model.RosterRow, ctx *Context, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res.RowsErrored++
			ctx.Log.Error().Int("row", row.Number).Interface("panic", r).
				Msg("row cross-reference failed")
		}
	}()

	last, first := normalize.SplitName(patientName(row))
	if last == "" || first == "" {
		// Name not splittable; the row passes through untouched.
		res.count("UNMATCHABLE NAME")
		return
	}

	ids := GenerateIDs(model.IDSchemeSerialFirst, row)
	row.Set(ColConcordID1, ids.ID1)
	row.Set(ColConcordID2, ids.ID2)
	row.Set(ColConcordID3, ids.ID3)

	dos := normalize.ParseDate(row.Get(ColDOS))
	mrn := normalize.Digits(row.Get(ColConcordMRN))

	rec, ok := ctx.Index.CrossRef(last, first, dos, mrn)
	if !ok {
		row.Set(ColConcordName, model.NoMatch)
		row.Set(ColProvider, model.NoMatch)
		row.Set(ColCarrier, model.NoMatch)
		row.Set(ColFacility, model.NoMatch)
		res.count("NO MATCH")
		return
	}
	row.Set(ColConcordName, rec.PatientName)
	row.Set(ColProvider, rec.Provider)
	row.Set(ColCarrier, rec.Carrier)
	row.Set(ColFacility, rec.FacilityName)
	res.count("MATCHED")
}
