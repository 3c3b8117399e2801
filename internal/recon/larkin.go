package recon

import (
	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

// reconcileLarkin runs the coarse rule set: the roster arrives with an
// upstream Status column, and reconciliation only says whether each visit
// was billed, hit a date mismatch, or is unknown to the source. Missing
// MRN/DOB are borrowed from the encounter source before IDs are generated.
func reconcileLarkin(table *model.RosterTable, ctx *Context) (*Result, error) {
	splitNames(table)
	table.EnsureColumns(ColMRN, ColDOB, ColProvider,
		ColID1, ColID2, ColID3, ColCensusRec, ColUnbilled, ColEMPro, ColStatus)

	res := &Result{}
	total := len(table.Rows)
	for i, row := range table.Rows {
		larkinRow(row, ctx, res)
		ctx.step(i+1, total)
	}

	generateTableIDs(table, ctx.Profile.Spec().IDScheme)
	res.RowsClassified = int64(total)
	for _, row := range table.Rows {
		res.count(row.Get(ColCensusRec))
	}
	return res, nil
}

func larkinRow(row *model.RosterRow, ctx *Context, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res.RowsErrored++
			ctx.Log.Error().Int("row", row.Number).Interface("panic", r).
				Msg("row classification failed")
			row.Set(ColCensusRec, model.StatusRowError)
		}
	}()

	key := rowKey(row)
	borrowPatientInfo(row, ctx)

	// Rows the practice already wrote off stay blank.
	if normalize.Code(row.Get(ColStatus)) == model.LarkinAbandoned {
		row.Set(ColCensusRec, "")
		return
	}
	if !ctx.Index.HasName(key) {
		row.Set(ColCensusRec, model.LarkinNameNotFound)
		return
	}
	dos := normalize.ParseDate(row.Get(ColDOS))
	winner := pickWinner(ctx.Index.Candidates(key), dos)
	if winner == nil {
		row.Set(ColCensusRec, model.LarkinMismatchDOS)
		return
	}
	row.Set(ColCensusRec, model.LarkinBilled)
	row.Set(ColProvider, winner.Provider)
}

// borrowPatientInfo back-fills Patient MRN / Patient DOB from the encounter
// source when the roster lacks them. DOB is re-rendered as MM/DD/YYYY; an
// unparseable source DOB stays blank rather than propagating garbage.
func borrowPatientInfo(row *model.RosterRow, ctx *Context) {
	info, ok := ctx.Index.Info(rowKey(row))
	if !ok {
		return
	}
	if row.Get(ColMRN) == "" {
		row.Set(ColMRN, info.MRN)
	}
	if row.Get(ColDOB) == "" {
		if dob := normalize.ParseDate(info.DOB); dob != nil {
			row.Set(ColDOB, normalize.FormatMDYPadded(*dob))
		}
	}
}
