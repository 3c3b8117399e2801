package recon

import (
	"strings"
	"time"

	"github.com/blitzmed/censusrecon/internal/encounter"
	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

// Verdict is the per-row outcome of classification.
type Verdict struct {
	ChargeCode string // winning code, "" when none applies
	Billing    string // Census Reconciliation value
	Status     string // reconciliation status
	Provider   string
}

// eliteColumns are the derived columns the elite rule set guarantees exist.
var eliteColumns = []string{
	ColProvider, ColMRN, ColDOB,
	ColID1, ColID2, ColID3,
	ColCensusRec, ColUnbilled, ColEMPro, ColStatus,
}

// reconcileElite runs the full charge-code rule set: classify every row,
// then make the escalation pass, then generate surrogate IDs.
func reconcileElite(table *model.RosterTable, ctx *Context) (*Result, error) {
	splitNames(table)
	table.EnsureColumns(eliteColumns...)

	res := &Result{}
	total := len(table.Rows)
	for i, row := range table.Rows {
		classifyRow(row, ctx, res)
		ctx.step(i+1, total)
	}

	Escalate(table.Rows)
	for _, row := range table.Rows {
		res.count(row.Get(ColStatus))
	}

	generateTableIDs(table, ctx.Profile.Spec().IDScheme)
	res.RowsClassified = int64(total)
	return res, nil
}

// classifyRow derives and applies a Verdict for one row. A panic anywhere in
// per-row processing marks the row and moves on; one bad row never aborts
// the batch.
func classifyRow(row *model.RosterRow, ctx *Context, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			res.RowsErrored++
			ctx.Log.Error().Int("row", row.Number).Interface("panic", r).
				Msg("row classification failed")
			row.Set(ColStatus, model.StatusRowError)
		}
	}()

	v := Classify(row, ctx.Index)
	row.Set(ColEMPro, v.ChargeCode)
	row.Set(ColCensusRec, v.Billing)
	row.Set(ColStatus, v.Status)
	row.Set(ColProvider, v.Provider)
}

// Classify applies the elite rule table to one roster row.
//
// Candidates are every visit indexed under the row's name key; only visits
// whose date of service equals the row's are eligible. Among eligible
// visits a "99"-prefixed code beats everything else (billed takes
// precedence); ties go to insertion order.
func Classify(row *model.RosterRow, idx *encounter.Index) Verdict {
	key := rowKey(row)
	if !idx.HasName(key) {
		return Verdict{Billing: model.BillingNA, Status: model.StatusNameNotFound}
	}

	dos := normalize.ParseDate(row.Get(ColDOS))
	winner := pickWinner(idx.Candidates(key), dos)
	if winner == nil || winner.Code == "" {
		// A same-day visit with no code at all carries no billing signal;
		// only an actual unrecognized code is flagged as invalid.
		return Verdict{Billing: model.BillingNA, Status: model.StatusMismatchDOS}
	}

	v := Verdict{Provider: winner.Provider, Status: model.StatusOpen}
	switch {
	case strings.HasPrefix(winner.Code, "99"):
		v.ChargeCode = winner.Code
		v.Billing = model.BillingBilled
	case winner.Code == "LWBS":
		v.ChargeCode = winner.Code
		v.Billing = model.BillingLWBS
	case winner.Code == "AMA":
		v.ChargeCode = winner.Code
		v.Billing = model.BillingAMA
	case winner.Code == "0":
		v.ChargeCode = winner.Code
		v.Billing = model.BillingNonED
	case winner.Code == "NULL":
		v.ChargeCode = winner.Code
		v.Billing = ""
	default:
		// An unrecognized code in the source view; surfaced for the
		// billing team to chase rather than guessed at.
		v.Billing = model.BillingNA
		v.Status = model.StatusInvalidCode
	}
	return v
}

// pickWinner selects among date-eligible candidates: the first "99"-prefixed
// code in insertion order, else the first eligible candidate.
func pickWinner(candidates []*encounter.Visit, dos *time.Time) *encounter.Visit {
	var first *encounter.Visit
	for _, c := range candidates {
		if !normalize.SameDay(c.Date(), dos) {
			continue
		}
		if strings.HasPrefix(c.Code, "99") {
			return c
		}
		if first == nil {
			first = c
		}
	}
	return first
}

// Escalate is the second pass over a fully classified row set: OPEN rows
// whose billing status shows the visit was resolved (billed or the patient
// left) need no further action. Idempotent, and never touches the billing
// status itself.
func Escalate(rows []*model.RosterRow) {
	for _, row := range rows {
		if row.Get(ColStatus) != model.StatusOpen {
			continue
		}
		switch row.Get(ColCensusRec) {
		case model.BillingBilled, model.BillingLWBS, model.BillingAMA:
			row.Set(ColStatus, model.StatusComplete)
		}
	}
}
