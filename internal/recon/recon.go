// Package recon is the reconciliation matching engine: it joins roster rows
// against the encounter index, applies the profile's classification rules,
// and writes the derived columns back onto the rows.
package recon

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blitzmed/censusrecon/internal/encounter"
	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

// Roster and output column names. Exact spellings are load-bearing: the
// output is cross-referenced by downstream spreadsheets.
const (
	ColPatientName    = "Patient Name"
	ColPatientNameAlt = "PatientName" // some practice systems export unspaced
	ColDOS            = "Date of Service"
	ColDateBilled     = "Date Billed"
	ColFacility       = "Facility"
	ColAccountNo      = "Patient Account #"
	ColMRN            = "Patient MRN"
	ColDOB            = "Patient DOB"
	ColLastName       = "Last Name"
	ColFirstName      = "First Name"
	ColEMFac          = "E&M (Fac)"
	ColEMPro          = "E&M (Pro)"
	ColStatus         = "Status"
	ColCensusRec      = "Census Reconciliation"
	ColUnbilled       = "UNBILLED"
	ColProvider       = "Provider"
	ColID1            = "ID1"
	ColID2            = "ID2"
	ColID3            = "ID3"
)

// Concord-specific columns. The borrowed patient name keeps its historical
// trailing space to stay distinct from the roster's own Patient Name column.
const (
	ColConcordID1     = "ID (DOS_ACCT)"
	ColConcordID2     = "ID2 (DOS_MRN)"
	ColConcordID3     = "ID3 (DOS_Patient Name)"
	ColConcordName    = "Patient Name "
	ColCarrier        = "Carrier"
	ColConcordAccount = "Account Number"
	ColConcordMRN     = "Medical Record Number"
	ColLocationCode   = "Location Code"
	ColDepartmentCode = "Department Code"
)

// ErrNoEncounterData is returned when reconciliation is invoked before an
// encounter index has been built.
var ErrNoEncounterData = errors.New("no encounter data: fetch the encounter view before reconciling")

// Context carries everything the engine needs for one batch. It is built
// once at batch start and treated as read-only.
type Context struct {
	Index   *encounter.Index
	Profile model.Profile
	Log     zerolog.Logger

	// Progress, when set, is called after each classified row.
	Progress func(done, total int)
}

// Result summarizes one reconciliation pass.
type Result struct {
	RowsClassified int64
	RowsErrored    int64
	StatusCounts   map[string]int64
}

// Reconcile runs the profile's rule set over every roster row in place.
// Rows are annotated with derived columns; the row set itself is never
// reordered here (the concord pre-filter runs before this, see
// FilterConcordRows).
func Reconcile(table *model.RosterTable, ctx *Context) (*Result, error) {
	if ctx.Index == nil {
		return nil, ErrNoEncounterData
	}
	if err := checkRequiredColumns(table, ctx.Profile); err != nil {
		return nil, err
	}

	switch ctx.Profile {
	case model.ProfileElite:
		return reconcileElite(table, ctx)
	case model.ProfileLarkin:
		return reconcileLarkin(table, ctx)
	case model.ProfileConcord:
		return reconcileConcord(table, ctx)
	default:
		return nil, fmt.Errorf("unknown profile %q", ctx.Profile)
	}
}

func checkRequiredColumns(table *model.RosterTable, profile model.Profile) error {
	var missing []string
	for _, col := range profile.Spec().Required {
		if col == ColPatientName && table.HasColumn(ColPatientNameAlt) {
			continue
		}
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("roster is missing required columns for profile %s: %v", profile, missing)
	}
	return nil
}

// patientName returns the roster row's raw patient name from whichever
// column spelling the file uses.
func patientName(row *model.RosterRow) string {
	if v := row.Get(ColPatientName); v != "" {
		return v
	}
	return row.Get(ColPatientNameAlt)
}

// splitNames populates Last Name / First Name on every row. First Name keeps
// the full post-comma text; lookups reduce it to its first token.
func splitNames(table *model.RosterTable) {
	table.EnsureColumns(ColLastName, ColFirstName)
	for _, row := range table.Rows {
		raw := patientName(row)
		if raw == "" {
			continue
		}
		last, _ := normalize.SplitName(raw)
		row.Set(ColLastName, last)
		row.Set(ColFirstName, fullFirstName(raw))
	}
}

// fullFirstName returns the trimmed, uppercased text after the first comma.
func fullFirstName(raw string) string {
	if _, rest, found := strings.Cut(raw, ","); found {
		return normalize.Code(rest)
	}
	return ""
}

// rowKey derives the encounter lookup key for a roster row.
func rowKey(row *model.RosterRow) encounter.NameKey {
	last, first := normalize.SplitName(patientName(row))
	return encounter.NameKey{Last: last, First: first}
}

func (r *Result) count(status string) {
	if r.StatusCounts == nil {
		r.StatusCounts = make(map[string]int64)
	}
	r.StatusCounts[status]++
}

func (c *Context) step(done, total int) {
	if c.Progress != nil {
		c.Progress(done, total)
	}
}
