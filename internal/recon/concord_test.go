package recon

import (
	"testing"

	"github.com/blitzmed/censusrecon/internal/model"
)

func concordTable(rows ...map[string]string) *model.RosterTable {
	return rosterTable(
		[]string{"Patient Name", "Date of Service", "Account Number",
			"Medical Record Number", "Location Code", "Department Code"},
		rows...)
}

func TestFilterConcordRows(t *testing.T) {
	table := concordTable(
		map[string]string{"Patient Name": "A, B", "Location Code": "CMG_BREMH", "Department Code": "ED"},
		map[string]string{"Patient Name": "C, D", "Location Code": "CMG_BREMH", "Department Code": "CLINIC"},
		map[string]string{"Patient Name": "E, F", "Location Code": "CMG_WDLN", "Department Code": "HOSPITALIST"},
	)
	filtered, dropped := FilterConcordRows(table)
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	if len(filtered.Rows) != 1 || filtered.Rows[0].Get("Patient Name") != "C, D" {
		t.Errorf("wrong rows survived the filter")
	}
}

func TestReconcile_ConcordMatchByDOS(t *testing.T) {
	idx := buildIndex(t, model.EncounterRecord{
		LastName: "SMITH", FirstName: "JOHN", DOS: "1/15/2024",
		AppointmentFID: "A1", ChartNumber: "5566", Provider: "Dr. X",
		Carrier: "Acme Health", FacilityName: "Main ER", PatientName: "SMITH, JOHN Q",
	})
	table := concordTable(map[string]string{
		"Patient Name": "Smith, John", "Date of Service": "2024-01-15",
		"Account Number": "778899", "Medical Record Number": "5566",
	})
	if _, err := Reconcile(table, testCtx(idx, model.ProfileConcord)); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	row := table.Rows[0]
	if got := row.Get(ColConcordName); got != "SMITH, JOHN Q" {
		t.Errorf("borrowed name = %q", got)
	}
	if row.Get(ColProvider) != "Dr. X" || row.Get(ColCarrier) != "Acme Health" || row.Get(ColFacility) != "Main ER" {
		t.Errorf("borrowed fields wrong: %+v", row.Fields)
	}
	if row.Get(ColConcordID1) == "" || row.Get(ColConcordID2) == "" || row.Get(ColConcordID3) == "" {
		t.Errorf("IDs not generated: %+v", row.Fields)
	}
}

func TestReconcile_ConcordMatchByMRNFallback(t *testing.T) {
	idx := buildIndex(t, model.EncounterRecord{
		LastName: "SMITH", FirstName: "JOHN", DOS: "1/10/2024",
		AppointmentFID: "A1", ChartNumber: "5566", Provider: "Dr. X",
	})
	table := concordTable(map[string]string{
		"Patient Name": "Smith, John", "Date of Service": "1/15/2024",
		"Medical Record Number": "5566",
	})
	if _, err := Reconcile(table, testCtx(idx, model.ProfileConcord)); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if got := table.Rows[0].Get(ColProvider); got != "Dr. X" {
		t.Errorf("MRN fallback match failed, provider = %q", got)
	}
}

func TestReconcile_ConcordNoMatchFillsNA(t *testing.T) {
	idx := buildIndex(t)
	table := concordTable(map[string]string{
		"Patient Name": "Nobody, Here", "Date of Service": "1/15/2024",
	})
	if _, err := Reconcile(table, testCtx(idx, model.ProfileConcord)); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	row := table.Rows[0]
	for _, col := range []string{ColConcordName, ColProvider, ColCarrier, ColFacility} {
		if got := row.Get(col); got != model.NoMatch {
			t.Errorf("%s = %q, want #N/A", col, got)
		}
	}
}

func TestReconcile_ConcordMalformedNamePassesThrough(t *testing.T) {
	idx := buildIndex(t)
	table := concordTable(map[string]string{
		"Patient Name": "MONONYM", "Date of Service": "1/15/2024",
		"Account Number": "123",
	})
	if _, err := Reconcile(table, testCtx(idx, model.ProfileConcord)); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	row := table.Rows[0]
	if row.Get(ColConcordID1) != "" || row.Get(ColConcordName) != "" {
		t.Errorf("malformed-name row should stay blank: %+v", row.Fields)
	}
}
