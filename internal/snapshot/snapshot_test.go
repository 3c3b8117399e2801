package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/blitzmed/censusrecon/internal/model"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encounters.parquet")
	records := []model.EncounterRecord{
		{LastName: "SMITH", FirstName: "JOHN", ChargeCode: "99213",
			DOS: "1/15/2024", AppointmentFID: "A1", DOB: "6/1/1980",
			ChartNumber: "555", Provider: "Dr. X"},
		{LastName: "DOE", FirstName: "JANE", ChargeCode: "LWBS",
			DOS: "1/16/2024", AppointmentFID: "B2",
			PatientName: "DOE, JANE", Carrier: "Acme", FacilityName: "Main ER"},
	}
	if err := Write(path, records); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.parquet")); err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}
