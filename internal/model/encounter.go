package model

// EncounterRecord is one row of the encounter export: a patient visit as the
// authoritative reporting view knows it. Immutable once decoded; lifetime is
// one fetch session.
//
// Parquet tags let a fetched batch be persisted as a snapshot file and read
// back without re-fetching.
type EncounterRecord struct {
	LastName       string `parquet:"last_name"`
	FirstName      string `parquet:"first_name"`
	ChargeCode     string `parquet:"charge_code"`
	DOS            string `parquet:"dos"`
	AppointmentFID string `parquet:"appointment_fid"`
	DOB            string `parquet:"dob"`
	ChartNumber    string `parquet:"chart_number"`
	Provider       string `parquet:"provider"`

	// Cross-reference fields used only by the concord profile.
	PatientName  string `parquet:"patient_name"`
	Carrier      string `parquet:"carrier"`
	FacilityName string `parquet:"facility_name"`
}
