package tableau

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blitzmed/censusrecon/internal/model"
)

// Export column names as the reporting view emits them.
const (
	colLastName    = "Last Name"
	colFirstName   = "FirstName"
	colChargeCode  = "Charge Code"
	colDOS         = "DOS"
	colAppointment = "Appointment FID"
	colDOB         = "DOB"
	colChart       = "Chart Number"
	colProvider    = "Provider"
	colPatientName = "Patient Name"
	colCarrier     = "Carrier"
	colFacility    = "Facility Name"
)

// DecodeEncounters parses a view CSV export. Rows that fail to parse are
// warned and skipped; a bad line in a forty-minute export must not waste the
// fetch. Columns the view doesn't carry simply decode as blank.
func DecodeEncounters(r io.Reader, log zerolog.Logger) ([]model.EncounterRecord, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	if _, ok := colIdx[colLastName]; !ok {
		return nil, fmt.Errorf("export is missing the %q column", colLastName)
	}

	field := func(rec []string, name string) string {
		i, ok := colIdx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var records []model.EncounterRecord
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("bad export line, skipped")
			continue
		}
		records = append(records, model.EncounterRecord{
			LastName:       field(rec, colLastName),
			FirstName:      field(rec, colFirstName),
			ChargeCode:     field(rec, colChargeCode),
			DOS:            field(rec, colDOS),
			AppointmentFID: field(rec, colAppointment),
			DOB:            field(rec, colDOB),
			ChartNumber:    field(rec, colChart),
			Provider:       field(rec, colProvider),
			PatientName:    field(rec, colPatientName),
			Carrier:        field(rec, colCarrier),
			FacilityName:   field(rec, colFacility),
		})
	}
	return records, nil
}
