package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blitzmed/censusrecon/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	path := writeTemp(t, "census.csv",
		"Patient Name,Date of Service,Status\n"+
			"\"Smith, John\",1/15/2024,\n"+
			"\"Doe, Jane\",1/16/2024,ABANDONED\n")
	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(table.Columns) != 3 || table.Columns[0] != "Patient Name" {
		t.Errorf("columns = %v", table.Columns)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(table.Rows))
	}
	if got := table.Rows[0].Get("Patient Name"); got != "Smith, John" {
		t.Errorf("name = %q", got)
	}
	if got := table.Rows[1].Get("Status"); got != "ABANDONED" {
		t.Errorf("status = %q", got)
	}
}

func TestRead_BOMAndShortRows(t *testing.T) {
	path := writeTemp(t, "census.csv",
		"\uFEFFPatient Name,Date of Service\n\"Smith, John\"\n")
	table, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Columns[0] != "Patient Name" {
		t.Errorf("BOM not stripped: %q", table.Columns[0])
	}
	if got := table.Rows[0].Get("Date of Service"); got != "" {
		t.Errorf("short row padding = %q, want blank", got)
	}
}

func TestRead_Empty(t *testing.T) {
	path := writeTemp(t, "census.csv", "")
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestOldestDOS(t *testing.T) {
	table := &model.RosterTable{
		Columns: []string{"Date of Service"},
		Rows: []*model.RosterRow{
			{Fields: map[string]string{"Date of Service": "3/15/2024"}},
			{Fields: map[string]string{"Date of Service": "garbage"}},
			{Fields: map[string]string{"Date of Service": "2/01/2024"}},
		},
	}
	got := OldestDOS(table)
	if got == nil || got.Format("2006-01-02") != "2024-02-01" {
		t.Errorf("OldestDOS = %v, want 2024-02-01", got)
	}
}

func TestOldestDOS_ClampsTypoYears(t *testing.T) {
	table := &model.RosterTable{
		Columns: []string{"Date of Service"},
		Rows: []*model.RosterRow{
			{Fields: map[string]string{"Date of Service": "3/15/1924"}},
		},
	}
	got := OldestDOS(table)
	if got == nil || got.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("OldestDOS = %v, want clamp to 2024-01-01", got)
	}
}

func TestOldestDOS_NoDates(t *testing.T) {
	table := &model.RosterTable{Columns: []string{"Date of Service"}}
	if got := OldestDOS(table); got != nil {
		t.Errorf("OldestDOS = %v, want nil", got)
	}
}

func TestWrite_PreferredOrderAndPrefix(t *testing.T) {
	in := writeTemp(t, "census.csv", "x\n") // placeholder input path
	table := &model.RosterTable{
		Columns: []string{"Patient Name", "Extra Col", "Date of Service", "ID1", "Status"},
		Rows: []*model.RosterRow{
			{Number: 1, Fields: map[string]string{
				"Patient Name": "Smith, John", "Extra Col": "keep",
				"Date of Service": "1/15/2024", "ID1": "123", "Status": "OPEN",
			}},
		},
	}
	out, err := Write(table, in, PreferredOrder)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(out) != "PROCESSED______census.csv" {
		t.Errorf("output name = %s", filepath.Base(out))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	wantHeader := "ID1,Date of Service,Patient Name,Status,Extra Col"
	if lines[0] != wantHeader {
		t.Errorf("header = %q, want %q", lines[0], wantHeader)
	}
	if !strings.Contains(lines[1], "123") || !strings.Contains(lines[1], "keep") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestWrite_InputUntouched(t *testing.T) {
	content := "Patient Name\n\"Smith, John\"\n"
	in := writeTemp(t, "census.csv", content)
	table, err := Read(in)
	if err != nil {
		t.Fatal(err)
	}
	table.EnsureColumns("ID1")
	table.Rows[0].Set("ID1", "xyz")
	if _, err := Write(table, in, PreferredOrder); err != nil {
		t.Fatalf("Write: %v", err)
	}
	after, err := os.ReadFile(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(after) != content {
		t.Error("input file was modified")
	}
}
