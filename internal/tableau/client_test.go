package tableau

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const exportCSV = `Last Name,FirstName,Charge Code,DOS,Appointment FID,DOB,Chart Number,Provider
SMITH,JOHN,99213,1/15/2024,A1,6/1/1980,555,Dr. X
DOE,JANE,LWBS,1/16/2024,B2,2/2/1992,666,Dr. Y
`

func newTestServer(t *testing.T, csvBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/3.22/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "bad method", http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprint(w, `{"credentials":{"token":"tok123","site":{"id":"site-luid"}}}`)
	})
	mux.HandleFunc("/api/3.22/sites/site-luid/views/view-1/data", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Tableau-Auth") != "tok123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, csvBody)
	})
	mux.HandleFunc("/api/3.22/auth/signout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return httptest.NewServer(mux)
}

func testOptions(srv *httptest.Server) Options {
	return Options{
		ServerURL:   srv.URL,
		TokenName:   "Census",
		TokenSecret: "secret",
		ViewID:      "view-1",
		Timeout:     5 * time.Second,
	}
}

func TestFetchEncounters(t *testing.T) {
	srv := newTestServer(t, exportCSV)
	defer srv.Close()

	ctx := context.Background()
	c, err := New(ctx, testOptions(srv), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close(ctx)

	var lastPct int
	records, err := c.FetchEncounters(ctx, FetchOptions{
		LicenseKey: "160214",
		Progress:   func(pct int) { lastPct = pct },
	})
	if err != nil {
		t.Fatalf("FetchEncounters: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].LastName != "SMITH" || records[0].ChargeCode != "99213" {
		t.Errorf("first record = %+v", records[0])
	}
	if lastPct != 100 {
		t.Errorf("final progress = %d, want 100", lastPct)
	}
}

func TestFetchEncounters_EmptyExport(t *testing.T) {
	srv := newTestServer(t, "Last Name,FirstName,Charge Code,DOS,Appointment FID\n")
	defer srv.Close()

	ctx := context.Background()
	c, err := New(ctx, testOptions(srv), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.FetchEncounters(ctx, FetchOptions{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestNew_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/3.22/auth/signin", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	if _, err := New(context.Background(), testOptions(srv), zerolog.Nop()); err == nil {
		t.Fatal("expected sign-in failure")
	}
}

func TestFetchEncounters_Cancelled(t *testing.T) {
	srv := newTestServer(t, exportCSV)
	defer srv.Close()

	ctx := context.Background()
	c, err := New(ctx, testOptions(srv), zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := c.FetchEncounters(cancelled, FetchOptions{}); err == nil {
		t.Fatal("expected context cancellation")
	}
}

func TestDecodeEncounters_SkipsBadLines(t *testing.T) {
	body := "Last Name,FirstName,Charge Code\n" +
		"SMITH,JOHN,99213\n" +
		"\"unterminated,JANE,LWBS\n" +
		"DOE,JANE,LWBS\n"
	records, err := DecodeEncounters(strings.NewReader(body), zerolog.Nop())
	if err != nil {
		t.Fatalf("DecodeEncounters: %v", err)
	}
	if len(records) < 1 || records[0].LastName != "SMITH" {
		t.Errorf("records = %+v", records)
	}
}

func TestDecodeEncounters_StripsHeaderBOM(t *testing.T) {
	body := "\ufeffLast Name,FirstName,Charge Code\n" +
		"SMITH,JOHN,99213\n"
	records, err := DecodeEncounters(strings.NewReader(body), zerolog.Nop())
	if err != nil {
		t.Fatalf("DecodeEncounters: %v", err)
	}
	if len(records) != 1 || records[0].LastName != "SMITH" {
		t.Errorf("records = %+v", records)
	}
}

func TestFetchWindows(t *testing.T) {
	since := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	ws := fetchWindows(&since, now)
	if len(ws) != 3 {
		t.Fatalf("got %d windows, want 3: %v", len(ws), ws)
	}
	if !ws[0].From.Equal(since) {
		t.Errorf("first window starts %v", ws[0].From)
	}
	if ws[0].To.Format("2006-01-02") != "2024-01-31" {
		t.Errorf("first window ends %v", ws[0].To)
	}
	if ws[1].From.Format("2006-01-02") != "2024-02-01" {
		t.Errorf("second window starts %v", ws[1].From)
	}
	if !ws[2].To.Equal(now) {
		t.Errorf("last window ends %v", ws[2].To)
	}

	if ws := fetchWindows(nil, now); len(ws) != 1 || !ws[0].From.IsZero() {
		t.Errorf("nil since should give one unbounded window: %v", ws)
	}
}
