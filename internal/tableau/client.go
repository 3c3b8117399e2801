// Package tableau fetches the encounter reporting view over the Tableau
// REST API: personal-access-token sign-in, then CSV export of the view with
// server-side filters. The view is the authoritative encounter source the
// engine reconciles against.
package tableau

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

const apiVersion = "3.22"

// ErrNoData signals an empty export: the fetch succeeded but the view
// returned no rows for the filters. Callers must not build an index from it.
var ErrNoData = errors.New("encounter view returned no rows")

// Options configures a Client.
type Options struct {
	ServerURL   string
	TokenName   string
	TokenSecret string
	SiteID      string // content URL of the site, "" for the default site
	ViewID      string
	Timeout     time.Duration // per-request; large views take minutes
}

// Client is an authenticated Tableau REST session.
type Client struct {
	opts Options
	http *http.Client
	log  zerolog.Logger

	authToken string
	siteLUID  string
}

// New signs in with the personal access token and returns a ready client.
func New(ctx context.Context, opts Options, log zerolog.Logger) (*Client, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Minute
	}
	c := &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
		log:  log,
	}
	if err := c.signIn(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

type signInRequest struct {
	Credentials struct {
		TokenName   string `json:"personalAccessTokenName"`
		TokenSecret string `json:"personalAccessTokenSecret"`
		Site        struct {
			ContentURL string `json:"contentUrl"`
		} `json:"site"`
	} `json:"credentials"`
}

type signInResponse struct {
	Credentials struct {
		Token string `json:"token"`
		Site  struct {
			ID string `json:"id"`
		} `json:"site"`
	} `json:"credentials"`
}

func (c *Client) signIn(ctx context.Context) error {
	var reqBody signInRequest
	reqBody.Credentials.TokenName = c.opts.TokenName
	reqBody.Credentials.TokenSecret = c.opts.TokenSecret
	reqBody.Credentials.Site.ContentURL = c.opts.SiteID

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal signin: %w", err)
	}

	u := fmt.Sprintf("%s/api/%s/auth/signin", c.opts.ServerURL, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build signin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("signin: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("signin: server returned %s", resp.Status)
	}

	var sr signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return fmt.Errorf("decode signin response: %w", err)
	}
	if sr.Credentials.Token == "" {
		return fmt.Errorf("signin: response carried no auth token")
	}
	c.authToken = sr.Credentials.Token
	c.siteLUID = sr.Credentials.Site.ID
	c.log.Info().Str("server", c.opts.ServerURL).Msg("tableau sign-in ok")
	return nil
}

// Close signs the session out. Best effort; an expired token is not an error.
func (c *Client) Close(ctx context.Context) error {
	if c.authToken == "" {
		return nil
	}
	u := fmt.Sprintf("%s/api/%s/auth/signout", c.opts.ServerURL, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Tableau-Auth", c.authToken)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	c.authToken = ""
	return nil
}

// FetchOptions filter one encounter export.
type FetchOptions struct {
	LicenseKey string     // view filter; "" fetches all licenses
	Since      *time.Time // DOS window start; nil fetches the full view

	// Progress, when set, receives fetch milestones in [0,100].
	Progress func(pct int)
}

// FetchEncounters exports the view as CSV and decodes it. Large DOS windows
// are split into sequential month-sized calls so a single export stays
// within the server's response limits; rows are de-duplicated downstream by
// the index's idempotent insertion.
func (c *Client) FetchEncounters(ctx context.Context, opts FetchOptions) ([]model.EncounterRecord, error) {
	windows := fetchWindows(opts.Since, time.Now())
	step := func(pct int) {
		if opts.Progress != nil {
			opts.Progress(pct)
		}
	}
	step(5)

	var all []model.EncounterRecord
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := c.fetchWindow(ctx, opts.LicenseKey, w)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		step(5 + (i+1)*90/len(windows))
		c.log.Info().
			Str("window", w.String()).
			Int("rows", len(records)).
			Msg("encounter window fetched")
	}

	if len(all) == 0 {
		return nil, ErrNoData
	}
	step(100)
	return all, nil
}

// window is one [From, To] DOS range, inclusive.
type window struct {
	From, To time.Time
}

func (w window) String() string {
	return normalize.FormatMDY(w.From) + ".." + normalize.FormatMDY(w.To)
}

// fetchWindows splits [since, now] into calendar-month chunks. A nil since
// means one unbounded window.
func fetchWindows(since *time.Time, now time.Time) []window {
	if since == nil {
		return []window{{}}
	}
	var out []window
	from := *since
	for !from.After(now) {
		to := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC).
			AddDate(0, 1, -1) // last day of from's month
		if to.After(now) {
			to = now
		}
		out = append(out, window{From: from, To: to})
		from = to.AddDate(0, 0, 1)
	}
	if len(out) == 0 {
		out = []window{{From: *since, To: now}}
	}
	return out
}

func (c *Client) fetchWindow(ctx context.Context, licenseKey string, w window) ([]model.EncounterRecord, error) {
	q := url.Values{}
	q.Set("maxAge", "1")
	if licenseKey != "" {
		q.Set("vf_License Key", licenseKey)
	}
	if !w.From.IsZero() {
		q.Set("vf_DOS", fmt.Sprintf("%s,%s", normalize.FormatMDY(w.From), normalize.FormatMDY(w.To)))
	}

	u := fmt.Sprintf("%s/api/%s/sites/%s/views/%s/data?%s",
		c.opts.ServerURL, apiVersion, c.siteLUID, c.opts.ViewID, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build export request: %w", err)
	}
	req.Header.Set("X-Tableau-Auth", c.authToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export view: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("export view: server returned %s: %s", resp.Status, body)
	}

	records, err := DecodeEncounters(resp.Body, c.log)
	if err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return records, nil
}
