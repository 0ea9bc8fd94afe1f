package wunderground

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"pwsarchive/internal/obs"
)

const (
	// DefaultBaseURL is the public daily-history endpoint for personal
	// weather stations.
	DefaultBaseURL = "http://www.wunderground.com/weatherstation/WXDailyHistory.asp"

	// DefaultUserAgent is sent with every request. The endpoint serves
	// library clients differently, so a conventional browser
	// identification is spoofed.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 6.1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/41.0.2228.0 Safari/537.36"
)

var (
	// ErrConnection marks failures reaching the source: transport
	// errors, unreadable responses, and non-2xx statuses. Rate
	// limiting surfaces here too. Collection retries these.
	ErrConnection = errors.New("connection failure")

	// ErrParse marks payloads that cannot be read as delimited records
	// after repair. Collection treats these as fatal.
	ErrParse = errors.New("malformed history payload")
)

// Client fetches one day of observations per call. Fields may be
// overridden before first use; tests point BaseURL at a double.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

// NewClient returns a Client against the public endpoint. A nil
// httpClient gets a fresh client with no timeout; the endpoint can be
// slow and the retry policy around FetchDay is the only failure
// handling.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		HTTPClient: httpClient,
		BaseURL:    DefaultBaseURL,
		UserAgent:  DefaultUserAgent,
	}
}

// FetchDay retrieves, repairs, and parses the observation records for
// one station and one calendar date. The station id passes through
// unvalidated. Rows keep the source's order.
func (c *Client) FetchDay(ctx context.Context, station string, day time.Time) (*obs.Table, error) {
	values := url.Values{}
	values.Set("ID", station)
	values.Set("day", strconv.Itoa(day.Day()))
	values.Set("month", strconv.Itoa(int(day.Month())))
	values.Set("year", strconv.Itoa(day.Year()))
	values.Set("graphspan", "day")
	values.Set("format", "1")

	u := fmt.Sprintf("%s?%s", c.BaseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	log.Debugf("fetching %s history for %s", station, day.Format("2006-01-02"))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrConnection, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrConnection, err)
	}

	return ParseDaily(Repair(string(body)))
}
