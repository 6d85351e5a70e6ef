// Package extract fetches remote JSON-stat indicators and flattens them into
// (Country, Year, Value) records.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/leapstack-labs/aoc/internal/jsonstat"
	"github.com/leapstack-labs/aoc/pkg/core"
)

// Default dimension ids used by the Eurostat dissemination API.
const (
	DefaultGeoDimension  = "geo"
	DefaultTimeDimension = "time"
)

// Naming selects how Country and Year are reported.
type Naming string

// Available naming schemes.
const (
	// NamingCode keeps the category codes ("AT", "2019").
	NamingCode Naming = "code"
	// NamingLabel uses the category labels ("Austria") where the cube has them.
	NamingLabel Naming = "label"
)

// Namings lists the accepted naming schemes.
var Namings = []Naming{NamingCode, NamingLabel}

// ParseNaming converts a string to a Naming. The empty string is NamingCode.
func ParseNaming(s string) (Naming, error) {
	switch Naming(strings.ToLower(strings.TrimSpace(s))) {
	case "", NamingCode:
		return NamingCode, nil
	case NamingLabel:
		return NamingLabel, nil
	default:
		return "", fmt.Errorf("unknown naming %q (want one of %v)", s, Namings)
	}
}

// DefaultUserAgent identifies the extractor to the remote API.
const DefaultUserAgent = "aoc/1.0 (+https://github.com/leapstack-labs/aoc)"

// RequestError reports a failed request to a remote endpoint.
// It is the only error class the extractor wraps; decode failures are
// returned as ordinary errors.
type RequestError struct {
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("can't get data from %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Config holds extractor configuration.
type Config struct {
	// Client performs the request. Defaults to a client with no timeout.
	Client *http.Client
	// UserAgent is sent with every request.
	UserAgent string
	// GeoDimension is the dimension renamed to Country.
	GeoDimension string
	// TimeDimension is the dimension renamed to Year.
	TimeDimension string
	// Naming reports codes or labels. Defaults to NamingCode.
	Naming Naming
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Extractor retrieves indicator tables.
type Extractor struct {
	client    *http.Client
	userAgent string
	geoDim    string
	timeDim   string
	naming    Naming
	logger    *slog.Logger
}

// New creates an extractor, applying defaults for unset fields.
func New(cfg Config) *Extractor {
	e := &Extractor{
		client:    cfg.Client,
		userAgent: cfg.UserAgent,
		geoDim:    cfg.GeoDimension,
		timeDim:   cfg.TimeDimension,
		naming:    cfg.Naming,
		logger:    cfg.Logger,
	}
	if e.client == nil {
		e.client = &http.Client{}
	}
	if e.userAgent == "" {
		e.userAgent = DefaultUserAgent
	}
	if e.geoDim == "" {
		e.geoDim = DefaultGeoDimension
	}
	if e.timeDim == "" {
		e.timeDim = DefaultTimeDimension
	}
	if e.naming != NamingLabel {
		e.naming = NamingCode
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Extract performs a single GET against url and returns one record per cube
// cell. Missing cells carry core.Sentinel with Filled set.
func (e *Extractor) Extract(ctx context.Context, url string) ([]core.IndicatorRecord, error) {
	e.logger.Debug("fetching indicator", "url", url)

	ds, err := e.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	records, err := e.flatten(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to flatten %s: %w", url, err)
	}

	e.logger.Debug("indicator extracted",
		"url", url,
		"rows", len(records),
		"present", len(ds.Present()),
		"label", ds.Label,
	)
	return records, nil
}

func (e *Extractor) fetch(ctx context.Context, url string) (*jsonstat.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{URL: url, Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	}

	ds, err := jsonstat.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	return ds, nil
}

// flatten keeps only the geo and time coordinates of each cell.
func (e *Extractor) flatten(ds *jsonstat.Dataset) ([]core.IndicatorRecord, error) {
	geo := ds.DimIndex(e.geoDim)
	if geo < 0 {
		return nil, fmt.Errorf("dataset has no %q dimension (have %v)", e.geoDim, ds.ID)
	}
	tm := ds.DimIndex(e.timeDim)
	if tm < 0 {
		return nil, fmt.Errorf("dataset has no %q dimension (have %v)", e.timeDim, ds.ID)
	}

	geoName := e.namer(ds, e.geoDim)
	timeName := e.namer(ds, e.timeDim)

	obs := ds.Observations()
	records := make([]core.IndicatorRecord, 0, len(obs))
	for _, o := range obs {
		r := core.IndicatorRecord{
			Country: geoName(o.Codes[geo]),
			Year:    timeName(o.Codes[tm]),
			Value:   o.Value,
		}
		if o.Missing {
			r.Value = core.Sentinel
			r.Filled = true
		}
		records = append(records, r)
	}
	return records, nil
}

// namer returns the function mapping a category code of dim to its reported
// name. Codes without a label are reported as is.
func (e *Extractor) namer(ds *jsonstat.Dataset, dim string) func(string) string {
	d := ds.Dimensions[dim]
	if e.naming != NamingLabel || d == nil || len(d.Labels) == 0 {
		return func(code string) string { return code }
	}
	return func(code string) string {
		if label := d.Labels[code]; label != "" {
			return label
		}
		return code
	}
}
