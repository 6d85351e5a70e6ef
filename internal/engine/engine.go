// Package engine runs the AOC pipeline: extract the two indicators, load GDP,
// join them and pivot the result.
package engine

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/aoc/internal/extract"
	"github.com/leapstack-labs/aoc/internal/transform"
)

// Engine orchestrates one pipeline run.
type Engine struct {
	ictURL  string
	ccsURL  string
	gdpPath string
	mode    transform.Mode

	extractor *extract.Extractor

	// Structured logger
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// ICTURL is the JSON-stat endpoint of the ICT indicator
	ICTURL string
	// CCSURL is the JSON-stat endpoint of the CCS indicator (the join anchor)
	CCSURL string
	// GDPPath is the pipe-delimited GDP file
	GDPPath string
	// Mode selects the aggregation applied after the join
	Mode transform.Mode

	// HTTPClient performs indicator requests (optional)
	HTTPClient *http.Client
	// UserAgent is sent with indicator requests (optional)
	UserAgent string
	// GeoDimension and TimeDimension override the cube dimension ids (optional)
	GeoDimension  string
	TimeDimension string
	// Naming reports Country and Year as codes or labels (optional)
	Naming extract.Naming

	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine.
func New(cfg Config) (*Engine, error) {
	// Initialize logger (use discard handler if nil)
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch {
	case cfg.ICTURL == "":
		return nil, errors.New("ICT URL is required")
	case cfg.CCSURL == "":
		return nil, errors.New("CCS URL is required")
	case cfg.GDPPath == "":
		return nil, errors.New("GDP path is required")
	}

	mode, err := transform.ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}

	naming, err := extract.ParseNaming(string(cfg.Naming))
	if err != nil {
		return nil, err
	}

	logger.Debug("initializing engine", "ict_url", cfg.ICTURL, "ccs_url", cfg.CCSURL, "gdp_path", cfg.GDPPath, "mode", mode, "naming", naming)

	return &Engine{
		ictURL:  cfg.ICTURL,
		ccsURL:  cfg.CCSURL,
		gdpPath: cfg.GDPPath,
		mode:    mode,
		extractor: extract.New(extract.Config{
			Client:        cfg.HTTPClient,
			UserAgent:     cfg.UserAgent,
			GeoDimension:  cfg.GeoDimension,
			TimeDimension: cfg.TimeDimension,
			Naming:        naming,
			Logger:        logger,
		}),
		logger: logger,
	}, nil
}

// Mode returns the aggregation mode the engine runs with.
func (e *Engine) Mode() transform.Mode { return e.mode }
