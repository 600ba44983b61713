package commands

import (
	"fmt"

	"github.com/strikelab/optionscan/internal/chaincache"
	"github.com/strikelab/optionscan/internal/executor"
	"github.com/strikelab/optionscan/internal/explore"
	"github.com/strikelab/optionscan/internal/pipeline"
	"github.com/strikelab/optionscan/internal/promote"
	"github.com/strikelab/optionscan/internal/provider"
	"github.com/strikelab/optionscan/internal/report"
	"github.com/strikelab/optionscan/internal/scanconfig"
	"github.com/strikelab/optionscan/pkg/config"
	"github.com/strikelab/optionscan/pkg/logger"
)

// scanStack bundles the wired scan pipeline shared by the run, api
// and scheduler commands
type scanStack struct {
	config       *config.Config
	params       *scanconfig.Config
	configHash   string
	cache        *chaincache.Store
	orchestrator *pipeline.Orchestrator
	writer       *report.Writer
	logger       *logger.Logger
}

// buildStack loads configuration and wires the full pipeline
func buildStack() (*scanStack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	paramsPath := cfg.Scan.ParamsPath
	if paramsFile != "" {
		paramsPath = paramsFile
	}
	params, err := scanconfig.LoadOrDefault(paramsPath)
	if err != nil {
		return nil, fmt.Errorf("load scan params: %w", err)
	}
	hash, err := scanconfig.Hash(params)
	if err != nil {
		return nil, fmt.Errorf("hash scan params: %w", err)
	}

	store, err := chaincache.New(cfg.Cache, log)
	if err != nil {
		return nil, fmt.Errorf("open chain cache: %w", err)
	}

	client := provider.NewHTTPClient(cfg.Provider, log)
	source := provider.NewCachedSource(client, store, log)

	preflight := explore.NewPreflight(source, log)
	sampler := explore.NewSampler(source, params, log)
	explorer := explore.NewExplorer(source, params, log)
	promoter := promote.NewEngine(params, log)

	// Request pacing lives in the provider's HTTP client, so the pool
	// itself runs unthrottled
	pool := executor.New(cfg.Scan.Workers, nil, log)

	orch := pipeline.New(preflight, sampler, explorer, promoter, pool, params, log)
	writer := report.NewWriter(cfg.Scan.OutputDir, log)

	log.WithFields(map[string]interface{}{
		"workers":     cfg.Scan.Workers,
		"cache":       store.Enabled(),
		"config_hash": hash,
	}).Info("Scan stack initialized")

	return &scanStack{
		config:       cfg,
		params:       params,
		configHash:   hash,
		cache:        store,
		orchestrator: orch,
		writer:       writer,
		logger:       log,
	}, nil
}
