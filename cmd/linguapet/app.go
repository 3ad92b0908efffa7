package main

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/linguapet/ai/brain"
	"github.com/hrygo/linguapet/ai/brain/ruleset"
	"github.com/hrygo/linguapet/ai/metrics"
	"github.com/hrygo/linguapet/internal/profile"
	"github.com/hrygo/linguapet/store"
	"github.com/hrygo/linguapet/store/db"
)

// app bundles the pieces every subcommand needs.
type app struct {
	profile  *profile.Profile
	store    *store.Store
	engine   *brain.Engine
	exporter *metrics.PrometheusExporter
}

// newApp opens the store, loads custom rules and builds the engine.
func newApp(ctx context.Context, p *profile.Profile) (*app, error) {
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}

	storeInstance := store.New(dbDriver, p)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return nil, errors.Wrap(err, "failed to migrate")
	}

	opts := []brain.Option{brain.WithLogger(slog.Default())}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	opts = append(opts, brain.WithRand(rand.New(rand.NewSource(seed))))

	if p.RulesFile != "" {
		rules, err := ruleset.LoadFile(p.RulesFile)
		if err != nil {
			_ = storeInstance.Close()
			return nil, err
		}
		slog.Info("loaded custom rules", "file", p.RulesFile, "count", len(rules))
		opts = append(opts, brain.WithRules(rules...))
	}

	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	opts = append(opts, brain.WithObserver(exporter))

	return &app{
		profile:  p,
		store:    storeInstance,
		engine:   brain.New(storeInstance, opts...),
		exporter: exporter,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
}
