// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/xynehq/vespa-go/internal/logging"
	"github.com/xynehq/vespa-go/internal/observability"
	"github.com/xynehq/vespa-go/search"
	"github.com/xynehq/vespa-go/vespa"
)

// Deps bundles the wired collaborators of one command invocation.
type Deps struct {
	Config  vespa.Config
	Logger  *slog.Logger
	Client  *vespa.Client
	Service *search.Service

	obs *observability.Server
}

// setup loads configuration, builds the transport and service, and
// optionally starts the observability listener.
func setup(cmd *cobra.Command) (*Deps, error) {
	cfg, err := vespa.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if len(cfg.SchemaSources) == 0 {
		cfg.SchemaSources = search.DefaultSchemaSources()
	}

	logger := logging.Setup("vespaquery", version, logFormat, cfg.IsDebugMode, nil)

	opts := []vespa.Option{vespa.WithLogger(logger)}
	var obs *observability.Server
	if metricsAddr != "" {
		obs = observability.NewServer(metricsAddr, nil)
		if _, err := obs.Start(); err != nil {
			return nil, err
		}
		opts = append(opts, vespa.WithMetrics(vespa.NewMetrics(obs.Registry())))
	}

	client := vespa.NewClient(cfg, opts...)
	recorder := search.NewHistoryRecorder(client, cfg.UserQueryUpdateInterval, logger)
	svc := search.NewService(client, cfg,
		search.WithServiceLogger(logger),
		search.WithHistory(recorder),
	)

	return &Deps{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Service: svc,
		obs:     obs,
	}, nil
}

// Close stops anything setup started.
func (d *Deps) Close(ctx context.Context) {
	if d.obs != nil {
		_ = d.obs.Stop(ctx)
	}
}
