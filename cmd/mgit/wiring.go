// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net/http"

	"github.com/mgit-io/mgit/internal/app"
	"github.com/mgit-io/mgit/internal/engine"
	"github.com/mgit-io/mgit/internal/gitexec"
	"github.com/mgit-io/mgit/internal/logger"
	"github.com/mgit-io/mgit/internal/metrics"
	"github.com/mgit-io/mgit/internal/provider"
	"github.com/mgit-io/mgit/internal/provider/azuredevops"
	"github.com/mgit-io/mgit/internal/provider/bitbucket"
	"github.com/mgit-io/mgit/internal/provider/github"
	"github.com/mgit-io/mgit/internal/resolver"
	"github.com/mgit-io/mgit/internal/syncop"
)

// providerConstructors is the type→Constructor table every registry is
// built with: github, azuredevops, and bitbucket are the only provider
// types config.ProviderConfig.Type accepts.
func providerConstructors() map[string]provider.Constructor {
	return map[string]provider.Constructor{
		"github":      github.New,
		"azuredevops": azuredevops.New,
		"bitbucket":   bitbucket.New,
	}
}

func buildRegistry(ctx *app.AppContext) *provider.Registry {
	return provider.NewRegistry(ctx.Config, ctx.Logger, providerConstructors())
}

func buildResolver(ctx *app.AppContext) *resolver.Resolver {
	return resolver.New(buildRegistry(ctx), ctx.Config, ctx.Logger)
}

// buildOrchestrator assembles C6 (resolver), C8 (git executor), and C9
// (engine) into a ready-to-run C10 orchestrator.
func buildOrchestrator(ctx *app.AppContext) (*syncop.Orchestrator, error) {
	exec, err := gitexec.New(ctx.Logger, gitexec.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("locate git executable: %w", err)
	}

	reg := buildRegistry(ctx)
	res := resolver.New(reg, ctx.Config, ctx.Logger)
	eng := engine.New(exec, reg, ctx.Logger)

	return syncop.New(res, exec, eng, ctx.Logger), nil
}

// serveMetrics starts the Prometheus /metrics endpoint in the background.
// A listen failure is logged, not fatal: mgit's core function does not
// depend on metrics being reachable.
func serveMetrics(log *logger.Logger, addr string, rec *metrics.Recorder) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server stopped", "error", err, "addr", addr)
		}
	}()
}
