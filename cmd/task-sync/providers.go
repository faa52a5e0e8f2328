package main

import (
	"context"
	"fmt"

	"github.com/salaamdev/task-sync/internal/authflow"
	"github.com/salaamdev/task-sync/internal/config"
	"github.com/salaamdev/task-sync/internal/engine"
	"github.com/salaamdev/task-sync/internal/gtasks"
	"github.com/salaamdev/task-sync/internal/mstodo"
	"github.com/salaamdev/task-sync/internal/provider"
	"github.com/salaamdev/task-sync/internal/ratelimit"
)

// configuredProviders returns the provider order from config. The first
// entry is the primary in one-way modes.
func configuredProviders() []string {
	names := config.GetStringSlice("providers")
	if len(names) == 0 {
		names = []string{gtasks.ProviderName, mstodo.ProviderName}
	}
	return names
}

// buildProvider wires one named provider with its stored token.
func buildProvider(ctx context.Context, dir, name string, creds config.Credentials, limiter *ratelimit.Registry) (provider.Provider, error) {
	pc, err := creds.ForProvider(name)
	if err != nil {
		return nil, err
	}
	tokens, err := authflow.TokenSource(ctx, dir, name, authflow.Credentials{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
	})
	if err != nil {
		return nil, err
	}

	switch name {
	case gtasks.ProviderName:
		return gtasks.New(ctx, tokens, limiter)
	case mstodo.ProviderName:
		return mstodo.New(tokens, limiter), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// buildEngine assembles the engine from config, credentials, and stored
// tokens.
func buildEngine(ctx context.Context, cfg engine.Config) (*engine.Engine, error) {
	dir := config.StateDir()
	creds, err := config.LoadCredentials(dir)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.NewRegistry(config.GetFloat64("requests-per-second"))

	var providers []provider.Provider
	for _, name := range configuredProviders() {
		p, err := buildProvider(ctx, dir, name, creds, limiter)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", name, err)
		}
		providers = append(providers, p)
	}

	cfg.StateDir = dir
	return engine.New(providers, cfg)
}
