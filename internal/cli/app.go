package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/autoedit/internal/bus"
	"github.com/roach88/autoedit/internal/config"
	"github.com/roach88/autoedit/internal/document"
	"github.com/roach88/autoedit/internal/editor"
	"github.com/roach88/autoedit/internal/hook"
	"github.com/roach88/autoedit/internal/schema"
	"github.com/roach88/autoedit/internal/store"
)

// loadConfig reads --config (or the defaults) and applies flag overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if o.Document != "" {
		cfg.Document = o.Document
	}
	if o.Database != "" {
		cfg.Traces.Database = o.Database
	}
	if o.RedisURL != "" {
		cfg.Redis.URL = o.RedisURL
	}
	if o.Instance != "" {
		cfg.Redis.Instance = o.Instance
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openBus connects to the configured service bus and checks it is reachable.
func openBus(ctx context.Context, cfg *config.Config) (*bus.Client, error) {
	if !cfg.BusEnabled() {
		return nil, fmt.Errorf("no service bus configured (set redis.url or --redis)")
	}
	client, err := bus.NewClientFromURL(cfg.Redis.URL, cfg.Redis.Instance)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Redis.URL, err)
	}
	return client, nil
}

// openEditor wires the document, validator and reload hook. The returned
// close function releases the bus connection, if any.
func openEditor(cfg *config.Config, logger *slog.Logger) (*editor.Editor, func(), error) {
	opts := []editor.Option{editor.WithLogger(logger)}
	closeFn := func() {}

	if cfg.ShouldValidate() {
		validator, err := schema.New()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, editor.WithValidator(validator))
	}

	if cfg.BusEnabled() {
		client, err := bus.NewClientFromURL(cfg.Redis.URL, cfg.Redis.Instance)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, editor.WithHook(hook.New(cfg.Domain, client, client, logger)))
		closeFn = func() {
			if err := client.Close(); err != nil {
				logger.Error("error closing service bus", "error", err)
			}
		}
	} else {
		logger.Debug("service bus disabled, reloads will not be requested")
	}

	doc := document.NewFile(cfg.Document)
	logger.Debug("opened document", "path", doc.Path())

	return editor.New(doc, opts...), closeFn, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(cfg.Traces.Database, store.WithRetention(cfg.Traces.StoredTraces))
}
