// Package hook implements the post-write hook: a reload service call after
// every mutation, plus entity registry cleanup after deletes.
package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/autoedit/internal/editor"
)

// ServiceReload is the service invoked on the domain after every write.
const ServiceReload = "reload"

// ServiceCaller invokes a named service on a domain.
type ServiceCaller interface {
	Call(ctx context.Context, domain, service string) error
}

// Registry maps (domain, platform, unique id) to entity ids.
type Registry interface {
	Lookup(ctx context.Context, domain, platform, uniqueID string) (string, bool, error)
	Remove(ctx context.Context, entityID string) error
}

// Reloader is an editor.Hook.
type Reloader struct {
	domain   string
	services ServiceCaller
	registry Registry
	logger   *slog.Logger
}

var _ editor.Hook = (*Reloader)(nil)

// New returns a Reloader for domain. registry may be nil, in which case
// deletes only trigger the reload. A nil logger means slog.Default().
func New(domain string, services ServiceCaller, registry Registry, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{
		domain:   domain,
		services: services,
		registry: registry,
		logger:   logger,
	}
}

// OnWrite requests a reload and, for deletes, removes the registry entry
// whose platform and domain are both the Reloader's domain.
//
// A failed reload does not skip the registry step. All failures are joined.
func (r *Reloader) OnWrite(ctx context.Context, action editor.Action, id string) error {
	var errs []error

	if err := r.services.Call(ctx, r.domain, ServiceReload); err != nil {
		errs = append(errs, fmt.Errorf("call %s.%s: %w", r.domain, ServiceReload, err))
	} else {
		r.logger.Debug("reload requested", "domain", r.domain, "action", action, "id", id)
	}

	if action == editor.ActionDelete && r.registry != nil {
		if err := r.unregister(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Reloader) unregister(ctx context.Context, id string) error {
	entityID, ok, err := r.registry.Lookup(ctx, r.domain, r.domain, id)
	if err != nil {
		return fmt.Errorf("lookup entity for %q: %w", id, err)
	}
	if !ok {
		return nil
	}
	if err := r.registry.Remove(ctx, entityID); err != nil {
		return fmt.Errorf("remove entity %s: %w", entityID, err)
	}
	r.logger.Debug("entity removed", "entity_id", entityID, "id", id)
	return nil
}
