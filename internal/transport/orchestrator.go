package transport

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Orchestrator runs a fixed set of Services concurrently and stops all of
// them if any one fails or ctx is cancelled, mirroring the "one process,
// many ports" model of spec.md §2.
type Orchestrator struct {
	services []*Service
}

// NewOrchestrator collects the services to run. Services with Port == 0
// are dropped by the caller before constructing the orchestrator.
func NewOrchestrator(services ...*Service) *Orchestrator {
	return &Orchestrator{services: services}
}

// Run blocks until ctx is cancelled or any service's listener fails.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range o.services {
		svc := svc
		g.Go(func() error {
			return svc.Run(gctx)
		})
	}
	return g.Wait()
}
