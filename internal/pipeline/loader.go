package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
)

// StageRunner runs a single stage to completion.
type StageRunner interface {
	Assemble(ctx context.Context, st Stage) error
}

// Publisher announces a completed overlay to downstream consumers.
type Publisher interface {
	PublishOverlay(ctx context.Context, snap domain.OverlaySnapshot) error
}

// Loader runs overlay stages once, honoring each stage's dependency edge.
type Loader struct {
	runner    StageRunner
	stages    []Stage
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// NewLoader validates the stage graph and creates a Loader. A stage may only
// depend on a stage listed before it. publisher may be nil.
func NewLoader(runner StageRunner, stages []Stage, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) (*Loader, error) {
	seen := make(map[string]bool, len(stages))
	for _, st := range stages {
		if st.Name == "" || st.Group == nil || st.Renderer == nil {
			return nil, fmt.Errorf("stage %q is incomplete", st.Name)
		}
		if seen[st.Name] {
			return nil, fmt.Errorf("duplicate stage %q", st.Name)
		}
		if st.After != "" && !seen[st.After] {
			return nil, fmt.Errorf("stage %q depends on unknown or later stage %q", st.Name, st.After)
		}
		seen[st.Name] = true
	}
	return &Loader{
		runner:    runner,
		stages:    stages,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// CheckReadiness returns nil once every stage has completed, or an error
// describing why the service is not yet ready.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("overlays are still loading")
	}
	return nil
}

// Run starts every stage once its dependency has completed and waits for all
// of them. A stage whose dependency never completes before ctx is cancelled
// is never started. The returned error joins the stages' load errors; a
// degraded overlay is not fatal to the service.
func (l *Loader) Run(ctx context.Context) error {
	l.logger.Info("loader started", "stages", len(l.stages))
	l.metrics.LoaderRunning.Set(1)
	defer l.metrics.LoaderRunning.Set(0)

	done := make(map[string]chan struct{}, len(l.stages))
	for _, st := range l.stages {
		done[st.Name] = make(chan struct{})
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		errs    []error
		skipped atomic.Int32
	)
	for _, st := range l.stages {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer close(done[st.Name])

			if st.After != "" {
				select {
				case <-done[st.After]:
				case <-ctx.Done():
				}
			}
			if ctx.Err() != nil {
				skipped.Add(1)
				l.logger.Info("stage not started", "stage", st.Name, "after", st.After, "reason", ctx.Err())
				return
			}

			if err := l.runner.Assemble(ctx, st); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			l.publish(ctx, st)
		}()
	}
	wg.Wait()

	if skipped.Load() == 0 {
		l.ready.Store(true)
	}
	l.logger.Info("loader finished", "failed", len(errs), "skipped", skipped.Load())
	return errors.Join(errs...)
}

func (l *Loader) publish(ctx context.Context, st Stage) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.PublishOverlay(ctx, st.Group.Snapshot()); err != nil {
		l.metrics.OverlayEvents.WithLabelValues("error").Inc()
		l.logger.Warn("publish overlay event failed", "overlay", st.Name, "error", err)
		return
	}
	l.metrics.OverlayEvents.WithLabelValues("success").Inc()
}
