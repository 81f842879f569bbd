// Package facade composes the page objects into business flows and applies
// the retry/logging/timing wrappers at the call site.
package facade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/tongthuyhang/manabie-auto-testing/internal/browser"
	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
	"github.com/tongthuyhang/manabie-auto-testing/internal/pages"
	"github.com/tongthuyhang/manabie-auto-testing/internal/wrap"
)

// Flaky UI steps get a short retry; Lightning re-renders asynchronously and
// a second attempt usually lands.
const (
	flowAttempts = 2
	flowDelay    = 2 * time.Second
)

// EventMasterFacade exposes the Event Master business flows.
type EventMasterFacade struct {
	events *pages.EventMasterPage
	logger arbor.ILogger

	mu      sync.Mutex
	timings []models.TimingRecord
}

// NewEventMasterFacade wires the page objects for one browser session.
func NewEventMasterFacade(session *browser.Session, baseURL, locatorDir string, logger arbor.ILogger) (*EventMasterFacade, error) {
	nav, err := pages.NewNavigation(session, baseURL, locatorDir, logger)
	if err != nil {
		return nil, err
	}
	events, err := pages.NewEventMasterPage(session, nav, locatorDir, logger)
	if err != nil {
		return nil, err
	}
	return &EventMasterFacade{events: events, logger: logger}, nil
}

// Timings returns the timing records collected so far.
func (f *EventMasterFacade) Timings() []models.TimingRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.TimingRecord, len(f.timings))
	copy(out, f.timings)
	return out
}

// RecordTiming implements wrap.TimingSink.
func (f *EventMasterFacade) RecordTiming(name string, elapsed time.Duration, err error) {
	record := models.TimingRecord{
		Name:        name,
		CompletedAt: time.Now(),
		TotalMs:     elapsed.Milliseconds(),
		Status:      models.StatusPassed,
	}
	record.StartedAt = record.CompletedAt.Add(-elapsed)
	if err != nil {
		record.Status = models.StatusFailed
		record.Error = err.Error()
	}

	f.mu.Lock()
	f.timings = append(f.timings, record)
	f.mu.Unlock()
}

// run composes the standard wrapper stack around a flow step.
func (f *EventMasterFacade) run(ctx context.Context, name string, op wrap.Operation) error {
	return wrap.Compose(op,
		wrap.WithLogging(f.logger, name),
		wrap.WithTiming(f, name),
		wrap.WithRetry(flowAttempts, flowDelay),
	)(ctx)
}

// CreateEvent creates an Event Master record and verifies the save toast.
func (f *EventMasterFacade) CreateEvent(ctx context.Context, fields pages.EventMasterFields) error {
	return f.run(ctx, "create_event", func(ctx context.Context) error {
		if err := f.events.OpenList(); err != nil {
			return err
		}
		toast, err := f.events.Create(fields)
		if err != nil {
			return err
		}
		f.logger.Debug().Str("toast", toast).Msg("Create confirmed")
		return nil
	})
}

// FindEvent searches the list view and fails when no row matches.
func (f *EventMasterFacade) FindEvent(ctx context.Context, term string) error {
	return f.run(ctx, "find_event", func(ctx context.Context) error {
		if err := f.events.OpenList(); err != nil {
			return err
		}
		if err := f.events.Search(term); err != nil {
			return err
		}
		if !f.events.HasResults() {
			return fmt.Errorf("no Event Master record matches %q", term)
		}
		return nil
	})
}

// EditEvent finds a record by search term and applies new field values.
func (f *EventMasterFacade) EditEvent(ctx context.Context, term string, fields pages.EventMasterFields) error {
	return f.run(ctx, "edit_event", func(ctx context.Context) error {
		if err := f.events.OpenList(); err != nil {
			return err
		}
		if err := f.events.Search(term); err != nil {
			return err
		}
		if !f.events.HasResults() {
			return fmt.Errorf("no Event Master record matches %q", term)
		}
		toast, err := f.events.Edit(fields)
		if err != nil {
			return err
		}
		f.logger.Debug().Str("toast", toast).Msg("Edit confirmed")
		return nil
	})
}

// DeleteEvent finds a record by search term and deletes it.
func (f *EventMasterFacade) DeleteEvent(ctx context.Context, term string) error {
	return f.run(ctx, "delete_event", func(ctx context.Context) error {
		if err := f.events.OpenList(); err != nil {
			return err
		}
		if err := f.events.Search(term); err != nil {
			return err
		}
		if !f.events.HasResults() {
			return fmt.Errorf("no Event Master record matches %q", term)
		}
		toast, err := f.events.Delete()
		if err != nil {
			return err
		}
		f.logger.Debug().Str("toast", toast).Msg("Delete confirmed")
		return nil
	})
}

// VerifyEventAbsent searches and succeeds only when no row matches.
func (f *EventMasterFacade) VerifyEventAbsent(ctx context.Context, term string) error {
	return f.run(ctx, "verify_event_absent", func(ctx context.Context) error {
		if err := f.events.OpenList(); err != nil {
			return err
		}
		if err := f.events.Search(term); err != nil {
			return err
		}
		if f.events.HasResults() {
			return fmt.Errorf("Event Master record %q still present after delete", term)
		}
		return nil
	})
}
