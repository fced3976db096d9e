// Package events implements the synchronous lifecycle event bus the
// orchestrator publishes through.
package events

import (
	"fmt"

	"github.com/goliatone/go-storylint/internal/logging"
	"github.com/goliatone/go-storylint/pkg/interfaces"
)

// Bus delivers lifecycle events to zero or more observers. Listeners run
// synchronously in registration order; there is no back-pressure, so they
// are expected to be cheap.
type Bus struct {
	listeners []interfaces.EventListener
	logger    interfaces.Logger
}

// New constructs an empty bus. A nil logger falls back to the no-op logger.
func New(logger interfaces.Logger) *Bus {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Bus{logger: logger}
}

// Subscribe appends a listener. Registration order is dispatch order.
func (b *Bus) Subscribe(listener interfaces.EventListener) {
	if listener == nil {
		return
	}
	b.listeners = append(b.listeners, listener)
}

// Publish dispatches the event to every listener. A listener that panics is
// caught and reported as a BUS001 warning finding; subsequent listeners still
// run. The caller folds the returned findings into the run result.
func (b *Bus) Publish(event interfaces.Event) []interfaces.Finding {
	var faults []interfaces.Finding
	for _, listener := range b.listeners {
		if fault := b.dispatch(listener, event); fault != nil {
			faults = append(faults, *fault)
		}
	}
	return faults
}

func (b *Bus) dispatch(listener interfaces.EventListener, event interfaces.Event) (fault *interfaces.Finding) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("events.listener.panic", "event", string(event.Kind), "error", r)
			fault = &interfaces.Finding{
				Validator: interfaces.EngineValidatorKey,
				Code:      interfaces.CodeListenerFailed,
				Severity:  interfaces.SeverityWarning,
				Message:   fmt.Sprintf("event listener failed on %s: %v", event.Kind, r),
			}
		}
	}()
	listener(event)
	return nil
}
