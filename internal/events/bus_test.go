package events

import (
	"testing"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

func TestPublishDispatchesInRegistrationOrder(t *testing.T) {
	bus := New(nil)

	var order []string
	bus.Subscribe(func(interfaces.Event) { order = append(order, "first") })
	bus.Subscribe(func(interfaces.Event) { order = append(order, "second") })

	faults := bus.Publish(interfaces.Event{Kind: interfaces.EventRunStart})
	if len(faults) != 0 {
		t.Fatalf("Publish() faults = %v, want none", faults)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("Publish() dispatch order = %v", order)
	}
}

func TestPublishWithNoListeners(t *testing.T) {
	bus := New(nil)
	if faults := bus.Publish(interfaces.Event{Kind: interfaces.EventRunEnd}); len(faults) != 0 {
		t.Fatalf("Publish() faults = %v, want none", faults)
	}
}

func TestPublishIsolatesPanickingListener(t *testing.T) {
	bus := New(nil)

	var survived bool
	bus.Subscribe(func(interfaces.Event) { panic("listener exploded") })
	bus.Subscribe(func(interfaces.Event) { survived = true })

	faults := bus.Publish(interfaces.Event{Kind: interfaces.EventFileParse, Path: "a.md"})
	if !survived {
		t.Fatal("Publish() should keep dispatching after a listener panic")
	}
	if len(faults) != 1 {
		t.Fatalf("Publish() faults = %d, want 1", len(faults))
	}

	fault := faults[0]
	if fault.Code != interfaces.CodeListenerFailed {
		t.Fatalf("fault code = %q, want %q", fault.Code, interfaces.CodeListenerFailed)
	}
	if fault.Validator != interfaces.EngineValidatorKey {
		t.Fatalf("fault validator = %q, want %q", fault.Validator, interfaces.EngineValidatorKey)
	}
	if fault.Severity != interfaces.SeverityWarning {
		t.Fatalf("fault severity = %q, want warning", fault.Severity)
	}
}

func TestSubscribeIgnoresNil(t *testing.T) {
	bus := New(nil)
	bus.Subscribe(nil)
	if faults := bus.Publish(interfaces.Event{Kind: interfaces.EventRunStart}); len(faults) != 0 {
		t.Fatalf("Publish() faults = %v, want none", faults)
	}
}
