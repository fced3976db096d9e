package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type testMessage struct {
	fail bool
}

func (testMessage) Type() string { return "storylint.test" }

func (m testMessage) Validate() error {
	if m.fail {
		return errors.New("message rejected")
	}
	return nil
}

func TestExecuteRunsWrappedFunction(t *testing.T) {
	ran := false
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		ran = true
		return nil
	})

	if err := handler.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !ran {
		t.Fatal("Execute() never invoked the wrapped function")
	}
}

func TestExecuteValidatesMessageFirst(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		t.Error("the wrapped function must not run for an invalid message")
		return nil
	})

	err := handler.Execute(context.Background(), testMessage{fail: true})
	if err == nil {
		t.Fatal("Execute() should surface the validation failure")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("Execute() error = %v, want validation category", err)
	}
}

func TestExecuteWrapsExecutionFailure(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		return errors.New("downstream failure")
	})

	err := handler.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("Execute() should surface the execution failure")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("Execute() error = %v, want command category", err)
	}
}

func TestExecuteHonorsCancelledContext(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		t.Error("the wrapped function must not run under a cancelled context")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := handler.Execute(ctx, testMessage{}); err == nil {
		t.Fatal("Execute() should fail under a cancelled context")
	}
}

func TestExecuteAppliesTimeout(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	if err := handler.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("Execute() should time out")
	}
}

func TestExecuteNilContextFallsBack(t *testing.T) {
	handler := NewHandler(func(ctx context.Context, msg testMessage) error {
		if ctx == nil {
			return errors.New("nil context reached the handler")
		}
		return nil
	})

	//nolint:staticcheck // exercising the nil-context fallback on purpose
	if err := handler.Execute(nil, testMessage{}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}
