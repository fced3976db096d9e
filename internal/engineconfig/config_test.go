package engineconfig

import (
	"strings"
	"testing"

	"github.com/goliatone/go-storylint/pkg/interfaces"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.Include = []string{"**/*.md"}
	cfg.Normalize()
	return cfg
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRequiresInclude(t *testing.T) {
	cfg := validConfig(t)
	cfg.Include = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject an empty include list")
	}

	cfg.Include = []string{"  "}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject blank include patterns")
	}
}

func TestValidateRequiresAbsoluteRoot(t *testing.T) {
	cfg := validConfig(t)
	cfg.RootDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject a missing root dir")
	}

	cfg.RootDir = "relative/path"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject a relative root dir")
	}
}

func TestValidateRejectsBadSeverities(t *testing.T) {
	cfg := validConfig(t)
	cfg.MinSeverity = "fatal"
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject an unknown minSeverity")
	}

	cfg = validConfig(t)
	cfg.Validators["link-graph"] = ValidatorConfig{Severity: "critical"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should reject an unknown validator severity")
	}
	if !IsConfigError(err) {
		t.Fatalf("IsConfigError(%v) = false, want true", err)
	}

	cfg = validConfig(t)
	cfg.Validators["link-graph"] = ValidatorConfig{
		RuleSeverities: map[string]interfaces.Severity{"LINK001": "loud"},
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should reject an unknown rule severity")
	}
	if !strings.Contains(err.Error(), "LINK001") {
		t.Fatalf("Validate() error = %v, want offending rule named", err)
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	cfg := Config{}
	cfg.Normalize()
	if cfg.MinSeverity != interfaces.SeverityInfo {
		t.Fatalf("Normalize() minSeverity = %q, want info", cfg.MinSeverity)
	}
	if cfg.Validators == nil {
		t.Fatal("Normalize() should initialize the validator map")
	}
}

func TestIsEnabledDefaultsTrue(t *testing.T) {
	var vc ValidatorConfig
	if !vc.IsEnabled() {
		t.Fatal("IsEnabled() = false for zero value, want true")
	}

	off := false
	vc.Enabled = &off
	if vc.IsEnabled() {
		t.Fatal("IsEnabled() = true with Enabled=false")
	}
}

func TestWrapConfigErrorIsIdempotent(t *testing.T) {
	wrapped := WrapConfigError(ErrIncludeRequired)
	if wrapped == nil {
		t.Fatal("WrapConfigError() = nil")
	}
	if !IsConfigError(wrapped) {
		t.Fatalf("IsConfigError(%v) = false, want true", wrapped)
	}
	if again := WrapConfigError(wrapped); again != wrapped {
		t.Fatal("WrapConfigError() should pass through already-wrapped errors")
	}
	if WrapConfigError(nil) != nil {
		t.Fatal("WrapConfigError(nil) should stay nil")
	}
}
