// Package validation checks validator option payloads against the JSON
// schemas their descriptors declare.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrSchemaInvalid marks a declared options schema that does not compile.
	ErrSchemaInvalid = errors.New("options schema invalid")
	// ErrOptionsInvalid marks option payloads rejected by the schema.
	ErrOptionsInvalid = errors.New("options validation failed")
)

// Issue captures a single validation failure.
type Issue struct {
	Location string
	Message  string
}

// OptionsValidationError surfaces schema issues with their JSON locations.
type OptionsValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *OptionsValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrOptionsInvalid.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *OptionsValidationError) Unwrap() error { return ErrOptionsInvalid }

// ValidateOptions checks an opaque option payload against a JSON schema
// expressed as a Go map. A nil schema accepts everything.
func ValidateOptions(schema map[string]any, options map[string]any) error {
	if len(schema) == 0 {
		return nil
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}

	if options == nil {
		options = map[string]any{}
	}
	payload, err := roundTripJSON(options)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOptionsInvalid, err)
	}

	if err := compiled.Validate(payload); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &OptionsValidationError{Issues: collectIssues(validationErr), Cause: err}
		}
		return &OptionsValidationError{Cause: err}
	}
	return nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("options.json", strings.NewReader(string(encoded))); err != nil {
		return nil, err
	}
	return compiler.Compile("options.json")
}

// roundTripJSON normalizes Go-native values (ints from YAML decoding, etc.)
// into the encoding/json value space the schema validator expects.
func roundTripJSON(options map[string]any) (any, error) {
	encoded, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return []Issue{{Location: err.InstanceLocation, Message: err.Message}}
	}
	var issues []Issue
	for _, cause := range err.Causes {
		issues = append(issues, collectIssues(cause)...)
	}
	return issues
}
