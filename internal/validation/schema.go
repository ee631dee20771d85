// Package validation checks decoded JSON documents against JSON Schema
// (draft 2020-12) and reports failures by JSON pointer.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// Issue is one failed keyword, located by JSON pointer ("" is the root).
type Issue struct {
	Location string
	Message  string
}

func (i Issue) String() string {
	location := "#" + strings.TrimPrefix(strings.TrimSpace(i.Location), "#")
	if i.Message == "" {
		return location
	}
	return location + ": " + i.Message
}

// DocumentError lists every issue of a rejected document. It matches
// ErrSchemaValidation with errors.Is.
type DocumentError struct {
	Issues []Issue
}

func (e *DocumentError) Error() string {
	if len(e.Issues) == 0 {
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

func (e *DocumentError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues returns the issues carried by err. Errors that are not validation
// failures come back as a single root issue.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var docErr *DocumentError
	if errors.As(err, &docErr) {
		return docErr.Issues
	}
	var schemaErr *jsonschema.ValidationError
	if errors.As(err, &schemaErr) {
		return leafIssues(schemaErr)
	}
	return []Issue{{Message: err.Error()}}
}

// Validator holds a compiled schema. A nil Validator accepts everything.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile compiles schema under the resource name.
func Compile(name string, schema map[string]any) (*Validator, error) {
	if strings.TrimSpace(name) == "" {
		name = "schema.json"
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{schema: compiled}, nil
}

// MustCompile is Compile for package-level schema literals.
func MustCompile(name string, schema map[string]any) *Validator {
	v, err := Compile(name, schema)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a document decoded by encoding/json.
func (v *Validator) Validate(document any) error {
	if v == nil || v.schema == nil {
		return nil
	}
	if err := v.schema.Validate(document); err != nil {
		return &DocumentError{Issues: Issues(err)}
	}
	return nil
}

// ValidateJSON decodes raw and validates the result.
func (v *Validator) ValidateJSON(raw []byte) error {
	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return err
	}
	return v.Validate(document)
}

// leafIssues flattens the cause tree, keeping only the innermost failures.
func leafIssues(root *jsonschema.ValidationError) []Issue {
	var issues []Issue
	stack := []*jsonschema.ValidationError{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			continue
		}
		for i := len(node.Causes) - 1; i >= 0; i-- {
			stack = append(stack, node.Causes[i])
		}
	}
	return issues
}
