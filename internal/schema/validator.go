// Package schema validates documents against the embedded JSON Schemas of
// the four document kinds.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cooking-companion/server/internal/docvalue"
)

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Error joins the error lines for reporting.
func (r Result) Error() string {
	return strings.Join(r.Errors, "\n")
}

// Validator compiles schemas on first use and keeps them until Reset.
type Validator struct {
	provider SchemaProvider

	mu       sync.Mutex
	compiled map[Kind]*jsonschema.Schema
}

// NewValidator creates a validator reading schemas from provider.
func NewValidator(provider SchemaProvider) *Validator {
	return &Validator{
		provider: provider,
		compiled: make(map[Kind]*jsonschema.Schema),
	}
}

// NewEmbeddedValidator creates a validator over the embedded schemas.
func NewEmbeddedValidator() *Validator {
	return NewValidator(NewEmbeddedSchemaProvider())
}

// Reset drops every compiled schema; the next Validate recompiles.
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.compiled = make(map[Kind]*jsonschema.Schema)
}

// Validate checks doc against the schema of kind. The returned error is
// only set when the schema itself cannot be loaded; an invalid document is
// reported through Result.
func (v *Validator) Validate(kind Kind, doc docvalue.Value) (Result, error) {
	sch, err := v.schemaFor(kind)
	if err != nil {
		return Result{}, err
	}

	var lines []string
	if err := sch.Validate(doc.ToAny()); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return Result{}, fmt.Errorf("failed to validate %s: %w", kind, err)
		}
		lines = formatErrors(verr)
	}

	if kind == KindShelf || kind == KindAppliances {
		lines = append(lines, duplicateCategories(doc)...)
	}

	if len(lines) > 0 {
		return Result{Valid: false, Errors: lines}, nil
	}
	return Result{Valid: true}, nil
}

// Warm compiles every known schema so a broken asset fails at startup.
func (v *Validator) Warm() error {
	for _, k := range Kinds() {
		if _, err := v.schemaFor(k); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) schemaFor(kind Kind) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if sch, ok := v.compiled[kind]; ok {
		return sch, nil
	}

	content, err := v.provider.ReadFile(kind.FileName())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s schema: %w", kind, err)
	}

	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s schema: %w", kind, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)
	compiler.AssertFormat()

	if err := compiler.AddResource(kind.URL(), schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add %s schema: %w", kind, err)
	}

	sch, err := compiler.Compile(kind.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", kind, err)
	}

	v.compiled[kind] = sch
	return sch, nil
}

// formatErrors flattens the error tree into "<instance-path> <message>"
// lines, one per leaf cause.
func formatErrors(verr *jsonschema.ValidationError) []string {
	p := message.NewPrinter(language.English)

	var lines []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			lines = append(lines, instancePath(e.InstanceLocation)+" "+e.ErrorKind.LocalizedString(p))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)

	// property iteration order inside the library is not stable
	sort.Strings(lines)
	return lines
}

// instancePath renders a JSON Pointer; the root is "/".
func instancePath(location []string) string {
	if len(location) == 0 {
		return "/"
	}
	escaped := make([]string, len(location))
	for i, token := range location {
		token = strings.ReplaceAll(token, "~", "~0")
		escaped[i] = strings.ReplaceAll(token, "/", "~1")
	}
	return "/" + strings.Join(escaped, "/")
}

func duplicateCategories(doc docvalue.Value) []string {
	categories, ok := doc.Get("categories")
	if !ok || !categories.IsArray() {
		return nil
	}

	var lines []string
	seen := make(map[string]bool)
	for i, category := range categories.Items() {
		name, ok := category.GetString("name")
		if !ok {
			continue
		}
		if seen[name] {
			lines = append(lines, fmt.Sprintf("/categories/%d/name duplicate category name %q", i, name))
			continue
		}
		seen[name] = true
	}
	return lines
}
