package schema

import (
	"embed"
)

// SchemaProvider defines the interface for reading schema documents.
// This abstraction allows for dependency injection and makes the validator
// testable without the embedded assets.
//
// Implementations:
//   - embeddedSchemaProvider: Uses embed.FS for production
//   - MockSchemaProvider: Uses an in-memory map for testing
type SchemaProvider interface {
	// ReadFile reads the named schema file and returns its contents.
	// The name is relative to the schema root (e.g., "schemas/shelf.schema.json").
	ReadFile(name string) ([]byte, error)
}

// Embed the document schemas into the binary so the server works without
// the source tree present.
//
//go:embed schemas/*.schema.json
var embeddedFS embed.FS

// embeddedSchemaProvider implements SchemaProvider using embed.FS.
type embeddedSchemaProvider struct {
	fs embed.FS
}

// NewEmbeddedSchemaProvider creates a production SchemaProvider that uses embedded files.
func NewEmbeddedSchemaProvider() SchemaProvider {
	return &embeddedSchemaProvider{fs: embeddedFS}
}

// ReadFile reads the named file from the embedded filesystem.
func (p *embeddedSchemaProvider) ReadFile(name string) ([]byte, error) {
	return p.fs.ReadFile(name)
}
