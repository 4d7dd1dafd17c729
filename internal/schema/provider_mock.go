package schema

import (
	"io/fs"
	"sync"
)

// MockSchemaProvider implements SchemaProvider for testing.
// It serves schema documents from an in-memory map and counts reads so
// tests can assert on cache behaviour.
type MockSchemaProvider struct {
	mu    sync.Mutex
	files map[string][]byte
	reads map[string]int
}

// NewMockSchemaProvider creates a new, empty mock provider.
func NewMockSchemaProvider() *MockSchemaProvider {
	return &MockSchemaProvider{
		files: make(map[string][]byte),
		reads: make(map[string]int),
	}
}

// AddFile adds a file to the mock provider.
func (m *MockSchemaProvider) AddFile(name string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = content
}

// AddSchema registers a schema document for kind under its canonical path.
func (m *MockSchemaProvider) AddSchema(kind Kind, content string) {
	m.AddFile(kind.FileName(), []byte(content))
}

// ReadFile reads a file from the mock storage.
func (m *MockSchemaProvider) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[name]++
	content, exists := m.files[name]
	if !exists {
		return nil, fs.ErrNotExist
	}
	return content, nil
}

// Reads reports how many times name has been read.
func (m *MockSchemaProvider) Reads(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[name]
}
