package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/gastos/internal/service"
)

// MemoryKV is an in-memory service.KVStore.
type MemoryKV struct {
	data   map[string]string
	SetErr error
	mu     sync.Mutex
	Sets   int
}

// NewMemoryKV creates an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get implements service.KVStore.
func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set implements service.KVStore.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	m.Sets++
	return nil
}

// Delete implements service.KVStore.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MemoryFile is an in-memory service.FileHandle.
type MemoryFile struct {
	WriteErr error
	ReadErr  error
	name     string
	content  string
	mu       sync.Mutex
	Writes   int
}

// NewMemoryFile creates a file with initial content.
func NewMemoryFile(name, content string) *MemoryFile {
	return &MemoryFile{name: name, content: content}
}

// Name implements service.FileHandle.
func (f *MemoryFile) Name() string { return f.name }

// Read implements service.FileHandle.
func (f *MemoryFile) Read(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return "", f.ReadErr
	}
	return f.content, nil
}

// Write implements service.FileHandle.
func (f *MemoryFile) Write(_ context.Context, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.content = content
	f.Writes++
	return nil
}

// Content returns the current content.
func (f *MemoryFile) Content() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.content
}

// ErrExtractorExhausted is returned when a FakeExtractor runs out of replies.
var ErrExtractorExhausted = errors.New("fake extractor has no more replies")

// ExtractorReply is one scripted answer of a FakeExtractor.
type ExtractorReply struct {
	Err     error
	Records []service.ExtractedRecord
}

// FakeExtractor replays scripted replies in order.
type FakeExtractor struct {
	Replies []ExtractorReply
	Docs    []service.Document
	mu      sync.Mutex
	Calls   int
}

// Extract implements service.Extractor.
func (f *FakeExtractor) Extract(_ context.Context, doc service.Document, _ []string) ([]service.ExtractedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Docs = append(f.Docs, doc)
	if len(f.Replies) == 0 {
		return nil, ErrExtractorExhausted
	}
	reply := f.Replies[0]
	f.Replies = f.Replies[1:]
	return reply.Records, reply.Err
}
