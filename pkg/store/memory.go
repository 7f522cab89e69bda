package store

import (
	"context"
	"sync"
)

// Memory is a Document that lives only as long as the process.
type Memory struct {
	mu   sync.Mutex
	data []byte

	// when set, Write fails with this error
	FailWrites error
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.data = append([]byte{}, data...)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
