package store

import (
	"context"
	"sync"

	"github.com/MalithGihan/mindmap-service/pkg/types"
)

type Memory struct {
	mu    sync.RWMutex
	docs  []types.Document
	views []types.View
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) AddDocument(_ context.Context, d types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, d)
	return nil
}

func (m *Memory) ListDocuments(_ context.Context) ([]types.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.Document(nil), m.docs...), nil
}

func (m *Memory) ClearDocuments(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = nil
	return nil
}

func (m *Memory) SaveView(_ context.Context, v types.View) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.views {
		if m.views[i].ID == v.ID {
			m.views[i] = v
			return nil
		}
	}
	m.views = append(m.views, v)
	return nil
}

func (m *Memory) ListViews(_ context.Context) ([]types.View, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.View(nil), m.views...), nil
}

func (m *Memory) GetView(_ context.Context, id string) (types.View, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.views {
		if v.ID == id {
			return v, nil
		}
	}
	return types.View{}, ErrNotFound
}

func (m *Memory) DeleteView(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, v := range m.views {
		if v.ID == id {
			m.views = append(m.views[:i], m.views[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) Close() error { return nil }
