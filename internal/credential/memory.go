// ABOUTME: In-memory credential backend for tests and ephemeral sessions

package credential

import "sync"

type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string

	// SaveErr and DeleteErr, when set, fail every Save or Delete.
	SaveErr   error
	DeleteErr error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: map[string]string{}}
}

func (m *MemoryBackend) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
