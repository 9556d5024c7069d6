package repository

import (
	"context"
	"sync"
)

// MemoryStore хранит записи в памяти процесса. Используется в тестах
// и при запуске сервиса без строки подключения к БД.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore создаёт пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
	}
}

// Get возвращает значение записи по ключу.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}

	// Копия, чтобы вызывающий не мог изменить хранимое значение.
	res := make([]byte, len(value))
	copy(res, value)
	return res, true, nil
}

// Set записывает значение записи по ключу.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.records[key] = v
	return nil
}

// Delete удаляет запись по ключу.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}

// Close освобождает ресурсы хранилища.
func (s *MemoryStore) Close() error {
	return nil
}
