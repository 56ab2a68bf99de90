package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process LRU cache with per-entry expiry. Values are stored
// JSON-encoded so that callers never share mutable state.
type Memory struct {
	lru *expirable.LRU[string, []byte]

	mu       sync.Mutex
	versions map[string]int64
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1024
	}
	return &Memory{
		lru:      expirable.NewLRU[string, []byte](size, nil, ttl),
		versions: make(map[string]int64),
	}
}

func memKey(ns string, ver int64, key string) string {
	return fmt.Sprintf("%s/%d/%s", ns, ver, key)
}

func (m *Memory) Version(_ context.Context, ns string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[ns], nil
}

func (m *Memory) Get(ctx context.Context, ns, key string, dst any) error {
	const op = "cache.Memory.Get"

	ver, _ := m.Version(ctx, ns)
	b, ok := m.lru.Get(memKey(ns, ver, key))
	if !ok {
		return ErrMiss
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (m *Memory) Set(_ context.Context, ns, key string, ver int64, v any) error {
	const op = "cache.Memory.Set"

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ver != m.versions[ns] {
		return nil
	}
	m.lru.Add(memKey(ns, ver, key), b)
	return nil
}

func (m *Memory) Invalidate(_ context.Context, namespaces ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ns := range namespaces {
		m.versions[ns]++
	}
	for _, k := range m.lru.Keys() {
		for _, ns := range namespaces {
			if strings.HasPrefix(k, ns+"/") {
				m.lru.Remove(k)
				break
			}
		}
	}
	return nil
}

func (m *Memory) Len() int {
	return m.lru.Len()
}
