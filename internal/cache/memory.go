package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryKeyStore is an in-process KeyStore used by tests and local
// development in place of redis.
type MemoryKeyStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryKeyStore returns an empty in-memory store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{entries: make(map[string]memEntry)}
}

func (s *MemoryKeyStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	// Copy so callers cannot mutate the stored payload.
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (s *MemoryKeyStore) SetEx(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.entries[key] = memEntry{value: stored, expires: expires}
	return nil
}

func (s *MemoryKeyStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *MemoryKeyStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	now := time.Now()
	for k, e := range s.entries {
		if !e.expires.IsZero() && now.After(e.expires) {
			continue
		}
		if globMatch(pattern, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// globMatch implements redis-style glob matching: '*' matches any sequence
// (including path separators), '?' matches one character, '[...]' matches a
// character class ('^' negates, '-' spans a range). A class holding a single
// metacharacter, like '[?]', matches it literally.
func globMatch(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			pattern = pattern[1:]
			if len(pattern) == 0 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if globMatch(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		case '[':
			ok, rest := matchClass(pattern, s)
			if !ok {
				return false
			}
			pattern, s = rest, s[1:]
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		}
	}
	return len(s) == 0
}

// matchClass matches s[0] against the '[...]' class opening pattern and
// returns the pattern remainder past the closing bracket. An unterminated
// class matches nothing.
func matchClass(pattern, s string) (bool, string) {
	if len(s) == 0 {
		return false, ""
	}
	c := s[0]
	i := 1
	negate := false
	if i < len(pattern) && pattern[i] == '^' {
		negate = true
		i++
	}
	matched := false
	for i < len(pattern) && pattern[i] != ']' {
		if i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']' {
			if pattern[i] <= c && c <= pattern[i+2] {
				matched = true
			}
			i += 3
		} else {
			if pattern[i] == c {
				matched = true
			}
			i++
		}
	}
	if i == len(pattern) {
		return false, ""
	}
	return matched != negate, pattern[i+1:]
}
