package redis

import (
	"fmt"
	"strings"
)

// KeyBuilder applies an optional namespace to logical store keys so that
// several deployments can share one Redis database.
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a key builder. An empty namespace leaves keys untouched.
func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{
		prefix: strings.Trim(namespace, ": "),
	}
}

// BuildKey constructs a Redis key with the namespace prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	if kb.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// StripKey reverses BuildKey
func (kb *KeyBuilder) StripKey(key string) string {
	if kb.prefix == "" {
		return key
	}
	return strings.TrimPrefix(key, kb.prefix+":")
}

// GetPrefix returns the current namespace
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// MatchPrefix returns a SCAN pattern matching every key that starts with
// the logical prefix inside this namespace.
func (kb *KeyBuilder) MatchPrefix(prefix string) string {
	return escapeGlob(kb.BuildKey(prefix)) + "*"
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
