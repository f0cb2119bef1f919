package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Scope namespaces idempotency keys so the same parameters in different
// operations never collide.
type Scope string

const (
	ScopePayment         Scope = "payment"
	ScopeReminderSend    Scope = "reminder_send"
	ScopeSubscriberWrite Scope = "subscriber_write"
)

// Generator builds deterministic idempotency keys from a scope and a
// parameter map. Identical inputs always produce identical keys, which is
// what makes duplicate-event absorption possible downstream.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey returns a hex-encoded SHA-256 of "scope:k1=v1:k2=v2:..." with
// keys sorted for a stable ordering.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
