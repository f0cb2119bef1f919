package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/nextstep/nextstep/internal/types"
)

// LockScope namespaces advisory lock keys per entity kind.
type LockScope string

const (
	LockScopeSubscriber LockScope = "subscriber"
)

const defaultLockTimeout = 30 * time.Second

// GenerateLockKey builds a deterministic advisory lock key from a scope and
// parameters, always including the tenant from context. Postgres hashes the
// string internally via hashtext().
func GenerateLockKey(ctx context.Context, scope LockScope, params map[string]interface{}) string {
	merged := map[string]interface{}{}
	if tenantID := types.GetTenantID(ctx); tenantID != "" {
		merged["tenant_id"] = tenantID
	}
	for k, v := range params {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, merged[k]))
	}
	return b.String()
}

// LockKey acquires a transaction-scoped advisory lock, waiting up to timeout.
// A zero or negative timeout means fail-fast. The lock releases automatically
// on commit or rollback. Must be called inside a transaction.
func (c *Client) LockKey(ctx context.Context, key string, timeout time.Duration) error {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("LockKey must be called inside a transaction")
	}

	if timeout <= 0 {
		ok, err := c.TryLockKey(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lock already held: %s", key)
		}
		return nil
	}

	// lock_timeout resets automatically on commit/rollback.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds())); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		if isLockTimeoutError(err) {
			return fmt.Errorf("failed to acquire lock within %v: %w", timeout, err)
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

// LockSubscriber serializes ledger writes for one subscriber.
func (c *Client) LockSubscriber(ctx context.Context, subscriberID string) error {
	key := GenerateLockKey(ctx, LockScopeSubscriber, map[string]interface{}{
		"subscriber_id": subscriberID,
	})
	return c.LockKey(ctx, key, defaultLockTimeout)
}

// TryLockKey attempts the advisory lock without waiting. Must be called
// inside a transaction.
func (c *Client) TryLockKey(ctx context.Context, key string) (bool, error) {
	tx := c.TxFromContext(ctx)
	if tx == nil {
		return false, fmt.Errorf("TryLockKey must be called inside a transaction")
	}

	var ok bool
	if err := tx.QueryRowContext(ctx, `SELECT pg_try_advisory_xact_lock(hashtext($1))`, key).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func isLockTimeoutError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 55P03 = lock_not_available
		return pqErr.Code == "55P03"
	}
	return false
}
