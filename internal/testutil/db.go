package testutil

import (
	"context"
)

// FakeDB satisfies postgres.IClient for service tests. Transactions run the
// callback directly and advisory locks always succeed; the in-memory stores
// provide their own synchronization.
type FakeDB struct{}

func NewFakeDB() *FakeDB {
	return &FakeDB{}
}

func (d *FakeDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (d *FakeDB) LockSubscriber(ctx context.Context, subscriberID string) error {
	return nil
}

func (d *FakeDB) Close() error {
	return nil
}
