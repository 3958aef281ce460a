package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/data/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweepOnce_ReclaimsExpiredHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.hold(t, "u1", 5, "A1", "A2"))
	require.NoError(t, f.hold(t, "u2", 10, "A3"))

	n, err := f.svc.Sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock.Advance(5*time.Minute + time.Second)
	n, err = f.svc.Sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, entity.ShowSeatAvailable, f.status(t, "A1"))
	assert.Equal(t, entity.ShowSeatAvailable, f.status(t, "A2"))
	assert.Equal(t, entity.ShowSeatHeld, f.status(t, "A3"))

	n, err = f.svc.Sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, f.hold(t, "u2", 5, "A1"))
}

type failingInventory struct {
	repository.InventoryStore
	calls chan struct{}
}

func (i *failingInventory) ClearExpiredHolds(context.Context, time.Time) (int64, error) {
	select {
	case i.calls <- struct{}{}:
	default:
	}
	return 0, errors.New("connection refused")
}

func TestSweeperRun_KeepsGoingAfterErrors(t *testing.T) {
	inv := &failingInventory{calls: make(chan struct{}, 1)}
	sweeper := NewExpirySweeper(inv, Dependencies{SweepInterval: 5 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-inv.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper stopped ticking")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
