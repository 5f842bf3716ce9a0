package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCancellerCancelsTrackedContext(t *testing.T) {
	c := NewCanceller()

	ctx, stop := c.Track(context.Background(), "1/7")
	defer stop()

	assert.NoError(t, ctx.Err())
	c.Cancel("1/7")
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestCancellerCancelUnknownKeyIsANoOp(t *testing.T) {
	c := NewCanceller()
	c.Cancel("1/99")
}

func TestCancellerStopDeregisters(t *testing.T) {
	c := NewCanceller()

	ctx1, stop := c.Track(context.Background(), "1/7")
	stop()
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)

	// A later review for the same key gets a fresh context; cancelling the
	// key affects it, not the stopped one.
	ctx2, stop2 := c.Track(context.Background(), "1/7")
	defer stop2()
	assert.NoError(t, ctx2.Err())
	c.Cancel("1/7")
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
}
