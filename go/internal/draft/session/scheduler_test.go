package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockScheduler_FiresUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	s := NewClockScheduler(clock)
	assert.Equal(t, clock.Now(), s.Now())

	var count atomic.Int32
	stop := s.Every(time.Second, func() { count.Add(1) })
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return count.Load() == 1 }, time.Second, 5*time.Millisecond)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return count.Load() == 2 }, time.Second, 5*time.Millisecond)

	stop()
	stop()
	require.NoError(t, clock.BlockUntilContext(ctx, 0))

	clock.Advance(5 * time.Second)
	assert.Never(t, func() bool { return count.Load() > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestManager_WithClockSchedulerExpires(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	m := NewManager(staticRoster{{ID: 1, Name: "A"}}, NewClockScheduler(clock), nil)
	t.Cleanup(m.Close)

	_, err := m.Start(ctx, 3)
	require.NoError(t, err)

	for remaining := 2; remaining >= 0; remaining-- {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(time.Second)
		want := remaining
		require.Eventually(t, func() bool { return m.RemainingSeconds() == want }, time.Second, 5*time.Millisecond)
	}

	require.Eventually(t, func() bool { return !m.IsActive() }, time.Second, 5*time.Millisecond)
	session, err := m.Session(1)
	require.NoError(t, err)
	assert.Equal(t, []models.Member{{ID: 1, Name: "A"}}, session.Members)
}

type staticRoster []models.Member

func (s staticRoster) List(context.Context) ([]models.Member, error) {
	return models.CloneMembers(s), nil
}
