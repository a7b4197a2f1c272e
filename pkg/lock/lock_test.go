package lock

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireUnlockRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")
	l, err := Acquire(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Unlock())
}

func TestAcquireTimesOutWhenHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")
	holder, err := Acquire(path, time.Second)
	require.NoError(t, err)
	defer holder.Unlock()

	_, err = Acquire(path, 50*time.Millisecond)
	require.Error(t, err)
	var timeoutErr *TimeoutError
	assert.True(t, errors.As(err, &timeoutErr))
}

func TestWithLockReleasesOnPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")

	func() {
		defer func() { recover() }()
		_ = WithLock(path, time.Second, func() error {
			panic("boom")
		})
	}()

	l, err := Acquire(path, 50*time.Millisecond)
	require.NoError(t, err, "lock must be released even after fn panics")
	require.NoError(t, l.Unlock())
}

func TestWithLockPropagatesFnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.lock")
	wantErr := errors.New("fn failed")
	err := WithLock(path, time.Second, func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestSwarmLockPath(t *testing.T) {
	assert.Equal(t, filepath.Join("repo", ".agit", "swarm.lock"), SwarmLockPath("repo"))
}
