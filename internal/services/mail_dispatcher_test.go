package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/internal/infrastructure/outbox"
	"github.com/gardenhub/backend/usecase"
)

type flakySender struct {
	failures int
	sent     []string
}

func (s *flakySender) Send(_ context.Context, to, _, _ string) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("relay unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

type offlineMonitor struct{ online bool }

func (m offlineMonitor) IsOnline() bool { return m.online }

func newStore(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"), "outbox")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSendDeliversImmediatelyWhenOnline(t *testing.T) {
	store := newStore(t)
	sender := &flakySender{}
	d := NewMailDispatcher(store, sender, offlineMonitor{online: true}, nil, DispatcherConfig{})

	err := d.Send(context.Background(), usecase.Mail{To: "a@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
	assert.Equal(t, 0, d.Size())
}

func TestSendQueuesWhenOffline(t *testing.T) {
	store := newStore(t)
	sender := &flakySender{}
	d := NewMailDispatcher(store, sender, offlineMonitor{online: false}, nil, DispatcherConfig{})

	err := d.Send(context.Background(), usecase.Mail{To: "a@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
	assert.Equal(t, 1, d.Size())
}

func TestSendQueuesOnDeliveryFailure(t *testing.T) {
	store := newStore(t)
	sender := &flakySender{failures: 1}
	d := NewMailDispatcher(store, sender, offlineMonitor{online: true}, nil, DispatcherConfig{})

	err := d.Send(context.Background(), usecase.Mail{To: "a@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Size())

	// The next drain flushes the queued mail.
	require.NoError(t, d.Drain(context.Background()))
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
	assert.Equal(t, 0, d.Size())
}

func TestSubSecondIntervalGetsValidSchedule(t *testing.T) {
	store := newStore(t)
	sender := &flakySender{}
	d := NewMailDispatcher(store, sender, offlineMonitor{online: true}, nil,
		DispatcherConfig{Interval: 100 * time.Millisecond})
	require.NotNil(t, d)
	assert.Equal(t, time.Second, d.cfg.Interval)

	d.Start()
	defer d.Stop(context.Background())

	err := d.Send(context.Background(), usecase.Mail{To: "a@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@example.com"}, sender.sent)
}

func TestDrainDropsAfterMaxRetries(t *testing.T) {
	store := newStore(t)
	sender := &flakySender{failures: 100}
	d := NewMailDispatcher(store, sender, offlineMonitor{online: true}, nil, DispatcherConfig{MaxRetries: 2})

	require.NoError(t, store.Enqueue(outbox.Item{To: "a@example.com", Subject: "s", Body: "b"}))

	require.NoError(t, d.Drain(context.Background()))
	assert.Equal(t, 1, d.Size())

	require.NoError(t, d.Drain(context.Background()))
	assert.Equal(t, 0, d.Size())
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	store := newStore(t)
	sender := &flakySender{}
	d := NewMailDispatcher(store, sender, offlineMonitor{online: false}, nil, DispatcherConfig{})

	require.NoError(t, store.Enqueue(outbox.Item{To: "a@example.com"}))
	require.NoError(t, d.Drain(context.Background()))
	assert.Empty(t, sender.sent)
	assert.Equal(t, 1, d.Size())
}
