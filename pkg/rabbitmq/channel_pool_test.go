package rabbitmq

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/internal/core"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logx.Init(logx.LoggerOpts{Environment: core.Testing})
	os.Exit(m.Run())
}

type fakeChannel struct {
	mu        sync.Mutex
	closed    bool
	published []amqp.Publishing
	keys      []string
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return amqp.ErrClosed
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// fakeSource hands out fakeChannels and can be told to fail.
type fakeSource struct {
	mu     sync.Mutex
	opened []*fakeChannel
	err    error
}

func (s *fakeSource) open() (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	ch := &fakeChannel{}
	s.opened = append(s.opened, ch)
	return ch, nil
}

func (s *fakeSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.opened)
}

func newTestPool(t *testing.T, size int) (*ChannelPool, *fakeSource) {
	t.Helper()
	src := &fakeSource{}
	pool, err := newChannelPool("water_orders", size, src.open, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool, src
}

func TestGetWaitsForAFreeChannel(t *testing.T) {
	pool, _ := newTestPool(t, 1)
	ctx := context.Background()

	held, err := pool.Get(ctx)
	require.NoError(t, err)

	got := make(chan Channel, 1)
	go func() {
		ch, err := pool.Get(ctx)
		assert.NoError(t, err)
		got <- ch
	}()

	select {
	case <-got:
		t.Fatal("Get returned while every channel was in use")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Put(held)
	select {
	case ch := <-got:
		assert.Same(t, held, ch)
	case <-time.After(time.Second):
		t.Fatal("Get did not pick up the returned channel")
	}
}

func TestGetGivesUpWhenContextEnds(t *testing.T) {
	pool, _ := newTestPool(t, 1)
	_, err := pool.Get(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.Get(ctx)
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetReplacesClosedChannel(t *testing.T) {
	pool, src := newTestPool(t, 1)
	ctx := context.Background()

	ch, err := pool.Get(ctx)
	require.NoError(t, err)
	ch.Close()
	pool.Put(ch)

	fresh, err := pool.Get(ctx)
	require.NoError(t, err)
	assert.False(t, fresh.IsClosed())
	assert.Equal(t, 2, src.count())
}

func TestGetKeepsSlotWhenReopenFails(t *testing.T) {
	pool, src := newTestPool(t, 1)
	ctx := context.Background()

	ch, err := pool.Get(ctx)
	require.NoError(t, err)
	ch.Close()
	pool.Put(ch)

	src.mu.Lock()
	src.err = errors.New("broker unreachable")
	src.mu.Unlock()
	_, err = pool.Get(ctx)
	require.Error(t, err)

	src.mu.Lock()
	src.err = nil
	src.mu.Unlock()
	fresh, err := pool.Get(ctx)
	require.NoError(t, err)
	assert.False(t, fresh.IsClosed())
}

func TestClosedPool(t *testing.T) {
	pool, src := newTestPool(t, 2)
	ch, err := pool.Get(context.Background())
	require.NoError(t, err)

	pool.Close()
	for _, c := range src.opened {
		if c != ch {
			assert.True(t, c.IsClosed())
		}
	}
	_, err = pool.Get(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)

	pool.Put(ch)
	assert.True(t, ch.IsClosed(), "channels returned after Close are closed")
}

func TestNewChannelPoolFailsWhenOpenFails(t *testing.T) {
	src := &fakeSource{err: errors.New("no broker")}
	_, err := newChannelPool("water_orders", 2, src.open, nil)
	assert.Error(t, err)
}

func TestPublishConcurrentBeyondPoolSize(t *testing.T) {
	pool, src := newTestPool(t, 2)
	pub := NewPublisher(pool, "water_orders")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pub.Publish(context.Background(), "order", []byte(`{}`)))
		}()
	}
	wg.Wait()

	total := 0
	for _, c := range src.opened {
		c.mu.Lock()
		total += len(c.published)
		for i, msg := range c.published {
			assert.Equal(t, "water_orders", c.keys[i])
			assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
			assert.Equal(t, "application/json", msg.ContentType)
		}
		c.mu.Unlock()
	}
	assert.Equal(t, 20, total)
	assert.Equal(t, 2, src.count())
}
