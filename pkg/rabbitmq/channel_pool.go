package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrPoolExhausted is returned when no channel became free before the
	// caller's context ended.
	ErrPoolExhausted = errors.New("no channels available in pool")
	ErrPoolClosed    = errors.New("channel pool is closed")
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// ChannelPool keeps a fixed set of channels on one connection, each with the
// target queue already declared.
type ChannelPool struct {
	open      func() (Channel, error)
	closeConn func()
	channels  chan Channel
	mu        sync.Mutex
	closed    bool
	queueName string
}

func NewChannelPool(url string, queueName string, size int) (*ChannelPool, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	open := func() (Channel, error) {
		return declareChannel(conn, queueName)
	}
	closeConn := func() {
		if err := conn.Close(); err != nil {
			logx.Warn().Err(err).Msg("close rabbitmq connection")
		}
	}
	return newChannelPool(queueName, size, open, closeConn)
}

func newChannelPool(queueName string, size int, open func() (Channel, error), closeConn func()) (*ChannelPool, error) {
	if size <= 0 {
		size = 1
	}
	pool := &ChannelPool{
		open:      open,
		closeConn: closeConn,
		channels:  make(chan Channel, size),
		queueName: queueName,
	}

	for i := 0; i < size; i++ {
		ch, err := open()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}

	logx.Info().Int("size", size).Str("queue", queueName).Msg("rabbitmq channel pool ready")
	return pool, nil
}

func declareChannel(conn *amqp.Connection, queueName string) (Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return ch, nil
}

// Get waits for a free channel until ctx is done. A channel the broker closed
// is replaced; if that fails, the dead channel goes back so its slot is kept
// and the next Get retries.
func (p *ChannelPool) Get(ctx context.Context) (Channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, ErrPoolClosed
		}
		if !ch.IsClosed() {
			return ch, nil
		}
		fresh, err := p.open()
		if err != nil {
			p.requeue(ch)
			return nil, fmt.Errorf("reopen channel: %w", err)
		}
		return fresh, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrPoolExhausted, ctx.Err())
	}
}

// Put hands a channel back. Surplus channels and those returned after Close
// are closed.
func (p *ChannelPool) Put(ch Channel) {
	if ch == nil {
		return
	}
	p.requeue(ch)
}

func (p *ChannelPool) requeue(ch Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		ch.Close()
		return
	}
	select {
	case p.channels <- ch:
	default:
		ch.Close()
	}
}

func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true

	close(p.channels)
	for ch := range p.channels {
		ch.Close()
	}
	if p.closeConn != nil {
		p.closeConn()
	}
	logx.Info().Str("queue", p.queueName).Msg("rabbitmq channel pool closed")
}

var _ Channel = (*amqp.Channel)(nil)
