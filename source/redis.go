package source

import (
	"context"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"
)

// Redis receives staleness notifications over a Redis pub/sub channel,
// letting any process in a fleet mark keys stale for every subscriber.
// Pair it with Notifier on the publishing side.
//
// Pub/sub delivery is fire-and-forget: subscribers that are down when a
// notification is published never see it. Treat notifications as refresh
// hints, not as a durable queue.
type Redis struct {
	rdb         goredis.UniversalClient
	sub         *goredis.PubSub
	closeClient bool

	ch        chan string
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

var _ Source = (*Redis)(nil)

type RedisConfig struct {
	Client  goredis.UniversalClient
	Channel string // conventionally Channel(namespace)
	// Buffer caps pending notifications; overflow is dropped. Defaults
	// to 64.
	Buffer      int
	CloseClient bool // set true only if this source exclusively owns the client
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis source: nil client")
	}
	if cfg.Channel == "" {
		return nil, errors.New("redis source: channel is required")
	}
	buffer := cfg.Buffer
	if buffer < 1 {
		buffer = defaultBuffer
	}

	sub := cfg.Client.Subscribe(context.Background(), cfg.Channel)
	if _, err := sub.Receive(context.Background()); err != nil {
		_ = sub.Close()
		return nil, err
	}

	s := &Redis{
		rdb:         cfg.Client,
		sub:         sub,
		closeClient: cfg.CloseClient,
		ch:          make(chan string, buffer),
	}
	s.wg.Add(1)
	go s.forward()
	return s, nil
}

func (s *Redis) Keys() <-chan string { return s.ch }

func (s *Redis) Close(context.Context) error {
	s.closeOnce.Do(func() {
		err := s.sub.Close() // closes the subscription channel; forward exits
		s.wg.Wait()
		close(s.ch)
		if s.closeClient {
			if cerr := s.rdb.Close(); cerr != nil && !errors.Is(cerr, goredis.ErrClosed) && err == nil {
				err = cerr
			}
		}
		s.closeErr = err
	})
	return s.closeErr
}

func (s *Redis) forward() {
	defer s.wg.Done()
	for msg := range s.sub.Channel() {
		select {
		case s.ch <- msg.Payload:
		default: // buffer full; drop
		}
	}
}

// Notifier publishes staleness notifications for Redis sources in other
// processes (and this one) to pick up.
type Notifier struct {
	rdb     goredis.UniversalClient
	channel string
}

func NewNotifier(client goredis.UniversalClient, channel string) (*Notifier, error) {
	if client == nil {
		return nil, errors.New("redis notifier: nil client")
	}
	if channel == "" {
		return nil, errors.New("redis notifier: channel is required")
	}
	return &Notifier{rdb: client, channel: channel}, nil
}

// Notify marks key stale on every subscribed source.
func (n *Notifier) Notify(ctx context.Context, key string) error {
	return n.rdb.Publish(ctx, n.channel, key).Err()
}
