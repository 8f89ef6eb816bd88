// Package lock provides a Redis lease that keeps a second agent
// instance from running against the same treasury wallet.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Lease defaults.
const (
	DefaultTTL           = 90 * time.Second
	DefaultRenewInterval = 30 * time.Second
)

// ErrHeld is returned when another instance already holds the lease.
var ErrHeld = errors.New("lease held by another instance")

// releaseScript deletes the key only when this instance still owns it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lease is a renewable single-holder lock backed by Redis SET NX.
type Lease struct {
	client *redis.Client
	key    string
	owner  string
	ttl    time.Duration
	renew  time.Duration
	log    logrus.FieldLogger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	acquired bool
}

// NewLease creates a lease for the given key. Zero durations fall back
// to the defaults.
func NewLease(client *redis.Client, key string, ttl, renew time.Duration, log logrus.FieldLogger) *Lease {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if renew <= 0 {
		renew = DefaultRenewInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Lease{
		client: client,
		key:    key,
		owner:  uuid.NewString(),
		ttl:    ttl,
		renew:  renew,
		log:    log.WithField("component", "lease"),
	}
}

// Acquire takes the lease or returns ErrHeld. On success a background
// goroutine renews the lease until Release is called.
func (l *Lease) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.acquired {
		return nil
	}

	ok, err := l.client.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire lease: %w", err)
	}
	if !ok {
		return ErrHeld
	}

	renewCtx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.acquired = true

	go l.renewLoop(renewCtx)
	return nil
}

// Release gives up the lease and stops renewal. Safe to call twice.
func (l *Lease) Release(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.acquired {
		return nil
	}

	l.cancel()
	<-l.done
	l.acquired = false

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}

func (l *Lease) renewLoop(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.renew)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := l.client.Expire(ctx, l.key, l.ttl).Result()
			if err != nil {
				l.log.WithError(err).Warn("lease renewal failed")
				continue
			}
			if !ok {
				// Key expired or was taken over. The agent keeps
				// running; the lease guards startup, not each tick.
				l.log.Warn("lease key lost")
			}
		}
	}
}
