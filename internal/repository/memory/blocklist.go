package memory

import (
	"context"
	"sync"
	"time"
)

// Blocklist is a process local token blocklist for single instance runs.
type Blocklist struct {
	mu      sync.Mutex
	now     func() time.Time
	revoked map[string]time.Time
}

func NewBlocklist() *Blocklist {
	return &Blocklist{now: time.Now, revoked: map[string]time.Time{}}
}

func (b *Blocklist) Revoke(_ context.Context, jti string, until time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, exp := range b.revoked {
		if !exp.After(now) {
			delete(b.revoked, k)
		}
	}
	if until.After(now) {
		b.revoked[jti] = until
	}
	return nil
}

func (b *Blocklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.revoked[jti]
	return ok && exp.After(b.now()), nil
}
