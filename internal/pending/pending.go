// Package pending holds registrations that are awaiting OTP verification.
// Entries live in process memory only; a restart drops them and the user
// simply registers again.
package pending

import (
	"strings"
	"sync"
	"time"

	"github.com/sreesansree/Quill-Backend/internal/model"
)

// Table is a mutex-guarded map of normalized email to pending registration.
// All operations are O(1) map accesses; callers do hashing and I/O outside
// the table so entries for different emails never wait on each other for
// anything slow.
type Table struct {
	mu      sync.Mutex
	entries map[string]model.PendingRegistration

	reapOnce sync.Once
	done     chan struct{}
}

func NewTable() *Table {
	return &Table{
		entries: make(map[string]model.PendingRegistration),
		done:    make(chan struct{}),
	}
}

// Normalize lowercases and trims an email so lookups are case-insensitive.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Put stores a pending registration, overwriting any existing entry for the
// same email. Re-registering before verification restarts the OTP clock.
func (t *Table) Put(reg model.PendingRegistration) {
	key := Normalize(reg.Email)
	t.mu.Lock()
	t.entries[key] = reg
	t.mu.Unlock()
}

func (t *Table) Get(email string) (model.PendingRegistration, bool) {
	t.mu.Lock()
	reg, ok := t.entries[Normalize(email)]
	t.mu.Unlock()
	return reg, ok
}

// Remove deletes the entry for email. Removing an absent entry is a no-op.
func (t *Table) Remove(email string) {
	t.mu.Lock()
	delete(t.entries, Normalize(email))
	t.mu.Unlock()
}

func (t *Table) Len() int {
	t.mu.Lock()
	n := len(t.entries)
	t.mu.Unlock()
	return n
}

// StartReaper evicts entries whose OTP expired more than grace ago, every
// interval, until Close is called. Expiry is still checked at verification
// time; the reaper only keeps abandoned registrations from accumulating.
func (t *Table) StartReaper(interval, grace time.Duration) {
	t.reapOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case now := <-ticker.C:
					t.reap(now, grace)
				case <-t.done:
					return
				}
			}
		}()
	})
}

func (t *Table) reap(now time.Time, grace time.Duration) {
	t.mu.Lock()
	for key, reg := range t.entries {
		if now.After(reg.OTPExpiresAt.Add(grace)) {
			delete(t.entries, key)
		}
	}
	t.mu.Unlock()
}

func (t *Table) Close() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
}
