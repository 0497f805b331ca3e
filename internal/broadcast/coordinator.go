package broadcast

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

// Coordinator deduplicates settings_updated: broadcasts per spec.md
// §4.12: a Slave's warning list is recomputed on every heartbeat-driven
// evaluation, but the UI only needs to hear about it when it actually
// changed, so a naive "broadcast on every evaluation" would flood the
// channel at heartbeat frequency.
type Coordinator struct {
	mu      sync.Mutex
	last    map[domain.Account]string
	channel *Channel
}

// NewCoordinator builds a Coordinator publishing onto channel.
func NewCoordinator(channel *Channel) *Coordinator {
	return &Coordinator{last: make(map[domain.Account]string), channel: channel}
}

// NotifyWarnings compares warnings against the last-broadcast set for
// account and publishes settings_updated: only on change. Returns true if
// a broadcast was sent.
func (c *Coordinator) NotifyWarnings(account domain.Account, warnings []string) bool {
	key := strings.Join(warnings, ",")

	c.mu.Lock()
	unchanged := c.last[account] == key
	c.last[account] = key
	c.mu.Unlock()

	if unchanged {
		return false
	}
	c.channel.Publish(fmt.Sprintf("settings_updated:%s", account))
	return true
}

// Forget drops account's cached warning set, e.g. once it disconnects
// and stops being evaluated.
func (c *Coordinator) Forget(account domain.Account) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.last, account)
}
