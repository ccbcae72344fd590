package tts

import (
	"sync"
	"time"
)

// VoiceCache holds the scanned voice list with a TTL so the voices endpoint
// does not hit the filesystem on every request. A refresh runs in the
// background once the entry goes stale; readers keep getting the old list
// until the rescan lands.
type VoiceCache struct {
	voicesDir string
	ttl       time.Duration

	mu         sync.RWMutex
	voices     []Voice
	fetchedAt  time.Time
	refreshing bool
}

func NewVoiceCache(voicesDir string, ttl time.Duration) *VoiceCache {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &VoiceCache{voicesDir: voicesDir, ttl: ttl}
}

// Voices returns the cached list, triggering a background rescan when stale.
// The first call scans synchronously so callers never see an empty list on a
// populated voices directory.
func (c *VoiceCache) Voices() []Voice {
	c.mu.RLock()
	fresh := !c.fetchedAt.IsZero() && time.Since(c.fetchedAt) < c.ttl
	voices := c.voices
	initialized := !c.fetchedAt.IsZero()
	c.mu.RUnlock()

	if fresh {
		return voices
	}
	if !initialized {
		return c.refresh()
	}

	c.mu.Lock()
	if !c.refreshing {
		c.refreshing = true
		go func() {
			c.refresh()
			c.mu.Lock()
			c.refreshing = false
			c.mu.Unlock()
		}()
	}
	c.mu.Unlock()
	return voices
}

func (c *VoiceCache) refresh() []Voice {
	voices := ListPiperVoices(c.voicesDir)
	c.mu.Lock()
	c.voices = voices
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return voices
}

// Invalidate forces the next Voices call to rescan synchronously.
func (c *VoiceCache) Invalidate() {
	c.mu.Lock()
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}
