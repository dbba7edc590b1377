// ABOUTME: Tests for the seen-event cache
// ABOUTME: Validates TTL expiry, duplicate detection, and size-capped eviction

package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_FirstDeliveryIsNotDuplicate(t *testing.T) {
	cache := New(5*time.Minute, 100)

	assert.False(t, cache.Seen("achievement:first-blood"))
}

func TestCache_SecondDeliveryIsDuplicate(t *testing.T) {
	cache := New(5*time.Minute, 100)

	assert.False(t, cache.Seen("achievement:first-blood"))
	assert.True(t, cache.Seen("achievement:first-blood"))
}

func TestCache_ExpiredKeyIsFreshAgain(t *testing.T) {
	cache := New(10*time.Millisecond, 100)

	assert.False(t, cache.Seen("achievement:streak-7"))
	time.Sleep(20 * time.Millisecond)
	assert.False(t, cache.Seen("achievement:streak-7"))
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	cache := New(5*time.Minute, 2)

	cache.Seen("a")
	cache.Seen("b")
	cache.Seen("c") // evicts a

	assert.Equal(t, 2, cache.Len())
	assert.False(t, cache.Seen("a")) // a was evicted, so it reads as fresh
	assert.True(t, cache.Seen("c"))
}

func TestCache_ReapRemovesExpiredEntries(t *testing.T) {
	cache := New(10*time.Millisecond, 100)

	cache.Seen("a")
	cache.Seen("b")
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, cache.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache := New(time.Minute, 1000)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				cache.Seen("shared-key")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.Equal(t, 1, cache.Len())
}
