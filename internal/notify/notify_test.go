package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_NotifyFillsDefaults(t *testing.T) {
	f := NewFeed(time.Minute)
	f.Notify(Notification{Message: "hello", Header: "Test"})

	recent := f.Recent()
	require.Len(t, recent, 1)
	assert.NotEmpty(t, recent[0].ID)
	assert.False(t, recent[0].CreatedAt.IsZero())
	assert.Equal(t, LevelInfo, recent[0].Level)
	assert.Equal(t, "hello", recent[0].Message)
}

func TestFeed_RecentOrderedOldestFirst(t *testing.T) {
	f := NewFeed(time.Minute)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	f.Notify(Notification{Level: LevelError, Message: "third", CreatedAt: base.Add(2 * time.Second)})
	f.Notify(Notification{Level: LevelWarning, Message: "first", CreatedAt: base})
	f.Notify(Notification{Level: LevelSuccess, Message: "second", CreatedAt: base.Add(time.Second)})

	recent := f.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "first", recent[0].Message)
	assert.Equal(t, "second", recent[1].Message)
	assert.Equal(t, "third", recent[2].Message)
}

func TestFeed_RecentKeepsInsertionOrderWithinATick(t *testing.T) {
	f := NewFeed(time.Minute)
	tick := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	messages := []string{"reset", "loaded", "import failed", "import done", "saved"}
	for _, m := range messages {
		f.Notify(Notification{Message: m, CreatedAt: tick})
	}

	// go-cache hands items back in map order; repeat to catch a lucky run
	for range 20 {
		recent := f.Recent()
		require.Len(t, recent, len(messages))
		for i, n := range recent {
			assert.Equal(t, messages[i], n.Message)
			assert.Equal(t, uint64(i+1), n.Seq)
		}
	}
}

func TestFeed_Expiry(t *testing.T) {
	f := NewFeed(20 * time.Millisecond)
	f.Notify(Notification{Message: "short lived"})
	require.Len(t, f.Recent(), 1)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.Recent())
}

func TestFeed_Clear(t *testing.T) {
	f := NewFeed(time.Minute)
	f.Notify(Notification{Message: "a"})
	f.Notify(Notification{Message: "b"})
	f.Clear()
	assert.Empty(t, f.Recent())
}

func TestNotifierFunc(t *testing.T) {
	var got []Notification
	var n Notifier = NotifierFunc(func(x Notification) { got = append(got, x) })
	n.Notify(Notification{Message: "x"})
	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Message)
}
