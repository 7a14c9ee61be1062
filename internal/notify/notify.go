// Package notify carries user-facing messages that are not part of any return value,
// such as "saved settings were invalid, defaults are used".
package notify

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/bassista/circum/internal/logger"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Notification is one message for the kiosk operator.
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Header    string    `json:"header"`
	Detail    string    `json:"detail,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	// Seq orders notifications created within the same clock tick.
	Seq uint64 `json:"seq"`
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Feed logs every notification and keeps it readable until the TTL expires.
type Feed struct {
	items *gocache.Cache
	seq   atomic.Uint64
	log   *logrus.Entry
}

// NewFeed creates a feed whose entries expire after ttl.
func NewFeed(ttl time.Duration) *Feed {
	return &Feed{
		items: gocache.New(ttl, 2*ttl),
		log:   logger.WithComponent("notify"),
	}
}

// Notify stores n, filling in a missing ID and timestamp.
func (f *Feed) Notify(n Notification) {
	n.Seq = f.seq.Add(1)
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}

	entry := f.log.WithField("header", n.Header)
	switch n.Level {
	case LevelError:
		entry.Error(n.Message)
	case LevelWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}

	f.items.SetDefault(n.ID, n)
}

// Recent returns the notifications that have not expired, oldest first.
func (f *Feed) Recent() []Notification {
	items := f.items.Items()
	out := make([]Notification, 0, len(items))
	for _, item := range items {
		if n, ok := item.Object.(Notification); ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// Clear drops every stored notification.
func (f *Feed) Clear() {
	f.items.Flush()
}
