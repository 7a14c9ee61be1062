// Package carousel decides which site the kiosk shows and when every frame reloads.
package carousel

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bassista/circum/internal/logger"
	"github.com/bassista/circum/internal/model"
	"github.com/bassista/circum/internal/settings"
	"github.com/samber/lo"
)

// Frame is the carousel state shown on screen.
type Frame struct {
	// Index of the active site, -1 when no site is configured.
	Index           int           `json:"index"`
	Site            settings.Site `json:"site"`
	Total           int           `json:"total"`
	RotationSeconds float64       `json:"rotationSeconds"`
	ShownAt         time.Time     `json:"shownAt"`
	// RefreshSeq grows each time all frames must be reloaded.
	RefreshSeq uint64 `json:"refreshSeq"`
}

// SettingsSource is the part of settings.ConfigModel the rotator depends on.
type SettingsSource interface {
	Config() settings.Settings
	AddListener(fn model.Listener[settings.Settings]) model.ListenerID
	RemoveListener(id model.ListenerID)
}

// Rotator advances the active site on a ticker and publishes it as a Model[Frame].
type Rotator struct {
	source SettingsSource
	poll   time.Duration
	now    func() time.Time

	mu          sync.Mutex
	cfg         settings.Settings
	index       int
	shownAt     time.Time
	lastRefresh time.Time
	seq         uint64
	listenerID  model.ListenerID

	frames *model.Model[Frame]
}

// NewRotator subscribes to source and publishes the first frame right away.
func NewRotator(ctx context.Context, source SettingsSource, poll time.Duration) *Rotator {
	return newRotator(ctx, source, poll, time.Now)
}

func newRotator(ctx context.Context, source SettingsSource, poll time.Duration, now func() time.Time) *Rotator {
	if poll <= 0 {
		poll = time.Second
	}
	start := now()
	r := &Rotator{
		source:      source,
		poll:        poll,
		now:         now,
		cfg:         source.Config(),
		shownAt:     start,
		lastRefresh: start,
	}
	r.frames = model.New(ctx, func(context.Context) (Frame, error) {
		return r.current(), nil
	}, nil, model.WithName("carousel"), model.WithStaleDiscard())
	r.listenerID = source.AddListener(r.onSettings)
	return r
}

// Frames returns the model carrying the active frame.
func (r *Rotator) Frames() *model.Model[Frame] {
	return r.frames
}

// Current returns the active frame without going through the model.
func (r *Rotator) Current() Frame {
	return r.current()
}

// URLs returns the configured site URLs in display order.
func (r *Rotator) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return siteURLs(r.cfg)
}

// Start runs the rotation loop until ctx is done, then unsubscribes from the settings.
func (r *Rotator) Start(ctx context.Context) {
	log := logger.WithComponent("carousel")
	log.Debugf("starting carousel with poll interval: %v", r.poll)
	ticker := time.NewTicker(r.poll)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.source.RemoveListener(r.listenerID)
				log.Info("carousel stopped")
				return
			case <-ticker.C:
				r.tick(r.now())
			}
		}
	}()
}

// Next shows the following site immediately.
func (r *Rotator) Next() *model.Pending {
	r.mu.Lock()
	r.advanceLocked(r.now())
	r.mu.Unlock()
	return r.frames.Refresh()
}

// RefreshFrames asks every frame to reload now and restarts the refresh cadence.
func (r *Rotator) RefreshFrames() *model.Pending {
	r.mu.Lock()
	r.seq++
	r.lastRefresh = r.now()
	r.mu.Unlock()
	logger.WithComponent("carousel").Debug("manual frame refresh")
	return r.frames.Refresh()
}

// tick returns nil when nothing changed.
func (r *Rotator) tick(now time.Time) *model.Pending {
	r.mu.Lock()
	changed := false

	if rotation := r.cfg.EffectiveRotation(r.index); len(r.cfg.Sites) > 1 && rotation > 0 && now.Sub(r.shownAt) >= rotation {
		r.advanceLocked(now)
		changed = true
	}
	if refresh := r.cfg.RefreshInterval(); refresh > 0 && now.Sub(r.lastRefresh) >= refresh {
		r.seq++
		r.lastRefresh = now
		changed = true
	}
	r.mu.Unlock()

	if !changed {
		return nil
	}
	return r.frames.Refresh()
}

func (r *Rotator) advanceLocked(now time.Time) {
	if n := len(r.cfg.Sites); n > 0 {
		r.index = (r.index + 1) % n
	}
	r.shownAt = now
}

func (r *Rotator) onSettings(s settings.Settings, err error) {
	if err != nil {
		logger.WithComponent("carousel").Warnf("settings update ignored: %v", err)
		return
	}

	r.mu.Lock()
	if !slices.Equal(siteURLs(r.cfg), siteURLs(s)) {
		r.index = 0
		r.shownAt = r.now()
	}
	if r.index >= len(s.Sites) {
		r.index = 0
	}
	r.cfg = s.Clone()
	r.mu.Unlock()

	r.frames.Refresh()
}

func (r *Rotator) current() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := Frame{
		Index:      -1,
		Total:      len(r.cfg.Sites),
		ShownAt:    r.shownAt,
		RefreshSeq: r.seq,
	}
	if f.Total > 0 {
		f.Index = r.index
		f.Site = r.cfg.Sites[r.index]
		f.RotationSeconds = r.cfg.EffectiveRotation(r.index).Seconds()
	}
	return f
}

func siteURLs(s settings.Settings) []string {
	return lo.Map(s.Sites, func(site settings.Site, _ int) string {
		return site.URL
	})
}
