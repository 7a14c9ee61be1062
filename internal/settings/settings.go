// Package settings holds the kiosk configuration shown on screen and the model that
// persists it.
package settings

import (
	"slices"
	"time"
)

// Site is one website displayed in the carousel.
type Site struct {
	URL string `json:"url"`
	// RotationRate is how many seconds the site stays on screen when the global
	// rate is not in use.
	RotationRate float64 `json:"rotationRate" validate:"gte=0"`
}

// Settings is the persisted kiosk configuration.
type Settings struct {
	Sites []Site `json:"sites" validate:"dive"`
	// RotationRate applies to every site when UseGlobalRotationRate is set.
	RotationRate          float64 `json:"rotationRate" validate:"gte=0"`
	UseGlobalRotationRate bool    `json:"useGlobalRotationRate"`
	// RefreshRate is how many seconds pass between reloads of every frame.
	RefreshRate float64 `json:"refreshRate" validate:"gte=0"`
	// WakeLock keeps the screen of the display device on.
	WakeLock bool `json:"wakeLock"`
}

// Defaults returns a fresh copy of the settings used when nothing usable is stored.
func Defaults() Settings {
	return Settings{
		Sites: []Site{
			{URL: "./frames/clock.html", RotationRate: 60},
			{URL: "./frames/weather.html", RotationRate: 60},
		},
		UseGlobalRotationRate: true,
		RotationRate:          60,
		RefreshRate:           600,
		WakeLock:              false,
	}
}

// Clone returns a deep copy, so callers never share the Sites slice. A nil site list
// becomes empty so it encodes as [] rather than null.
func (s Settings) Clone() Settings {
	c := s
	c.Sites = make([]Site, len(s.Sites))
	copy(c.Sites, s.Sites)
	return c
}

// Equal reports whether both settings describe the same configuration.
func (s Settings) Equal(o Settings) bool {
	return s.RotationRate == o.RotationRate &&
		s.UseGlobalRotationRate == o.UseGlobalRotationRate &&
		s.RefreshRate == o.RefreshRate &&
		s.WakeLock == o.WakeLock &&
		slices.Equal(s.Sites, o.Sites)
}

// EffectiveRotation returns how long site i stays on screen.
func (s Settings) EffectiveRotation(i int) time.Duration {
	rate := s.RotationRate
	if !s.UseGlobalRotationRate && i >= 0 && i < len(s.Sites) {
		rate = s.Sites[i].RotationRate
	}
	return seconds(rate)
}

// RefreshInterval returns the time between two reloads of all frames.
func (s Settings) RefreshInterval() time.Duration {
	return seconds(s.RefreshRate)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
