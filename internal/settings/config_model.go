package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bassista/circum/internal/logger"
	"github.com/bassista/circum/internal/model"
	"github.com/bassista/circum/internal/notify"
	"github.com/bassista/circum/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// StorageKey is the key the settings document is stored under.
const StorageKey = "config"

const (
	MsgNoSavedConfig  = "No saved config was found, defaults config are loaded instead"
	MsgUnreadable     = "Saved config couldn't be read, defaults config are loaded instead"
	MsgUnparseable    = "Saved config couldn't be parsed, defaults config are loaded instead"
	MsgInvalid        = "Saved config is invalid, defaults config are loaded instead"
	MsgImportSuccess  = "Import of settings was successful"
	MsgImportFailed   = "The uploaded file doesn't contain the expected settings structure. Use the settings Export to get a correct template."
	MsgResetToDefault = "Settings were reset to defaults"
)

// ErrNothingStored is returned by Reload when storage holds no settings document.
var ErrNothingStored = errors.New("no stored settings")

// LoadOutcome tells where the settings returned by a load came from.
type LoadOutcome int

const (
	LoadedPersisted LoadOutcome = iota
	LoadedDefaultsMissing
	LoadedDefaultsUnreadable
	LoadedDefaultsUnparseable
	LoadedDefaultsInvalid
)

// ConfigModel is a Model[Settings] bound to durable storage.
//
// Settings are only replaced through SetConfig (or the helpers built on it), which
// installs a new static getter so every listener sees the change.
type ConfigModel struct {
	*model.Model[Settings]

	store     storage.Storage
	notifier  notify.Notifier
	key       string
	modelOpts []model.Option
	log       *logrus.Entry
}

// Option configures a ConfigModel.
type Option func(*ConfigModel)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(c *ConfigModel) {
		if key != "" {
			c.key = key
		}
	}
}

// WithModelOptions passes options to the underlying model.
func WithModelOptions(opts ...model.Option) Option {
	return func(c *ConfigModel) {
		c.modelOpts = append(c.modelOpts, opts...)
	}
}

// NewConfigModel loads the stored settings (or defaults) and returns once they are
// cached, so Config can be called right away. notifier may be nil.
func NewConfigModel(ctx context.Context, store storage.Storage, notifier notify.Notifier, opts ...Option) *ConfigModel {
	if notifier == nil {
		notifier = notify.NotifierFunc(func(notify.Notification) {})
	}

	c := &ConfigModel{
		store:    store,
		notifier: notifier,
		key:      StorageKey,
		log:      logger.WithComponent("settings"),
	}
	for _, opt := range opts {
		opt(c)
	}

	initial := c.Load()
	modelOpts := append([]model.Option{model.WithName("settings")}, c.modelOpts...)
	c.Model = model.New(ctx, getterFor(initial), nil, modelOpts...)

	// a static getter cannot block
	<-c.Loading().Done()
	return c
}

func getterFor(s Settings) model.Getter[Settings] {
	return model.Static(s.Clone())
}

// Config returns a copy of the current settings. The getter of this model cannot
// fail, so a cached error is an invariant violation and panics.
func (c *ConfigModel) Config() Settings {
	s, err := c.Data()
	if err != nil {
		panic(fmt.Errorf("settings model holds an error: %w", err))
	}
	return s.Clone()
}

// SetConfig installs s as the current settings and notifies all listeners.
// It does not persist; see Update.
func (c *ConfigModel) SetConfig(s Settings) *model.Pending {
	return c.SetGetter(getterFor(s))
}

// Update installs s and persists it.
func (c *ConfigModel) Update(s Settings) *model.Pending {
	p := c.SetConfig(s)
	c.persist(s)
	return p
}

// Save writes the current settings to storage. Persistence is best effort: failures
// are logged and never returned.
func (c *ConfigModel) Save() {
	c.persist(c.Config())
}

// persist refuses to write anything Load would replace with the defaults.
func (c *ConfigModel) persist(s Settings) {
	s = s.Clone()
	if err := Check(s); err != nil {
		c.log.Warnf("settings not saved: %v", err)
		return
	}
	payload, err := json.Marshal(s)
	if err != nil {
		c.log.Warnf("settings not saved: marshal: %v", err)
		return
	}
	if err := c.store.SetItem(c.key, string(payload)); err != nil {
		c.log.Warnf("settings not saved: %v", err)
		return
	}
	c.log.Debug("settings saved")
}

// Load reads the settings from storage. On any failure it notifies the user and
// returns the defaults.
func (c *ConfigModel) Load() Settings {
	s, outcome, detail := c.load()
	switch outcome {
	case LoadedDefaultsMissing:
		c.notifyLoad(notify.LevelWarning, MsgNoSavedConfig, detail)
	case LoadedDefaultsUnreadable:
		c.notifyLoad(notify.LevelError, MsgUnreadable, detail)
	case LoadedDefaultsUnparseable:
		c.notifyLoad(notify.LevelError, MsgUnparseable, detail)
	case LoadedDefaultsInvalid:
		c.notifyLoad(notify.LevelError, MsgInvalid, detail)
	}
	return s
}

func (c *ConfigModel) load() (Settings, LoadOutcome, string) {
	raw, ok, err := c.store.GetItem(c.key)
	if err != nil {
		return Defaults(), LoadedDefaultsUnreadable, err.Error()
	}
	if !ok || raw == "" {
		return Defaults(), LoadedDefaultsMissing, ""
	}

	v := AssertSettings([]byte(raw))
	switch v.Problem() {
	case ProblemParse:
		return Defaults(), LoadedDefaultsUnparseable, v.Reason()
	case ProblemSchema:
		return Defaults(), LoadedDefaultsInvalid, v.Reason()
	}
	return v.Settings(), LoadedPersisted, ""
}

func (c *ConfigModel) notifyLoad(level notify.Level, message, detail string) {
	c.notifier.Notify(notify.Notification{
		Level:   level,
		Header:  "Loading settings",
		Detail:  detail,
		Message: message,
	})
}

// Reload re-reads storage after an outside change. Unlike Load it never falls back
// to defaults: when the stored document is missing or unusable the current settings
// stay active. It returns nil when nothing changed.
func (c *ConfigModel) Reload() (*model.Pending, error) {
	s, outcome, detail := c.load()
	switch outcome {
	case LoadedPersisted:
	case LoadedDefaultsMissing:
		return nil, ErrNothingStored
	default:
		c.log.Warnf("stored settings ignored: %s", detail)
		return nil, fmt.Errorf("reload settings: %s", detail)
	}
	if s.Equal(c.Config()) {
		c.log.Trace("stored settings unchanged, skipping reload")
		return nil, nil
	}
	c.log.Info("settings reloaded from storage")
	return c.SetConfig(s), nil
}

// Patch merges the known top-level fields of a JSON object into the current settings,
// validates the result, installs and persists it.
func (c *ConfigModel) Patch(raw []byte) (Settings, *model.Pending, error) {
	if !gjson.ValidBytes(raw) {
		return Settings{}, nil, ErrUnparseable
	}
	patch := gjson.ParseBytes(raw)
	if !patch.IsObject() {
		return Settings{}, nil, fmt.Errorf("%w: patch must be a JSON object", ErrInvalidSettings)
	}

	current, err := json.Marshal(c.Config())
	if err != nil {
		return Settings{}, nil, fmt.Errorf("marshal settings: %w", err)
	}

	doc := string(current)
	for _, f := range requiredFields {
		value := patch.Get(f.name)
		if !value.Exists() {
			continue
		}
		if doc, err = sjson.SetRaw(doc, f.name, value.Raw); err != nil {
			return Settings{}, nil, fmt.Errorf("merge field %s: %w", f.name, err)
		}
	}

	v := AssertSettings([]byte(doc))
	if err := v.Err(); err != nil {
		return Settings{}, nil, err
	}
	return v.Settings(), c.Update(v.Settings()), nil
}

// Import accepts a user supplied settings document. Invalid documents are rejected
// without touching the current settings.
func (c *ConfigModel) Import(raw []byte) (*model.Pending, error) {
	v := AssertSettings(raw)
	if err := v.Err(); err != nil {
		c.notifier.Notify(notify.Notification{
			Level:   notify.LevelError,
			Header:  "Settings import",
			Detail:  v.Reason(),
			Message: MsgImportFailed,
		})
		return nil, err
	}

	p := c.Update(v.Settings())
	c.notifier.Notify(notify.Notification{
		Level:   notify.LevelSuccess,
		Header:  "Settings import",
		Detail:  "Success",
		Message: MsgImportSuccess,
	})
	return p, nil
}

// Export returns the current settings as indented JSON.
func (c *ConfigModel) Export() ([]byte, error) {
	return json.MarshalIndent(c.Config(), "", "  ")
}

// Reset removes the stored document and installs the defaults.
func (c *ConfigModel) Reset() *model.Pending {
	if err := c.store.RemoveItem(c.key); err != nil {
		c.log.Warnf("stored settings not removed: %v", err)
	}
	c.notifier.Notify(notify.Notification{
		Level:   notify.LevelInfo,
		Header:  "Settings",
		Message: MsgResetToDefault,
	})
	return c.SetConfig(Defaults())
}

// IsInvalid reports whether err was caused by a rejected settings document.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidSettings) || errors.Is(err, ErrUnparseable)
}
