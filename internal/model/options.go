package model

type options struct {
	name         string
	isolate      bool
	discardStale bool
}

// Option configures a Model.
type Option func(*options)

// WithName tags the model's log lines.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithIsolatedListeners keeps notifying the remaining listeners when one panics.
// All failures of a refresh are reported together by Pending.Err.
func WithIsolatedListeners() Option {
	return func(o *options) {
		o.isolate = true
	}
}

// WithStaleDiscard stamps every refresh with a monotonic token and drops
// completions that are older than a result already cached.
func WithStaleDiscard() Option {
	return func(o *options) {
		o.discardStale = true
	}
}
