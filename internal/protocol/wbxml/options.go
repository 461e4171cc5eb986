package wbxml

import "github.com/rs/zerolog"

// DefaultChunkSize bounds each OnOpaqueData delivery.
const DefaultChunkSize = 256

// Option configures a Parser or Writer.
type Option func(*options)

type options struct {
	logger      zerolog.Logger
	chunkSize   int
	initialPage int
}

func defaultOptions() options {
	return options{
		logger:    zerolog.Nop(),
		chunkSize: DefaultChunkSize,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithLogger routes parse/write traces to logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithChunkSize sets the opaque delivery chunk size. Values below 1 keep
// the default.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithInitialPage selects the codepage active before any SWITCH_PAGE.
func WithInitialPage(index int) Option {
	return func(o *options) { o.initialPage = index }
}
