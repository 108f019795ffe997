package core

import (
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/internal"
	"time"
)

// PostProcessor may replace or augment an assembled CDR; returning nil keeps the assembled one
type PostProcessor func(session *entity.ChargingSession, record *cdr.Cdr) (*cdr.Cdr, error)

type Option func(b *Builder)

// WithClock sets the source of last_updated
func WithClock(clock func() time.Time) Option {
	return func(b *Builder) {
		if clock != nil {
			b.clock = clock
		}
	}
}

func WithPostProcessor(processor PostProcessor) Option {
	return func(b *Builder) {
		b.postProcessor = processor
	}
}

// WithSignedDataEncoding sets the encoding method used when the session does not name one
func WithSignedDataEncoding(encoding string) Option {
	return func(b *Builder) {
		b.encoding = encoding
	}
}

func WithLogger(logger internal.LogHandler) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}
