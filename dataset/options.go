package dataset

import (
	"github.com/viant/geofeat/feature"
	"github.com/viant/geofeat/mapper"
)

type options struct {
	mapper    mapper.Mapper
	schema    *feature.Schema
	lenient   bool
	logger    *Logger
	changeLog bool
}

// Option configures a Workspace or a Dataset. Options given to a Workspace
// are defaults for every dataset it opens.
type Option func(o *options)

// WithMapper sets the feature mapper.
func WithMapper(m mapper.Mapper) Option {
	return func(o *options) { o.mapper = m }
}

// WithSchema validates feature properties against s on write.
func WithSchema(s *feature.Schema) Option {
	return func(o *options) { o.schema = s }
}

// WithLenient skips undecodable records on read instead of failing.
func WithLenient(lenient bool) Option {
	return func(o *options) { o.lenient = lenient }
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithChangeLog records inserts, updates and deletes of collections created
// by the workspace in the featsync change log.
func WithChangeLog(enabled bool) Option {
	return func(o *options) { o.changeLog = enabled }
}

func newOptions(base options, opts []Option) options {
	o := base
	for _, opt := range opts {
		opt(&o)
	}
	if o.mapper == nil {
		o.mapper = mapper.Envelope{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
