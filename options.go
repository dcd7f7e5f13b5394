package xmlstore

import "strings"

// Options configures ingest behavior.
type Options struct {
	IgnoreWhitespace bool
	InferTypes       bool
	CaseInsensitive  bool
}

// Option mutates an Options value. Functional-options pattern.
type Option func(*Options)

// WithIgnoreWhitespace trims text/CData/comment values at ingest.
func WithIgnoreWhitespace() Option {
	return func(o *Options) { o.IgnoreWhitespace = true }
}

// WithTypeInference enables type classification on every node/attr value
// and adds the inferred_type column to the schema.
func WithTypeInference() Option {
	return func(o *Options) { o.InferTypes = true }
}

// WithCaseInsensitive lowercases element names, attribute names/prefixes,
// and text content at ingest; query-side string inputs are lowercased to
// match.
func WithCaseInsensitive() Option {
	return func(o *Options) { o.CaseInsensitive = true }
}

func resolveOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// normalizeName lowercases name lookups when the store was built
// case-insensitive, mirroring original_source/src/document.rs's use of
// Cow::Owned(x.to_lowercase()) in children_by_name/attr_by_name/
// elements_matching_attr_value.
func (s *Store) normalizeName(name string) string {
	if s.options.CaseInsensitive {
		return strings.ToLower(name)
	}
	return name
}
