package xmlstore

import "errors"

// Error kinds the core distinguishes. Use errors.Is against these
// sentinels; wrapped errors carry the underlying cause via %w.
var (
	// ErrNotFound is returned by single-row lookups against an unknown id.
	ErrNotFound = errors.New("xmlstore: not found")

	// ErrXMLMalformed is returned when the tokenizer rejects the input.
	ErrXMLMalformed = errors.New("xmlstore: malformed xml")

	// ErrUTF8 is returned when a token contains invalid UTF-8.
	ErrUTF8 = errors.New("xmlstore: invalid utf-8")

	// ErrStorage wraps an underlying SQL engine failure.
	ErrStorage = errors.New("xmlstore: storage error")

	// ErrChannelClosed names the case where the writer stops while the
	// producer still has messages to send. Ingest does not return it: when
	// the writer stops early, Ingest returns the writer's own error.
	ErrChannelClosed = errors.New("xmlstore: ingest channel closed")

	// ErrSelectorParse is returned at selector-compile time for a bad
	// selector string.
	ErrSelectorParse = errors.New("xmlstore: selector parse error")

	// ErrInferenceDisabled is returned when a caller asks for inferred_type
	// on a store opened without type inference.
	ErrInferenceDisabled = errors.New("xmlstore: type inference not enabled for this store")
)
