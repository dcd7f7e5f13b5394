package xmlstore

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Redactor: scrub/mask values in place. Grounded on
// original_source/src/redact.rs's redact/scrub_node/mask_node/scrub_attr/
// mask_attr. Reads happen up front against the unmodified store (mirroring
// the original's pattern of reading from an untouched source DB while
// writing into a separate output DB), then every UPDATE runs inside one
// transaction — avoiding the need for a second SQLite connection, which the
// schema's EXCLUSIVE locking_mode pragma forbids anyway.

// IgnoreRule exempts elements named Tag from full redaction. AllowValue
// keeps the element's own text/comment/CDATA children unscrubbed;
// AllowAttrs names attributes that keep their original value.
type IgnoreRule struct {
	Tag        string
	AllowValue bool
	AllowAttrs map[string]bool
}

// Mask controls which value classes get a deterministic rewrite (in
// addition to, not instead of, scrubbing).
type Mask struct {
	UUIDs bool
}

// RedactOptions configures one Redact call.
type RedactOptions struct {
	Ignore []IgnoreRule
	Mask   Mask
	seed   uuid.UUID
}

// RedactOption mutates RedactOptions, matching the package's functional
// options convention (see options.go).
type RedactOption func(*RedactOptions)

// WithIgnoreRule adds one ignore rule; later rules are independent, not
// merged — an element whose tag matches more than one rule is processed
// once per matching rule, same as original_source/src/redact.rs.
func WithIgnoreRule(rule IgnoreRule) RedactOption {
	return func(o *RedactOptions) { o.Ignore = append(o.Ignore, rule) }
}

// WithMaskUUIDs enables UUID value masking.
func WithMaskUUIDs() RedactOption {
	return func(o *RedactOptions) { o.Mask.UUIDs = true }
}

// WithSeed pins the mask seed instead of generating a random one — a
// supplemented, test-only escape hatch the original hardcodes via
// Uuid::new_v4() with no override.
func WithSeed(seed uuid.UUID) RedactOption {
	return func(o *RedactOptions) { o.seed = seed }
}

func resolveRedactOptions(opts []RedactOption) RedactOptions {
	var o RedactOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type nodeUpdate struct {
	nodeID int64
	value  string
}

type attrUpdate struct {
	attrID int64
	value  string
}

// Redact scrubs and/or masks every element's children and attributes
// in place.
func (s *Store) Redact(opts ...RedactOption) error {
	if !s.options.InferTypes {
		return ErrInferenceDisabled
	}
	options := resolveRedactOptions(opts)
	seed := options.seed
	if seed == uuid.Nil {
		seed = uuid.New()
	}

	elements, err := s.AllElements()
	if err != nil {
		return err
	}

	var nodeUpdates []nodeUpdate
	var attrUpdates []attrUpdate

	for _, el := range elements {
		rules := matchingIgnoreRules(options.Ignore, el.Name)

		children, err := s.ChildNodes(el.NodeID)
		if err != nil {
			return err
		}
		attrs, err := s.Attrs(el.NodeID)
		if err != nil {
			return err
		}

		if len(rules) == 0 {
			nodeUpdates = append(nodeUpdates, redactChildren(children, options.Mask, seed)...)
			attrUpdates = append(attrUpdates, redactAttrs(attrs, nil, options.Mask, seed)...)
			continue
		}

		for _, rule := range rules {
			if !rule.AllowValue {
				nodeUpdates = append(nodeUpdates, redactChildren(children, options.Mask, seed)...)
			}
			attrUpdates = append(attrUpdates, redactAttrs(attrs, rule.AllowAttrs, options.Mask, seed)...)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	updateNode, err := tx.Prepare("UPDATE nodes SET node_value = ? WHERE node_id = ?")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer updateNode.Close()

	updateAttr, err := tx.Prepare("UPDATE attrs SET attr_value = ? WHERE attr_id = ?")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer updateAttr.Close()

	for _, u := range nodeUpdates {
		if _, err := updateNode.Exec(u.value, u.nodeID); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: redacting node %d: %v", ErrStorage, u.nodeID, err)
		}
	}
	for _, u := range attrUpdates {
		if _, err := updateAttr.Exec(u.value, u.attrID); err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: redacting attr %d: %v", ErrStorage, u.attrID, err)
		}
	}

	return tx.Commit()
}

func matchingIgnoreRules(rules []IgnoreRule, tag string) []IgnoreRule {
	var out []IgnoreRule
	for _, r := range rules {
		if r.Tag == tag {
			out = append(out, r)
		}
	}
	return out
}

// redactChildren computes the scrub-then-mask updates for an element's
// Text/Comment/CData children: scrub first so every value class gets its
// canonical placeholder, then let a matching mask overwrite that
// placeholder with its deterministic rewrite — mask must run last, or the
// unconditional UUID scrub would immediately clobber it. Other child node
// types (nested elements) are left alone; they are redacted when the walk
// visits them as their own top-level element.
func redactChildren(children []Node, mask Mask, seed uuid.UUID) []nodeUpdate {
	var updates []nodeUpdate
	for _, child := range children {
		switch child.Type {
		case NodeText, NodeComment, NodeCData:
		default:
			continue
		}
		if !child.HasValue {
			continue
		}
		value := child.Value
		ty := inferType(child.Value)
		if scrubbed, ok := scrubValue(ty); ok {
			value = scrubbed
		}
		if mask.UUIDs && ty == InferredUuid {
			value = maskUUID(seed, strings.TrimSpace(child.Value))
		}
		if value == child.Value {
			continue
		}
		updates = append(updates, nodeUpdate{nodeID: child.NodeID, value: value})
	}
	return updates
}

// redactAttrs computes the scrub-then-mask updates for one element's
// attributes (see redactChildren for why mask must run last), skipping any
// name present in allow.
func redactAttrs(attrs []Attr, allow map[string]bool, mask Mask, seed uuid.UUID) []attrUpdate {
	var updates []attrUpdate
	for _, attr := range attrs {
		if allow != nil && allow[attr.Name] {
			continue
		}
		value := attr.Value
		ty := inferType(attr.Value)
		if scrubbed, ok := scrubValue(ty); ok {
			value = scrubbed
		}
		if mask.UUIDs && ty == InferredUuid {
			value = maskUUID(seed, attr.Value)
		}
		if value != attr.Value {
			updates = append(updates, attrUpdate{attrID: attr.AttrID, value: value})
		}
	}
	return updates
}

func maskUUID(seed uuid.UUID, raw string) string {
	return uuid.NewSHA1(seed, []byte(raw)).String()
}

// scrubValue returns the canonical replacement for ty, and whether ty is
// scrubbed at all — Empty/Whitespace/Boolean/Json values are left
// untouched.
func scrubValue(ty InferredType) (string, bool) {
	switch ty {
	case InferredString:
		return "[redacted]", true
	case InferredInt:
		return "0", true
	case InferredFloat:
		return "0.123", true
	case InferredUuid:
		return "00000000-0000-0000-0000-000000000000", true
	case InferredDateTime:
		return "1970-01-01T00:00:00Z", true
	case InferredTime:
		return "00:00:00", true
	case InferredDate:
		return "1970-01-01", true
	case InferredDuration:
		return "55:55:55", true
	default: // Empty, Whitespace, Boolean, Json
		return "", false
	}
}
