// Package printer renders a node tree back to XML text, independent of any
// particular storage backend. Grounded on original_source/src/writer.rs's
// Config/State/Print contract: the same indent/end_pad/max_line_length/
// entity_mode/indent_text_nodes knobs, the same attribute line-wrapping
// heuristic, and the same entity-escaping rules, translated into a Go
// dispatch-by-kind shape the way xml/streaming_encoder.go dispatches on Go
// struct tags instead of a trait impl per variant.
//
// The tree type defined here is deliberately storage-agnostic (Node/NodeType
// are not the xmlstore package's types) so this package can sit under
// internal/ as a standalone formatter with no dependency back on xmlstore —
// xmlstore.Format builds one of these trees from a Store and hands it off.
package printer

import (
	"fmt"
	"io"
	"strings"
)

// NodeType discriminates the kind of item a Node represents.
type NodeType uint8

const (
	Document NodeType = iota
	Element
	Text
	CData
	Comment
	Declaration
	Doctype
	ProcessingInstruction
)

// Attr is one name/value pair on an Element node.
type Attr struct {
	Name  string
	Value string
}

// Node is one item in the tree to print. Name holds the element/PI target/
// doctype name; Value holds the text/comment/CData/declaration payload.
// Children is populated only for Document and Element nodes.
type Node struct {
	Kind     NodeType
	Name     string
	Value    string
	Attrs    []Attr
	Children []Node
}

// EntityMode selects how non-ASCII and reserved characters are escaped.
type EntityMode uint8

const (
	// EntityStandard emits named entities (&amp;, &lt;, ...).
	EntityStandard EntityMode = iota
	// EntityHex emits numeric character references (&#x...;).
	EntityHex
)

// Config controls layout, matching original_source/src/writer.rs's Config.
type Config struct {
	Pretty          bool
	Indent          int // spaces per nesting level, when Pretty
	EndPad          int // trailing newlines appended after the last top-level node
	MaxLineLength   int // attribute line-wrap threshold
	EntityMode      EntityMode
	IndentTextNodes bool // indent Text/CData children the same as Element children
}

// DefaultPretty returns the conventional pretty-printing configuration.
func DefaultPretty() Config {
	return Config{
		Pretty:        true,
		Indent:        2,
		EndPad:        1,
		MaxLineLength: 80,
		EntityMode:    EntityStandard,
	}
}

// DefaultCompact returns a configuration that writes the document on a
// single logical line, newlines only where content itself contains them.
func DefaultCompact() Config {
	return Config{
		MaxLineLength: 80,
		EntityMode:    EntityStandard,
	}
}

type state struct {
	cfg   Config
	depth int
}

func (st state) indented() state {
	st.depth++
	return st
}

func (st state) pad() string {
	if !st.cfg.Pretty {
		return ""
	}
	return strings.Repeat(" ", st.depth*st.cfg.Indent)
}

func (st state) newline() string {
	if !st.cfg.Pretty {
		return ""
	}
	return "\n"
}

// Print writes doc (a Document-kind Node) to w under cfg.
func Print(w io.Writer, doc Node, cfg Config) error {
	if doc.Kind != Document {
		return fmt.Errorf("printer: root node must be Document, got %v", doc.Kind)
	}
	st := state{cfg: cfg}
	for i, child := range doc.Children {
		if i > 0 {
			if _, err := io.WriteString(w, st.newline()); err != nil {
				return err
			}
		}
		if err := printNode(w, child, st); err != nil {
			return err
		}
	}
	if cfg.EndPad > 0 {
		if _, err := io.WriteString(w, strings.Repeat("\n", cfg.EndPad)); err != nil {
			return err
		}
	}
	return nil
}

func printNode(w io.Writer, n Node, st state) error {
	switch n.Kind {
	case Element:
		return printElement(w, n, st)
	case Text:
		return printText(w, n.Value, st)
	case CData:
		return printCData(w, n.Value, st)
	case Comment:
		return printComment(w, n.Value, st)
	case Declaration:
		return printDeclaration(w, n.Value, st)
	case Doctype:
		return printDoctype(w, n.Value, st)
	case ProcessingInstruction:
		return printPI(w, n, st)
	default:
		return fmt.Errorf("printer: unprintable node kind %v", n.Kind)
	}
}

func printDeclaration(w io.Writer, value string, st state) error {
	_, err := fmt.Fprintf(w, "<?xml%s?>", value)
	return err
}

func printDoctype(w io.Writer, value string, st state) error {
	_, err := fmt.Fprintf(w, "<!DOCTYPE%s>", value)
	return err
}

func printComment(w io.Writer, value string, st state) error {
	prefix := ""
	if st.cfg.IndentTextNodes {
		prefix = st.pad()
	}
	_, err := fmt.Fprintf(w, "%s<!--%s-->", prefix, value)
	return err
}

func printPI(w io.Writer, n Node, st state) error {
	_, err := fmt.Fprintf(w, "<?%s %s?>", n.Name, n.Value)
	return err
}

func printText(w io.Writer, value string, st state) error {
	prefix := ""
	if st.cfg.IndentTextNodes {
		prefix = st.pad()
	}
	_, err := io.WriteString(w, prefix+escapeEntities(value, st.cfg.EntityMode, true))
	return err
}

func printCData(w io.Writer, value string, st state) error {
	prefix := ""
	if st.cfg.IndentTextNodes {
		prefix = st.pad()
	}
	_, err := fmt.Fprintf(w, "%s<![CDATA[%s]]>", prefix, value)
	return err
}

func printElement(w io.Writer, n Node, st state) error {
	if _, err := fmt.Fprintf(w, "%s<%s", st.pad(), n.Name); err != nil {
		return err
	}
	if err := writeAttrs(w, n.Name, n.Attrs, st); err != nil {
		return err
	}

	if len(n.Children) == 0 {
		if len(n.Attrs) == 0 {
			_, err := io.WriteString(w, "/>")
			return err
		}
		_, err := io.WriteString(w, " />")
		return err
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	childSt := st.indented()
	hasOnlyText := allTextLike(n.Children) && !st.cfg.IndentTextNodes
	for _, child := range n.Children {
		if !hasOnlyText {
			if _, err := io.WriteString(w, st.newline()); err != nil {
				return err
			}
		}
		if err := printNode(w, child, childSt); err != nil {
			return err
		}
	}
	if !hasOnlyText {
		if _, err := io.WriteString(w, st.newline()+st.pad()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "</%s>", n.Name)
	return err
}

func allTextLike(nodes []Node) bool {
	for _, n := range nodes {
		if n.Kind != Text && n.Kind != CData {
			return false
		}
	}
	return true
}

// writeAttrs implements the two-stage line-wrapping decision of
// original_source/src/writer.rs's fmt_attrs: whether to break after the tag
// name before the first attribute is decided from the tag-plus-first-attr
// length; whether to break between every later attribute is decided
// separately, from the full attribute list's total rendered length.
func writeAttrs(w io.Writer, tagName string, attrs []Attr, st state) error {
	if len(attrs) == 0 {
		return nil
	}

	leadLen := len(st.pad()) + 1 + len(tagName) + attrLen(attrs[0])
	breakFirst := st.cfg.Pretty && leadLen > st.cfg.MaxLineLength

	total := leadLen
	for _, a := range attrs[1:] {
		total += 1 + attrLen(a)
	}
	breakRest := st.cfg.Pretty && total > st.cfg.MaxLineLength

	childIndent := st.indented().pad()

	for i, a := range attrs {
		var sep string
		switch {
		case i == 0 && breakFirst:
			sep = st.newline() + childIndent
		case i == 0:
			sep = " "
		case breakRest:
			sep = st.newline() + childIndent
		default:
			sep = " "
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
		value := escapeEntities(a.Value, st.cfg.EntityMode, false)
		if _, err := fmt.Fprintf(w, `%s="%s"`, a.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func attrLen(a Attr) int {
	return len(a.Name) + len(`=""`) + len(a.Value)
}
