package xmlstore

import "fmt"

// NodeType discriminates the kind of XML structural item a row represents.
// Values match the original necessary-nu/xmlsql wire encoding so the
// integer stored in node_type is stable across implementations.
type NodeType uint8

const (
	NodeDocument NodeType = iota
	NodeElement
	NodeText
	NodeCData
	NodeComment
	NodeDeclaration
	NodeDoctype
	NodeProcessingInstruction
)

func (t NodeType) String() string {
	switch t {
	case NodeDocument:
		return "document"
	case NodeElement:
		return "element"
	case NodeText:
		return "text"
	case NodeCData:
		return "cdata"
	case NodeComment:
		return "comment"
	case NodeDeclaration:
		return "declaration"
	case NodeDoctype:
		return "doctype"
	case NodeProcessingInstruction:
		return "processing_instruction"
	default:
		return fmt.Sprintf("node_type(%d)", uint8(t))
	}
}

func parseNodeType(v uint8) (NodeType, error) {
	if v > uint8(NodeProcessingInstruction) {
		return 0, fmt.Errorf("%w: unknown node_type %d", ErrStorage, v)
	}
	return NodeType(v), nil
}

// DocumentSentinelID and RootPlaceholderID are the two reserved node ids
// created with the schema, before any content is ingested.
const (
	DocumentSentinelID = 0
	RootPlaceholderID  = 1
)

// Element is a lightweight handle to an element row: enough to keep
// traversing the store without re-reading the full node.
type Element struct {
	NodeID int64
	NS     string // empty means no namespace prefix
	Name   string
}

// HasNS reports whether the element declared a namespace prefix.
func (e Element) HasNS() bool { return e.NS != "" }

// Attr is a single attribute row. Its inferred type, when the store was
// opened with type inference, is available via Store.AttrInferredType.
type Attr struct {
	AttrID         int64
	ParentNodeID   int64
	NS             string
	Name           string
	Value          string
	BufferPosition int64
}

// Node is the tagged union over every node_type. Exactly one of the
// type-specific accessor methods is meaningful for a given NodeType; callers
// switch on Type. Its inferred type, when the store was opened with type
// inference, is available via Store.InferredTypeOf.
type Node struct {
	NodeID         int64
	ParentNodeID   int64
	Order          int64
	Type           NodeType
	NS             string
	Name           string
	Value          string
	HasValue       bool
	BufferPosition int64
}

// AsElement narrows a Node known to be NodeElement into an Element handle.
func (n Node) AsElement() Element {
	return Element{NodeID: n.NodeID, NS: n.NS, Name: n.Name}
}
