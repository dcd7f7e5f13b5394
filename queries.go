package xmlstore

import (
	"database/sql"
	"fmt"
)

// Query surface for the Document Store. Every method here is a
// thin, single-purpose SQL statement; composition (selector matching)
// happens in selector.go and selector_match.go on top of these primitives,
// mirroring original_source/src/document.rs's Document impl.

// ParentOf returns the parent node id of nodeID, or DocumentSentinelID if
// nodeID is the root placeholder.
func (s *Store) ParentOf(nodeID int64) (int64, error) {
	var parent int64
	err := s.db.QueryRow("SELECT parent_node_id FROM nodes WHERE node_id = ?", nodeID).Scan(&parent)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, nodeID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return parent, nil
}

// Node returns the full row for nodeID.
func (s *Store) Node(nodeID int64) (Node, error) {
	return s.scanNode(s.nodeQuery("node_id = ?", nodeID))
}

// Element returns the (ns, name) pair for an element node, failing if
// nodeID does not refer to a node of type Element.
func (s *Store) Element(nodeID int64) (Element, error) {
	n, err := s.Node(nodeID)
	if err != nil {
		return Element{}, err
	}
	if n.Type != NodeElement {
		return Element{}, fmt.Errorf("%w: node %d is not an element", ErrStorage, nodeID)
	}
	return n.AsElement(), nil
}

// ChildNodes returns all direct children of parentID, in document order,
// node type unrestricted.
func (s *Store) ChildNodes(parentID int64) ([]Node, error) {
	return s.scanNodes(s.nodesQuery("parent_node_id = ? AND node_id != 0 ORDER BY node_order", parentID))
}

// Children returns only the element-typed direct children of parentID, in
// document order.
func (s *Store) Children(parentID int64) ([]Node, error) {
	return s.scanNodes(s.nodesQuery(
		"parent_node_id = ? AND node_type = ? ORDER BY node_order", parentID, int(NodeElement)))
}

// ChildrenByName returns the element-typed direct children of parentID whose
// name matches (case-folded if the store is case-insensitive).
func (s *Store) ChildrenByName(parentID int64, name string) ([]Node, error) {
	name = s.normalizeName(name)
	return s.scanNodes(s.nodesQuery(
		"parent_node_id = ? AND node_type = ? AND node_name = ? ORDER BY node_order",
		parentID, int(NodeElement), name))
}

// PrevSibling returns the node immediately preceding nodeID under the same
// parent, or ErrNotFound if nodeID is the first child.
func (s *Store) PrevSibling(nodeID int64) (Node, error) {
	return s.sibling(nodeID, "<", "DESC")
}

// NextSibling returns the node immediately following nodeID under the same
// parent, or ErrNotFound if nodeID is the last child.
func (s *Store) NextSibling(nodeID int64) (Node, error) {
	return s.sibling(nodeID, ">", "ASC")
}

func (s *Store) sibling(nodeID int64, cmp, order string) (Node, error) {
	n, err := s.Node(nodeID)
	if err != nil {
		return Node{}, err
	}
	query := fmt.Sprintf(
		"parent_node_id = ? AND node_id != 0 AND node_order %s ? ORDER BY node_order %s LIMIT 1",
		cmp, order)
	return s.scanNode(s.nodeQuery(query, n.ParentNodeID, n.Order))
}

// HasChildren reports whether parentID has at least one direct child of any
// type. An element is empty iff it has no children.
func (s *Store) HasChildren(parentID int64) (bool, error) {
	n, err := s.countWhere("SELECT COUNT(*) FROM nodes WHERE parent_node_id = ?", parentID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Attrs returns all attributes of parentID, in declaration order.
func (s *Store) Attrs(parentID int64) ([]Attr, error) {
	return s.scanAttrs(s.attrsQuery("parent_node_id = ? ORDER BY attr_order", parentID))
}

// AttrByName returns the single unqualified (no-namespace) attribute named
// name on parentID, or ErrNotFound. Equivalent to
// AttrByNameNS(parentID, name, nil).
func (s *Store) AttrByName(parentID int64, name string) (Attr, error) {
	return s.AttrByNameNS(parentID, name, nil)
}

// AttrByNameNS returns the single attribute named name in namespace ns on
// parentID, or ErrNotFound. ns == nil and a pointer to "" both mean
// "no namespace" (attr_ns IS NULL, the unqualified attribute); any other
// value filters to that exact namespace, letting ns|attr selectors resolve
// to the attribute actually declared in that namespace instead of
// whichever same-named attribute SQLite happens to return first.
func (s *Store) AttrByNameNS(parentID int64, name string, ns *string) (Attr, error) {
	name = s.normalizeName(name)
	if ns == nil || *ns == "" {
		return s.scanAttr(s.attrQuery("parent_node_id = ? AND attr_name = ? AND attr_ns IS NULL", parentID, name))
	}
	return s.scanAttr(s.attrQuery(
		"parent_node_id = ? AND attr_name = ? AND attr_ns = ?", parentID, name, s.normalizeName(*ns)))
}

// Descendents returns every node under (not including) nodeID, via a
// recursive CTE. Rows are ordered by parent node id, then by sibling order:
// they come grouped by parent, which is not document order once the tree
// is more than one level deep.
func (s *Store) Descendents(nodeID int64) ([]Node, error) {
	const query = `
WITH RECURSIVE sub(id) AS (
	SELECT node_id FROM nodes WHERE parent_node_id = ? AND node_id != 0
	UNION ALL
	SELECT n.node_id FROM nodes n JOIN sub ON n.parent_node_id = sub.id
)
SELECT ` + nodeColumns + `
FROM nodes
WHERE node_id IN (SELECT id FROM sub)
ORDER BY parent_node_id, node_order`
	return s.scanNodes(s.db.Query(query, nodeID))
}

// DescendentNodes is an alias of Descendents kept for symmetry with
// original_source/src/document.rs's descendent_nodes/descendents split
// (the original distinguishes "elements only" vs "every node type"; here
// both return every node type, and element-only filtering is the caller's
// responsibility via node.Type).
func (s *Store) DescendentNodes(nodeID int64) ([]Node, error) {
	return s.Descendents(nodeID)
}

// ElementsMatchingAttrValue returns every element node that carries an
// attribute named attrName with exactly value attrValue.
func (s *Store) ElementsMatchingAttrValue(attrName, attrValue string) ([]Node, error) {
	attrName = s.normalizeName(attrName)
	const query = `
SELECT ` + nodeColumnsPrefixed + `
FROM nodes n
JOIN attrs a ON a.parent_node_id = n.node_id
WHERE a.attr_name = ? AND a.attr_value = ? AND n.node_type = ?
ORDER BY n.node_id`
	return s.scanNodes(s.db.Query(query, attrName, attrValue, int(NodeElement)))
}

// InferredTypeOf returns the classification recorded for a node's value.
// Returns ErrInferenceDisabled if the store was opened without
// WithTypeInference.
func (s *Store) InferredTypeOf(nodeID int64) (InferredType, error) {
	if !s.options.InferTypes {
		return 0, ErrInferenceDisabled
	}
	var tag string
	err := s.db.QueryRow("SELECT inferred_type FROM nodes WHERE node_id = ?", nodeID).Scan(&tag)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, nodeID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return ParseInferredType(tag)
}

// AttrInferredType returns the classification recorded for an attribute's
// value.
func (s *Store) AttrInferredType(attrID int64) (InferredType, error) {
	if !s.options.InferTypes {
		return 0, ErrInferenceDisabled
	}
	var tag string
	err := s.db.QueryRow("SELECT inferred_type FROM attrs WHERE attr_id = ?", attrID).Scan(&tag)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: attr %d", ErrNotFound, attrID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return ParseInferredType(tag)
}

// BufferPosition returns the byte offset into the source document where
// nodeID began.
func (s *Store) BufferPosition(nodeID int64) (int64, error) {
	var pos int64
	err := s.db.QueryRow("SELECT buffer_position FROM nodes WHERE node_id = ?", nodeID).Scan(&pos)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: node %d", ErrNotFound, nodeID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return pos, nil
}

// AttrBufferPosition returns the byte offset recorded for attrID: the offset
// where its owning element's start tag began. The attribute's own position
// inside that tag is not recorded.
func (s *Store) AttrBufferPosition(attrID int64) (int64, error) {
	var pos int64
	err := s.db.QueryRow("SELECT buffer_position FROM attrs WHERE attr_id = ?", attrID).Scan(&pos)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: attr %d", ErrNotFound, attrID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return pos, nil
}

// AllElements returns every element node in the document, root included, in
// node-id order (supplemented convenience query that reads the nodes table
// by node_type directly rather than walking Descendents).
func (s *Store) AllElements() ([]Node, error) {
	return s.scanNodes(s.nodesQuery("node_type = ? ORDER BY node_id", int(NodeElement)))
}

// AllNodes returns every node row, sentinels included, in node-id order.
func (s *Store) AllNodes() ([]Node, error) {
	return s.scanNodes(s.nodesQuery("1 = 1 ORDER BY node_id"))
}

const nodeColumnsBare = "node_id, parent_node_id, node_order, node_type, node_ns, node_name, node_value, buffer_position"

// nodeColumns/nodeColumnsPrefixed select the same columns unqualified and
// qualified by the "n" alias respectively, so scanNode(s) can share one
// Scan call shape regardless of which query produced the rows.
const nodeColumns = nodeColumnsBare
const nodeColumnsPrefixed = "n.node_id, n.parent_node_id, n.node_order, n.node_type, n.node_ns, n.node_name, n.node_value, n.buffer_position"

const attrColumns = "attr_id, attr_order, attr_ns, attr_name, attr_value, parent_node_id, buffer_position"

func (s *Store) nodeQuery(where string, args ...any) (*sql.Row, error) {
	query := "SELECT " + nodeColumns + " FROM nodes WHERE " + where
	return s.db.QueryRow(query, args...), nil
}

func (s *Store) nodesQuery(where string, args ...any) (*sql.Rows, error) {
	query := "SELECT " + nodeColumns + " FROM nodes WHERE " + where
	return s.db.Query(query, args...)
}

func (s *Store) attrQuery(where string, args ...any) (*sql.Row, error) {
	query := "SELECT " + attrColumns + " FROM attrs WHERE " + where
	return s.db.QueryRow(query, args...), nil
}

func (s *Store) attrsQuery(where string, args ...any) (*sql.Rows, error) {
	query := "SELECT " + attrColumns + " FROM attrs WHERE " + where
	return s.db.Query(query, args...)
}

func (s *Store) scanNode(row *sql.Row, rowErr error) (Node, error) {
	if rowErr != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrStorage, rowErr)
	}
	var n Node
	var ns, name, value sql.NullString
	var nodeType int
	err := row.Scan(&n.NodeID, &n.ParentNodeID, &n.Order, &nodeType, &ns, &name, &value, &n.BufferPosition)
	if err == sql.ErrNoRows {
		return Node{}, fmt.Errorf("%w", ErrNotFound)
	}
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	n.Type, err = parseNodeType(uint8(nodeType))
	if err != nil {
		return Node{}, err
	}
	n.NS, n.Name = ns.String, name.String
	n.HasValue = value.Valid
	n.Value = value.String
	return n, nil
}

func (s *Store) scanNodes(rows *sql.Rows, rowsErr error) ([]Node, error) {
	if rowsErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, rowsErr)
	}
	defer rows.Close()

	var out []Node
	for rows.Next() {
		var n Node
		var ns, name, value sql.NullString
		var nodeType int
		if err := rows.Scan(&n.NodeID, &n.ParentNodeID, &n.Order, &nodeType, &ns, &name, &value, &n.BufferPosition); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		typ, err := parseNodeType(uint8(nodeType))
		if err != nil {
			return nil, err
		}
		n.Type = typ
		n.NS, n.Name = ns.String, name.String
		n.HasValue = value.Valid
		n.Value = value.String
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) scanAttr(row *sql.Row, rowErr error) (Attr, error) {
	if rowErr != nil {
		return Attr{}, fmt.Errorf("%w: %v", ErrStorage, rowErr)
	}
	var a Attr
	var order int64
	var ns sql.NullString
	err := row.Scan(&a.AttrID, &order, &ns, &a.Name, &a.Value, &a.ParentNodeID, &a.BufferPosition)
	if err == sql.ErrNoRows {
		return Attr{}, fmt.Errorf("%w", ErrNotFound)
	}
	if err != nil {
		return Attr{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	a.NS = ns.String
	return a, nil
}

func (s *Store) scanAttrs(rows *sql.Rows, rowsErr error) ([]Attr, error) {
	if rowsErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, rowsErr)
	}
	defer rows.Close()

	var out []Attr
	for rows.Next() {
		var a Attr
		var order int64
		var ns sql.NullString
		if err := rows.Scan(&a.AttrID, &order, &ns, &a.Name, &a.Value, &a.ParentNodeID, &a.BufferPosition); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		a.NS = ns.String
		out = append(out, a)
	}
	return out, rows.Err()
}
