package xmlstore

import (
	"errors"
	"fmt"
	"strings"
)

// matchesCompound evaluates one tag#id.class[attr]... group against a single
// element node, grounded on original_source/src/select.rs's ElementRef
// methods (has_local_name, has_namespace, has_id, has_class, attr_matches).
func matchesCompound(store *Store, node Node, c compoundSelector) (bool, error) {
	if node.Type != NodeElement {
		return false, nil
	}

	if !c.tagWildcard && c.tag != "" {
		tag := c.tag
		if store.CaseInsensitive() {
			tag = strings.ToLower(tag)
		}
		if node.Name != tag {
			return false, nil
		}
	}

	if c.ns != "" && !c.nsWildcard {
		ns := c.ns
		if store.CaseInsensitive() {
			ns = strings.ToLower(ns)
		}
		if node.NS != ns {
			return false, nil
		}
	}

	if c.id != "" {
		attr, err := store.AttrByName(node.NodeID, "id")
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if attr.Value != c.id {
			return false, nil
		}
	}

	for _, class := range c.classes {
		attr, err := store.AttrByName(node.NodeID, "class")
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !hasClass(attr.Value, class) {
			return false, nil
		}
	}

	for _, as := range c.attrs {
		var ns *string
		if as.ns != "" {
			ns = &as.ns
		}
		attr, err := store.AttrByNameNS(node.NodeID, as.name, ns)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !attrMatches(attr.Value, as) {
			return false, nil
		}
	}

	return true, nil
}

func attrMatches(value string, a attrSelector) bool {
	switch a.op {
	case attrOpExists:
		return true
	case attrOpEquals:
		return value == a.value
	case attrOpIncludes:
		return hasClass(value, a.value)
	case attrOpDashMatch:
		return value == a.value || strings.HasPrefix(value, a.value+"-")
	case attrOpPrefix:
		return a.value != "" && strings.HasPrefix(value, a.value)
	case attrOpSuffix:
		return a.value != "" && strings.HasSuffix(value, a.value)
	case attrOpSubstring:
		return a.value != "" && strings.Contains(value, a.value)
	default:
		return false
	}
}

// matchesSelector walks one selector's compounds right to left, the same
// direction original_source/src/select.rs's `matches_selector` does via
// the `selectors` crate: start by matching the rightmost (key) compound
// against the candidate node, then satisfy each combinator moving left.
func matchesSelector(store *Store, node Node, sel selector) (bool, error) {
	compounds := sel.compounds
	last := len(compounds) - 1

	ok, err := matchesCompound(store, node, compounds[last])
	if err != nil || !ok {
		return false, err
	}

	cur := node
	for i := last; i > 0; i-- {
		target := compounds[i-1]
		switch compounds[i].combinator {
		case combChild:
			parentID, err := store.ParentOf(cur.NodeID)
			if err != nil {
				return false, err
			}
			if parentID == DocumentSentinelID {
				return false, nil
			}
			parent, err := store.Node(parentID)
			if err != nil {
				return false, err
			}
			ok, err := matchesCompound(store, parent, target)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
			cur = parent

		case combDescendant:
			ok, ancestor, err := ancestorMatch(store, cur, target)
			if err != nil || !ok {
				return false, err
			}
			cur = ancestor

		case combNextSibling:
			ok, sibling, err := siblingMatch(store, cur, target, true)
			if err != nil || !ok {
				return false, err
			}
			cur = sibling

		case combSubsequentSibling:
			ok, sibling, err := siblingMatch(store, cur, target, false)
			if err != nil || !ok {
				return false, err
			}
			cur = sibling

		default:
			return false, fmt.Errorf("%w: unknown combinator", ErrSelectorParse)
		}
	}
	return true, nil
}

// ancestorMatch walks up from node looking for the nearest ancestor (at any
// depth) matching compound — the descendant combinator.
func ancestorMatch(store *Store, node Node, compound compoundSelector) (bool, Node, error) {
	cur := node
	for {
		parentID, err := store.ParentOf(cur.NodeID)
		if err != nil {
			return false, Node{}, err
		}
		if parentID == DocumentSentinelID {
			return false, Node{}, nil
		}
		parent, err := store.Node(parentID)
		if err != nil {
			return false, Node{}, err
		}
		ok, err := matchesCompound(store, parent, compound)
		if err != nil {
			return false, Node{}, err
		}
		if ok {
			return true, parent, nil
		}
		if parent.NodeID == RootPlaceholderID {
			return false, Node{}, nil
		}
		cur = parent
	}
}

// siblingMatch walks backward through preceding siblings looking for one
// matching compound, skipping non-element siblings along the way.
// adjacentOnly restricts the search to the nearest preceding element
// (the + combinator); otherwise every earlier element sibling is tried
// (the ~ combinator).
func siblingMatch(store *Store, node Node, compound compoundSelector, adjacentOnly bool) (bool, Node, error) {
	cur := node
	for {
		sib, err := store.PrevSibling(cur.NodeID)
		if errors.Is(err, ErrNotFound) {
			return false, Node{}, nil
		}
		if err != nil {
			return false, Node{}, err
		}
		if sib.Type != NodeElement {
			cur = sib
			continue
		}
		ok, err := matchesCompound(store, sib, compound)
		if err != nil {
			return false, Node{}, err
		}
		if ok {
			return true, sib, nil
		}
		if adjacentOnly {
			return false, Node{}, nil
		}
		cur = sib
	}
}
