package xmlstore

// Selector matching entry points, grounded on
// original_source/src/select.rs's Selector::match_one[_from]/
// match_all[_from], which search db.descendents(node_id) and return on the
// first (match_one) or every (match_all) hit across any comma-separated
// alternative. Candidates are visited in the order Store.Descendents returns
// them (grouped by parent, not document order).

// MatchOne returns the first element matching the selector, in
// Store.Descendents order, or nil if none match.
func (s *Selector) MatchOne(store *Store) (*Node, error) {
	return s.MatchOneFrom(store, DocumentSentinelID)
}

// MatchOneFrom is MatchOne scoped to the subtree under nodeID.
func (s *Selector) MatchOneFrom(store *Store, nodeID int64) (*Node, error) {
	nodes, err := store.Descendents(nodeID)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Type != NodeElement {
			continue
		}
		matched, err := s.matchesAny(store, n)
		if err != nil {
			return nil, err
		}
		if matched {
			return &n, nil
		}
	}
	return nil, nil
}

// MatchAll returns every element in the document matching the selector, in
// Store.Descendents order.
func (s *Selector) MatchAll(store *Store) ([]Node, error) {
	return s.MatchAllFrom(store, DocumentSentinelID)
}

// MatchAllFrom is MatchAll scoped to the subtree under nodeID.
func (s *Selector) MatchAllFrom(store *Store, nodeID int64) ([]Node, error) {
	nodes, err := store.Descendents(nodeID)
	if err != nil {
		return nil, err
	}
	var out []Node
	for _, n := range nodes {
		if n.Type != NodeElement {
			continue
		}
		matched, err := s.matchesAny(store, n)
		if err != nil {
			return nil, err
		}
		if matched {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Selector) matchesAny(store *Store, node Node) (bool, error) {
	for _, alt := range s.alternatives {
		ok, err := matchesSelector(store, node, alt)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
