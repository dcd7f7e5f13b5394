package xmlstore

// parserState is the producer-side stack machine that turns a flat token
// sequence into a tree of parent ids and per-scope order counters. Grounded
// on original_source/src/parse.rs's ParserState: a stack of "current
// parent" values plus a parallel stack of order counters, where the very
// first top-level element reuses RootPlaceholderID instead of allocating a
// fresh node id (it becomes the root element in place), and every attribute
// of a scope shares that scope's order counter with its sibling child
// nodes rather than having an independent sequence. docOrder is the
// bottom-level counter for children of the document sentinel itself
// (declarations, DOCTYPE, top-level comments, and the root element) —
// independent of the per-element stack, since it is still live while that
// stack is empty.
type parserState struct {
	stack      []int64 // parent ids; empty means "at document level"
	order      []int64 // parallel per-scope order counters
	docOrder   int64   // order counter for document-level siblings
	nextNodeID int64
}

func newParserState() *parserState {
	return &parserState{nextNodeID: 2} // 0 and 1 are reserved sentinel ids
}

// atDocumentLevel reports whether no element scope has been entered yet,
// i.e. the next ElementStart token is the document's root element.
func (p *parserState) atDocumentLevel() bool {
	return len(p.stack) == 0
}

// parentID returns the node id content at the current scope should be
// attached under: DocumentSentinelID before any element has opened,
// otherwise the innermost open element's id (RootPlaceholderID for the
// outermost).
func (p *parserState) parentID() int64 {
	if len(p.stack) == 0 {
		return DocumentSentinelID
	}
	return p.stack[len(p.stack)-1]
}

// currentOrder returns the next order value to assign within the current
// scope, without consuming it: the innermost element scope's counter, or
// docOrder when no element scope is open yet.
func (p *parserState) currentOrder() int64 {
	if len(p.order) == 0 {
		return p.docOrder
	}
	return p.order[len(p.order)-1]
}

// incrementOrder advances the current scope's order counter (docOrder at
// document level).
func (p *parserState) incrementOrder() {
	if len(p.order) == 0 {
		p.docOrder++
		return
	}
	p.order[len(p.order)-1]++
}

// pushRoot opens the outermost element scope, reusing RootPlaceholderID:
// the root element does not get a fresh node id, it overwrites the
// sentinel row created with the schema. Like pushElement, it does not
// itself consume an order value — the root element is a document-level
// sibling, so the caller must read and advance docOrder via
// currentOrder/incrementOrder before calling pushRoot, exactly as it does
// around pushElement.
func (p *parserState) pushRoot() int64 {
	p.stack = append(p.stack, RootPlaceholderID)
	p.order = append(p.order, 0)
	return RootPlaceholderID
}

// pushElement opens a nested element scope, allocating a fresh node id.
func (p *parserState) pushElement() int64 {
	id := p.allocNode()
	p.stack = append(p.stack, id)
	p.order = append(p.order, 0)
	return id
}

// pop closes the innermost scope.
func (p *parserState) pop() {
	if len(p.stack) == 0 {
		return
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.order = p.order[:len(p.order)-1]
}

// allocNode reserves the next client-side node id: ids are allocated by
// the producer, never by the database.
func (p *parserState) allocNode() int64 {
	id := p.nextNodeID
	p.nextNodeID++
	return id
}
