package xmlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ingestChannelCapacity bounds the producer/consumer channel. Grounded on
// original_source/src/parse.rs's crossbeam_channel::bounded(1_000_000).
const ingestChannelCapacity = 1_000_000

type ingestKind uint8

const (
	msgInsertNode ingestKind = iota
	msgInsertRootElement
	msgInsertAttr
)

// ingestMsg is the producer-to-consumer unit of work. One struct covers all
// three message kinds (rather than an interface) since they travel over a
// single typed channel and the consumer dispatches on kind.
type ingestMsg struct {
	kind           ingestKind
	nodeID         int64
	parentID       int64
	order          int64
	nodeType       NodeType
	ns, name       string
	value          string
	hasValue       bool
	bufferPosition int64
}

// Ingest parses r as XML and loads it into the store, using a single
// producer goroutine (tokenizer) feeding a single consumer goroutine (one
// transaction, one writer) over a bounded channel. On any error, the
// transaction is rolled back and the store is left as it was before the
// call (producer failure discards rather than partially commits).
func (s *Store) Ingest(ctx context.Context, r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: reading input: %v", ErrStorage, err)
	}
	cdataSpans := scanCDataSpans(raw)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	msgs := make(chan ingestMsg, ingestChannelCapacity)
	produceErr := make(chan error, 1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		defer close(msgs)
		produceErr <- produce(ctx, raw, cdataSpans, s.options, msgs)
	}()

	if err := consume(tx, s.options.InferTypes, msgs); err != nil {
		cancel()
		tx.Rollback()
		<-produceErr
		return err
	}

	if err := <-produceErr; err != nil {
		tx.Rollback()
		return err
	}

	if err := s.createIndexes(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// scanCDataSpans records the [start,end) byte ranges of every
// "<![CDATA[...]]>" section in the raw document. encoding/xml's Decoder
// merges CDATA sections into the same CharData token kind as plain text
// (a stdlib limitation; xmlparser, the Rust original's tokenizer, reports
// them as a distinct token). Cross-referencing a CharData token's end
// offset (Decoder.InputOffset after reading it) against these spans is how
// produce tells the two apart without a third-party tokenizer.
func scanCDataSpans(raw []byte) [][2]int64 {
	const open, close = "<![CDATA[", "]]>"
	var spans [][2]int64
	pos := 0
	for {
		i := bytes.Index(raw[pos:], []byte(open))
		if i < 0 {
			break
		}
		start := pos + i
		j := bytes.Index(raw[start:], []byte(close))
		if j < 0 {
			break
		}
		end := start + j + len(close)
		spans = append(spans, [2]int64{int64(start), int64(end)})
		pos = end
	}
	return spans
}

func withinCData(spans [][2]int64, endOffset int64) bool {
	for _, sp := range spans {
		if endOffset > sp[0] && endOffset <= sp[1] {
			return true
		}
	}
	return false
}

// mutateText applies the ignore_whitespace / case_insensitive text
// transforms at ingest time, grounded on
// original_source/src/parse.rs's mutate_text.
func mutateText(text string, opts Options) string {
	switch {
	case opts.IgnoreWhitespace && opts.CaseInsensitive:
		return strings.ToLower(strings.TrimSpace(text))
	case opts.IgnoreWhitespace:
		return strings.TrimSpace(text)
	case opts.CaseInsensitive:
		return strings.ToLower(text)
	default:
		return text
	}
}

// produce tokenizes raw and sends one ingestMsg per structural item,
// respecting ctx cancellation (the consumer cancels on its own failure so
// the producer doesn't block forever on a full channel).
func produce(ctx context.Context, raw []byte, cdataSpans [][2]int64, opts Options, out chan<- ingestMsg) error {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	state := newParserState()
	var tagStack []xml.Name

	send := func(msg ingestMsg) error {
		select {
		case out <- msg:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		offset := decoder.InputOffset()
		// RawToken, not Token: Token resolves a prefixed name's Space to
		// the declared namespace's full URI, but this store only ever
		// surfaces the literal prefix text an element or attribute was
		// written with (no namespace resolution). RawToken also skips
		// Token's start/end tag matching, so tagStack replaces that check.
		tok, err := decoder.RawToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if strings.Contains(err.Error(), "invalid UTF-8") {
				return fmt.Errorf("%w: %v", ErrUTF8, err)
			}
			return fmt.Errorf("%w: %v", ErrXMLMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			tagStack = append(tagStack, t.Name)

			var nodeID int64
			if state.atDocumentLevel() {
				order := state.currentOrder()
				state.incrementOrder()
				nodeID = state.pushRoot()
				if err := send(ingestMsg{
					kind:           msgInsertRootElement,
					nodeID:         nodeID,
					order:          order,
					ns:             mutateText(t.Name.Space, stripWhitespaceMutation(opts)),
					name:           mutateText(t.Name.Local, stripWhitespaceMutation(opts)),
					bufferPosition: offset,
				}); err != nil {
					return err
				}
			} else {
				parentID := state.parentID()
				order := state.currentOrder()
				state.incrementOrder()
				nodeID = state.pushElement()
				if err := send(ingestMsg{
					kind:           msgInsertNode,
					nodeID:         nodeID,
					parentID:       parentID,
					order:          order,
					nodeType:       NodeElement,
					ns:             mutateText(t.Name.Space, stripWhitespaceMutation(opts)),
					name:           mutateText(t.Name.Local, stripWhitespaceMutation(opts)),
					bufferPosition: offset,
				}); err != nil {
					return err
				}
			}

			for _, attr := range t.Attr {
				order := state.currentOrder()
				state.incrementOrder()
				value := mutateText(attr.Value, opts)
				name := mutateText(attr.Name.Local, stripWhitespaceMutation(opts))
				ns := mutateText(attr.Name.Space, stripWhitespaceMutation(opts))
				if err := send(ingestMsg{
					kind:           msgInsertAttr,
					parentID:       nodeID,
					order:          order,
					ns:             ns,
					name:           name,
					value:          value,
					hasValue:       true,
					bufferPosition: offset,
				}); err != nil {
					return err
				}
			}

		case xml.EndElement:
			if len(tagStack) == 0 || tagStack[len(tagStack)-1] != t.Name {
				return fmt.Errorf("%w: mismatched closing tag </%s>", ErrXMLMalformed, t.Name.Local)
			}
			tagStack = tagStack[:len(tagStack)-1]
			state.pop()

		case xml.CharData:
			// Whitespace between top-level items (declaration, DOCTYPE,
			// root element) is not document content and gets no node.
			if state.atDocumentLevel() && len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			nodeType := NodeText
			if withinCData(cdataSpans, decoder.InputOffset()) {
				nodeType = NodeCData
			}
			parentID := state.parentID()
			order := state.currentOrder()
			state.incrementOrder()
			if err := send(ingestMsg{
				kind:           msgInsertNode,
				nodeID:         state.allocNode(),
				parentID:       parentID,
				order:          order,
				nodeType:       nodeType,
				value:          mutateText(string(t), opts),
				hasValue:       true,
				bufferPosition: offset,
			}); err != nil {
				return err
			}

		case xml.Comment:
			parentID := state.parentID()
			order := state.currentOrder()
			state.incrementOrder()
			if err := send(ingestMsg{
				kind:           msgInsertNode,
				nodeID:         state.allocNode(),
				parentID:       parentID,
				order:          order,
				nodeType:       NodeComment,
				value:          mutateText(string(t), opts),
				hasValue:       true,
				bufferPosition: offset,
			}); err != nil {
				return err
			}

		case xml.ProcInst:
			parentID := state.parentID()
			order := state.currentOrder()
			state.incrementOrder()
			nodeType := NodeProcessingInstruction
			if t.Target == "xml" {
				nodeType = NodeDeclaration
			}
			if err := send(ingestMsg{
				kind:           msgInsertNode,
				nodeID:         state.allocNode(),
				parentID:       parentID,
				order:          order,
				nodeType:       nodeType,
				value:          mutateText(string(t.Inst), opts),
				hasValue:       true,
				bufferPosition: offset,
			}); err != nil {
				return err
			}

		case xml.Directive:
			parentID := state.parentID()
			order := state.currentOrder()
			state.incrementOrder()
			if err := send(ingestMsg{
				kind:           msgInsertNode,
				nodeID:         state.allocNode(),
				parentID:       parentID,
				order:          order,
				nodeType:       NodeDoctype,
				value:          mutateText(string(t), opts),
				hasValue:       true,
				bufferPosition: offset,
			}); err != nil {
				return err
			}
		}
	}
}

// stripWhitespaceMutation returns an Options copy with IgnoreWhitespace
// cleared, for applying case-folding without trimming to names (element
// and attribute names are never meaningfully whitespace, but the original
// applies case-folding only, never trimming, to identifiers).
func stripWhitespaceMutation(opts Options) Options {
	opts.IgnoreWhitespace = false
	return opts
}

// consume owns the single write transaction: every message already
// carries the node id the producer's parserState allocated for it, so
// consume only needs to apply type inference and execute one INSERT per
// message.
func consume(tx *sql.Tx, inferTypes bool, msgs <-chan ingestMsg) error {
	insertNode, insertAttr, updateRoot, err := prepareIngestStatements(tx, inferTypes)
	if err != nil {
		return err
	}
	defer insertNode.Close()
	defer insertAttr.Close()
	defer updateRoot.Close()

	for msg := range msgs {
		switch msg.kind {
		case msgInsertRootElement:
			args := []any{msg.order, nullable(msg.ns), msg.name, msg.bufferPosition}
			if inferTypes {
				args = append(args, InferredEmpty.String())
			}
			args = append(args, RootPlaceholderID)
			if _, err := updateRoot.Exec(args...); err != nil {
				return fmt.Errorf("%w: updating root element: %v", ErrStorage, err)
			}

		case msgInsertNode:
			id := msg.nodeID
			var value any
			if msg.hasValue {
				value = msg.value
			}
			args := []any{
				id, msg.parentID, msg.order, int(msg.nodeType),
				nullable(msg.ns), nullable(msg.name), value, msg.bufferPosition,
			}
			if inferTypes {
				inferred := InferredEmpty
				if msg.hasValue {
					inferred = inferType(msg.value)
				}
				args = append(args, inferred.String())
			}
			if _, err := insertNode.Exec(args...); err != nil {
				return fmt.Errorf("%w: inserting node: %v", ErrStorage, err)
			}

		case msgInsertAttr:
			args := []any{msg.order, nullable(msg.ns), msg.name, msg.value, msg.parentID, msg.bufferPosition}
			if inferTypes {
				args = append(args, inferType(msg.value).String())
			}
			if _, err := insertAttr.Exec(args...); err != nil {
				return fmt.Errorf("%w: inserting attr: %v", ErrStorage, err)
			}
		}
	}
	return nil
}

// prepareIngestStatements prepares the three write statements used by
// consume. With type inference each statement carries an inferred_type
// parameter; when the store was not opened with type inference, the column
// doesn't exist, so that statement variant omits it. One of the two
// variants is chosen by inferTypes rather than branching per-row.
func prepareIngestStatements(tx *sql.Tx, inferTypes bool) (insertNode, insertAttr, updateRoot *sql.Stmt, err error) {
	if inferTypes {
		insertNode, err = tx.Prepare(`
			INSERT INTO nodes (node_id, parent_node_id, node_order, node_type, node_ns, node_name, node_value, buffer_position, inferred_type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		insertAttr, err = tx.Prepare(`
			INSERT INTO attrs (attr_order, attr_ns, attr_name, attr_value, parent_node_id, buffer_position, inferred_type)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		updateRoot, err = tx.Prepare(`
			UPDATE nodes SET node_type = 1, node_order = ?, node_ns = ?, node_name = ?, node_value = NULL, buffer_position = ?, inferred_type = ?
			WHERE node_id = ?`)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
		}
		return insertNode, insertAttr, updateRoot, nil
	}

	insertNode, err = tx.Prepare(`
		INSERT INTO nodes (node_id, parent_node_id, node_order, node_type, node_ns, node_name, node_value, buffer_position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	insertAttr, err = tx.Prepare(`
		INSERT INTO attrs (attr_order, attr_ns, attr_name, attr_value, parent_node_id, buffer_position)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	updateRoot, err = tx.Prepare(`
		UPDATE nodes SET node_type = 1, node_order = ?, node_ns = ?, node_name = ?, node_value = NULL, buffer_position = ?
		WHERE node_id = ?`)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return insertNode, insertAttr, updateRoot, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
