package xmlstore

import (
	"fmt"
	"io"

	"github.com/arturoeanton/xmlstore/internal/printer"
)

// Format renders the document back to XML text under cfg. Children are
// fetched per node via the ordinary query surface (ChildNodes, Attrs) and
// assembled into one internal/printer tree for the whole document, which is
// held in memory in full before printing starts; output is not streamed
// subtree by subtree.
func (s *Store) Format(w io.Writer, cfg printer.Config) error {
	doc, err := s.printTree(DocumentSentinelID)
	if err != nil {
		return err
	}
	return printer.Print(w, doc, cfg)
}

// printTree walks the store starting at nodeID and builds the
// storage-agnostic tree internal/printer prints from.
func (s *Store) printTree(nodeID int64) (printer.Node, error) {
	children, err := s.ChildNodes(nodeID)
	if err != nil {
		return printer.Node{}, err
	}

	out := printer.Node{Kind: printer.Document}
	for _, child := range children {
		pn, err := s.printNodeOf(child)
		if err != nil {
			return printer.Node{}, err
		}
		out.Children = append(out.Children, pn)
	}
	return out, nil
}

func (s *Store) printNodeOf(n Node) (printer.Node, error) {
	switch n.Type {
	case NodeElement:
		return s.printElementOf(n)
	case NodeText:
		return printer.Node{Kind: printer.Text, Value: n.Value}, nil
	case NodeCData:
		return printer.Node{Kind: printer.CData, Value: n.Value}, nil
	case NodeComment:
		return printer.Node{Kind: printer.Comment, Value: n.Value}, nil
	case NodeDeclaration:
		return printer.Node{Kind: printer.Declaration, Value: n.Value}, nil
	case NodeDoctype:
		return printer.Node{Kind: printer.Doctype, Value: n.Value}, nil
	case NodeProcessingInstruction:
		return printer.Node{Kind: printer.ProcessingInstruction, Name: n.Name, Value: n.Value}, nil
	default:
		return printer.Node{}, fmt.Errorf("%w: node %d has unprintable type %s", ErrStorage, n.NodeID, n.Type)
	}
}

func (s *Store) printElementOf(n Node) (printer.Node, error) {
	attrs, err := s.Attrs(n.NodeID)
	if err != nil {
		return printer.Node{}, err
	}
	children, err := s.ChildNodes(n.NodeID)
	if err != nil {
		return printer.Node{}, err
	}

	out := printer.Node{Kind: printer.Element, Name: qualifiedName(n.NS, n.Name)}
	for _, a := range attrs {
		out.Attrs = append(out.Attrs, printer.Attr{Name: qualifiedName(a.NS, a.Name), Value: a.Value})
	}
	for _, child := range children {
		pn, err := s.printNodeOf(child)
		if err != nil {
			return printer.Node{}, err
		}
		out.Children = append(out.Children, pn)
	}
	return out, nil
}

func qualifiedName(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + ":" + name
}
