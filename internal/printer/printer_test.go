package printer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSimpleElement(t *testing.T) {
	doc := Node{
		Kind: Document,
		Children: []Node{
			{
				Kind: Element,
				Name: "book",
				Attrs: []Attr{
					{Name: "id", Value: "b1"},
				},
				Children: []Node{
					{Kind: Text, Value: "Go in Action"},
				},
			},
		},
	}

	var buf strings.Builder
	cfg := Config{Pretty: false, MaxLineLength: 80, EntityMode: EntityStandard}
	require.NoError(t, Print(&buf, doc, cfg))

	assert.Equal(t, `<book id="b1">Go in Action</book>`, buf.String())
}

func TestPrintEmptyElementSelfCloses(t *testing.T) {
	doc := Node{
		Kind: Document,
		Children: []Node{
			{Kind: Element, Name: "br"},
		},
	}

	var buf strings.Builder
	require.NoError(t, Print(&buf, doc, Config{MaxLineLength: 80}))
	assert.Equal(t, "<br/>", buf.String())
}

func TestPrintEmptyElementWithAttrsSelfCloses(t *testing.T) {
	doc := Node{
		Kind: Document,
		Children: []Node{
			{Kind: Element, Name: "img", Attrs: []Attr{{Name: "src", Value: "a.png"}}},
		},
	}

	var buf strings.Builder
	require.NoError(t, Print(&buf, doc, Config{MaxLineLength: 80}))
	assert.Equal(t, `<img src="a.png" />`, buf.String())
}

func TestPrintPrettyNestsElements(t *testing.T) {
	doc := Node{
		Kind: Document,
		Children: []Node{
			{
				Kind: Element,
				Name: "catalog",
				Children: []Node{
					{Kind: Element, Name: "book"},
				},
			},
		},
	}

	var buf strings.Builder
	cfg := DefaultPretty()
	cfg.EndPad = 0
	require.NoError(t, Print(&buf, doc, cfg))

	assert.Equal(t, "<catalog>\n  <book/>\n</catalog>", buf.String())
}

func TestPrintEscapesReservedCharactersInText(t *testing.T) {
	doc := Node{
		Kind:     Document,
		Children: []Node{{Kind: Text, Value: `a < b && "c"`}},
	}

	var buf strings.Builder
	require.NoError(t, Print(&buf, doc, Config{MaxLineLength: 80, EntityMode: EntityStandard}))
	assert.Equal(t, `a &lt; b &amp;&amp; "c"`, buf.String())
}

func TestPrintEscapesAttrQuotesButNotTextQuotes(t *testing.T) {
	doc := Node{
		Kind: Document,
		Children: []Node{
			{Kind: Element, Name: "a", Attrs: []Attr{{Name: "title", Value: `say "hi"`}}},
		},
	}

	var buf strings.Builder
	require.NoError(t, Print(&buf, doc, Config{MaxLineLength: 80}))
	assert.Equal(t, `<a title="say &quot;hi&quot;" />`, buf.String())
}

func TestPrintHexEntityMode(t *testing.T) {
	doc := Node{
		Kind:     Document,
		Children: []Node{{Kind: Text, Value: "<"}},
	}

	var buf strings.Builder
	require.NoError(t, Print(&buf, doc, Config{MaxLineLength: 80, EntityMode: EntityHex}))
	assert.Equal(t, "&#x3c;", buf.String())
}

func TestPrintCommentAndCData(t *testing.T) {
	doc := Node{
		Kind: Document,
		Children: []Node{
			{Kind: Comment, Value: " note "},
			{Kind: CData, Value: "<raw>"},
		},
	}

	var buf strings.Builder
	require.NoError(t, Print(&buf, doc, Config{MaxLineLength: 80, EndPad: 0}))
	assert.Equal(t, "<!-- note --><![CDATA[<raw>]]>", buf.String())
}

func TestPrintRejectsNonDocumentRoot(t *testing.T) {
	var buf strings.Builder
	err := Print(&buf, Node{Kind: Element}, Config{})
	assert.Error(t, err)
}

func TestAttrLineWrapBreaksOnLongAttributeList(t *testing.T) {
	doc := Node{
		Kind: Document,
		Children: []Node{
			{
				Kind: Element,
				Name: "config",
				Attrs: []Attr{
					{Name: "first-long-attribute-name", Value: "a-fairly-long-value-here"},
					{Name: "second-long-attribute-name", Value: "another-fairly-long-value"},
				},
			},
		},
	}

	cfg := DefaultPretty()
	cfg.MaxLineLength = 20
	cfg.EndPad = 0

	var buf strings.Builder
	require.NoError(t, Print(&buf, doc, cfg))
	assert.Contains(t, buf.String(), "\n  first-long-attribute-name=")
	assert.Contains(t, buf.String(), "\n  second-long-attribute-name=")
}
