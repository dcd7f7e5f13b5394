package xmlstore

import (
	"fmt"
	"strings"
)

// Hand-rolled CSS3 selector grammar, grounded on original_source/src/select.rs's
// use of the `selectors`/`cssparser` crates — no CSS selector library exists
// anywhere in the pack, so the grammar and its AST are hand-written here, in
// the style of xml/query.go's segment-by-segment path parser (parseSegment,
// operator dispatch, '/'-delimited tokenizing generalized to CSS's
// whitespace/combinator-delimited tokenizing).

type combinator uint8

const (
	combNone combinator = iota // leftmost compound in a selector; no combinator precedes it
	combDescendant
	combChild
	combNextSibling
	combSubsequentSibling
)

type attrOp uint8

const (
	attrOpExists attrOp = iota
	attrOpEquals
	attrOpIncludes  // [attr~=val]
	attrOpDashMatch // [attr|=val]
	attrOpPrefix    // [attr^=val]
	attrOpSuffix    // [attr$=val]
	attrOpSubstring // [attr*=val]
)

type attrSelector struct {
	ns    string // "" = unqualified
	name  string
	op    attrOp
	value string
}

// compoundSelector is one tag#id.class[attr]... group, with the combinator
// that joined it to the compound before it (combNone for the leftmost).
type compoundSelector struct {
	combinator  combinator
	ns          string
	nsWildcard  bool
	tag         string
	tagWildcard bool
	id          string
	classes     []string
	attrs       []attrSelector
}

// selector is one comma-separated alternative: a left-to-right sequence of
// compounds. Matching walks it right to left (see selector_match.go), same
// as the `selectors` crate.
type selector struct {
	compounds []compoundSelector
}

// Selector is a parsed, ready-to-match selector list. A document element
// matches the list if it matches ANY alternative.
type Selector struct {
	alternatives []selector
	hasPseudo    bool
}

// HasPseudoClasses reports whether the source text contained one or more
// `:pseudo-class` components. Parsing accepts them (so compound CSS
// authored for a browser doesn't fail to compile) but no predicate ever
// matches one, matching original_source/src/select.rs's
// match_non_ts_pseudo_class, which unconditionally returns false.
func (s *Selector) HasPseudoClasses() bool { return s.hasPseudo }

// ParseSelector compiles a CSS3 selector-list string.
func ParseSelector(input string) (*Selector, error) {
	p := &selectorParser{input: input}
	sel, err := p.parseList()
	if err != nil {
		return nil, err
	}
	return sel, nil
}

type selectorParser struct {
	input    string
	pos      int
	sawPseudo bool
}

func (p *selectorParser) parseList() (*Selector, error) {
	var alts []selector
	hasPseudo := false
	for {
		p.skipSpace()
		alt, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		// A pseudo-class never matches, so an alternative containing one can
		// never match either; it is parsed but not kept for matching.
		if !p.sawPseudo {
			alts = append(alts, alt)
		}
		hasPseudo = hasPseudo || p.sawPseudo
		p.sawPseudo = false

		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ErrSelectorParse, p.input[p.pos:], p.pos)
	}
	return &Selector{alternatives: alts, hasPseudo: hasPseudo}, nil
}

func (p *selectorParser) parseSelector() (selector, error) {
	var sel selector
	comb := combNone
	for {
		p.skipSpace()
		if p.atCombinator() {
			var err error
			comb, err = p.parseCombinator()
			if err != nil {
				return selector{}, err
			}
			p.skipSpace()
		}
		if p.pos >= len(p.input) || p.peek() == ',' {
			if comb != combNone {
				return selector{}, fmt.Errorf("%w: trailing combinator", ErrSelectorParse)
			}
			break
		}
		compound, err := p.parseCompound()
		if err != nil {
			return selector{}, err
		}
		compound.combinator = comb
		sel.compounds = append(sel.compounds, compound)

		if p.pos < len(p.input) && isSpace(p.input[p.pos]) {
			// Lookahead: whitespace could be trailing, a descendant
			// combinator, or padding around an explicit combinator.
			save := p.pos
			p.skipSpace()
			if p.atCombinator() {
				c, err := p.parseCombinator()
				if err != nil {
					return selector{}, err
				}
				comb = c
				continue
			}
			if p.pos < len(p.input) && p.peek() != ',' {
				comb = combDescendant
				continue
			}
			p.pos = save
		}
		break
	}
	if len(sel.compounds) == 0 {
		return selector{}, fmt.Errorf("%w: empty selector", ErrSelectorParse)
	}
	return sel, nil
}

func (p *selectorParser) atCombinator() bool {
	if p.pos >= len(p.input) {
		return false
	}
	switch p.input[p.pos] {
	case '>', '+', '~':
		return true
	}
	return false
}

func (p *selectorParser) parseCombinator() (combinator, error) {
	switch p.input[p.pos] {
	case '>':
		p.pos++
		return combChild, nil
	case '+':
		p.pos++
		return combNextSibling, nil
	case '~':
		p.pos++
		return combSubsequentSibling, nil
	}
	return combNone, fmt.Errorf("%w: expected combinator at %d", ErrSelectorParse, p.pos)
}

func (p *selectorParser) parseCompound() (compoundSelector, error) {
	var c compoundSelector
	sawAny := false

	if p.peek() == '*' {
		c.tagWildcard = true
		p.pos++
		sawAny = true
	} else if isNameStart(p.peekRune()) {
		name, err := p.parseIdentLike()
		if err != nil {
			return c, err
		}
		if p.pos < len(p.input) && p.input[p.pos] == '|' && p.pos+1 < len(p.input) && p.input[p.pos+1] != '=' {
			c.ns = name
			p.pos++
			if p.peek() == '*' {
				c.tagWildcard = true
				p.pos++
			} else {
				tag, err := p.parseIdentLike()
				if err != nil {
					return c, err
				}
				c.tag = tag
			}
		} else {
			c.tag = name
		}
		sawAny = true
	}

	for p.pos < len(p.input) {
		switch p.input[p.pos] {
		case '#':
			p.pos++
			id, err := p.parseIdentLike()
			if err != nil {
				return c, err
			}
			c.id = id
			sawAny = true
		case '.':
			p.pos++
			class, err := p.parseIdentLike()
			if err != nil {
				return c, err
			}
			c.classes = append(c.classes, class)
			sawAny = true
		case '[':
			attr, err := p.parseAttr()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, attr)
			sawAny = true
		case ':':
			if err := p.skipPseudo(); err != nil {
				return c, err
			}
			p.sawPseudo = true
			sawAny = true
		default:
			if !sawAny {
				return c, fmt.Errorf("%w: unexpected %q at %d", ErrSelectorParse, string(p.input[p.pos]), p.pos)
			}
			return c, nil
		}
	}
	if !sawAny {
		return c, fmt.Errorf("%w: empty compound selector", ErrSelectorParse)
	}
	return c, nil
}

func (p *selectorParser) skipPseudo() error {
	p.pos++ // ':'
	if p.pos < len(p.input) && p.input[p.pos] == ':' {
		p.pos++ // pseudo-element '::'
	}
	if p.pos >= len(p.input) || !isNameStart(rune(p.input[p.pos])) {
		return fmt.Errorf("%w: malformed pseudo-class at %d", ErrSelectorParse, p.pos)
	}
	if _, err := p.parseIdentLike(); err != nil {
		return err
	}
	if p.pos < len(p.input) && p.input[p.pos] == '(' {
		depth := 0
		for p.pos < len(p.input) {
			switch p.input[p.pos] {
			case '(':
				depth++
			case ')':
				depth--
				p.pos++
				if depth == 0 {
					return nil
				}
				continue
			}
			p.pos++
		}
		return fmt.Errorf("%w: unterminated pseudo-class argument", ErrSelectorParse)
	}
	return nil
}

func (p *selectorParser) parseAttr() (attrSelector, error) {
	var a attrSelector
	p.pos++ // '['
	p.skipSpace()
	name, err := p.parseIdentLike()
	if err != nil {
		return a, err
	}
	if p.pos < len(p.input) && p.input[p.pos] == '|' && p.pos+1 < len(p.input) && p.input[p.pos+1] != '=' {
		a.ns = name
		p.pos++
		name, err = p.parseIdentLike()
		if err != nil {
			return a, err
		}
	}
	a.name = name
	p.skipSpace()

	if p.pos < len(p.input) && p.input[p.pos] == ']' {
		a.op = attrOpExists
		p.pos++
		return a, nil
	}

	op, err := p.parseAttrOp()
	if err != nil {
		return a, err
	}
	a.op = op
	p.skipSpace()
	value, err := p.parseAttrValue()
	if err != nil {
		return a, err
	}
	a.value = value
	p.skipSpace()
	if p.pos >= len(p.input) || p.input[p.pos] != ']' {
		return a, fmt.Errorf("%w: expected ']' at %d", ErrSelectorParse, p.pos)
	}
	p.pos++
	return a, nil
}

func (p *selectorParser) parseAttrOp() (attrOp, error) {
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("%w: expected attribute operator", ErrSelectorParse)
	}
	switch p.input[p.pos] {
	case '=':
		p.pos++
		return attrOpEquals, nil
	case '~':
		if p.expect2('~', '=') {
			return attrOpIncludes, nil
		}
	case '|':
		if p.expect2('|', '=') {
			return attrOpDashMatch, nil
		}
	case '^':
		if p.expect2('^', '=') {
			return attrOpPrefix, nil
		}
	case '$':
		if p.expect2('$', '=') {
			return attrOpSuffix, nil
		}
	case '*':
		if p.expect2('*', '=') {
			return attrOpSubstring, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown attribute operator at %d", ErrSelectorParse, p.pos)
}

func (p *selectorParser) expect2(a, b byte) bool {
	if p.pos+1 < len(p.input) && p.input[p.pos] == a && p.input[p.pos+1] == b {
		p.pos += 2
		return true
	}
	return false
}

func (p *selectorParser) parseAttrValue() (string, error) {
	if p.pos < len(p.input) && (p.input[p.pos] == '"' || p.input[p.pos] == '\'') {
		quote := p.input[p.pos]
		p.pos++
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.input) {
			return "", fmt.Errorf("%w: unterminated quoted value", ErrSelectorParse)
		}
		value := p.input[start:p.pos]
		p.pos++
		return value, nil
	}
	return p.parseIdentLike()
}

func (p *selectorParser) parseIdentLike() (string, error) {
	start := p.pos
	for p.pos < len(p.input) {
		r := rune(p.input[p.pos])
		if !isNameStart(r) && !isNameChar(r) {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return "", fmt.Errorf("%w: expected identifier at %d", ErrSelectorParse, p.pos)
	}
	return p.input[start:p.pos], nil
}

func (p *selectorParser) skipSpace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

func (p *selectorParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *selectorParser) peekRune() rune {
	return rune(p.peek())
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameStart(r rune) bool {
	return r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNameChar(r rune) bool {
	return isNameStart(r) || (r >= '0' && r <= '9')
}

func hasClass(classAttr string, want string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == want {
			return true
		}
	}
	return false
}
