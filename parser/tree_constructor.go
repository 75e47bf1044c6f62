package parser

import (
	"github.com/heathj/htmlcore/parser/dom"
	"github.com/sirupsen/logrus"
)

// voidElements never take children and are never pushed onto the stack of
// open elements, whether or not the source wrote a trailing solidus.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// HTMLTreeConstructor holds the state for the tree construction phase: the
// document being built and the stack of open elements. The top of the stack
// is the current insertion point; when the stack is empty the document
// itself is.
type HTMLTreeConstructor struct {
	document            *dom.Node
	stackOfOpenElements []*dom.Node
	errs                *ErrorLog
}

// NewHTMLTreeConstructor creates an HTMLTreeConstructor seeded with the
// implied <html><head> root structure.
func NewHTMLTreeConstructor(errs *ErrorLog) *HTMLTreeConstructor {
	if errs == nil {
		errs = &ErrorLog{}
	}
	c := &HTMLTreeConstructor{errs: errs}
	c.reset()
	return c
}

// reset throws away the current document and reseeds the implied root
// structure: an html element and a head element, both open, so the parser
// never requires an explicit <html><head> prologue.
func (c *HTMLTreeConstructor) reset() {
	c.document = dom.NewDocument()
	c.stackOfOpenElements = c.stackOfOpenElements[:0]

	html := dom.NewElement("html")
	c.document.AppendChild(html)
	c.push(html)

	head := dom.NewElement("head")
	html.AppendChild(head)
	c.push(head)
}

// Document returns the tree built so far.
func (c *HTMLTreeConstructor) Document() *dom.Node {
	return c.document
}

func (c *HTMLTreeConstructor) push(n *dom.Node) {
	c.stackOfOpenElements = append(c.stackOfOpenElements, n)
}

func (c *HTMLTreeConstructor) currentInsertionPoint() *dom.Node {
	if len(c.stackOfOpenElements) == 0 {
		return c.document
	}
	return c.stackOfOpenElements[len(c.stackOfOpenElements)-1]
}

// indexOfOpenElement searches the stack of open elements top-down for the
// first element with the given tag name and returns its index, or -1.
func (c *HTMLTreeConstructor) indexOfOpenElement(name string) int {
	for i := len(c.stackOfOpenElements) - 1; i >= 0; i-- {
		if c.stackOfOpenElements[i].NodeName == name {
			return i
		}
	}
	return -1
}

// popThrough pops every element above index i and the element at i itself.
// Elements above i are implicitly closed.
func (c *HTMLTreeConstructor) popThrough(i int) {
	c.stackOfOpenElements = c.stackOfOpenElements[:i]
}

// ProcessToken mutates the tree for one token. It never fails; structural
// anomalies are resolved by implicit closes and logged.
func (c *HTMLTreeConstructor) ProcessToken(t Token) {
	logrus.WithField("token", t.String()).Trace("process token")
	switch t.TokenType {
	case docTypeToken:
		c.document.AppendChild(dom.NewDocumentType(t.TagName))
	case startTagToken:
		c.processStartTag(t)
	case endTagToken:
		c.processEndTag(t)
	case commentToken:
		c.currentInsertionPoint().AppendChild(dom.NewComment(t.Data))
	case textToken:
		c.insertText(t)
	case endOfInputToken:
		// nothing left to close; the stack is allowed to stay non-empty
	}
}

func (c *HTMLTreeConstructor) processStartTag(t Token) {
	elem := dom.NewElement(t.TagName)
	for _, a := range t.Attributes {
		elem.Attributes.Set(a.Name, a.Value)
	}
	c.currentInsertionPoint().AppendChild(elem)
	if t.SelfClosing || voidElements[t.TagName] {
		return
	}
	c.push(elem)
}

func (c *HTMLTreeConstructor) processEndTag(t Token) {
	name := t.TagName

	// </body> and </html> close everything down to and including their
	// match; intervening elements are closed implicitly without complaint
	if name == "body" || name == "html" {
		i := c.indexOfOpenElement(name)
		if i < 0 {
			c.errs.log(t.Offset, "end tag </%s> without matching start tag", name)
			return
		}
		c.popThrough(i)
		return
	}

	top := len(c.stackOfOpenElements) - 1
	if top >= 0 && c.stackOfOpenElements[top].NodeName == name {
		c.popThrough(top)
		return
	}

	i := c.indexOfOpenElement(name)
	if i < 0 {
		c.errs.log(t.Offset, "end tag </%s> without matching start tag", name)
		return
	}
	c.errs.log(t.Offset, "mismatched tags: </%s> implicitly closes %d open element(s)", name, top-i)
	c.popThrough(i)
}

// insertText appends the token's payload at the insertion point. Consecutive
// text insertions merge into a single text node; empty payloads are dropped.
func (c *HTMLTreeConstructor) insertText(t Token) {
	if t.Data == "" {
		return
	}
	ip := c.currentInsertionPoint()
	if last := ip.LastChild; last != nil && last.NodeType == dom.TextNode {
		last.Data += t.Data
		return
	}
	ip.AppendChild(dom.NewText(t.Data))
}
