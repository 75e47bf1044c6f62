package parser

import (
	"fmt"
	"strings"
)

//go:generate stringer -type=tokenType
type tokenType uint

const (
	textToken tokenType = iota
	startTagToken
	endTagToken
	commentToken
	docTypeToken
	endOfInputToken
)

type tagType uint

const (
	startTag tagType = iota
	endTag
)

// Attribute is a single name/value pair collected off a start tag. Order of
// appearance in the source is preserved on the token.
type Attribute struct {
	Name  string
	Value string
}

// Token is a concrete token that is ready to be emitted. A token is a
// transient value: it is produced by the tokenizer, handed to the tree
// constructor, and discarded.
type Token struct {
	TokenType   tokenType
	TagName     string
	Data        string
	Attributes  []Attribute
	SelfClosing bool
	ForceQuirks bool
	Offset      int
}

// Attr returns the value of the named attribute and whether it was present.
func (t Token) Attr(name string) (string, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (t Token) String() string {
	switch t.TokenType {
	case textToken:
		return fmt.Sprintf("Text(%q)", t.Data)
	case startTagToken:
		var b strings.Builder
		b.WriteString("StartTag(")
		b.WriteString(t.TagName)
		for _, a := range t.Attributes {
			fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
		}
		if t.SelfClosing {
			b.WriteString(" /")
		}
		b.WriteString(")")
		return b.String()
	case endTagToken:
		return fmt.Sprintf("EndTag(%s)", t.TagName)
	case commentToken:
		return fmt.Sprintf("Comment(%q)", t.Data)
	case docTypeToken:
		return fmt.Sprintf("Doctype(%s)", t.TagName)
	case endOfInputToken:
		return "EndOfInput"
	}
	return "Unknown"
}

// TokenBuilder builds various tokens up during the tokenization phase.
type TokenBuilder struct {
	attributes     []Attribute
	seenAttributes map[string]bool
	attributeKey   strings.Builder
	attributeValue strings.Builder
	name           strings.Builder
	data           strings.Builder
	selfClosing    bool
	curTagType     tagType
}

func newTokenBuilder() *TokenBuilder {
	return &TokenBuilder{seenAttributes: map[string]bool{}}
}

// Reset clears all the builders and attributes so a new token can be started.
func (t *TokenBuilder) Reset() {
	t.attributes = nil
	t.seenAttributes = map[string]bool{}
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	t.name.Reset()
	t.data.Reset()
	t.selfClosing = false
}

// EnableSelfClosing changes the self-closing flag to "set".
func (t *TokenBuilder) EnableSelfClosing() {
	t.selfClosing = true
}

// WriteName appends a character to the current tag or doctype name.
func (t *TokenBuilder) WriteName(r rune) {
	t.name.WriteRune(r)
}

// WriteData appends a character to the current data section.
func (t *TokenBuilder) WriteData(r rune) {
	t.data.WriteRune(r)
}

// WriteAttributeName appends a character to the current attribute's name.
func (t *TokenBuilder) WriteAttributeName(r rune) {
	t.attributeKey.WriteRune(r)
}

// WriteAttributeValue appends a character to the current attribute's value.
func (t *TokenBuilder) WriteAttributeValue(r rune) {
	t.attributeValue.WriteRune(r)
}

// CommitAttribute ends the creation of a key/value pair by copying the name
// and value fields into the attribute list and clearing both. A name that was
// already committed keeps its first value; CommitAttribute reports false so
// the caller can log the duplicate.
func (t *TokenBuilder) CommitAttribute() bool {
	k := t.attributeKey.String()
	v := t.attributeValue.String()
	t.attributeKey.Reset()
	t.attributeValue.Reset()
	if k == "" {
		return true
	}
	if t.seenAttributes[k] {
		return false
	}
	t.seenAttributes[k] = true
	t.attributes = append(t.attributes, Attribute{Name: k, Value: v})
	return true
}

// StartTagToken creates a start tag token from the builder contents.
func (t *TokenBuilder) StartTagToken() Token {
	return Token{
		TokenType:   startTagToken,
		TagName:     t.name.String(),
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
	}
}

// EndTagToken creates an end tag token from the builder contents.
func (t *TokenBuilder) EndTagToken() Token {
	return Token{
		TokenType:   endTagToken,
		TagName:     t.name.String(),
		Attributes:  t.attributes,
		SelfClosing: t.selfClosing,
	}
}

// CommentToken creates a comment token from the builder contents.
func (t *TokenBuilder) CommentToken() Token {
	return Token{
		TokenType: commentToken,
		Data:      t.data.String(),
	}
}

// DocTypeToken creates a doctype token from the builder contents. Only the
// name is modeled; public and system identifiers are out of scope.
func (t *TokenBuilder) DocTypeToken(forceQuirks bool) Token {
	return Token{
		TokenType:   docTypeToken,
		TagName:     t.name.String(),
		ForceQuirks: forceQuirks,
	}
}

// EndOfInputToken creates the terminal token of a token stream.
func (t *TokenBuilder) EndOfInputToken() Token {
	return Token{TokenType: endOfInputToken}
}
