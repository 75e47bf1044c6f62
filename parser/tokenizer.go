package parser

type tokenizerState uint

const (
	dataState tokenizerState = iota
	tagOpenState
	endTagOpenState
	tagNameState
	beforeAttributeNameState
	attributeNameState
	afterAttributeNameState
	beforeAttributeValueState
	attributeValueDoubleQuotedState
	attributeValueSingleQuotedState
	attributeValueUnquotedState
	afterAttributeValueQuotedState
	selfClosingStartTagState
	bogusCommentState
	markupDeclarationOpenState
	commentStartState
	commentStartDashState
	commentState
	commentEndDashState
	commentEndState
	doctypeState
	beforeDoctypeNameState
	doctypeNameState
	afterDoctypeNameState
	bogusDoctypeState
)

// parserStateHandler consumes one input character (or the end-of-input
// condition) for a single state. It returns whether the character should be
// reconsumed by the next state, and the next state.
type parserStateHandler func(r rune, eof bool) (bool, tokenizerState)

// cursor walks the input one rune at a time. Setting reconsume serves the
// most recently read rune (or the end-of-input condition) again on the next
// read without advancing; the flag is cleared by that read, so it can never
// fire twice without a real advance in between.
type cursor struct {
	input     []rune
	pos       int
	reconsume bool
	last      rune
	lastEOF   bool
}

func newCursor(input string) *cursor {
	return &cursor{input: []rune(input)}
}

func (c *cursor) next() (rune, bool) {
	if c.reconsume {
		c.reconsume = false
		return c.last, c.lastEOF
	}
	if c.pos >= len(c.input) {
		c.last, c.lastEOF = 0, true
		return 0, true
	}
	c.last = c.input[c.pos]
	c.lastEOF = false
	c.pos++
	return c.last, false
}

// offset is the position of the rune most recently returned by next.
func (c *cursor) offset() int {
	if c.pos == 0 {
		return 0
	}
	return c.pos - 1
}

// lookingAt reports whether the unread input starts with s.
func (c *cursor) lookingAt(s string) bool {
	rest := c.input[c.pos:]
	if len(rest) < len(s) {
		return false
	}
	for i, r := range s {
		if rest[i] != r {
			return false
		}
	}
	return true
}

func (c *cursor) skip(n int) {
	c.pos += n
}

// HTMLTokenizer turns an in-memory markup string into a stream of tokens.
// The zero value is not usable; construct with NewHTMLTokenizer.
type HTMLTokenizer struct {
	cur          *cursor
	currentState tokenizerState
	tokenBuilder *TokenBuilder
	pending      []Token
	tagStart     int
	textStart    int
	done         bool
	errs         *ErrorLog
}

// NewHTMLTokenizer creates a tokenizer over input. Recoverable anomalies are
// appended to errs; the tokenizer never fails outright.
func NewHTMLTokenizer(input string, errs *ErrorLog) *HTMLTokenizer {
	if errs == nil {
		errs = &ErrorLog{}
	}
	return &HTMLTokenizer{
		cur:          newCursor(input),
		currentState: dataState,
		tokenBuilder: newTokenBuilder(),
		errs:         errs,
	}
}

// NextToken runs the state machine until a complete token is ready and
// returns it. Once the input is exhausted it returns an end-of-input token,
// and keeps returning it on subsequent calls.
func (p *HTMLTokenizer) NextToken() Token {
	for len(p.pending) == 0 {
		if p.done {
			return Token{TokenType: endOfInputToken, Offset: len(p.cur.input)}
		}
		r, eof := p.cur.next()
		reconsume, next := p.stateToParser(p.currentState)(r, eof)
		p.cur.reconsume = reconsume
		p.currentState = next
	}
	t := p.pending[0]
	p.pending = p.pending[1:]
	if t.TokenType == endOfInputToken {
		p.done = true
	}
	return t
}

func (p *HTMLTokenizer) stateToParser(state tokenizerState) parserStateHandler {
	switch state {
	case dataState:
		return p.dataStateParser
	case tagOpenState:
		return p.tagOpenStateParser
	case endTagOpenState:
		return p.endTagOpenStateParser
	case tagNameState:
		return p.tagNameStateParser
	case beforeAttributeNameState:
		return p.beforeAttributeNameStateParser
	case attributeNameState:
		return p.attributeNameStateParser
	case afterAttributeNameState:
		return p.afterAttributeNameStateParser
	case beforeAttributeValueState:
		return p.beforeAttributeValueStateParser
	case attributeValueDoubleQuotedState:
		return p.attributeValueDoubleQuotedStateParser
	case attributeValueSingleQuotedState:
		return p.attributeValueSingleQuotedStateParser
	case attributeValueUnquotedState:
		return p.attributeValueUnquotedStateParser
	case afterAttributeValueQuotedState:
		return p.afterAttributeValueQuotedStateParser
	case selfClosingStartTagState:
		return p.selfClosingStartTagStateParser
	case bogusCommentState:
		return p.bogusCommentStateParser
	case markupDeclarationOpenState:
		return p.markupDeclarationOpenStateParser
	case commentStartState:
		return p.commentStartStateParser
	case commentStartDashState:
		return p.commentStartDashStateParser
	case commentState:
		return p.commentStateParser
	case commentEndDashState:
		return p.commentEndDashStateParser
	case commentEndState:
		return p.commentEndStateParser
	case doctypeState:
		return p.doctypeStateParser
	case beforeDoctypeNameState:
		return p.beforeDoctypeNameStateParser
	case doctypeNameState:
		return p.doctypeNameStateParser
	case afterDoctypeNameState:
		return p.afterDoctypeNameStateParser
	case bogusDoctypeState:
		return p.bogusDoctypeStateParser
	}

	return nil
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isWhitespace(r rune) bool {
	switch r {
	case '\u0009', '\u000A', '\u000C', '\u0020': // tab, line feed, form feed, space
		return true
	}
	return false
}

func (p *HTMLTokenizer) emit(tokens ...Token) {
	p.pending = append(p.pending, tokens...)
}

// flushText emits the buffered text run, if any, as a single text token.
// Text is always flushed the moment the data state leaves for a tag open or
// hits the end of input; runs are never merged across a "<" boundary here.
func (p *HTMLTokenizer) flushText() {
	if p.tokenBuilder.data.Len() == 0 {
		return
	}
	p.emit(Token{TokenType: textToken, Data: p.tokenBuilder.data.String(), Offset: p.textStart})
	p.tokenBuilder.data.Reset()
}

func (p *HTMLTokenizer) emitLiteralText(s string) {
	p.emit(Token{TokenType: textToken, Data: s, Offset: p.tagStart})
}

func (p *HTMLTokenizer) emitEndOfInput() {
	p.emit(Token{TokenType: endOfInputToken, Offset: len(p.cur.input)})
}

// emitCurrentTag completes the tag being built and emits it. End tags are
// scrubbed on the way out: attributes and the self-closing flag are parse
// errors there and get dropped.
func (p *HTMLTokenizer) emitCurrentTag() tokenizerState {
	p.commitAttribute()
	var t Token
	if p.tokenBuilder.curTagType == endTag {
		t = p.tokenBuilder.EndTagToken()
		if len(t.Attributes) > 0 {
			p.errs.log(p.tagStart, "end tag </%s> with attributes", t.TagName)
			t.Attributes = nil
		}
		if t.SelfClosing {
			p.errs.log(p.tagStart, "end tag </%s> with trailing solidus", t.TagName)
			t.SelfClosing = false
		}
	} else {
		t = p.tokenBuilder.StartTagToken()
	}
	t.Offset = p.tagStart
	p.emit(t)
	return dataState
}

func (p *HTMLTokenizer) emitComment() {
	t := p.tokenBuilder.CommentToken()
	t.Offset = p.tagStart
	p.emit(t)
	p.tokenBuilder.data.Reset()
}

func (p *HTMLTokenizer) emitDoctype(forceQuirks bool) {
	t := p.tokenBuilder.DocTypeToken(forceQuirks)
	t.Offset = p.tagStart
	p.emit(t)
}

func (p *HTMLTokenizer) commitAttribute() {
	if !p.tokenBuilder.CommitAttribute() {
		p.errs.log(p.cur.offset(), "duplicate attribute ignored")
	}
}

func (p *HTMLTokenizer) dataStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.flushText()
		p.emitEndOfInput()
		return false, dataState
	}
	switch r {
	case '<':
		p.flushText()
		p.tagStart = p.cur.offset()
		return false, tagOpenState
	default:
		if p.tokenBuilder.data.Len() == 0 {
			p.textStart = p.cur.offset()
		}
		p.tokenBuilder.WriteData(r)
		return false, dataState
	}
}

func (p *HTMLTokenizer) tagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input before tag name")
		p.emitLiteralText("<")
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case r == '!':
		return false, markupDeclarationOpenState
	case r == '/':
		return false, endTagOpenState
	case isASCIILetter(r):
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = startTag
		return true, tagNameState
	case r == '?':
		p.errs.log(p.cur.offset(), "unexpected question mark instead of tag name")
		p.tokenBuilder.Reset()
		return true, bogusCommentState
	default:
		p.errs.log(p.cur.offset(), "invalid first character of tag name")
		p.emitLiteralText("<")
		return true, dataState
	}
}

func (p *HTMLTokenizer) endTagOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input before end tag name")
		p.emitLiteralText("</")
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isASCIILetter(r):
		p.tokenBuilder.Reset()
		p.tokenBuilder.curTagType = endTag
		return true, tagNameState
	case r == '>':
		p.errs.log(p.cur.offset(), "missing end tag name")
		return false, dataState
	default:
		p.errs.log(p.cur.offset(), "invalid first character of end tag name")
		p.tokenBuilder.Reset()
		return true, bogusCommentState
	}
}

func (p *HTMLTokenizer) tagNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in tag")
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, beforeAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '>':
		return false, p.emitCurrentTag()
	case isASCIIUpper(r):
		p.tokenBuilder.WriteName(r + 0x20)
		return false, tagNameState
	case r == '\u0000':
		p.tokenBuilder.WriteName('\uFFFD')
		return false, tagNameState
	default:
		p.tokenBuilder.WriteName(r)
		return false, tagNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch {
	case isWhitespace(r):
		return false, beforeAttributeNameState
	case r == '/', r == '>':
		return true, afterAttributeNameState
	case r == '=':
		// quirk kept from the reference tokenizer: a stray "=" where a name
		// is expected becomes the first character of the name, so <a =x>
		// yields the attribute "=x".
		p.errs.log(p.cur.offset(), "unexpected equals sign before attribute name")
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) attributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, afterAttributeNameState
	}
	switch {
	case isWhitespace(r), r == '/', r == '>':
		return true, afterAttributeNameState
	case r == '=':
		return false, beforeAttributeValueState
	case isASCIIUpper(r):
		p.tokenBuilder.WriteAttributeName(r + 0x20)
		return false, attributeNameState
	case r == '\u0000':
		p.tokenBuilder.WriteAttributeName('\uFFFD')
		return false, attributeNameState
	case r == '"', r == '\'', r == '<':
		p.errs.log(p.cur.offset(), "unexpected character %q in attribute name", r)
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	default:
		p.tokenBuilder.WriteAttributeName(r)
		return false, attributeNameState
	}
}

func (p *HTMLTokenizer) afterAttributeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in tag")
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, afterAttributeNameState
	case r == '/':
		p.commitAttribute()
		return false, selfClosingStartTagState
	case r == '=':
		return false, beforeAttributeValueState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		// a bare name with no value ends here; record it with the empty
		// string and start collecting the next one
		p.commitAttribute()
		return true, attributeNameState
	}
}

func (p *HTMLTokenizer) beforeAttributeValueStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, attributeValueUnquotedState
	}
	switch {
	case isWhitespace(r):
		return false, beforeAttributeValueState
	case r == '"':
		return false, attributeValueDoubleQuotedState
	case r == '\'':
		return false, attributeValueSingleQuotedState
	case r == '>':
		p.errs.log(p.cur.offset(), "missing attribute value")
		return false, p.emitCurrentTag()
	default:
		return true, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) attributeValueDoubleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in attribute value")
		p.emitEndOfInput()
		return false, dataState
	}
	switch r {
	case '"':
		p.commitAttribute()
		return false, afterAttributeValueQuotedState
	case '\u0000':
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueDoubleQuotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueDoubleQuotedState
	}
}

func (p *HTMLTokenizer) attributeValueSingleQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in attribute value")
		p.emitEndOfInput()
		return false, dataState
	}
	switch r {
	case '\'':
		p.commitAttribute()
		return false, afterAttributeValueQuotedState
	case '\u0000':
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueSingleQuotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueSingleQuotedState
	}
}

func (p *HTMLTokenizer) attributeValueUnquotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in attribute value")
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		p.commitAttribute()
		return false, beforeAttributeNameState
	case r == '>':
		return false, p.emitCurrentTag()
	case r == '\u0000':
		p.tokenBuilder.WriteAttributeValue('\uFFFD')
		return false, attributeValueUnquotedState
	case r == '"', r == '\'', r == '<', r == '=', r == '`':
		p.errs.log(p.cur.offset(), "unexpected character %q in unquoted attribute value", r)
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueUnquotedState
	default:
		p.tokenBuilder.WriteAttributeValue(r)
		return false, attributeValueUnquotedState
	}
}

func (p *HTMLTokenizer) afterAttributeValueQuotedStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in tag")
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, beforeAttributeNameState
	case r == '/':
		return false, selfClosingStartTagState
	case r == '>':
		return false, p.emitCurrentTag()
	default:
		p.errs.log(p.cur.offset(), "missing whitespace between attributes")
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) selfClosingStartTagStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in tag")
		p.emitEndOfInput()
		return false, dataState
	}
	switch r {
	case '>':
		p.tokenBuilder.EnableSelfClosing()
		return false, p.emitCurrentTag()
	default:
		p.errs.log(p.cur.offset(), "unexpected character after solidus in tag")
		return true, beforeAttributeNameState
	}
}

func (p *HTMLTokenizer) bogusCommentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitComment()
		p.emitEndOfInput()
		return false, dataState
	}
	switch r {
	case '>':
		p.emitComment()
		return false, dataState
	default:
		p.tokenBuilder.WriteData(r)
		return false, bogusCommentState
	}
}

func (p *HTMLTokenizer) markupDeclarationOpenStateParser(r rune, eof bool) (bool, tokenizerState) {
	if !eof && r == '-' && p.cur.lookingAt("-") {
		p.cur.skip(1)
		p.tokenBuilder.Reset()
		return false, commentStartState
	}
	// the DOCTYPE keyword match is case-sensitive here; lower-cased variants
	// fall through to the bogus comment path
	if !eof && r == 'D' && p.cur.lookingAt("OCTYPE") {
		p.cur.skip(6)
		p.tokenBuilder.Reset()
		return false, doctypeState
	}
	p.errs.log(p.tagStart, "incorrectly opened comment")
	p.tokenBuilder.Reset()
	return true, bogusCommentState
}

func (p *HTMLTokenizer) commentStartStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '-':
		return false, commentStartDashState
	case '>':
		p.errs.log(p.cur.offset(), "abrupt closing of empty comment")
		p.emitComment()
		return false, dataState
	default:
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStartDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '-':
		return false, commentEndState
	case '>':
		p.errs.log(p.cur.offset(), "abrupt closing of empty comment")
		p.emitComment()
		return false, dataState
	default:
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in comment")
		p.emitComment()
		p.emitEndOfInput()
		return false, dataState
	}
	switch r {
	case '-':
		return false, commentEndDashState
	default:
		p.tokenBuilder.WriteData(r)
		return false, commentState
	}
}

func (p *HTMLTokenizer) commentEndDashStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '-':
		return false, commentEndState
	default:
		// the dash was not a comment terminator after all
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) commentEndStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		return true, commentState
	}
	switch r {
	case '>':
		p.emitComment()
		return false, dataState
	case '-':
		p.tokenBuilder.WriteData('-')
		return false, commentEndState
	default:
		p.tokenBuilder.WriteData('-')
		p.tokenBuilder.WriteData('-')
		return true, commentState
	}
}

func (p *HTMLTokenizer) doctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in doctype")
		p.emitDoctype(true)
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, beforeDoctypeNameState
	case r == '>':
		return true, beforeDoctypeNameState
	default:
		p.errs.log(p.cur.offset(), "missing whitespace before doctype name")
		return true, beforeDoctypeNameState
	}
}

func (p *HTMLTokenizer) beforeDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in doctype")
		p.emitDoctype(true)
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, beforeDoctypeNameState
	case r == '>':
		p.errs.log(p.cur.offset(), "missing doctype name")
		p.emitDoctype(true)
		return false, dataState
	case isASCIIUpper(r):
		p.tokenBuilder.WriteName(r + 0x20)
		return false, doctypeNameState
	default:
		p.tokenBuilder.WriteName(r)
		return false, doctypeNameState
	}
}

func (p *HTMLTokenizer) doctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in doctype")
		p.emitDoctype(true)
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, afterDoctypeNameState
	case r == '>':
		p.emitDoctype(false)
		return false, dataState
	case isASCIIUpper(r):
		p.tokenBuilder.WriteName(r + 0x20)
		return false, doctypeNameState
	default:
		p.tokenBuilder.WriteName(r)
		return false, doctypeNameState
	}
}

func (p *HTMLTokenizer) afterDoctypeNameStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.errs.log(p.tagStart, "end of input in doctype")
		p.emitDoctype(true)
		p.emitEndOfInput()
		return false, dataState
	}
	switch {
	case isWhitespace(r):
		return false, afterDoctypeNameState
	case r == '>':
		p.emitDoctype(false)
		return false, dataState
	default:
		// PUBLIC/SYSTEM identifiers are not modeled; skip forward to the
		// closing ">" and keep only the name
		p.errs.log(p.cur.offset(), "doctype identifiers are not supported, skipping to '>'")
		return false, bogusDoctypeState
	}
}

func (p *HTMLTokenizer) bogusDoctypeStateParser(r rune, eof bool) (bool, tokenizerState) {
	if eof {
		p.emitDoctype(false)
		p.emitEndOfInput()
		return false, dataState
	}
	switch r {
	case '>':
		p.emitDoctype(false)
		return false, dataState
	default:
		return false, bogusDoctypeState
	}
}
