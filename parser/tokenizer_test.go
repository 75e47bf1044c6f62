package parser

import (
	"testing"
)

func collectTokens(input string) ([]Token, []ParseError) {
	return Tokenize(input)
}

func firstTokenOfType(tokens []Token, tt tokenType) (Token, bool) {
	for _, t := range tokens {
		if t.TokenType == tt {
			return t, true
		}
	}
	return Token{}, false
}

type tokenizerAttributeAccuracyTestcase struct {
	inHTML string            // snippet of HTML to tokenize (should only be one element)
	attrs  map[string]string // expected attributes collected from the first start tag produced
}

var tokenizerAttributeAccuracyTests = []tokenizerAttributeAccuracyTestcase{
	{"<head></head>", map[string]string{}},
	{"<script src='123' onload='test'></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<a href='https://google.com' onclick='alert(1)'>Click this</a>", map[string]string{
		"href":    "https://google.com",
		"onclick": "alert(1)",
	}},
	{"<script src='123' src='456'></script>", map[string]string{
		"src": "123",
	}},
	{"<script src=123 onload=test></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<script src='123' onload='test' ></script>", map[string]string{
		"src":    "123",
		"onload": "test",
	}},
	{"<script =src='123' onload='test' ></script>", map[string]string{
		"=src":   "123",
		"onload": "test",
	}},
	{"<script src></script>", map[string]string{
		"src": "",
	}},
	{"<script src test></script>", map[string]string{
		"src":  "",
		"test": "",
	}},
	{"<script 'asd></script>", map[string]string{
		"'asd": "",
	}},
	{"<script <asd></script>", map[string]string{
		"<asd": "",
	}},
	{"<script ABC=123></script>", map[string]string{
		"abc": "123",
	}},
	{"<script abc='\u0000123'></script>", map[string]string{
		"abc": "\uFFFD123",
	}},
	{"<script abc=></script>", map[string]string{
		"abc": "",
	}},
	{"<script\tabc=123></script>", map[string]string{
		"abc": "123",
	}},
}

// TestTokenizerAttributeAccuracy makes sure that we collect the correct
// attribute names and values, including the duplicate-name and "=" quirks.
func TestTokenizerAttributeAccuracy(t *testing.T) {
	for _, tt := range tokenizerAttributeAccuracyTests {
		runTestTokenizerAttributeAccuracy(tt, t)
	}
}

func runTestTokenizerAttributeAccuracy(tt tokenizerAttributeAccuracyTestcase, t *testing.T) {
	t.Run(tt.inHTML, func(t *testing.T) {
		t.Parallel()
		tokens, _ := collectTokens(tt.inHTML)
		token, ok := firstTokenOfType(tokens, startTagToken)
		if !ok {
			t.Fatalf("Expected a start tag token, got none")
		}
		if len(token.Attributes) != len(tt.attrs) {
			t.Errorf("Expected %d attributes, got %d: %v", len(tt.attrs), len(token.Attributes), token.Attributes)
		}
		for k, v := range tt.attrs {
			got, ok := token.Attr(k)
			if !ok {
				t.Errorf("Expected to find a key of %s, didn't find one\n", k)
				continue
			}
			if v != got {
				t.Errorf("Expected %s as the value, got %s\n", v, got)
			}
		}
	})
}

type stateMachineTestCase struct {
	inRune            rune           // the rune to pass to the startingState
	startingState     tokenizerState // the state to start from
	shouldReconsume   bool           // the expectation if the next state should reconsume
	nextExpectedState tokenizerState // the next state
}

// TestStateParsers tests to make sure that each component of the state machine
// returns the next expected state. Overall, it checks the basic state machine
// flows are accurate. All cases won't be covered because some flows require
// state, but the basic cases are covered here.
func TestStateParsers(t *testing.T) {
	stateParserTests := []stateMachineTestCase{
		{'<', dataState, false, tagOpenState},
		{'a', dataState, false, dataState},
		{'1', dataState, false, dataState},
		{'&', dataState, false, dataState},

		{'!', tagOpenState, false, markupDeclarationOpenState},
		{'/', tagOpenState, false, endTagOpenState},
		{'a', tagOpenState, true, tagNameState},
		{'A', tagOpenState, true, tagNameState},
		{'z', tagOpenState, true, tagNameState},
		{'?', tagOpenState, true, bogusCommentState},
		{'1', tagOpenState, true, dataState},

		{'a', endTagOpenState, true, tagNameState},
		{'>', endTagOpenState, false, dataState},
		{'~', endTagOpenState, true, bogusCommentState},

		{' ', tagNameState, false, beforeAttributeNameState},
		{'\t', tagNameState, false, beforeAttributeNameState},
		{'/', tagNameState, false, selfClosingStartTagState},
		{'>', tagNameState, false, dataState},
		{'a', tagNameState, false, tagNameState},

		{' ', beforeAttributeNameState, false, beforeAttributeNameState},
		{'=', beforeAttributeNameState, false, attributeNameState},
		{'/', beforeAttributeNameState, true, afterAttributeNameState},
		{'>', beforeAttributeNameState, true, afterAttributeNameState},
		{'a', beforeAttributeNameState, true, attributeNameState},

		{'=', attributeNameState, false, beforeAttributeValueState},
		{' ', attributeNameState, true, afterAttributeNameState},
		{'/', attributeNameState, true, afterAttributeNameState},
		{'>', attributeNameState, true, afterAttributeNameState},
		{'a', attributeNameState, false, attributeNameState},
		{'"', attributeNameState, false, attributeNameState},

		{' ', afterAttributeNameState, false, afterAttributeNameState},
		{'/', afterAttributeNameState, false, selfClosingStartTagState},
		{'=', afterAttributeNameState, false, beforeAttributeValueState},
		{'>', afterAttributeNameState, false, dataState},
		{'a', afterAttributeNameState, true, attributeNameState},

		{' ', beforeAttributeValueState, false, beforeAttributeValueState},
		{'"', beforeAttributeValueState, false, attributeValueDoubleQuotedState},
		{'\'', beforeAttributeValueState, false, attributeValueSingleQuotedState},
		{'>', beforeAttributeValueState, false, dataState},
		{'a', beforeAttributeValueState, true, attributeValueUnquotedState},

		{'"', attributeValueDoubleQuotedState, false, afterAttributeValueQuotedState},
		{'a', attributeValueDoubleQuotedState, false, attributeValueDoubleQuotedState},
		{'\'', attributeValueSingleQuotedState, false, afterAttributeValueQuotedState},
		{'a', attributeValueSingleQuotedState, false, attributeValueSingleQuotedState},

		{' ', attributeValueUnquotedState, false, beforeAttributeNameState},
		{'>', attributeValueUnquotedState, false, dataState},
		{'a', attributeValueUnquotedState, false, attributeValueUnquotedState},
		{'`', attributeValueUnquotedState, false, attributeValueUnquotedState},

		{' ', afterAttributeValueQuotedState, false, beforeAttributeNameState},
		{'/', afterAttributeValueQuotedState, false, selfClosingStartTagState},
		{'>', afterAttributeValueQuotedState, false, dataState},
		{'a', afterAttributeValueQuotedState, true, beforeAttributeNameState},

		{'>', selfClosingStartTagState, false, dataState},
		{'a', selfClosingStartTagState, true, beforeAttributeNameState},

		{'>', bogusCommentState, false, dataState},
		{'a', bogusCommentState, false, bogusCommentState},

		{'x', markupDeclarationOpenState, true, bogusCommentState},

		{'-', commentStartState, false, commentStartDashState},
		{'>', commentStartState, false, dataState},
		{'a', commentStartState, true, commentState},

		{'-', commentStartDashState, false, commentEndState},
		{'a', commentStartDashState, true, commentState},

		{'-', commentState, false, commentEndDashState},
		{'a', commentState, false, commentState},

		{'-', commentEndDashState, false, commentEndState},
		{'a', commentEndDashState, true, commentState},

		{'>', commentEndState, false, dataState},
		{'-', commentEndState, false, commentEndState},
		{'a', commentEndState, true, commentState},

		{' ', doctypeState, false, beforeDoctypeNameState},
		{'a', doctypeState, true, beforeDoctypeNameState},

		{' ', beforeDoctypeNameState, false, beforeDoctypeNameState},
		{'a', beforeDoctypeNameState, false, doctypeNameState},
		{'>', beforeDoctypeNameState, false, dataState},

		{' ', doctypeNameState, false, afterDoctypeNameState},
		{'>', doctypeNameState, false, dataState},
		{'a', doctypeNameState, false, doctypeNameState},

		{' ', afterDoctypeNameState, false, afterDoctypeNameState},
		{'>', afterDoctypeNameState, false, dataState},
		{'a', afterDoctypeNameState, false, bogusDoctypeState},

		{'>', bogusDoctypeState, false, dataState},
		{'a', bogusDoctypeState, false, bogusDoctypeState},
	}

	for _, tt := range stateParserTests {
		runStateParserTest(tt, t)
	}
}

func runStateParserTest(tt stateMachineTestCase, t *testing.T) {
	t.Run(string(tt.inRune)+"-"+string(rune('0'+tt.startingState)), func(t *testing.T) {
		t.Parallel()
		p := NewHTMLTokenizer("", &ErrorLog{})
		reconsume, next := p.stateToParser(tt.startingState)(tt.inRune, false)
		if reconsume != tt.shouldReconsume {
			t.Errorf("Expected reconsume=%v, got %v", tt.shouldReconsume, reconsume)
		}
		if next != tt.nextExpectedState {
			t.Errorf("Expected next state %d, got %d", tt.nextExpectedState, next)
		}
	})
}

type tokenStreamTestcase struct {
	name    string
	inHTML  string
	want    []Token
	minErrs int // minimum number of logged diagnostics
}

var tokenStreamTests = []tokenStreamTestcase{
	{
		name:   "plain text",
		inHTML: "hello",
		want: []Token{
			{TokenType: textToken, Data: "hello"},
			{TokenType: endOfInputToken},
		},
	},
	{
		name:   "text flushed at tag boundary",
		inHTML: "a<1b",
		want: []Token{
			{TokenType: textToken, Data: "a"},
			{TokenType: textToken, Data: "<"},
			{TokenType: textToken, Data: "1b"},
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
	{
		name:   "simple element",
		inHTML: "<p>hi</p>",
		want: []Token{
			{TokenType: startTagToken, TagName: "p"},
			{TokenType: textToken, Data: "hi"},
			{TokenType: endTagToken, TagName: "p"},
			{TokenType: endOfInputToken},
		},
	},
	{
		name:   "tag name lower-cased",
		inHTML: "<DiV></dIv>",
		want: []Token{
			{TokenType: startTagToken, TagName: "div"},
			{TokenType: endTagToken, TagName: "div"},
			{TokenType: endOfInputToken},
		},
	},
	{
		name:   "self closing tag",
		inHTML: "<br/>",
		want: []Token{
			{TokenType: startTagToken, TagName: "br", SelfClosing: true},
			{TokenType: endOfInputToken},
		},
	},
	{
		name:   "comment with inner dashes",
		inHTML: "<!-- a -- b -->",
		want: []Token{
			{TokenType: commentToken, Data: " a -- b "},
			{TokenType: endOfInputToken},
		},
	},
	{
		name:   "empty comment",
		inHTML: "<!---->",
		want: []Token{
			{TokenType: commentToken, Data: ""},
			{TokenType: endOfInputToken},
		},
	},
	{
		name:   "abruptly closed comment",
		inHTML: "<!-->",
		want: []Token{
			{TokenType: commentToken, Data: ""},
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
	{
		name:   "processing instruction becomes bogus comment",
		inHTML: "<?php ?>",
		want: []Token{
			{TokenType: commentToken, Data: "?php ?"},
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
	{
		name:   "unknown markup declaration becomes bogus comment",
		inHTML: "<!what>",
		want: []Token{
			{TokenType: commentToken, Data: "what"},
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
	{
		name:   "empty end tag discarded",
		inHTML: "</>",
		want: []Token{
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
	{
		name:   "doctype name lower-cased",
		inHTML: "<!DOCTYPE HTML>",
		want: []Token{
			{TokenType: docTypeToken, TagName: "html"},
			{TokenType: endOfInputToken},
		},
	},
	{
		name:   "doctype identifiers skipped",
		inHTML: "<!DOCTYPE html PUBLIC \"-//W3C//DTD HTML 4.01//EN\">",
		want: []Token{
			{TokenType: docTypeToken, TagName: "html"},
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
	{
		name:   "doctype keyword match is case-sensitive",
		inHTML: "<!doctype html>",
		want: []Token{
			{TokenType: commentToken, Data: "doctype html"},
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
	{
		name:   "end tag attributes dropped",
		inHTML: "</div class=\"x\">",
		want: []Token{
			{TokenType: endTagToken, TagName: "div"},
			{TokenType: endOfInputToken},
		},
		minErrs: 1,
	},
}

func TestTokenStreams(t *testing.T) {
	for _, tt := range tokenStreamTests {
		runTokenStreamTest(tt, t)
	}
}

func runTokenStreamTest(tt tokenStreamTestcase, t *testing.T) {
	t.Run(tt.name, func(t *testing.T) {
		t.Parallel()
		tokens, errs := collectTokens(tt.inHTML)
		if len(tokens) != len(tt.want) {
			t.Fatalf("Expected %d tokens, got %d: %v", len(tt.want), len(tokens), tokens)
		}
		for i, want := range tt.want {
			got := tokens[i]
			if got.TokenType != want.TokenType {
				t.Errorf("token %d: expected type %v, got %v", i, want.TokenType, got.TokenType)
			}
			if got.TagName != want.TagName {
				t.Errorf("token %d: expected tag name %q, got %q", i, want.TagName, got.TagName)
			}
			if got.Data != want.Data {
				t.Errorf("token %d: expected data %q, got %q", i, want.Data, got.Data)
			}
			if got.SelfClosing != want.SelfClosing {
				t.Errorf("token %d: expected self-closing %v, got %v", i, want.SelfClosing, got.SelfClosing)
			}
		}
		if len(errs) < tt.minErrs {
			t.Errorf("Expected at least %d diagnostics, got %d: %v", tt.minErrs, len(errs), errs)
		}
	})
}

type eofRecoveryTestcase struct {
	name   string
	inHTML string
	want   []tokenType // full expected token type stream
}

// TestTokenizerEOFRecovery checks that end-of-input inside a token never
// aborts tokenization: dangling tags are dropped, comments and doctypes are
// synthesized from whatever was collected, and an error is always logged.
func TestTokenizerEOFRecovery(t *testing.T) {
	tests := []eofRecoveryTestcase{
		{"eof after less-than", "<", []tokenType{textToken, endOfInputToken}},
		{"eof after end tag open", "</", []tokenType{textToken, endOfInputToken}},
		{"eof in tag name", "<div", []tokenType{endOfInputToken}},
		{"eof before attribute name", "<div ", []tokenType{endOfInputToken}},
		{"eof in attribute name", "<div id", []tokenType{endOfInputToken}},
		{"eof in attribute value", `<div id="x`, []tokenType{endOfInputToken}},
		{"eof after solidus", "<div/", []tokenType{endOfInputToken}},
		{"eof in comment", "<!-- never closed", []tokenType{commentToken, endOfInputToken}},
		{"eof in comment end", "<!--x--", []tokenType{commentToken, endOfInputToken}},
		{"eof in doctype keyword", "<!DOCTYPE", []tokenType{docTypeToken, endOfInputToken}},
		{"eof in doctype name", "<!DOCTYPE ht", []tokenType{docTypeToken, endOfInputToken}},
		{"eof in bogus comment", "<?never", []tokenType{commentToken, endOfInputToken}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tokens, errs := collectTokens(tt.inHTML)
			if len(tokens) != len(tt.want) {
				t.Fatalf("Expected %d tokens, got %d: %v", len(tt.want), len(tokens), tokens)
			}
			for i, want := range tt.want {
				if tokens[i].TokenType != want {
					t.Errorf("token %d: expected type %v, got %v", i, want, tokens[i].TokenType)
				}
			}
			if len(errs) == 0 {
				t.Errorf("Expected at least one diagnostic for truncated input")
			}
		})
	}
}

// TestDoctypeEOFForceQuirks checks the synthesized doctype carries the
// force-quirks flag when the input ends inside the doctype.
func TestDoctypeEOFForceQuirks(t *testing.T) {
	tokens, errs := collectTokens("<!DOCTYPE ht")
	token, ok := firstTokenOfType(tokens, docTypeToken)
	if !ok {
		t.Fatal("Expected a doctype token")
	}
	if !token.ForceQuirks {
		t.Error("Expected the force-quirks flag to be set")
	}
	if token.TagName != "ht" {
		t.Errorf("Expected the partial name %q, got %q", "ht", token.TagName)
	}
	if len(errs) == 0 {
		t.Error("Expected a diagnostic for end of input in doctype")
	}

	tokens, _ = collectTokens("<!DOCTYPE html>")
	token, _ = firstTokenOfType(tokens, docTypeToken)
	if token.ForceQuirks {
		t.Error("Expected force-quirks to be unset for a complete doctype")
	}
}

// TestCursorReconsume checks the one-shot reconsume contract: the flag serves
// the same rune exactly once and is cleared by that read, so it can never
// fire twice without an intervening real advance.
func TestCursorReconsume(t *testing.T) {
	c := newCursor("ab")

	r, eof := c.next()
	if r != 'a' || eof {
		t.Fatalf("Expected 'a', got %q (eof=%v)", r, eof)
	}

	c.reconsume = true
	r, eof = c.next()
	if r != 'a' || eof {
		t.Fatalf("Expected 'a' again on reconsume, got %q (eof=%v)", r, eof)
	}
	if c.reconsume {
		t.Fatal("Expected the reconsume flag to be cleared after one reuse")
	}

	r, eof = c.next()
	if r != 'b' || eof {
		t.Fatalf("Expected 'b' after reconsume was consumed, got %q (eof=%v)", r, eof)
	}

	// at end of input, reconsume replays the end-of-input condition
	_, eof = c.next()
	if !eof {
		t.Fatal("Expected end of input")
	}
	c.reconsume = true
	_, eof = c.next()
	if !eof {
		t.Fatal("Expected reconsumed end of input")
	}
}

// TestTokenOffsets checks diagnostics and tokens carry input offsets.
func TestTokenOffsets(t *testing.T) {
	tokens, _ := collectTokens("ab<p>cd")
	if tokens[0].Offset != 0 {
		t.Errorf("Expected text offset 0, got %d", tokens[0].Offset)
	}
	if tokens[1].Offset != 2 {
		t.Errorf("Expected tag offset 2, got %d", tokens[1].Offset)
	}
	if tokens[2].Offset != 5 {
		t.Errorf("Expected text offset 5, got %d", tokens[2].Offset)
	}
}
