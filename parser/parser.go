// Package parser ingests raw markup text and produces a document tree. It is
// split the way browser engines split the work: a tokenizer that turns the
// character stream into tokens, and a tree constructor that consumes the
// token stream and builds the tree while recovering from malformed input.
package parser

import (
	"github.com/heathj/htmlcore/parser/dom"
	"github.com/sirupsen/logrus"
)

// fragmentContainerTag is the synthetic element ParseElement wraps fragments
// in so they can be located after a full parse.
const fragmentContainerTag = "fragment-container"

// Parser ties a tokenizer and a tree constructor together over one in-memory
// input string. A Parser is reusable across calls but not reentrant: use one
// instance per goroutine.
type Parser struct {
	tokenizer       *HTMLTokenizer
	treeConstructor *HTMLTreeConstructor
	errs            *ErrorLog
}

func NewParser() *Parser {
	errs := &ErrorLog{}
	return &Parser{
		treeConstructor: NewHTMLTreeConstructor(errs),
		errs:            errs,
	}
}

// Parse tokenizes input and builds the resulting document tree. All parser
// state is reset first, so the same instance can parse many inputs. Parse
// always returns a usable tree; anomalies in the input are available from
// Errors afterwards.
func (p *Parser) Parse(input string) *dom.Node {
	p.errs.reset()
	p.tokenizer = NewHTMLTokenizer(input, p.errs)
	p.treeConstructor.reset()

	for {
		t := p.tokenizer.NextToken()
		p.treeConstructor.ProcessToken(t)
		if t.TokenType == endOfInputToken {
			break
		}
	}

	logrus.WithFields(logrus.Fields{
		"input_len":    len(input),
		"parse_errors": p.errs.Len(),
	}).Debug("parse complete")
	return p.treeConstructor.Document()
}

// ParseElement parses a markup fragment and returns its first element as a
// deep, independently owned copy, or nil if the fragment produced no element.
// The fragment is wrapped in a synthetic container tag and run through the
// full algorithm, so recovery behaves exactly as in Parse.
func (p *Parser) ParseElement(fragment string) *dom.Node {
	doc := p.Parse("<" + fragmentContainerTag + ">" + fragment + "</" + fragmentContainerTag + ">")
	container := doc.Query(fragmentContainerTag)
	if container == nil {
		return nil
	}
	elem := container.FirstElementChild()
	if elem == nil {
		return nil
	}
	return elem.CloneNode(true)
}

// Errors returns the diagnostics collected by the most recent parse, in the
// order they were found. An empty slice means a clean parse.
func (p *Parser) Errors() []ParseError {
	return p.errs.Errors()
}

// Tokenize runs only the tokenization stage over input and returns the full
// token stream, ending with the end-of-input token, plus any diagnostics.
func Tokenize(input string) ([]Token, []ParseError) {
	errs := &ErrorLog{}
	tok := NewHTMLTokenizer(input, errs)
	var tokens []Token
	for {
		t := tok.NextToken()
		tokens = append(tokens, t)
		if t.TokenType == endOfInputToken {
			break
		}
	}
	return tokens, errs.Errors()
}
