package parser

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ParseError is a recoverable syntax anomaly found during a parse. Offset is
// the rune position in the input where the anomaly was noticed.
type ParseError struct {
	Offset  int
	Message string
}

func (e ParseError) String() string {
	return fmt.Sprintf("%d: %s", e.Offset, e.Message)
}

// ErrorLog collects parse errors in the order they were found. It is purely
// observational: nothing in the parser changes behavior based on its
// contents, and an empty log after a parse means the input was clean.
type ErrorLog struct {
	entries []ParseError
}

func (l *ErrorLog) log(offset int, format string, args ...interface{}) {
	e := ParseError{Offset: offset, Message: fmt.Sprintf(format, args...)}
	l.entries = append(l.entries, e)
	logrus.WithField("offset", e.Offset).Debugf("parse error: %s", e.Message)
}

func (l *ErrorLog) reset() {
	l.entries = nil
}

// Errors returns a copy of the collected entries.
func (l *ErrorLog) Errors() []ParseError {
	entries := make([]ParseError, len(l.entries))
	copy(entries, l.entries)
	return entries
}

// Strings renders each entry as "offset: message".
func (l *ErrorLog) Strings() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.String()
	}
	return out
}

func (l *ErrorLog) Len() int {
	return len(l.entries)
}
