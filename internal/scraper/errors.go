package scraper

import (
	"fmt"
	"strings"
)

// MalformedDateError reports a date/time fragment that matches no known
// pattern or carries non-numeric text where digits are required.
type MalformedDateError struct {
	Text   string
	Reason string
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("date format not supported: %s (%q)", e.Reason, e.Text)
}

// UnsupportedLastAnswerError reports a last-answer stamp whose marker token
// sits in neither recognised position. The raw tokens are kept for
// diagnosis; the page layout changes occasionally and the tokens are the
// only way to tell what happened.
type UnsupportedLastAnswerError struct {
	Tokens []string
}

func (e *UnsupportedLastAnswerError) Error() string {
	return fmt.Sprintf("last answer date/time case not covered: %q", strings.Join(e.Tokens, " "))
}

// MissingCountError reports a reply-count cell containing no digits at all.
type MissingCountError struct {
	Text string
}

func (e *MissingCountError) Error() string {
	return fmt.Sprintf("no reply count found in %q", e.Text)
}
