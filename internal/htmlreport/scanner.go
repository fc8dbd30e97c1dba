// Package htmlreport extracts the JSON payload embedded in an HTML monitoring
// report and flattens its datasets into tables.
package htmlreport

import (
	stderrors "errors"
	"strings"

	"github.com/pkg/errors"
)

// Marker precedes the embedded JSON object in the report page.
const Marker = "const data="

var (
	// ErrMarkerNotFound is returned when the page carries no payload.
	ErrMarkerNotFound = stderrors.New("'const data=' not found in HTML")
	// ErrUnterminatedObject is returned when the payload object never closes.
	ErrUnterminatedObject = stderrors.New("unterminated JSON object")
)

type scanState int

const (
	stateOutside scanState = iota
	stateInString
	stateEscape
)

// ScanObject returns the balanced JSON object that starts at the first '{'
// of s. Braces inside string literals, including escaped quotes, do not
// count toward nesting.
func ScanObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errors.WithStack(ErrUnterminatedObject)
	}

	state := stateOutside
	depth := 0
	for i := start; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateEscape:
			state = stateInString
		case stateInString:
			switch c {
			case '\\':
				state = stateEscape
			case '"':
				state = stateOutside
			}
		case stateOutside:
			switch c {
			case '"':
				state = stateInString
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[start : i+1], nil
				}
			}
		}
	}
	return "", errors.WithStack(ErrUnterminatedObject)
}

// FindPayload locates the marker in an HTML page and returns the JSON object
// assigned to it.
func FindPayload(content string) (string, error) {
	idx := strings.Index(content, Marker)
	if idx < 0 {
		return "", errors.WithStack(ErrMarkerNotFound)
	}
	return ScanObject(content[idx+len(Marker):])
}
