package livescore

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/titanous/json5"
)

var (
	ErrMarkerNotFound = errors.New("marker not found")
	ErrUnbalanced     = errors.New("object is never closed")
)

// ExtractionError means no candidate object could be isolated for a marker.
type ExtractionError struct {
	Marker string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %q: %s", e.Marker, e.Err.Error())
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// JsonDecodeError means an object was isolated but is not valid JSON.
type JsonDecodeError struct {
	Marker  string
	Snippet string
	Err     error
}

func (e *JsonDecodeError) Error() string {
	return fmt.Sprintf("decode %q: %s (near %q)", e.Marker, e.Err.Error(), e.Snippet)
}

func (e *JsonDecodeError) Unwrap() error {
	return e.Err
}

var anchoredCache sync.Map

func anchoredRegex(marker string) *regexp.Regexp {
	cached, ok := anchoredCache.Load(marker)
	if ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(
		`(?s)` + regexp.QuoteMeta(marker) + `\s*=\s*(\{.*?\});?\s*function`,
	)
	anchoredCache.Store(marker, re)
	return re
}

func snippet(s string) string {
	if len(s) <= 80 {
		return s
	}
	return s[:40] + "..." + s[len(s)-40:]
}

func decodeObject(marker, raw string) (map[string]any, error) {
	var out map[string]any
	err := json.Unmarshal([]byte(raw), &out)
	if err != nil {
		return nil, &JsonDecodeError{Marker: marker, Snippet: snippet(raw), Err: err}
	}
	if out == nil {
		return nil, &JsonDecodeError{Marker: marker, Snippet: snippet(raw), Err: errors.New("not an object")}
	}
	return out, nil
}

// ExtractAnchored finds `<marker> = {...}` where the object is immediately
// followed by a function declaration (with an optional `;` in between) and
// decodes the shortest such object.
func ExtractAnchored(text, marker string) (map[string]any, error) {
	groups := anchoredRegex(marker).FindStringSubmatch(text)
	if len(groups) < 2 {
		return nil, &ExtractionError{Marker: marker, Err: ErrMarkerNotFound}
	}
	return decodeObject(marker, groups[1])
}

// assignmentStart returns the index of the first `{` of the object assigned
// to the first occurrence of `<marker> =`, or -1.
func assignmentStart(text, marker string) int {
	offset := 0
	for {
		idx := strings.Index(text[offset:], marker)
		if idx < 0 {
			return -1
		}
		i := offset + idx + len(marker)
		for i < len(text) && isSpace(text[i]) {
			i++
		}
		if i < len(text) && text[i] == '=' {
			i++
			for i < len(text) && isSpace(text[i]) {
				i++
			}
			if i < len(text) && text[i] == '{' {
				return i
			}
		}
		offset = offset + idx + len(marker)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// balancedEnd scans from the `{` at `start` and returns the index just past
// the brace that brings the depth back to zero. Braces inside string literals
// (single or double quoted, with backslash escapes) are ignored.
func balancedEnd(text string, start int) int {
	depth := 0
	var quote byte
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// ExtractBalanced locates `<marker> =` and isolates the assigned object by
// brace counting rather than by what follows it.
func ExtractBalanced(text, marker string) (map[string]any, error) {
	start := assignmentStart(text, marker)
	if start < 0 {
		return nil, &ExtractionError{Marker: marker, Err: ErrMarkerNotFound}
	}
	end := balancedEnd(text, start)
	if end < 0 {
		return nil, &ExtractionError{Marker: marker, Err: ErrUnbalanced}
	}
	return decodeObject(marker, text[start:end])
}

// Extract tries the anchored strategy first and falls back to brace balancing.
// When both fail, the balanced strategy's error is returned.
func Extract(text, marker string) (map[string]any, error) {
	out, err := ExtractAnchored(text, marker)
	if err == nil {
		return out, nil
	}
	return ExtractBalanced(text, marker)
}

// BalanceBraces appends one `}` for every `{` that has no counterpart,
// counting naively (string contents included). It returns the padded string
// and the number of braces appended.
func BalanceBraces(s string) (string, int) {
	missing := strings.Count(s, "{") - strings.Count(s, "}")
	if missing <= 0 {
		return s, 0
	}
	return s + strings.Repeat("}", missing), missing
}

func afterAssignment(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return text
	}
	rest := text[idx+len(marker):]
	eq := strings.Index(rest, "=")
	if eq < 0 {
		return rest
	}
	return rest[eq+1:]
}

// cleanPayload undoes the artifacts seen on the standings feed: wrapping
// quotes, escaped newlines, stray backslashes and a truncated tail. It
// returns the candidate objects to try in order, each padded with any
// missing closing braces.
func cleanPayload(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, `'"`)
	raw = strings.ReplaceAll(raw, `\n`, "")
	raw = strings.ReplaceAll(raw, `\`, "")

	first := strings.Index(raw, "{")
	if first < 0 {
		return nil
	}

	var candidates []string
	last := strings.LastIndex(raw, "}")
	if last > first {
		greedy, _ := BalanceBraces(raw[first : last+1])
		candidates = append(candidates, greedy)
	}
	// a truncated payload can end in `]` after its last `}`
	tail := strings.TrimRight(raw[first:], " \t\r\n;'\"")
	tail, _ = BalanceBraces(tail)
	if len(candidates) == 0 || candidates[0] != tail {
		candidates = append(candidates, tail)
	}
	return candidates
}

func decodeLoose(candidate string) map[string]any {
	var out map[string]any
	err := json.Unmarshal([]byte(candidate), &out)
	if err == nil && out != nil {
		return out
	}
	out = nil
	err = json5.Unmarshal([]byte(candidate), &out)
	if err == nil && out != nil {
		return out
	}
	return nil
}

// ExtractLenient never fails: it tries the strict strategies, then a cleanup
// pass decoded as JSON and then as JSON5, and finally gives up with an
// empty map.
func ExtractLenient(text, marker string) map[string]any {
	out, err := Extract(text, marker)
	if err == nil {
		return out
	}

	for _, candidate := range cleanPayload(afterAssignment(text, marker)) {
		out = decodeLoose(candidate)
		if out != nil {
			return out
		}
	}
	return map[string]any{}
}
