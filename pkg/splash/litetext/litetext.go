// Package litetext reads flat key/value pairs out of JSON-like text without
// parsing it.
//
// A key is located by the first textual occurrence of its quoted name; the
// scanner has no notion of nesting, escapes or duplicate keys, so a key inside
// an unrelated nested object wins if it appears first. Boot-time manifests
// are written to match this behaviour and it must not be "fixed" here.
package litetext

import (
	"bytes"
)

// Text is a configuration blob. Like a C string it ends at the first NUL.
type Text []byte

// New wraps b, truncating at the first NUL byte.
func New(b []byte) Text {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return Text(b)
}

// FindKey returns the offset of `"key"` in t, or -1.
func (t Text) FindKey(key string) int {
	if key == "" {
		return -1
	}
	pattern := make([]byte, 0, len(key)+2)
	pattern = append(pattern, '"')
	pattern = append(pattern, key...)
	pattern = append(pattern, '"')
	return bytes.Index(t, pattern)
}

// isNoise reports bytes skipped between a key and its value.
func isNoise(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ':', ',':
		return true
	}
	return false
}

// valueAt returns the offset of the first token after key.
func (t Text) valueAt(key string) (int, bool) {
	at := t.FindKey(key)
	if at < 0 {
		return 0, false
	}
	pos := at + len(key) + 2
	for pos < len(t) && isNoise(t[pos]) {
		pos++
	}
	return pos, true
}

// Uint reads an unsigned decimal integer value. Leading zeros are accepted,
// parsing stops at the first non-digit, and at least one digit is required.
// Values that overflow uint64 are reported as absent.
func (t Text) Uint(key string) (uint64, bool) {
	pos, ok := t.valueAt(key)
	if !ok {
		return 0, false
	}

	var value uint64
	digits := 0
	for ; pos < len(t); pos++ {
		c := t[pos]
		if c < '0' || c > '9' {
			break
		}
		d := uint64(c - '0')
		if value > (^uint64(0)-d)/10 {
			return 0, false
		}
		value = value*10 + d
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	return value, true
}

// Bool reads a `true` or `false` literal. Only the literal prefix is checked.
func (t Text) Bool(key string) (bool, bool) {
	pos, ok := t.valueAt(key)
	if !ok {
		return false, false
	}
	rest := t[pos:]
	switch {
	case bytes.HasPrefix(rest, []byte("true")):
		return true, true
	case bytes.HasPrefix(rest, []byte("false")):
		return false, true
	}
	return false, false
}

// String reads a quoted string value, keeping at most limit bytes. Copying
// stops at the closing quote or the end of the text, so an unterminated
// string yields whatever follows the opening quote.
func (t Text) String(key string, limit int) (string, bool) {
	if limit <= 0 {
		return "", false
	}
	pos, ok := t.valueAt(key)
	if !ok || pos >= len(t) || t[pos] != '"' {
		return "", false
	}
	pos++

	end := pos
	for end < len(t) && end-pos < limit && t[end] != '"' {
		end++
	}
	return string(t[pos:end]), true
}
