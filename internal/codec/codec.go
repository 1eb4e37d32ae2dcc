// Package codec converts stored paragraph content to displayable text and
// sanitizes user keyword input into safe FTS5 query expressions.
package codec

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zlib"
)

// Compress zlib-compresses text for storage. Used by fixtures and tooling;
// the search path only ever decompresses.
func Compress(text string) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write([]byte(text))
	_ = w.Close()
	return buf.Bytes()
}

// Decompress turns stored content bytes into display text. Compressed
// content is inflated; anything else is decoded as UTF-8 with lossy
// replacement of invalid sequences. It never fails: the worst case is a
// degraded best-effort string.
func Decompress(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err == nil {
		inflated, err := io.ReadAll(r)
		r.Close()
		if err == nil {
			return string(inflated)
		}
	}

	return strings.ToValidUTF8(string(raw), "�")
}

// tokenPattern splits a query on whitespace while keeping double-quoted
// phrases intact.
var tokenPattern = regexp.MustCompile(`(?:"[^"]*"|\S)+`)

// ftsUnsafe matches characters that cause FTS5 syntax errors and are not
// part of valid query syntax. Parentheses, quotes, AND/OR/NOT and the
// prefix star are valid FTS5 and must stay unescaped.
var ftsUnsafe = regexp.MustCompile(`([\\^])`)

// SanitizeFTSQuery minimally sanitizes a user-supplied FTS5 query string.
//
// Preserved as-is: boolean operators (AND/OR/NOT, normalized to uppercase),
// quoted phrases, grouping parentheses and trailing prefix wildcards.
// Escaped: backslash and caret, which genuinely break SQLite FTS5.
func SanitizeFTSQuery(query string) string {
	tokens := tokenPattern.FindAllString(query, -1)
	sanitized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		switch {
		case isBooleanOperator(token):
			sanitized = append(sanitized, strings.ToUpper(token))
		case strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`) && len(token) >= 2:
			sanitized = append(sanitized, token)
		default:
			sanitized = append(sanitized, ftsUnsafe.ReplaceAllString(token, `\$1`))
		}
	}
	return strings.Join(sanitized, " ")
}

func isBooleanOperator(token string) bool {
	switch strings.ToUpper(token) {
	case "AND", "OR", "NOT":
		return true
	}
	return false
}
