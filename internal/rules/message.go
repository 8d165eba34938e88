package rules

import (
	"strings"

	"github.com/rutaguard/rutaguard/internal/types"
)

// AbsentPlaceholder is rendered for template references to fields the
// record does not carry.
const AbsentPlaceholder = "<ausente>"

// RenderMessage interpolates {Field Name} placeholders in a failure-message
// template with the record's values. Placeholder names go through the same
// normalization as lookups, so templates may use the spreadsheet spelling.
// Unterminated braces are emitted verbatim.
func RenderMessage(template string, rec *types.Record) string {
	var b strings.Builder
	b.Grow(len(template))

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			b.WriteString(rest)
			return b.String()
		}
		end += open

		b.WriteString(rest[:open])
		name := types.NormalizeFieldName(rest[open+1 : end])
		if v, ok := rec.Get(name); ok {
			b.WriteString(strings.TrimSpace(v.Raw))
		} else {
			b.WriteString(AbsentPlaceholder)
		}
		rest = rest[end+1:]
	}
}
