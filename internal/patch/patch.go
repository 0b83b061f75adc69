// Package patch splices uploaded image URLs into note text without
// disturbing the rest of the document or the cursor.
package patch

import (
	"fmt"
	"strings"

	"github.com/halvard/ansuz/internal/markdown"
)

// Result is the outcome of one splice.
type Result struct {
	Text   string
	Cursor int
}

// Markup builds the Markdown image link written into the note. A size
// annotation from the source reference is preserved verbatim regardless
// of the source syntax.
func Markup(fileName, url, size string) string {
	if size != "" {
		return fmt.Sprintf("![%s|%s](%s)", fileName, size, url)
	}
	return fmt.Sprintf("![%s](%s)", fileName, url)
}

// Apply replaces ref's matched text with the uploaded markup, or inserts
// the markup at cursor when ref is nil (fresh paste). It searches the
// current text, not the scan-time snapshot: a prior replacement in the
// same batch may have shifted everything. The second return is false when
// ref's span can no longer be found, in which case the text is returned
// unchanged and the caller skips this image.
//
// Cursor rule: a cursor strictly after the match start shifts by the
// length delta between old and new markup; at or before the start it
// stays put, even if it sat inside the replaced span.
func Apply(text string, cursor int, ref *markdown.ImageRef, url, fileName string) (Result, bool) {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}

	if ref == nil {
		markup := Markup(fileName, url, "")
		return Result{
			Text:   text[:cursor] + markup + text[cursor:],
			Cursor: cursor + len(markup),
		}, true
	}

	idx := strings.Index(text, ref.MatchedText)
	if idx < 0 {
		return Result{Text: text, Cursor: cursor}, false
	}

	markup := Markup(fileName, url, ref.Size)
	newText := text[:idx] + markup + text[idx+len(ref.MatchedText):]

	newCursor := cursor
	if cursor > idx {
		newCursor += len(markup) - len(ref.MatchedText)
	}
	if newCursor < 0 {
		newCursor = 0
	}
	if newCursor > len(newText) {
		newCursor = len(newText)
	}
	return Result{Text: newText, Cursor: newCursor}, true
}
