package naming

import (
	"regexp"
	"strings"
)

var (
	unsafeCharRe = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	nonWordRe    = regexp.MustCompile(`[^\w\s-]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
	hyphenRunRe  = regexp.MustCompile(`-+`)
	edgeHyphenRe = regexp.MustCompile(`^-+|-+$`)
	extRe        = regexp.MustCompile(`\.[a-zA-Z0-9]+$`)
	fenceRe      = regexp.MustCompile("^[\"'`]+|[\"'`]+$")
	blankLineRe  = regexp.MustCompile(`(?m)^\s*$[\r\n]*`)
)

// CleanFileName makes template output safe for a file name: whitespace
// runs become single hyphens, anything outside [A-Za-z0-9._-] is dropped,
// hyphen runs collapse, edge hyphens go. Case is preserved.
func CleanFileName(name string) string {
	name = spaceRunRe.ReplaceAllString(name, "-")
	name = unsafeCharRe.ReplaceAllString(name, "")
	name = hyphenRunRe.ReplaceAllString(name, "-")
	return edgeHyphenRe.ReplaceAllString(name, "")
}

// Slugify reduces a generated phrase to a lowercase hyphenated slug:
// drop anything that is not a word character, whitespace, or hyphen,
// collapse whitespace and hyphen runs, trim edge hyphens. Idempotent.
// Shared by the template and vision naming paths.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonWordRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, "-")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	return edgeHyphenRe.ReplaceAllString(s, "")
}

// StripWrapping removes quotes, backticks, code fences, and blank lines
// that chat models like to wrap a bare answer in.
func StripWrapping(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = fenceRe.ReplaceAllString(s, "")
	s = blankLineRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// EnsureExtension guarantees name ends in a file extension: if it has
// none, the original name's extension is appended, else ".png".
func EnsureExtension(name, originalName string) string {
	if extRe.MatchString(name) {
		return name
	}
	if _, ext := SplitExt(originalName); ext != "" {
		return name + ext
	}
	return name + ".png"
}
