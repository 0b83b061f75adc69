// Package markdown locates image references in note text.
//
// Two syntaxes are recognised: wiki embeds (![[target]] or
// ![[target|300]]) and Markdown images (![alt](target), with an optional
// |300 width inside the alt text). The scanner is regex based and does not
// handle nested brackets or an escaped ] inside alt text; that is a known
// limitation, not something to paper over.
package markdown

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

// Kind tags which syntax produced a reference.
type Kind string

const (
	KindWiki     Kind = "wiki"
	KindMarkdown Kind = "markdown"
)

var (
	wikiRe   = regexp.MustCompile(`!\[\[([^\]|]+)(?:\|(\d+))?\]\]`)
	mdRe     = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	remoteRe = regexp.MustCompile(`(?i)^https?://`)
	altSize  = regexp.MustCompile(`\|(\d+)$`)
)

// ImageRef is one occurrence of an image link in note text. Start and End
// are the half-open span of MatchedText in the exact text snapshot the
// scanner ran on; any edit to the text invalidates them.
type ImageRef struct {
	MatchedText string
	TargetPath  string
	FileName    string
	Kind        Kind
	Size        string // optional width annotation, e.g. "300"
	Start       int
	End         int
}

// IsRemote reports whether the target is an absolute http(s) URL.
func (r ImageRef) IsRemote() bool {
	return remoteRe.MatchString(r.TargetPath)
}

// FindAll returns every image reference in text. The wiki pass runs
// first, then the Markdown pass; within each pass references are in
// document order.
func FindAll(text string) []ImageRef {
	var refs []ImageRef

	for _, m := range wikiRe.FindAllStringSubmatchIndex(text, -1) {
		target := strings.TrimSpace(text[m[2]:m[3]])
		if target == "" {
			continue
		}
		size := ""
		if m[4] >= 0 {
			size = text[m[4]:m[5]]
		}
		refs = append(refs, ImageRef{
			MatchedText: text[m[0]:m[1]],
			TargetPath:  target,
			FileName:    path.Base(target),
			Kind:        KindWiki,
			Size:        size,
			Start:       m[0],
			End:         m[1],
		})
	}

	for _, m := range mdRe.FindAllStringSubmatchIndex(text, -1) {
		alt := text[m[2]:m[3]]
		target := strings.TrimSpace(text[m[4]:m[5]])
		if target == "" {
			continue
		}
		size := ""
		if sm := altSize.FindStringSubmatch(alt); sm != nil {
			size = sm[1]
		}
		refs = append(refs, ImageRef{
			MatchedText: text[m[0]:m[1]],
			TargetPath:  target,
			FileName:    path.Base(target),
			Kind:        KindMarkdown,
			Size:        size,
			Start:       m[0],
			End:         m[1],
		})
	}

	return refs
}

// FindAt returns the reference whose span contains offset, or nil. The
// boundary check is inclusive on both ends, so a cursor sitting right
// after the closing bracket still counts as "on" the reference.
func FindAt(text string, offset int) *ImageRef {
	for _, ref := range FindAll(text) {
		if offset >= ref.Start && offset <= ref.End {
			r := ref
			return &r
		}
	}
	return nil
}

// FindTarget returns the first reference whose target equals targetPath,
// or whose file name equals fileName when no exact path matches. Used to
// re-locate the reference for a vault-local image picked by path.
func FindTarget(text, targetPath, fileName string) *ImageRef {
	refs := FindAll(text)
	for _, ref := range refs {
		if ref.TargetPath == targetPath {
			r := ref
			return &r
		}
	}
	for _, ref := range refs {
		if ref.FileName == fileName {
			r := ref
			return &r
		}
	}
	return nil
}

// UploadCandidates filters refs for a batch run: any remote reference
// whose URL already starts with one of hostedPrefixes is treated as
// already hosted and dropped. The result keeps document order across
// both syntaxes so sequential patching walks the note top to bottom.
func UploadCandidates(refs []ImageRef, hostedPrefixes []string) []ImageRef {
	var out []ImageRef
	for _, ref := range refs {
		if ref.IsRemote() && hasAnyPrefix(ref.TargetPath, hostedPrefixes) {
			continue
		}
		out = append(out, ref)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
