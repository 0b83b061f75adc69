package markdown

import (
	"strings"
	"testing"
)

func TestFindAll_BothSyntaxes(t *testing.T) {
	text := "intro ![[a.png]] middle ![b](c.png) end"
	refs := FindAll(text)
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	if refs[0].Kind != KindWiki || refs[0].TargetPath != "a.png" {
		t.Errorf("wiki ref = %+v", refs[0])
	}
	if refs[1].Kind != KindMarkdown || refs[1].TargetPath != "c.png" {
		t.Errorf("markdown ref = %+v", refs[1])
	}
}

func TestFindAll_SizeAnnotations(t *testing.T) {
	refs := FindAll("![[cat.png|300]] and ![dog|200](dog.png)")
	if len(refs) != 2 {
		t.Fatalf("len(refs) = %d, want 2", len(refs))
	}
	if refs[0].Size != "300" {
		t.Errorf("wiki size = %q, want 300", refs[0].Size)
	}
	if refs[1].Size != "200" {
		t.Errorf("markdown alt size = %q, want 200", refs[1].Size)
	}
}

// Spans must be exact: replacing each MatchedText at its recorded span
// reconstructs the original text.
func TestFindAll_SpansAreExact(t *testing.T) {
	text := "x ![[a.png|40]] y ![b](sub/c.jpg) z ![[d e.gif]] w"
	for _, ref := range FindAll(text) {
		if text[ref.Start:ref.End] != ref.MatchedText {
			t.Errorf("span [%d,%d) = %q, MatchedText = %q",
				ref.Start, ref.End, text[ref.Start:ref.End], ref.MatchedText)
		}
	}
}

func TestFindAll_FileNameIsLastSegment(t *testing.T) {
	refs := FindAll("![x](assets/pics/cat.png)")
	if len(refs) != 1 || refs[0].FileName != "cat.png" {
		t.Fatalf("refs = %+v", refs)
	}
}

func TestIsRemote(t *testing.T) {
	cases := []struct {
		target string
		want   bool
	}{
		{"https://cdn.x/a.png", true},
		{"http://cdn.x/a.png", true},
		{"HTTPS://CDN.X/A.PNG", true},
		{"images/a.png", false},
		{"ftp://x/a.png", false},
	}
	for _, tc := range cases {
		if got := (ImageRef{TargetPath: tc.target}).IsRemote(); got != tc.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tc.target, got, tc.want)
		}
	}
}

func TestFindAt_InsideAndOutside(t *testing.T) {
	text := "before ![[a.png]] after"
	ref := FindAll(text)[0]

	mid := (ref.Start + ref.End) / 2
	got := FindAt(text, mid)
	if got == nil || got.TargetPath != "a.png" {
		t.Fatalf("FindAt(mid) = %+v", got)
	}

	// Inclusive on both boundaries.
	if FindAt(text, ref.Start) == nil {
		t.Error("FindAt(start) = nil, want ref")
	}
	if FindAt(text, ref.End) == nil {
		t.Error("FindAt(end) = nil, want ref")
	}

	if FindAt(text, 2) != nil {
		t.Error("FindAt before the span should be nil")
	}
	if FindAt(text, len(text)) != nil {
		t.Error("FindAt past the span should be nil")
	}
}

func TestFindAt_MidpointReturnsOwnRef(t *testing.T) {
	text := "a ![[one.png]] b ![two](two.png) c ![[three.jpg|80]] d"
	for _, ref := range FindAll(text) {
		got := FindAt(text, (ref.Start+ref.End)/2)
		if got == nil || got.TargetPath != ref.TargetPath {
			t.Errorf("midpoint of %q resolved to %+v", ref.TargetPath, got)
		}
	}
}

func TestFindTarget(t *testing.T) {
	text := "![[pics/cat.png]] and ![x](dog.png)"
	if ref := FindTarget(text, "pics/cat.png", "cat.png"); ref == nil || ref.Kind != KindWiki {
		t.Fatalf("exact path match failed: %+v", ref)
	}
	// Falls back to the file name when the stored path differs.
	if ref := FindTarget(text, "other/dir/dog.png", "dog.png"); ref == nil || ref.TargetPath != "dog.png" {
		t.Fatalf("file name fallback failed: %+v", ref)
	}
	if ref := FindTarget(text, "nope.png", "nope.png"); ref != nil {
		t.Fatalf("expected nil, got %+v", ref)
	}
}

func TestUploadCandidates_SkipsHosted(t *testing.T) {
	text := strings.Join([]string{
		"![[local.png]]",
		"![a](https://cdn.x/images/hosted.png)",
		"![b](https://elsewhere.io/pic.jpg)",
	}, "\n")
	refs := FindAll(text)
	out := UploadCandidates(refs, []string{"https://cdn.x/images", "https://dav.x/images"})
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (hosted ref skipped)", len(out))
	}
	for _, ref := range out {
		if ref.TargetPath == "https://cdn.x/images/hosted.png" {
			t.Error("hosted reference not skipped")
		}
	}
	// Document order preserved.
	if out[0].Start > out[1].Start {
		t.Error("candidates not in document order")
	}
}

func TestUploadCandidates_EmptyPrefixIgnored(t *testing.T) {
	refs := FindAll("![a](https://x.io/p.png)")
	if out := UploadCandidates(refs, []string{""}); len(out) != 1 {
		t.Fatalf("empty prefix must not match everything, got %d refs", len(out))
	}
}
