package naming

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func fixedEngine() Engine {
	return Engine{
		Now:    func() time.Time { return time.Date(2025, 3, 14, 15, 9, 26, 0, time.Local) },
		Random: func() string { return "ab12cd" },
	}
}

func TestRender_AllPlaceholders(t *testing.T) {
	e := fixedEngine()
	ctx := Context{
		OriginalName:   "holiday photo.JPG",
		ExistingImages: []string{"a.png", "b.png"},
	}
	got := e.Render("{baseName}{ext}-{datetime}-{date}-{random}-{existing_images}", ctx)
	want := "holiday photo.JPG-20250314150926-20250314150926-ab12cd-a.png, b.png"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
	if strings.Contains(got, "{") {
		t.Errorf("placeholder syntax left in output: %q", got)
	}
}

func TestRender_Timestamp(t *testing.T) {
	e := fixedEngine()
	got := e.Render("{timestamp}", Context{})
	// The fixed clock is in local time, so derive the expectation.
	want := strconv.FormatInt(e.Now().UnixMilli(), 10)
	if got != want {
		t.Errorf("Render({timestamp}) = %q, want %q", got, want)
	}
}

func TestRender_Deterministic(t *testing.T) {
	e := fixedEngine()
	ctx := Context{OriginalName: "x.png"}
	a := e.Render("img-{datetime}-{random}", ctx)
	b := e.Render("img-{datetime}-{random}", ctx)
	if a != b {
		t.Errorf("renders differ with fixed sources: %q vs %q", a, b)
	}
}

func TestRender_UnmatchedPlaceholderVerbatim(t *testing.T) {
	e := fixedEngine()
	got := e.Render("{nope}-{random}", Context{})
	if got != "{nope}-ab12cd" {
		t.Errorf("Render = %q, want {nope} untouched", got)
	}
}

func TestRender_NoExistingImages(t *testing.T) {
	e := fixedEngine()
	if got := e.Render("{existing_images}", Context{}); got != "None" {
		t.Errorf("Render = %q, want None", got)
	}
}

func TestSplitExt(t *testing.T) {
	cases := []struct {
		name      string
		wantBase  string
		wantExt   string
	}{
		{"cat.png", "cat", ".png"},
		{"a.b.c", "a.b", ".c"},
		{"noext", "noext", ""},
		{".hidden", ".hidden", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		base, ext := SplitExt(tc.name)
		if base != tc.wantBase || ext != tc.wantExt {
			t.Errorf("SplitExt(%q) = (%q, %q), want (%q, %q)",
				tc.name, base, ext, tc.wantBase, tc.wantExt)
		}
	}
}

func TestRandomBase36(t *testing.T) {
	s := randomBase36(6)
	if len(s) != 6 {
		t.Fatalf("len = %d, want 6", len(s))
	}
	for _, c := range s {
		if !strings.ContainsRune(base36, c) {
			t.Errorf("unexpected rune %q", c)
		}
	}
}
