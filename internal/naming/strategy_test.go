package naming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/halvard/ansuz/internal/apperr"
)

type stubGenerator struct {
	name string
	err  error
}

func (s stubGenerator) GenerateName(context.Context, []byte, []string) (string, error) {
	return s.name, s.err
}

type stubPrompter struct {
	name string
	err  error
	// captured inputs
	proposed string
	suggest  func(context.Context) (string, error)
}

func (s *stubPrompter) PromptName(_ context.Context, proposed string, suggest func(context.Context) (string, error)) (string, error) {
	s.proposed = proposed
	s.suggest = suggest
	if s.err != nil {
		return "", s.err
	}
	if s.name != "" {
		return s.name, nil
	}
	return proposed, nil
}

func testTemplate() TemplateResolver {
	return TemplateResolver{
		Template: "img-{datetime}",
		Engine: Engine{
			Now:    func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local) },
			Random: func() string { return "zzzzzz" },
		},
	}
}

func TestTemplateResolver(t *testing.T) {
	name, err := testTemplate().Resolve(context.Background(), Request{OriginalName: "shot.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "img-20250102030405.jpg" {
		t.Errorf("name = %q", name)
	}
}

func TestTemplateResolver_EmptyRenderFallsBack(t *testing.T) {
	r := testTemplate()
	r.Template = "???" // sanitized to nothing
	name, err := r.Resolve(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name == ".png" || name == "" {
		t.Fatalf("empty fallback produced %q", name)
	}
	if got, want := name[:6], "image-"; got != want {
		t.Errorf("fallback prefix = %q, want %q", got, want)
	}
}

func TestVisionResolver_Success(t *testing.T) {
	r := VisionResolver{
		Service:  stubGenerator{name: "mountain-lake"},
		Fallback: testTemplate(),
	}
	name, err := r.Resolve(context.Background(), Request{OriginalName: "shot.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "mountain-lake.jpg" {
		t.Errorf("name = %q", name)
	}
}

// A naming-service failure must degrade to the template name, never to a
// hard failure or an error string as the file name.
func TestVisionResolver_FallsBackOnError(t *testing.T) {
	r := VisionResolver{
		Service:  stubGenerator{err: apperr.ErrNetwork},
		Fallback: testTemplate(),
	}
	name, err := r.Resolve(context.Background(), Request{OriginalName: "shot.jpg"})
	if err != nil {
		t.Fatalf("fallback must not surface the vision error, got %v", err)
	}
	if name != "img-20250102030405.jpg" {
		t.Errorf("name = %q, want the rendered template", name)
	}
}

func TestInteractiveResolver_AcceptsProposed(t *testing.T) {
	p := &stubPrompter{}
	r := InteractiveResolver{Prompter: p, Default: testTemplate()}
	name, err := r.Resolve(context.Background(), Request{OriginalName: "shot.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "img-20250102030405.jpg" {
		t.Errorf("name = %q", name)
	}
	if p.proposed != "img-20250102030405.jpg" {
		t.Errorf("proposed = %q", p.proposed)
	}
	if p.suggest != nil {
		t.Error("suggest should be nil without a vision service")
	}
}

func TestInteractiveResolver_EditKeepsExtension(t *testing.T) {
	p := &stubPrompter{name: "my pick"}
	r := InteractiveResolver{Prompter: p, Default: testTemplate()}
	name, err := r.Resolve(context.Background(), Request{OriginalName: "shot.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "my-pick.jpg" {
		t.Errorf("name = %q", name)
	}
}

func TestInteractiveResolver_CancelAbortsJob(t *testing.T) {
	p := &stubPrompter{err: apperr.ErrCancelled}
	r := InteractiveResolver{Prompter: p, Default: testTemplate()}
	_, err := r.Resolve(context.Background(), Request{OriginalName: "shot.jpg"})
	if !errors.Is(err, apperr.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestInteractiveResolver_SuggestWiresVision(t *testing.T) {
	p := &stubPrompter{}
	r := InteractiveResolver{
		Prompter: p,
		Default:  testTemplate(),
		Vision:   stubGenerator{name: "sunset-pier"},
	}
	if _, err := r.Resolve(context.Background(), Request{OriginalName: "shot.jpg"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.suggest == nil {
		t.Fatal("suggest not offered to the prompter")
	}
	got, err := p.suggest(context.Background())
	if err != nil {
		t.Fatalf("suggest error: %v", err)
	}
	if got != "sunset-pier.jpg" {
		t.Errorf("suggest = %q", got)
	}
}
