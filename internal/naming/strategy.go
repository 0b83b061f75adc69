package naming

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Request is one image awaiting a name.
type Request struct {
	Data           []byte
	OriginalName   string
	ExistingImages []string
}

// Resolver chooses the final upload name for an image.
type Resolver interface {
	Resolve(ctx context.Context, req Request) (string, error)
}

// Generator is the remote naming capability consumed by VisionResolver.
// GenerateName returns a bare (extension-less) slug describing the image.
type Generator interface {
	GenerateName(ctx context.Context, data []byte, existingImages []string) (string, error)
}

// Prompter asks a human to confirm or edit a proposed file name. suggest
// is non-nil when a remote naming service is configured and produces a
// fresh proposal on demand. Implementations return apperr.ErrCancelled
// when the user aborts.
type Prompter interface {
	PromptName(ctx context.Context, proposed string, suggest func(context.Context) (string, error)) (string, error)
}

// TemplateResolver renders the configured name template and sanitizes the
// result. It never fails: an empty render falls back to image-{timestamp}.
type TemplateResolver struct {
	Template string
	Engine   Engine
}

func (t TemplateResolver) Resolve(_ context.Context, req Request) (string, error) {
	name := t.Engine.Render(t.Template, Context{
		OriginalName:   req.OriginalName,
		ExistingImages: req.ExistingImages,
	})
	name = CleanFileName(name)
	if name == "" {
		now := time.Now()
		if t.Engine.Now != nil {
			now = t.Engine.Now()
		}
		name = "image-" + strconv.FormatInt(now.UnixMilli(), 10)
	}
	return EnsureExtension(name, req.OriginalName), nil
}

// VisionResolver delegates to the remote naming service and appends the
// original extension. Any service failure falls back to the template
// strategy; an image must never fail to upload just because naming did.
type VisionResolver struct {
	Service  Generator
	Fallback TemplateResolver
	Logger   *slog.Logger
}

func (v VisionResolver) Resolve(ctx context.Context, req Request) (string, error) {
	name, err := v.Service.GenerateName(ctx, req.Data, req.ExistingImages)
	if err != nil {
		if v.Logger != nil {
			v.Logger.Warn("vision naming failed, falling back to template",
				slog.String("error", err.Error()))
		}
		return v.Fallback.Resolve(ctx, req)
	}
	return EnsureExtension(name, req.OriginalName), nil
}

// InteractiveResolver proposes the template-derived name and lets a human
// edit it. Vision, when set, is offered to the prompter as an on-demand
// suggestion source. Cancellation propagates and aborts the upload job.
type InteractiveResolver struct {
	Prompter Prompter
	Default  TemplateResolver
	Vision   Generator
}

func (i InteractiveResolver) Resolve(ctx context.Context, req Request) (string, error) {
	proposed, err := i.Default.Resolve(ctx, req)
	if err != nil {
		return "", err
	}

	var suggest func(context.Context) (string, error)
	if i.Vision != nil {
		suggest = func(sctx context.Context) (string, error) {
			name, serr := i.Vision.GenerateName(sctx, req.Data, req.ExistingImages)
			if serr != nil {
				return "", serr
			}
			return EnsureExtension(name, req.OriginalName), nil
		}
	}

	name, err := i.Prompter.PromptName(ctx, proposed, suggest)
	if err != nil {
		return "", fmt.Errorf("interactive rename: %w", err)
	}
	return EnsureExtension(CleanFileName(name), req.OriginalName), nil
}
