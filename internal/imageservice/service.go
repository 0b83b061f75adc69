// Package imageservice orchestrates the upload pipeline: read the image,
// resolve its final name, push it to the remote store, and splice the
// hosted link back into the note.
package imageservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/halvard/ansuz/internal/apperr"
	"github.com/halvard/ansuz/internal/locale"
	"github.com/halvard/ansuz/internal/markdown"
	"github.com/halvard/ansuz/internal/naming"
	"github.com/halvard/ansuz/internal/patch"
	"github.com/halvard/ansuz/internal/storage"
)

// batchPause is the delay between items in a batch run, kept short but
// non-zero so the remote store is not hammered.
const batchPause = 100 * time.Millisecond

// Uploader pushes image bytes to the remote store.
type Uploader interface {
	// Upload stores data under fileName and returns the public URL.
	Upload(ctx context.Context, data []byte, fileName string) (string, error)
	// HostedPrefixes returns URL prefixes that identify already-hosted
	// images.
	HostedPrefixes() []string
}

// Params collects the pipeline dependencies.
type Params struct {
	Store    storage.Provider
	Uploader Uploader
	// Resolvers maps a rename mode to its naming strategy. Fallback is
	// used when a requested mode has no resolver on this surface.
	Resolvers map[string]naming.Resolver
	Fallback  naming.Resolver
	// Mode and BatchMode are the configured defaults for single and
	// batch uploads.
	Mode      string
	BatchMode string
	// DeleteLocal removes vault-local originals after a successful
	// upload.
	DeleteLocal bool
	Pause       time.Duration
	Catalog     *locale.Catalog
	Notifier    Notifier
	Logger      *slog.Logger
}

// Service is the upload pipeline.
type Service struct {
	store       storage.Provider
	uploader    Uploader
	resolvers   map[string]naming.Resolver
	fallback    naming.Resolver
	mode        string
	batchMode   string
	deleteLocal bool
	pause       time.Duration
	catalog     *locale.Catalog
	notify      Notifier
	logger      *slog.Logger
}

// New creates a Service from params, filling in defaults.
func New(p Params) *Service {
	if p.Pause <= 0 {
		p.Pause = batchPause
	}
	if p.Notifier == nil {
		p.Notifier = nopNotifier{}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Catalog == nil {
		p.Catalog = locale.New(locale.LanguageEnglish)
	}
	return &Service{
		store:       p.Store,
		uploader:    p.Uploader,
		resolvers:   p.Resolvers,
		fallback:    p.Fallback,
		mode:        p.Mode,
		batchMode:   p.BatchMode,
		deleteLocal: p.DeleteLocal,
		pause:       p.Pause,
		catalog:     p.Catalog,
		notify:      p.Notifier,
		logger:      p.Logger,
	}
}

// PasteRequest is a fresh image arriving with no reference in the note
// yet: a paste, a drop, or an inbox file.
type PasteRequest struct {
	NotePath     string
	Cursor       int
	Data         []byte
	OriginalName string
	// Mode overrides the configured rename mode when non-empty.
	Mode string
}

// UploadResult describes one successfully placed image.
type UploadResult struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Cursor   int    `json:"cursor"`
}

// BatchResult aggregates a batch run.
type BatchResult struct {
	Uploaded int `json:"uploaded"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// UploadNew uploads pasted or dropped image bytes and inserts the hosted
// link into the note at the cursor. The note is written back on success.
func (s *Service) UploadNew(ctx context.Context, req PasteRequest) (*UploadResult, error) {
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image payload", apperr.ErrConfig)
	}

	raw, err := s.store.Read(req.NotePath)
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", req.NotePath, err)
	}
	text := string(raw)
	s.notify.Publish(Event{Stage: StageStarted, Note: req.NotePath, Message: s.catalog.T("upload.start")})

	fileName, err := s.resolveName(ctx, req.Mode, s.mode, naming.Request{
		Data:           req.Data,
		OriginalName:   req.OriginalName,
		ExistingImages: existingNames(text),
	}, req.OriginalName)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, req.Data, fileName)
	if err != nil {
		s.notify.Publish(Event{Stage: StageFailed, Note: req.NotePath, FileName: fileName, Message: err.Error()})
		return nil, err
	}

	res, _ := patch.Apply(text, req.Cursor, nil, url, fileName)
	if err := s.store.Write(req.NotePath, []byte(res.Text)); err != nil {
		return nil, fmt.Errorf("write note %s: %w", req.NotePath, err)
	}

	s.logger.Info("image uploaded", "note", req.NotePath, "file", fileName, "url", url)
	s.notify.Publish(Event{Stage: StageUploaded, Note: req.NotePath, FileName: fileName, URL: url})
	return &UploadResult{FileName: fileName, URL: url, Cursor: res.Cursor}, nil
}

// UploadLocal uploads one vault-local image already referenced by the
// note and rewrites that reference in place. target is the link target as
// it appears in the note.
func (s *Service) UploadLocal(ctx context.Context, notePath, target, mode string) (*UploadResult, error) {
	raw, err := s.store.Read(notePath)
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", notePath, err)
	}
	text := string(raw)

	ref := markdown.FindTarget(text, target, path.Base(target))
	if ref == nil {
		return nil, fmt.Errorf("%w: no reference to %s in %s", apperr.ErrNotFound, target, notePath)
	}
	if ref.IsRemote() {
		return nil, fmt.Errorf("%w: %s is already a remote image", apperr.ErrConfig, target)
	}

	localPath, ok := s.store.Resolve(notePath, ref.TargetPath)
	if !ok {
		return nil, fmt.Errorf("%w: image file %s", apperr.ErrNotFound, ref.TargetPath)
	}
	data, err := s.store.Read(localPath)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", localPath, err)
	}

	s.notify.Publish(Event{Stage: StageStarted, Note: notePath, FileName: ref.FileName, Message: s.catalog.T("upload.start")})

	fileName, err := s.resolveName(ctx, mode, s.mode, naming.Request{
		Data:           data,
		OriginalName:   ref.FileName,
		ExistingImages: existingNames(text),
	}, ref.FileName)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, data, fileName)
	if err != nil {
		s.notify.Publish(Event{Stage: StageFailed, Note: notePath, FileName: fileName, Message: err.Error()})
		return nil, err
	}

	res, patched := patch.Apply(text, 0, ref, url, fileName)
	if !patched {
		s.notify.Publish(Event{Stage: StageSkipped, Note: notePath, FileName: ref.FileName})
		return nil, fmt.Errorf("%w: reference vanished before patch", apperr.ErrNotFound)
	}
	if err := s.store.Write(notePath, []byte(res.Text)); err != nil {
		return nil, fmt.Errorf("write note %s: %w", notePath, err)
	}

	s.disposeLocal(localPath)
	s.logger.Info("image uploaded", "note", notePath, "file", fileName, "url", url)
	s.notify.Publish(Event{Stage: StageUploaded, Note: notePath, FileName: fileName, URL: url})
	return &UploadResult{FileName: fileName, URL: url, Cursor: res.Cursor}, nil
}

// Batch uploads every not-yet-hosted image reference in the note,
// strictly one at a time. A failed item is counted and logged and the run
// continues; the note is re-read and re-written around every item so each
// splice works on current text.
func (s *Service) Batch(ctx context.Context, notePath, mode string) (BatchResult, error) {
	var result BatchResult

	raw, err := s.store.Read(notePath)
	if err != nil {
		return result, fmt.Errorf("read note %s: %w", notePath, err)
	}
	candidates := markdown.UploadCandidates(markdown.FindAll(string(raw)), s.uploader.HostedPrefixes())
	if len(candidates) == 0 {
		s.logger.Info("batch upload: nothing to do", "note", notePath)
		return result, nil
	}

	for i, ref := range candidates {
		if i > 0 {
			select {
			case <-ctx.Done():
				return result, fmt.Errorf("%w: %v", apperr.ErrCancelled, ctx.Err())
			case <-time.After(s.pause):
			}
		}

		outcome, err := s.batchOne(ctx, notePath, ref, mode)
		switch {
		case err == nil && outcome:
			result.Uploaded++
		case err == nil:
			result.Skipped++
		case errors.Is(err, apperr.ErrCancelled):
			return result, err
		default:
			result.Failed++
			s.logger.Warn("batch item failed", "note", notePath, "target", ref.TargetPath, "error", err)
			s.notify.Publish(Event{Stage: StageFailed, Note: notePath, FileName: ref.FileName, Message: err.Error()})
		}
	}

	s.logger.Info("batch upload finished", "note", notePath,
		"uploaded", result.Uploaded, "failed", result.Failed, "skipped", result.Skipped)
	s.notify.Publish(Event{
		Stage: StageBatchDone, Note: notePath,
		Message: fmt.Sprintf(s.catalog.T("batch.done"), result.Uploaded, result.Failed, result.Skipped),
	})
	return result, nil
}

// batchOne processes a single batch candidate. The boolean is true when
// an upload happened, false when the item was skipped.
func (s *Service) batchOne(ctx context.Context, notePath string, ref markdown.ImageRef, mode string) (bool, error) {
	// Re-read so offsets and matched text reflect earlier splices.
	raw, err := s.store.Read(notePath)
	if err != nil {
		return false, err
	}
	text := string(raw)

	current := markdown.FindTarget(text, ref.TargetPath, ref.FileName)
	if current == nil {
		s.notify.Publish(Event{Stage: StageSkipped, Note: notePath, FileName: ref.FileName})
		return false, nil
	}

	var (
		data      []byte
		localPath string
	)
	if current.IsRemote() {
		var fetched string
		data, fetched, err = Fetch(ctx, current.TargetPath)
		if err != nil {
			return false, err
		}
		if current.FileName == "" {
			current.FileName = fetched
		}
	} else {
		var ok bool
		localPath, ok = s.store.Resolve(notePath, current.TargetPath)
		if !ok {
			return false, fmt.Errorf("%w: image file %s", apperr.ErrNotFound, current.TargetPath)
		}
		data, err = s.store.Read(localPath)
		if err != nil {
			return false, err
		}
	}

	fileName, err := s.resolveName(ctx, mode, s.batchMode, naming.Request{
		Data:           data,
		OriginalName:   current.FileName,
		ExistingImages: existingNames(text),
	}, current.FileName)
	if err != nil {
		return false, err
	}

	url, err := s.uploader.Upload(ctx, data, fileName)
	if err != nil {
		return false, err
	}

	res, patched := patch.Apply(text, 0, current, url, fileName)
	if !patched {
		s.notify.Publish(Event{Stage: StageSkipped, Note: notePath, FileName: current.FileName})
		return false, nil
	}
	if err := s.store.Write(notePath, []byte(res.Text)); err != nil {
		return false, err
	}

	if localPath != "" {
		s.disposeLocal(localPath)
	}
	s.notify.Publish(Event{Stage: StageUploaded, Note: notePath, FileName: fileName, URL: url})
	return true, nil
}

// resolveName runs the naming strategy for mode (falling back to def when
// empty) and normalizes the result to a safe name with an extension.
func (s *Service) resolveName(ctx context.Context, mode, def string, req naming.Request, originalName string) (string, error) {
	if mode == "" {
		mode = def
	}
	resolver, ok := s.resolvers[mode]
	if !ok {
		s.logger.Warn("rename mode unavailable on this surface, using fallback", "mode", mode)
		resolver = s.fallback
	}

	name, err := resolver.Resolve(ctx, req)
	if err != nil {
		if errors.Is(err, apperr.ErrCancelled) {
			return "", err
		}
		return "", fmt.Errorf("resolve name: %w", err)
	}
	return naming.EnsureExtension(name, originalName), nil
}

func (s *Service) disposeLocal(localPath string) {
	if !s.deleteLocal {
		return
	}
	if err := s.store.Delete(localPath); err != nil {
		s.logger.Warn("delete local image failed", "path", localPath, "error", err)
		return
	}
	s.logger.Info("local image deleted", "path", localPath)
}

// existingNames returns the deduplicated file names already referenced by
// the note, for naming-consistency hints.
func existingNames(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, ref := range markdown.FindAll(text) {
		if ref.FileName == "" || seen[ref.FileName] {
			continue
		}
		seen[ref.FileName] = true
		names = append(names, ref.FileName)
	}
	return names
}
