package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"visualizer/internal/domain"
	"visualizer/internal/imageproc"
	"visualizer/internal/provider/openai"
	"visualizer/internal/storage"
)

// Editor performs the upstream generation call and returns final image bytes.
type Editor interface {
	Edit(ctx context.Context, req openai.EditRequest) ([]byte, error)
}

// BlobStore writes bytes under a key and returns the public retrieval URL.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Options configures a Pipeline. Editor, Store and Deadline are required.
type Options struct {
	Editor   Editor
	Store    BlobStore
	Deadline time.Duration
	Logger   zerolog.Logger
}

// Pipeline runs one generation request end to end: encode, call upstream,
// resolve the result shape and publish the bytes. The whole chain races a
// single deadline timer, so the caller never blocks past the configured
// budget regardless of how the per-step timeouts compose.
type Pipeline struct {
	editor   Editor
	store    BlobStore
	deadline time.Duration
	logger   zerolog.Logger
}

func New(opts Options) (*Pipeline, error) {
	if opts.Editor == nil {
		return nil, errors.New("pipeline: editor is required")
	}
	if opts.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if opts.Deadline <= 0 {
		return nil, errors.New("pipeline: deadline is required")
	}
	return &Pipeline{
		editor:   opts.Editor,
		store:    opts.Store,
		deadline: opts.Deadline,
		logger:   opts.Logger,
	}, nil
}

// Result is the published artifact of one successful generation.
type Result struct {
	URL string
	Key string
}

// Generate runs the full operation for one normalized image. The steps run
// strictly sequentially in a worker goroutine while this goroutine waits on
// whichever finishes first: the work or the deadline. When the deadline
// fires, the shared context is cancelled so any in-flight network call is
// aborted and partial results are discarded.
func (p *Pipeline) Generate(ctx context.Context, prompt string, img *imageproc.Image) (*Result, error) {
	if prompt == "" {
		return nil, domain.E(domain.KindInput, "prompt is required", nil)
	}
	if img == nil || len(img.Data) == 0 {
		return nil, domain.E(domain.KindInput, "image is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.deadline)
	defer cancel()

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := p.run(ctx, prompt, img)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		p.logger.Warn().Dur("deadline", p.deadline).Msg("generation deadline exceeded")
		return nil, domain.E(domain.KindTimeout, "generation deadline exceeded", ctx.Err())
	}
}

func (p *Pipeline) run(ctx context.Context, prompt string, img *imageproc.Image) (*Result, error) {
	start := time.Now()

	data, err := p.editor.Edit(ctx, openai.EditRequest{
		Prompt:    prompt,
		ImageData: img.Data,
		ImageMIME: img.MIME,
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug().Int("bytes", len(data)).Dur("elapsed", time.Since(start)).Msg("upstream generation complete")

	key := storage.NewResultKey()
	url, err := p.store.Put(ctx, key, data, "image/png")
	if err != nil {
		return nil, domain.E(domain.KindPublish, "could not store generated image", err)
	}
	p.logger.Info().Str("key", key).Dur("elapsed", time.Since(start)).Msg("generated image published")

	return &Result{URL: url, Key: key}, nil
}
