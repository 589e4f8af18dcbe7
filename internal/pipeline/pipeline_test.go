package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"visualizer/internal/domain"
	"visualizer/internal/imageproc"
	"visualizer/internal/provider/openai"
)

type fakeEditor struct {
	edit func(ctx context.Context, req openai.EditRequest) ([]byte, error)
}

func (f *fakeEditor) Edit(ctx context.Context, req openai.EditRequest) ([]byte, error) {
	return f.edit(ctx, req)
}

type putRecord struct {
	key         string
	contentType string
	data        []byte
}

type fakeStore struct {
	mu   sync.Mutex
	puts []putRecord
	err  error
}

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.puts = append(f.puts, putRecord{key: key, contentType: contentType, data: data})
	return "https://cdn.example.com/renders/" + key, nil
}

func testImage() *imageproc.Image {
	return &imageproc.Image{Data: []byte("normalized-jpeg"), Width: 512, Height: 512, MIME: "image/jpeg"}
}

func newTestPipeline(t *testing.T, editor Editor, store BlobStore, deadline time.Duration) *Pipeline {
	t.Helper()
	p, err := New(Options{Editor: editor, Store: store, Deadline: deadline, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return p
}

func TestGeneratePublishesResult(t *testing.T) {
	editor := &fakeEditor{edit: func(ctx context.Context, req openai.EditRequest) ([]byte, error) {
		if req.Prompt != "make it anthracite" {
			t.Errorf("unexpected prompt: %q", req.Prompt)
		}
		if string(req.ImageData) != "normalized-jpeg" {
			t.Errorf("unexpected image payload")
		}
		return []byte("png-bytes"), nil
	}}
	store := &fakeStore{}
	p := newTestPipeline(t, editor, store, time.Second)

	res, err := p.Generate(context.Background(), "make it anthracite", testImage())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if res.URL != "https://cdn.example.com/renders/"+res.Key {
		t.Fatalf("URL/key mismatch: %q vs %q", res.URL, res.Key)
	}
	if len(store.puts) != 1 {
		t.Fatalf("expected 1 store write, got %d", len(store.puts))
	}
	put := store.puts[0]
	if put.contentType != "image/png" {
		t.Fatalf("unexpected content type: %s", put.contentType)
	}
	if !strings.HasPrefix(put.key, "results/") || !strings.HasSuffix(put.key, ".png") {
		t.Fatalf("unexpected key shape: %s", put.key)
	}
	if string(put.data) != "png-bytes" {
		t.Fatalf("unexpected stored payload: %q", put.data)
	}
}

func TestGenerateKeysAreUnique(t *testing.T) {
	editor := &fakeEditor{edit: func(ctx context.Context, req openai.EditRequest) ([]byte, error) {
		return []byte("png"), nil
	}}
	store := &fakeStore{}
	p := newTestPipeline(t, editor, store, time.Second)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		res, err := p.Generate(context.Background(), "prompt", testImage())
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if seen[res.Key] {
			t.Fatalf("duplicate key: %s", res.Key)
		}
		seen[res.Key] = true
	}
}

func TestGenerateDeadlineBoundsTotalTime(t *testing.T) {
	editor := &fakeEditor{edit: func(ctx context.Context, req openai.EditRequest) ([]byte, error) {
		// Misbehaving upstream: never completes until cancelled.
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	store := &fakeStore{}
	p := newTestPipeline(t, editor, store, 60*time.Millisecond)

	start := time.Now()
	_, err := p.Generate(context.Background(), "prompt", testImage())
	elapsed := time.Since(start)
	if err == nil {
		t.Fatalf("expected deadline error")
	}
	if domain.KindOf(err) != domain.KindTimeout {
		t.Fatalf("unexpected kind: %s", domain.KindOf(err))
	}
	if elapsed > 400*time.Millisecond {
		t.Fatalf("deadline enforcement too slow: %s", elapsed)
	}
	if len(store.puts) != 0 {
		t.Fatalf("partial result must not be published")
	}
}

func TestGenerateDeadlineCancelsWork(t *testing.T) {
	cancelled := make(chan struct{})
	editor := &fakeEditor{edit: func(ctx context.Context, req openai.EditRequest) ([]byte, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	}}
	p := newTestPipeline(t, editor, &fakeStore{}, 40*time.Millisecond)

	if _, err := p.Generate(context.Background(), "prompt", testImage()); err == nil {
		t.Fatalf("expected deadline error")
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("worker was not cancelled after deadline")
	}
}

func TestGeneratePublishFailure(t *testing.T) {
	editor := &fakeEditor{edit: func(ctx context.Context, req openai.EditRequest) ([]byte, error) {
		return []byte("png"), nil
	}}
	store := &fakeStore{err: errors.New("bucket unavailable")}
	p := newTestPipeline(t, editor, store, time.Second)

	_, err := p.Generate(context.Background(), "prompt", testImage())
	if err == nil {
		t.Fatalf("expected publish error")
	}
	if domain.KindOf(err) != domain.KindPublish {
		t.Fatalf("unexpected kind: %s", domain.KindOf(err))
	}
	if len(store.puts) != 0 {
		t.Fatalf("publish failure must not be retried")
	}
}

func TestGeneratePropagatesEditorError(t *testing.T) {
	editor := &fakeEditor{edit: func(ctx context.Context, req openai.EditRequest) ([]byte, error) {
		return nil, domain.E(domain.KindUpstream, "upstream returned 500: boom", nil)
	}}
	store := &fakeStore{}
	p := newTestPipeline(t, editor, store, time.Second)

	_, err := p.Generate(context.Background(), "prompt", testImage())
	if domain.KindOf(err) != domain.KindUpstream {
		t.Fatalf("unexpected kind: %s", domain.KindOf(err))
	}
	if len(store.puts) != 0 {
		t.Fatalf("failed generation must not be published")
	}
}

func TestGenerateValidatesInput(t *testing.T) {
	p := newTestPipeline(t, &fakeEditor{edit: func(ctx context.Context, req openai.EditRequest) ([]byte, error) {
		t.Errorf("editor must not be called for invalid input")
		return nil, nil
	}}, &fakeStore{}, time.Second)

	if _, err := p.Generate(context.Background(), "", testImage()); domain.KindOf(err) != domain.KindInput {
		t.Fatalf("expected input error for empty prompt, got %v", err)
	}
	if _, err := p.Generate(context.Background(), "prompt", nil); domain.KindOf(err) != domain.KindInput {
		t.Fatalf("expected input error for missing image, got %v", err)
	}
}
