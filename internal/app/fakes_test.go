package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"docqa/internal/ai"
	"docqa/internal/cache"
	"docqa/internal/model"
	"docqa/internal/pkg/pdfextract"
)

var errModelDown = errors.New("model unavailable")

type generatorCall struct {
	Prompt string
	Params ai.GenerationConfig
}

// fakeGenerator replays replies in order; the last reply repeats.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []fakeReply
	calls   []generatorCall
}

type fakeReply struct {
	text string
	err  error
}

func newFakeGenerator(replies ...fakeReply) *fakeGenerator {
	return &fakeGenerator{replies: replies}
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, params ai.GenerationConfig) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, generatorCall{Prompt: prompt, Params: params})
	if len(g.replies) == 0 {
		return "", nil
	}
	idx := len(g.calls) - 1
	if idx >= len(g.replies) {
		idx = len(g.replies) - 1
	}
	return g.replies[idx].text, g.replies[idx].err
}

func (g *fakeGenerator) Calls() []generatorCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generatorCall(nil), g.calls...)
}

type fakeExtractor struct {
	result *pdfextract.Result
	err    error
}

func (e fakeExtractor) Extract([]byte) (*pdfextract.Result, error) {
	return e.result, e.err
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []model.Message
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, msg model.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

type fakeRecorder struct {
	records []model.UploadRecord
	err     error
}

func (r *fakeRecorder) Create(record *model.UploadRecord) error {
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, *record)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// instantRetry records requested delays instead of sleeping.
func instantRetry(delays *[]time.Duration) ai.RetryPolicy {
	p := ai.DefaultRetryPolicy(testLogger())
	p.Sleep = func(d time.Duration) { *delays = append(*delays, d) }
	return p
}

func newTestComposer(gen ai.Generator) (*AnswerComposer, *[]time.Duration) {
	delays := &[]time.Duration{}
	return NewAnswerComposer(gen, instantRetry(delays), testLogger()), delays
}

func newTestStore() *cache.MemoryDocumentStore {
	return cache.NewMemoryDocumentStore()
}
