package translate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"
	"github.com/Adda-Baaj/briefing-harvester/internal/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// upperProvider "translates" by upper-casing and records every call.
type upperProvider struct {
	mu    sync.Mutex
	calls []string
}

func (p *upperProvider) Name() string { return "upper" }
func (p *upperProvider) Translate(_ context.Context, text, _ string) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, text)
	p.mu.Unlock()
	return strings.ToUpper(text), nil
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Translate(context.Context, string, string) (string, error) {
	return "", errors.New("quota exceeded")
}

// selectiveProvider fails for any text containing failOn.
type selectiveProvider struct {
	failOn string
}

func (selectiveProvider) Name() string { return "selective" }
func (p selectiveProvider) Translate(_ context.Context, text, _ string) (string, error) {
	if strings.Contains(text, p.failOn) {
		return "", errors.New("boom")
	}
	return "[" + text + "]", nil
}

func TestTranslateChunkFallsBackToOriginal(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tr := New(failingProvider{}, Options{TargetLang: "ru"}, logger.FromZap(zap.New(core)))

	got := tr.TranslateChunk(context.Background(), "hello")
	require.Equal(t, "hello", got)

	entries := logs.FilterMessage("translation failed, keeping original text").All()
	require.Len(t, entries, 1)
}

func TestTranslateChunkReturnsProviderError(t *testing.T) {
	tr := New(failingProvider{}, Options{TargetLang: "de"}, nil)

	_, perr := tr.translateChunk(context.Background(), "hallo welt")
	require.NotNil(t, perr)

	var err error = perr
	var target *ProviderError
	require.True(t, errors.As(err, &target))
	require.Equal(t, "failing", target.Provider)
	require.Equal(t, "de", target.TargetLang)
	require.Equal(t, 10, target.Runes)
	require.EqualError(t, errors.Unwrap(err), "quota exceeded")
}

func TestTranslateChunkSkipsBlankText(t *testing.T) {
	p := &upperProvider{}
	tr := New(p, Options{}, nil)

	require.Equal(t, "", tr.TranslateChunk(context.Background(), ""))
	require.Equal(t, "  ", tr.TranslateChunk(context.Background(), "  "))
	require.Empty(t, p.calls)
}

func TestTranslateTextSegmentsLongInput(t *testing.T) {
	p := &upperProvider{}
	tr := New(p, Options{ChunkSize: 10}, nil)

	got := tr.TranslateText(context.Background(), "alpha beta gamma delta")
	require.Equal(t, "ALPHA BETA GAMMA DELTA", got)
	require.Equal(t, []string{"alpha beta", "gamma", "delta"}, p.calls)
}

func TestTranslateTextShortInputIsOneCall(t *testing.T) {
	p := &upperProvider{}
	tr := New(p, Options{ChunkSize: 10}, nil)

	require.Equal(t, "ALPHA BETA", tr.TranslateText(context.Background(), "alpha beta"))
	require.Len(t, p.calls, 1)
}

func TestTranslateTextChunkFallbackIsPerChunk(t *testing.T) {
	tr := New(selectiveProvider{failOn: "gamma"}, Options{ChunkSize: 10}, nil)

	got := tr.TranslateText(context.Background(), "alpha beta gamma delta")
	require.Equal(t, "[alpha beta] gamma [delta]", got)
}

func TestTranslateArticlePreservesOtherFields(t *testing.T) {
	in := domain.Article{
		ID:        "id-1",
		Title:     "Title",
		NewsDate:  "May 1, 2024",
		NewsHref:  "https://example.com/a",
		ShortText: "short",
		MainText:  "main body",
		Country:   "China",
		Category:  "economy-trade",
	}
	tr := New(&upperProvider{}, Options{}, nil)

	out := tr.TranslateArticle(context.Background(), in)

	require.Equal(t, "SHORT", out.ShortTextTranslated)
	require.Equal(t, "MAIN BODY", out.MainTextTranslated)

	out.ShortTextTranslated, out.MainTextTranslated = "", ""
	require.Equal(t, in, out)
}

func TestTranslateArticleFieldsFallBackIndependently(t *testing.T) {
	tr := New(selectiveProvider{failOn: "broken"}, Options{}, nil)

	out := tr.TranslateArticle(context.Background(), domain.Article{
		ShortText: "hello",
		MainText:  "broken body",
	})

	require.Equal(t, "[hello]", out.ShortTextTranslated)
	require.Equal(t, "broken body", out.MainTextTranslated)
}

func TestTranslateArticleAlwaysFailingProvider(t *testing.T) {
	tr := New(failingProvider{}, Options{}, nil)

	out := tr.TranslateArticle(context.Background(), domain.Article{ShortText: "hello", MainText: "world"})
	require.Equal(t, "hello", out.ShortTextTranslated)
	require.Equal(t, "world", out.MainTextTranslated)
}

// delayedProvider holds every "two" text until all other texts finished, so
// the second record always completes last.
type delayedProvider struct {
	others sync.WaitGroup
	mu     sync.Mutex
	order  []string
}

func (p *delayedProvider) Name() string { return "delayed" }
func (p *delayedProvider) Translate(_ context.Context, text, _ string) (string, error) {
	if strings.HasPrefix(text, "two") {
		p.others.Wait()
	} else {
		defer p.others.Done()
	}
	p.mu.Lock()
	p.order = append(p.order, text)
	p.mu.Unlock()
	return "tr-" + text, nil
}

func TestTranslateBatchPreservesInputOrder(t *testing.T) {
	p := &delayedProvider{}
	p.others.Add(4)

	in := []domain.Article{
		{ID: "1", ShortText: "one-short", MainText: "one-main"},
		{ID: "2", ShortText: "two-short", MainText: "two-main"},
		{ID: "3", ShortText: "three-short", MainText: "three-main"},
	}
	out := New(p, Options{}, nil).TranslateBatch(context.Background(), in)

	require.Len(t, out, 3)
	require.Equal(t, []string{"1", "2", "3"}, []string{out[0].ID, out[1].ID, out[2].ID})
	require.Equal(t, "tr-two-short", out[1].ShortTextTranslated)
	require.Equal(t, "tr-three-main", out[2].MainTextTranslated)

	require.Equal(t, []string{"two-short", "two-main"}, p.order[4:])
}

func TestTranslateBatchDegradedStillSucceeds(t *testing.T) {
	in := []domain.Article{
		{ID: "a", ShortText: "ok", MainText: "broken"},
		{ID: "b", ShortText: "broken", MainText: "ok"},
	}
	out := New(selectiveProvider{failOn: "broken"}, Options{}, nil).TranslateBatch(context.Background(), in)

	require.Len(t, out, 2)
	require.Equal(t, "[ok]", out[0].ShortTextTranslated)
	require.Equal(t, "broken", out[0].MainTextTranslated)
	require.Equal(t, "broken", out[1].ShortTextTranslated)
	require.Equal(t, "[ok]", out[1].MainTextTranslated)
}

// gaugeProvider records the highest number of concurrent Translate calls.
type gaugeProvider struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (p *gaugeProvider) Name() string { return "gauge" }
func (p *gaugeProvider) Translate(_ context.Context, text, _ string) (string, error) {
	n := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return "tr-" + text, nil
}

func TestTranslateBatchHonoursConcurrencyLimit(t *testing.T) {
	p := &gaugeProvider{}
	in := make([]domain.Article, 8)
	for i := range in {
		in[i] = domain.Article{ID: string(rune('a' + i)), ShortText: "s", MainText: "m"}
	}

	out := New(p, Options{Concurrency: 2}, nil).TranslateBatch(context.Background(), in)

	require.Len(t, out, 8)
	for i, art := range out {
		require.Equal(t, in[i].ID, art.ID)
		require.Equal(t, "tr-s", art.ShortTextTranslated)
	}
	require.LessOrEqual(t, p.peak.Load(), int32(2))
}

func TestTranslateBatchCancelledKeepsArticles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &upperProvider{}
	in := []domain.Article{{ID: "1", ShortText: "a", MainText: "b"}}
	out := New(p, Options{Concurrency: 1}, nil).TranslateBatch(ctx, in)

	require.Equal(t, in, out)
	require.Empty(t, p.calls)
}

func TestTranslateBatchEmpty(t *testing.T) {
	out := New(&upperProvider{}, Options{}, nil).TranslateBatch(context.Background(), nil)
	require.Empty(t, out)
}

func TestNilProviderIsIdentity(t *testing.T) {
	out := New(nil, Options{}, nil).TranslateArticle(context.Background(), domain.Article{ShortText: "a", MainText: "b"})
	require.Equal(t, "a", out.ShortTextTranslated)
	require.Equal(t, "b", out.MainTextTranslated)
}
