package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"
	"github.com/Adda-Baaj/briefing-harvester/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Provider is the external translation capability. The source language is
// detected by the provider.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// ProviderError wraps any failure surfaced by a Provider.
type ProviderError struct {
	Provider   string
	TargetLang string
	Runes      int
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("translate %d runes to %q via %s: %v", e.Runes, e.TargetLang, e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Options configures a Translator.
type Options struct {
	TargetLang string
	ChunkSize  int
	// Concurrency caps how many articles of a batch are translated at once.
	// Zero or less translates the whole batch in parallel.
	Concurrency int
}

// Translator fills the translated fields of articles, falling back to the
// original text whenever the provider fails.
type Translator struct {
	provider   Provider
	targetLang string
	chunkSize   int
	concurrency int
	log         logger.Logger
}

// New builds a Translator. A nil provider makes every translation an identity.
func New(provider Provider, opts Options, log logger.Logger) *Translator {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if strings.TrimSpace(opts.TargetLang) == "" {
		opts.TargetLang = "ru"
	}
	return &Translator{
		provider:    provider,
		targetLang:  opts.TargetLang,
		chunkSize:   opts.ChunkSize,
		concurrency: opts.Concurrency,
		log:         logger.Ensure(log),
	}
}

// TranslateChunk translates one chunk. It never fails: on provider error the
// failure is logged and text is returned unchanged.
func (t *Translator) TranslateChunk(ctx context.Context, text string) string {
	translated, err := t.translateChunk(ctx, text)
	if err != nil {
		t.log.WarnObj("translation failed, keeping original text", "translation_error", map[string]any{
			"provider":    err.Provider,
			"target_lang": err.TargetLang,
			"runes":       err.Runes,
			"error":       err.Err.Error(),
		})
		return text
	}
	return translated
}

func (t *Translator) translateChunk(ctx context.Context, text string) (string, *ProviderError) {
	if t.provider == nil || strings.TrimSpace(text) == "" {
		return text, nil
	}

	translated, err := t.provider.Translate(ctx, text, t.targetLang)
	if err != nil {
		return "", &ProviderError{
			Provider:   t.provider.Name(),
			TargetLang: t.targetLang,
			Runes:      runeLen(text),
			Err:        err,
		}
	}
	return translated, nil
}

// TranslateText translates a whole field, segmenting it first when it is
// longer than the chunk size. Chunks are rejoined with single spaces.
func (t *Translator) TranslateText(ctx context.Context, text string) string {
	if runeLen(text) <= t.chunkSize {
		return t.TranslateChunk(ctx, text)
	}

	chunks := Segment(text, t.chunkSize)
	translated := make([]string, len(chunks))
	for i, chunk := range chunks {
		translated[i] = t.TranslateChunk(ctx, chunk)
	}
	return strings.Join(translated, " ")
}

// TranslateArticle returns a copy of art with both translated fields set.
// Each field falls back to its original text independently.
func (t *Translator) TranslateArticle(ctx context.Context, art domain.Article) domain.Article {
	art.ShortTextTranslated = t.TranslateText(ctx, art.ShortText)
	art.MainTextTranslated = t.TranslateText(ctx, art.MainText)
	return art
}

// TranslateBatch translates articles concurrently, one goroutine per article
// up to the configured limit, and returns the results in input order. Articles
// not started before ctx is done are returned untranslated.
func (t *Translator) TranslateBatch(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	g, gctx := errgroup.WithContext(ctx)
	if t.concurrency > 0 {
		g.SetLimit(t.concurrency)
	}
	for i, art := range articles {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = t.TranslateArticle(gctx, art)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.log.WarnObj("batch translation interrupted", "translation_error", map[string]any{
			"articles": len(articles),
			"error":    err.Error(),
		})
	}

	return out
}
