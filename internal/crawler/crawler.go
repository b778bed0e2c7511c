package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/Adda-Baaj/briefing-harvester/internal/logger"
	"github.com/google/uuid"
)

// Service walks a range of listing pages through a PageProcessor.
type Service struct {
	processor *PageProcessor
	log       logger.Logger
}

// NewService wires a crawler around the page processor.
func NewService(processor *PageProcessor, log logger.Logger) *Service {
	return &Service{processor: processor, log: logger.Ensure(log)}
}

// Run processes pages [startPage, endPage) in order. A failed page does not stop
// the run; all page errors are joined into the returned error.
func (s *Service) Run(ctx context.Context, startPage, endPage int) error {
	if s == nil || s.processor == nil {
		return fmt.Errorf("crawler service is not initialized")
	}
	if startPage < 1 || endPage <= startPage {
		return fmt.Errorf("invalid page range [%d, %d)", startPage, endPage)
	}

	runID := uuid.NewString()
	s.processor.startRun(runID)
	s.log.DebugObj("crawl run started", "run_meta", map[string]any{
		"run_id":     runID,
		"start_page": startPage,
		"end_page":   endPage,
	})

	errs := s.runAll(ctx, startPage, endPage)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, startPage, endPage int) []error {
	errs := make([]error, 0)

	for page := startPage; page < endPage; page++ {
		if ctx.Err() != nil {
			s.log.WarnObj("crawl cancelled", "run_cancelled", map[string]any{
				"next_page": page,
			})
			return errs
		}
		if err := s.processor.Process(ctx, page); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				s.log.WarnObj("crawl cancelled", "run_cancelled", map[string]any{
					"interrupted_page": page,
				})
				return errs
			}
			errs = append(errs, err)
			s.log.ErrorObj("page crawl failed", "page_error", map[string]any{
				"page":  page,
				"error": err.Error(),
			})
		}
	}

	return errs
}
