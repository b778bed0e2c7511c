package csvsink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Adda-Baaj/briefing-harvester/internal/domain"
)

// ErrHeaderMismatch is returned when an existing file was written with a different column set.
var ErrHeaderMismatch = errors.New("csv header mismatch")

var (
	baseColumns        = []string{"title", "news_date", "news_href", "news_short_text", "news_main_text", "country", "category"}
	translationColumns = []string{"news_short_text_translated", "news_main_text_translated"}
)

// Writer appends article rows to a CSV file, writing the header only when the
// file is new or empty. Appending to a file whose header differs is refused.
type Writer struct {
	path                string
	includeTranslations bool
	mu                  sync.Mutex
}

// New returns a Writer for path. Translated columns are emitted only when
// includeTranslations is set.
func New(path string, includeTranslations bool) *Writer {
	return &Writer{path: path, includeTranslations: includeTranslations}
}

// Path returns the target file.
func (w *Writer) Path() string { return w.path }

// Header returns the column names in write order.
func (w *Writer) Header() []string {
	cols := append([]string(nil), baseColumns...)
	if w.includeTranslations {
		cols = append(cols, translationColumns...)
	}
	return cols
}

// Append writes one row per article.
func (w *Writer) Append(articles []domain.Article) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create csv directory: %w", err)
		}
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat csv: %w", err)
	}

	if info.Size() > 0 {
		if err := w.checkHeader(file); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := cw.Write(w.Header()); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for _, art := range articles {
		if err := cw.Write(w.row(art)); err != nil {
			return fmt.Errorf("write csv row %s: %w", art.NewsHref, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return file.Close()
}

// checkHeader compares the first record of file with Header. Writes stay at
// the end of the file because it is opened with O_APPEND.
func (w *Writer) checkHeader(file *os.File) error {
	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	existing, err := r.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	want := w.Header()
	if len(existing) != len(want) {
		return fmt.Errorf("%w in %s: file has %d columns, writer expects %d", ErrHeaderMismatch, w.path, len(existing), len(want))
	}
	for i := range want {
		if existing[i] != want[i] {
			return fmt.Errorf("%w in %s: column %d is %q, writer expects %q", ErrHeaderMismatch, w.path, i+1, existing[i], want[i])
		}
	}
	return nil
}

func (w *Writer) row(a domain.Article) []string {
	row := []string{a.Title, a.NewsDate, a.NewsHref, a.ShortText, a.MainText, a.Country, a.Category}
	if w.includeTranslations {
		row = append(row, a.ShortTextTranslated, a.MainTextTranslated)
	}
	return row
}
