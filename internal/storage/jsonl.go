package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"priceScope/internal/model"
)

// JsonlReport writes the latest pass as JSON lines, one per token.
// Each pass replaces the previous file contents.
type JsonlReport struct {
	path string
	mu   sync.Mutex
}

var _ ReportSink = (*JsonlReport)(nil)

func NewJsonlReport(path string) *JsonlReport {
	return &JsonlReport{path: path}
}

// WritePass writes reports to a temp file next to the target and renames it into place.
func (s *JsonlReport) WritePass(reports []model.PriceReport) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}

	err = writeReports(file, reports)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close report: %w", closeErr)
	}
	if err == nil {
		if renameErr := os.Rename(tmp, s.path); renameErr != nil {
			err = fmt.Errorf("replace report: %w", renameErr)
		}
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func writeReports(file *os.File, reports []model.PriceReport) error {
	writer := bufio.NewWriter(file)
	for _, report := range reports {
		line, err := json.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
