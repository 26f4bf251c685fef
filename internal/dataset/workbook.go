package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"outlet-insights-go/internal/frame"
	"outlet-insights-go/internal/logger"
	"outlet-insights-go/internal/types"
)

// WorkbookSource reads one workbook per period, <dir>/<period>.xlsx, with
// one sheet per table named "<tab>.<table>" (for example "tab3.q2").
type WorkbookSource struct {
	Dir string
}

func NewWorkbookSource(dir string) *WorkbookSource {
	return &WorkbookSource{Dir: dir}
}

// Path is the workbook file backing a period.
func (s *WorkbookSource) Path(period string) string {
	return filepath.Join(s.Dir, period+".xlsx")
}

func (s *WorkbookSource) Fetch(ctx context.Context, tab types.Tab, period string) (Tables, error) {
	log := logger.Component("dataset.workbook").WithField("tab", tab).WithField("period", period)
	path := s.Path(period)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Tables{}, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	prefix := string(tab) + "."
	out := Tables{}
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(sheet, prefix) {
			continue
		}
		name := strings.TrimPrefix(sheet, prefix)
		rows, err := f.GetRows(sheet)
		if err != nil {
			// one unreadable sheet degrades to an empty table
			log.WithError(err).WithField("sheet", sheet).Warn("read rows failed")
			out[name] = frame.New()
			continue
		}
		out[name] = sheetTable(rows)
	}
	log.WithField("tables", len(out)).Debug("workbook read")
	return out, nil
}

// sheetTable turns raw sheet rows (header first) into a table. Short rows
// pad with blanks and empty cells are blank.
func sheetTable(rows [][]string) *frame.Table {
	if len(rows) == 0 {
		return frame.New()
	}
	var header, cols []string
	for _, h := range rows[0] {
		h = strings.TrimSpace(h)
		header = append(header, h)
		if h != "" {
			cols = append(cols, h)
		}
	}
	t := frame.New(cols...)
	for _, r := range rows[1:] {
		if blankRow(r) {
			continue
		}
		row := frame.Row{}
		for i, col := range header {
			if col == "" {
				continue
			}
			var v any
			if i < len(r) && strings.TrimSpace(r[i]) != "" {
				v = strings.TrimSpace(r[i])
			}
			row[col] = v
		}
		t.AddRow(row)
	}
	return t
}

func blankRow(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
