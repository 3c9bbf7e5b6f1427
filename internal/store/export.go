package store

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/probelab/kexscan/internal/errors"
)

// ExportCSV writes one run's results to w as CSV, header first, rows in
// input order.
func (s *Store) ExportCSV(runID int64, w io.Writer) error {
	results, err := s.RunResults(runID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"seq", "host", "classification", "exit_code", "timed_out", "output"}); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, "Can't write CSV header", "")
	}

	for _, r := range results {
		record := []string{
			strconv.Itoa(r.Seq),
			r.Host,
			r.Classification,
			strconv.Itoa(r.ExitCode),
			strconv.FormatBool(r.TimedOut),
			r.Output,
		}
		if err := cw.Write(record); err != nil {
			return errors.WrapWithCode(err, errors.ErrStore, "Can't write CSV row for "+r.Host, "")
		}
	}

	cw.Flush()
	return cw.Error()
}
