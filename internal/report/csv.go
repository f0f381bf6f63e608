package report

import (
	"encoding/csv"
	"io"

	"github.com/flowmetrics/leadtime/internal/leadtime"
)

// WriteCSV writes the header and one row per result.
func WriteCSV(w io.Writer, rep *leadtime.Report, opts Options) error {
	columns := Columns(rep, opts)

	cw := csv.NewWriter(w)
	if err := cw.Write(Header(columns, opts)); err != nil {
		return err
	}
	for _, r := range rep.Results {
		if err := cw.Write(Row(r, columns, opts)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
