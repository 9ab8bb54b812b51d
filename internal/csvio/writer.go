package csvio

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/okello/baygate/pkg/model"
)

// ExportResults writes the solved assignments to a csv file, replacing any
// previous result.
func ExportResults(sols []*model.FlightSolution, path string) error {
	rows := make([]*model.ResultCSVRow, 0, len(sols))
	for _, fs := range sols {
		rows = append(rows, fs.CSVRow())
	}

	if _, err := os.Stat(path); err == nil {
		os.Remove(path)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
