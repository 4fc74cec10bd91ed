package gistemp

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/climate-dashboard/internal/domain"
)

// ErrNoHeader is returned when the input ends before the column header.
var ErrNoHeader = errors.New("dataset has no column header")

// Parse reads a GISTEMP table: one title line, then a CSV header, then data.
// Records may have differing lengths; cleaning sorts that out.
func Parse(r io.Reader) (domain.RawTable, error) {
	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawTable{}, ErrNoHeader
		}
		return domain.RawTable{}, fmt.Errorf("read title line: %w", err)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return domain.RawTable{}, ErrNoHeader
	}
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("parse header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("parse records: %w", err)
	}

	return domain.RawTable{Header: header, Records: records}, nil
}
