package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV writes one "name,c1,c2,c3,c4" record per row without a header.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	for _, r := range rows {
		record := []string{r.Name}
		for _, c := range r.Counts {
			record = append(record, strconv.Itoa(c))
		}
		err := writer.Write(record)
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV reads rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5

	rows := []Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := Row{Name: record[0]}
		for i, field := range record[1:] {
			count, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("row %q: %w", row.Name, err)
			}
			row.Counts[i] = count
		}
		rows = append(rows, row)
	}
	return rows, nil
}
