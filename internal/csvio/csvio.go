package csvio

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"classattend/internal/attendance"
	"classattend/internal/roster"
)

// ErrMissingHeader means the upload had no header row at all.
var ErrMissingHeader = errors.New("csv file has no header row")

// Recognized header aliases, all compared case-insensitively.
var (
	nameAliases  = []string{"name"}
	idAliases    = []string{"student_id", "studentid", "student"}
	emailAliases = []string{"email"}
)

// ParseRoster decodes a roster CSV. Column positions come from the header
// row; unrecognized columns are ignored and short rows tolerated. Rows are
// returned as-is — skipping rows without an identifier is the import
// service's job.
func ParseRoster(r io.Reader) ([]roster.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, err
	}
	nameCol := findColumn(header, nameAliases)
	idCol := findColumn(header, idAliases)
	emailCol := findColumn(header, emailAliases)

	var rows []roster.ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, roster.ImportRow{
			Name:      field(record, nameCol),
			StudentID: field(record, idCol),
			Email:     field(record, emailCol),
		})
	}
	return rows, nil
}

func findColumn(header []string, aliases []string) int {
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for _, alias := range aliases {
			if col == alias {
				return i
			}
		}
	}
	return -1
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

// WriteExport streams attendance rows as CSV with the fixed export header.
func WriteExport(w io.Writer, rows []attendance.ExportRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"student_id", "name", "date", "status", "timestamp"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.StudentID,
			row.Name,
			row.Date,
			string(row.Status),
			row.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
