package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"licensedesk.com/licensedesk/licensing/core"
	"licensedesk.com/licensedesk/licensing/model"
	"licensedesk.com/licensedesk/utils"
)

// Row is one data line of an uploaded file. Line is 1-based and counts the
// header. Err is set when the line cannot become a license; Input is then
// incomplete.
type Row struct {
	Line  int
	Input core.CreateInput
	Err   error
}

// Blank reports a line without a serial number.
func (r Row) Blank() bool {
	return r.Err == nil && r.Input.SerialNumber == ""
}

// ReadRows parses an uploaded .csv or .xlsx file. The first row must be a
// header naming at least serial_number; unknown columns are ignored. A file
// written by WriteCSV or WriteXLSX reads back with its bindings. Problems
// with single lines are reported per row; the error return covers the file
// as a whole.
func ReadRows(filename string, r io.Reader) ([]Row, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = utils.ParseCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", core.ErrInvalidInput, filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", core.ErrInvalidInput, filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", core.ErrInvalidInput, filename)
	}

	columns := map[string]int{}
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["serial_number"]; !ok {
		return nil, fmt.Errorf("%w: missing serial_number column", core.ErrInvalidInput)
	}

	cell := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for n, record := range records[1:] {
		// header is line 1
		row := Row{Line: n + 2}
		row.Input, row.Err = parseRecord(func(name string) string { return cell(record, name) })
		if row.Err != nil {
			row.Err = fmt.Errorf("%w: line %d: %v", core.ErrInvalidInput, row.Line, row.Err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(cell func(string) string) (core.CreateInput, error) {
	input := core.CreateInput{SerialNumber: cell("serial_number")}
	if input.SerialNumber == "" {
		return input, nil
	}
	input.ProgramName = utils.NilIfEmpty(cell("program_name"))
	input.Notes = utils.NilIfEmpty(cell("notes"))

	if raw := cell("status"); raw != "" {
		status, err := model.ParseStatus(raw)
		if err != nil {
			return input, err
		}
		input.Status = status
	}

	input.DeviceID = utils.NilIfEmpty(cell("device_id"))
	if raw := cell("activation_date"); raw != "" {
		activated, err := time.Parse(utils.ISOLayout, raw)
		if err != nil {
			return input, fmt.Errorf("activation_date %q is not an RFC3339 time", raw)
		}
		input.ActivationDate = &activated
	}
	if (input.DeviceID != nil) != (input.ActivationDate != nil) {
		return input, errors.New("device_id and activation_date must be set together")
	}
	if raw := cell("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return input, fmt.Errorf("active %q is not a boolean", raw)
		}
		if active != (input.DeviceID != nil) {
			return input, errors.New("active does not match device_id")
		}
	}
	return input, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}
