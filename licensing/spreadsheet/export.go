package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"licensedesk.com/licensedesk/licensing/model"
	"licensedesk.com/licensedesk/utils"
)

const SheetName = "Licenses"

var Header = []string{
	"serial_number",
	"program_name",
	"status",
	"active",
	"device_id",
	"activation_date",
	"notes",
}

func record(l model.License) []string {
	return []string{
		l.SerialNumber,
		utils.Deref(l.ProgramName),
		string(l.Status),
		strconv.FormatBool(l.Active),
		utils.Deref(l.DeviceID),
		utils.FormatISOTime(l.ActivationDate),
		utils.Deref(l.Notes),
	}
}

func WriteCSV(w io.Writer, licenses []model.License) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, l := range licenses {
		if err := cw.Write(record(l)); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", l.SerialNumber, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, licenses []model.License) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", toCells(Header)); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}
	for i, l := range licenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(record(l))); err != nil {
			return fmt.Errorf("failed to write xlsx row %s: %w", l.SerialNumber, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush xlsx: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	return utils.Map(values, func(v string) interface{} { return v })
}
