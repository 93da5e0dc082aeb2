// Package exportsvc renders team activities as spreadsheet workbooks.
package exportsvc

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
)

const (
	SheetName       = "Team Activities"
	ContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	filenamePrefix  = "team-activities"
	dateDisplay     = "Jan 2, 2006"
	dateTimeDisplay = "Jan 2, 2006 3:04 PM"
)

type column struct {
	title string
	width float64
}

var columns = []column{
	{"Developer", 15},
	{"Date", 12},
	{"Meeting Type", 15},
	{"Summary", 50},
	{"Tickets", 20},
	{"Submitted", 20},
}

// Filename is the download name of the workbook exported on day.
func Filename(day core.Date) string {
	return fmt.Sprintf("%s-%s.xlsx", filenamePrefix, day)
}

// Row returns the cells of a, submission times shown in loc.
func Row(a activity.Activity, loc *time.Location) []interface{} {
	return []interface{}{
		a.DeveloperName(),
		a.Date.Time().Format(dateDisplay),
		a.MeetingTypeName(),
		a.Summary,
		strings.Join(a.Tickets, ", "),
		a.CreatedAt.In(loc).Format(dateTimeDisplay),
	}
}

// WriteActivities writes an .xlsx workbook with one row per activity to w.
func WriteActivities(w io.Writer, activities []activity.Activity, loc *time.Location) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing workbook")
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	header := make([]interface{}, 0, len(columns))
	for i, col := range columns {
		header = append(header, col.title)
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return errors.Wrap(err, "naming column")
		}
		if err = f.SetColWidth(SheetName, name, name, col.width); err != nil {
			return errors.Wrapf(err, "sizing column %s", name)
		}
	}
	if err = f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}
	if err = f.SetCellStyle(SheetName, "A1", "F1", bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	for i, a := range activities {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		row := Row(a, loc)
		if err = f.SetSheetRow(SheetName, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
