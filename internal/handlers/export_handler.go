package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/junhot777-lab/cyber-calender/config"
	"github.com/junhot777-lab/cyber-calender/models"

	ics "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportICS serves the requested window as an iCalendar file.
func ExportICS(c *gin.Context) {
	events, ok := fetchWindow(c)
	if !ok {
		return
	}

	cal := buildICS(events)
	c.Header("Content-Disposition", `attachment; filename="calendar.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

// ExportXLSX serves the requested window as a spreadsheet, one row per event.
func ExportXLSX(c *gin.Context) {
	events, ok := fetchWindow(c)
	if !ok {
		return
	}

	f, err := buildXLSX(events)
	if err != nil {
		slog.Error("Failed to build spreadsheet", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not build export"})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="calendar.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		slog.Error("Failed to write spreadsheet", "error", err)
	}
}

func buildICS(events []models.Event) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//cyber-calender//shared calendar//KO")

	for _, ev := range events {
		item := cal.AddEvent(ev.ID)
		item.SetSummary(ev.Title)
		if ev.AllDay {
			item.SetAllDayStartAt(ev.StartAt)
			item.SetAllDayEndAt(ev.EndAt)
		} else {
			item.SetStartAt(ev.StartAt)
			item.SetEndAt(ev.EndAt)
		}
		if ev.Note != "" {
			item.SetDescription(ev.Note)
		}
		item.SetOrganizer(ev.OwnerUserID, ics.WithCN(ev.Owner.Name))
		item.SetDtStampTime(ev.UpdatedAt)
	}
	return cal
}

func buildXLSX(events []models.Event) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Sheet1"

	header := []string{"Owner", "Title", "Start", "End", "All day", "Note"}
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, ev := range events {
		values := []interface{}{
			ev.Owner.Name,
			ev.Title,
			ev.StartAt.Format(time.RFC3339),
			ev.EndAt.Format(time.RFC3339),
			ev.AllDay,
			ev.Note,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// fetchWindow reads the optional start/end query parameters and loads the
// matching events, answering the error responses itself.
func fetchWindow(c *gin.Context) ([]models.Event, bool) {
	w, detail := parseWindow(c.Query("start"), c.Query("end"))
	if detail != "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
		return nil, false
	}
	query := w.scope(config.DB.Preload("Owner").Model(&models.Event{}).Order("start_at asc"))

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		slog.Error("Failed to fetch events for export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not fetch events"})
		return nil, false
	}
	return events, true
}
