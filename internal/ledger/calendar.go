package ledger

import (
	"fmt"
	"time"

	"github.com/nordvik/timeledger/internal/models"
)

// FullDayHours is the intensity threshold for a full working day.
const FullDayHours = 7.5

// MonthGrid projects one employee's ledger onto the given month: leading
// padding cells for the first day's weekday offset (weeks start on
// Monday), then one cell per calendar day.
func MonthGrid(el *EmployeeLedger, year int, month time.Month) []models.CalendarCell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	offset := (int(first.Weekday()) + 6) % 7

	cells := make([]models.CalendarCell, 0, offset+daysInMonth)
	for i := 0; i < offset; i++ {
		cells = append(cells, models.CalendarCell{Intensity: models.IntensityEmpty})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
		hours := 0.0
		if el != nil {
			hours = el.HoursByDate[date]
		}
		cells = append(cells, models.CalendarCell{
			DayNumber:  day,
			Date:       date,
			TotalHours: hours,
			Intensity:  intensity(hours),
		})
	}
	return cells
}

// MonthTotal sums the ledger hours whose date keys fall in the given
// month, not the employee's all-time total.
func MonthTotal(el *EmployeeLedger, year int, month time.Month) float64 {
	if el == nil {
		return 0
	}
	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	total := 0.0
	for date, hours := range el.HoursByDate {
		if len(date) >= len(prefix) && date[:len(prefix)] == prefix {
			total += hours
		}
	}
	return total
}

func intensity(hours float64) models.Intensity {
	switch {
	case hours <= 0:
		return models.IntensityEmpty
	case hours < FullDayHours:
		return models.IntensityPartial
	default:
		return models.IntensityFull
	}
}
