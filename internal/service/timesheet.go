package service

import (
	"strings"
	"time"

	"github.com/consulting-control/backend/internal/models"
)

type TimesheetConfig struct {
	From                time.Time
	To                  time.Time
	ExpectedHoursPerDay float64
	Exceptions          []models.Exception
	Holidays            []time.Time
}

type TimesheetResult struct {
	Rows      []models.TimesheetRow `json:"rows"`
	Offenders []models.TimesheetRow `json:"offenders"`
	Range     models.DateRange      `json:"range"`
}

// EvaluateTimesheet compares booked hours per employee against the working-day
// expectation for the period. Exclusion exceptions take precedence over
// part-time overrides for the same employee.
func EvaluateTimesheet(records []models.TimeRecord, cfg TimesheetConfig) TimesheetResult {
	days := WorkingDays(cfg.From, cfg.To, cfg.Holidays)

	excluded := map[string]bool{}
	partTime := map[string]float64{}
	for _, e := range cfg.Exceptions {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		if e.Exclude {
			excluded[name] = true
			continue
		}
		if e.PartTimeHours != nil {
			partTime[name] = *e.PartTimeHours
		}
	}

	totals := map[string]float64{}
	var order []string
	for _, r := range records {
		if !r.HasDate {
			continue
		}
		day := truncateDay(r.Date)
		if day.Before(truncateDay(cfg.From)) || day.After(truncateDay(cfg.To)) {
			continue
		}
		if excluded[r.Employee] {
			continue
		}
		if _, ok := totals[r.Employee]; !ok {
			order = append(order, r.Employee)
		}
		totals[r.Employee] += r.HoursWorked
	}

	result := TimesheetResult{
		Rows:      []models.TimesheetRow{},
		Offenders: []models.TimesheetRow{},
		Range:     models.DateRange{From: cfg.From, To: cfg.To},
	}

	for _, employee := range order {
		perDay := cfg.ExpectedHoursPerDay
		if override, ok := partTime[employee]; ok {
			perDay = override
		}
		row := models.TimesheetRow{
			Employee: employee,
			Total:    totals[employee],
			Expected: float64(days) * perDay,
		}
		if row.Expected > 0 {
			row.Ratio = row.Total / row.Expected
		}
		row.Status = timesheetStatus(row.Total, row.Expected)
		result.Rows = append(result.Rows, row)
		if row.Status != models.TimesheetGood {
			result.Offenders = append(result.Offenders, row)
		}
	}
	return result
}

// timesheetStatus is a strict three-state classifier; exceeding expectation
// is still just good, and a zero expectation can never be under-fulfilled.
func timesheetStatus(total, expected float64) string {
	switch {
	case total <= 0:
		return models.TimesheetBad
	case total < expected:
		return models.TimesheetWarn
	default:
		return models.TimesheetGood
	}
}
