package service

import (
	"testing"
	"time"

	"github.com/consulting-control/backend/internal/models"
)

func TestTimesheetStatusBoundaries(t *testing.T) {
	cases := []struct {
		total, expected float64
		want            string
	}{
		{0, 40, models.TimesheetBad},
		{20, 40, models.TimesheetWarn},
		{40, 40, models.TimesheetGood},
		{50, 0, models.TimesheetGood},
	}
	for _, tc := range cases {
		if got := timesheetStatus(tc.total, tc.expected); got != tc.want {
			t.Errorf("status(%v, %v) = %s, want %s", tc.total, tc.expected, got, tc.want)
		}
	}
}

func weekConfig(extra ...models.Exception) TimesheetConfig {
	return TimesheetConfig{
		From:                day("2025-01-06"),
		To:                  day("2025-01-12"),
		ExpectedHoursPerDay: 8,
		Exceptions:          extra,
	}
}

func TestEvaluateTimesheetExpectedFromWorkingDays(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 0, 20, "2025-01-07"),
	}
	res := EvaluateTimesheet(records, weekConfig())
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.Expected != 40 {
		t.Fatalf("expected 5 working days x 8h = 40, got %v", row.Expected)
	}
	if row.Status != models.TimesheetWarn || row.Ratio != 0.5 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if len(res.Offenders) != 1 {
		t.Fatalf("warn row must be an offender, got %d", len(res.Offenders))
	}
}

func TestEvaluateTimesheetHolidayReducesExpectation(t *testing.T) {
	cfg := weekConfig()
	cfg.Holidays = []time.Time{day("2025-01-06")}
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 0, 32, "2025-01-07"),
	}
	res := EvaluateTimesheet(records, cfg)
	if res.Rows[0].Expected != 32 || res.Rows[0].Status != models.TimesheetGood {
		t.Fatalf("expected holiday-adjusted 32h good, got %+v", res.Rows[0])
	}
}

func TestEvaluateTimesheetPartTimeOverride(t *testing.T) {
	four := 4.0
	cfg := weekConfig(models.Exception{Name: "A", PartTimeHours: &four})
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 0, 20, "2025-01-07"),
	}
	res := EvaluateTimesheet(records, cfg)
	if res.Rows[0].Expected != 20 || res.Rows[0].Status != models.TimesheetGood {
		t.Fatalf("expected part-time 20h good, got %+v", res.Rows[0])
	}
}

func TestEvaluateTimesheetExclusionBeatsPartTime(t *testing.T) {
	four := 4.0
	cfg := weekConfig(
		models.Exception{Name: "A", Exclude: true, PartTimeHours: &four},
	)
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 0, 1, "2025-01-07"),
		datedRecord("B", "X", "P1", 0, 40, "2025-01-08"),
	}
	res := EvaluateTimesheet(records, cfg)
	if len(res.Rows) != 1 || res.Rows[0].Employee != "B" {
		t.Fatalf("excluded employee must not be evaluated, got %+v", res.Rows)
	}
}

func TestEvaluateTimesheetIgnoresOutOfPeriodAndDateless(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 0, 10, "2025-01-07"),
		datedRecord("A", "X", "P1", 0, 10, "2025-02-07"),
		{Employee: "A", Customer: "X", ProjectCode: "P1", HoursWorked: 10},
	}
	res := EvaluateTimesheet(records, weekConfig())
	if res.Rows[0].Total != 10 {
		t.Fatalf("expected only in-period hours, got %v", res.Rows[0].Total)
	}
}
