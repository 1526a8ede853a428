package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/consulting-control/backend/internal/models"
)

func testContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestRangeParams(t *testing.T) {
	c := testContext(t, "datum_von=2025-01-01&datum_bis=2025-01-31")
	from, to, err := rangeParams(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from.Format("2006-01-02") != "2025-01-01" || to.Format("2006-01-02") != "2025-01-31" {
		t.Fatalf("unexpected range %v..%v", from, to)
	}

	c = testContext(t, "")
	from, _, err = rangeParams(c)
	if err != nil || !from.IsZero() {
		t.Fatalf("expected zero range without params, got %v err=%v", from, err)
	}

	c = testContext(t, "datum_von=garbage&datum_bis=2025-01-31")
	if _, _, err = rangeParams(c); err == nil {
		t.Fatalf("expected error for garbage date")
	}
}

func TestTimesheetPeriodISOWeek(t *testing.T) {
	c := testContext(t, "isoWeek=1&isoYear=2025")
	from, to, err := timesheetPeriod(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from.Format("2006-01-02") != "2024-12-30" || to.Format("2006-01-02") != "2025-01-05" {
		t.Fatalf("unexpected ISO week range %v..%v", from, to)
	}
}

func TestTimesheetPeriodMonth(t *testing.T) {
	c := testContext(t, "month=2&monthYear=2024")
	from, to, err := timesheetPeriod(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from.Format("2006-01-02") != "2024-02-01" || to.Format("2006-01-02") != "2024-02-29" {
		t.Fatalf("unexpected month range %v..%v", from, to)
	}
}

func TestTimesheetPeriodExplicitRangeWins(t *testing.T) {
	c := testContext(t, "datum_von=2025-03-01&datum_bis=2025-03-15&isoWeek=1&isoYear=2025")
	from, to, err := timesheetPeriod(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from.Format("2006-01-02") != "2025-03-01" || to.Format("2006-01-02") != "2025-03-15" {
		t.Fatalf("explicit range must win, got %v..%v", from, to)
	}
}

func TestBoolParam(t *testing.T) {
	c := testContext(t, "a=1&b=true&c=false&d=junk")
	if !boolParam(c, "a", false) || !boolParam(c, "b", false) {
		t.Fatalf("expected 1/true parsed as true")
	}
	if boolParam(c, "c", true) {
		t.Fatalf("expected false parsed as false")
	}
	if !boolParam(c, "d", true) || boolParam(c, "d", false) {
		t.Fatalf("junk must fall back to default")
	}
	if !boolParam(c, "missing", true) {
		t.Fatalf("missing must fall back to default")
	}
}

func TestFilterTimeRangeInclusive(t *testing.T) {
	records := []models.TimeRecord{
		{ProjectCode: "before", Date: mustDay("2024-12-31"), HasDate: true},
		{ProjectCode: "start", Date: mustDay("2025-01-01"), HasDate: true},
		{ProjectCode: "end", Date: mustDay("2025-01-31"), HasDate: true},
		{ProjectCode: "after", Date: mustDay("2025-02-01"), HasDate: true},
		{ProjectCode: "dateless"},
	}
	got := filterTimeRange(records, mustDay("2025-01-01"), mustDay("2025-01-31"))
	if len(got) != 2 || got[0].ProjectCode != "start" || got[1].ProjectCode != "end" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestUnitParamDefaultsToAll(t *testing.T) {
	if got := unitParam(testContext(t, "")); got != "ALL" {
		t.Fatalf("expected ALL, got %s", got)
	}
	if got := unitParam(testContext(t, "unit=BER")); got != "BER" {
		t.Fatalf("expected BER, got %s", got)
	}
}

func mustDay(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
