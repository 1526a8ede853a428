package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/consulting-control/backend/internal/models"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func datedRecord(employee, customer, project string, billed, worked float64, date string) models.TimeRecord {
	return models.TimeRecord{
		Employee:    employee,
		Customer:    customer,
		ProjectCode: project,
		HoursBilled: billed,
		HoursWorked: worked,
		Date:        day(date),
		HasDate:     true,
	}
}

func TestAggregateScenario(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "INT", 0, 10, "2025-01-05"),
		datedRecord("A", "X", "P1", 5, 5, "2025-01-10"),
	}
	overview := Aggregate(records, nil)
	if len(overview.Customers) != 1 {
		t.Fatalf("expected 1 customer, got %d", len(overview.Customers))
	}
	x := overview.Customers[0]
	if x.Name != "X" || x.TotalBilled != 5 || x.TotalWorked != 15 {
		t.Fatalf("unexpected customer aggregate: %+v", x)
	}
}

func TestAggregateConsistencyInvariant(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 3, 3, "2025-01-05"),
		datedRecord("B", "X", "P2", 4, 2, "2025-01-06"),
		datedRecord("A", "Y", "P3", 7, 8, "2025-01-07"),
		datedRecord("C", "X", "P1", -1, 0, "2025-01-08"), // negative anomaly summed as-is
	}
	overview := Aggregate(records, nil)

	var grand float64
	for _, c := range overview.Customers {
		var sumProjects float64
		for _, p := range c.Projects {
			sumProjects += p.TotalBilled
		}
		if sumProjects != c.TotalBilled {
			t.Fatalf("customer %s: project sum %v != customer total %v", c.Name, sumProjects, c.TotalBilled)
		}
		grand += c.TotalBilled
	}

	var rawSum float64
	for _, r := range records {
		rawSum += r.HoursBilled
	}
	if grand != rawSum {
		t.Fatalf("grand total %v != raw billed sum %v", grand, rawSum)
	}
	if overview.Totals.Billed != rawSum {
		t.Fatalf("totals.billed %v != raw billed sum %v", overview.Totals.Billed, rawSum)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 3, 3, "2025-01-05"),
		datedRecord("B", "Y", "P2", 4, 2, "2025-01-06"),
	}
	first := Aggregate(records, nil)
	second := Aggregate(records, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregate not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	overview := Aggregate(nil, nil)
	if len(overview.Customers) != 0 {
		t.Fatalf("expected no customers, got %d", len(overview.Customers))
	}
	if overview.Totals != (models.Totals{}) {
		t.Fatalf("expected zero totals, got %+v", overview.Totals)
	}
}

func TestAggregateSortsByBilledDescStableTies(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "Small", "P1", 1, 1, "2025-01-05"),
		datedRecord("A", "Big", "P2", 9, 1, "2025-01-05"),
		datedRecord("A", "AlsoSmall", "P3", 1, 1, "2025-01-05"),
	}
	overview := Aggregate(records, nil)
	got := []string{overview.Customers[0].Name, overview.Customers[1].Name, overview.Customers[2].Name}
	want := []string{"Big", "Small", "AlsoSmall"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order %v, want %v", got, want)
	}
}

func TestAggregateRevenueRollsUp(t *testing.T) {
	revenue := []models.RevenueRecord{
		{Customer: "X", ProjectCode: "P1", RevenueActual: 100, HasDate: true, Date: day("2025-01-05")},
		{Customer: "X", ProjectCode: "P2", RevenueActual: 50, HasDate: true, Date: day("2025-01-06")},
	}
	overview := Aggregate(nil, revenue)
	if len(overview.Customers) != 1 || overview.Customers[0].RevenueActual != 150 {
		t.Fatalf("unexpected revenue rollup: %+v", overview)
	}
	if overview.Totals.Revenue != 150 {
		t.Fatalf("expected revenue total 150, got %v", overview.Totals.Revenue)
	}
}

func TestMonthlySeriesDenseAxis(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 2, 2, "2025-01-15"),
		datedRecord("A", "X", "P1", 3, 3, "2025-04-02"),
	}
	report := MonthlySeries(records, DimCustomer, MetricBilled, time.Time{}, time.Time{})
	wantMonths := []string{"2025-01", "2025-02", "2025-03", "2025-04"}
	if !reflect.DeepEqual(report.Months, wantMonths) {
		t.Fatalf("months %v, want %v", report.Months, wantMonths)
	}
	if len(report.Series) != 1 {
		t.Fatalf("expected 1 series, got %d", len(report.Series))
	}
	wantValues := []float64{2, 0, 0, 3}
	if !reflect.DeepEqual(report.Series[0].Values, wantValues) {
		t.Fatalf("values %v, want %v", report.Series[0].Values, wantValues)
	}
}

func TestMonthlySeriesExplicitRangeAndBadDates(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 2, 2, "2025-02-15"),
		{Employee: "A", Customer: "X", ProjectCode: "P1", HoursBilled: 99}, // no date
	}
	report := MonthlySeries(records, DimCustomer, MetricBilled, day("2025-01-01"), day("2025-03-31"))
	if len(report.Months) != 3 {
		t.Fatalf("expected 3 months, got %v", report.Months)
	}
	if report.Series[0].Total != 2 {
		t.Fatalf("dateless record must not contribute, got total %v", report.Series[0].Total)
	}
}

func TestTopNStable(t *testing.T) {
	records := []models.TimeRecord{
		datedRecord("A", "X", "P1", 5, 0, "2025-01-05"),
		datedRecord("B", "X", "P2", 5, 0, "2025-01-06"),
		datedRecord("C", "X", "P3", 9, 0, "2025-01-07"),
	}
	report := MonthlySeries(records, DimProject, MetricBilled, time.Time{}, time.Time{})

	first := TopN(report.Series, 2)
	for i := 0; i < 5; i++ {
		again := TopN(report.Series, 2)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("top-N not reproducible: %+v vs %+v", first, again)
		}
	}
	if first[0].Key != "P3" || first[1].Key != "P1" {
		t.Fatalf("expected P3 then P1 (tie kept in creation order), got %+v", first)
	}
}

func TestMonthlySeriesEmptyInput(t *testing.T) {
	report := MonthlySeries(nil, DimCustomer, MetricBilled, time.Time{}, time.Time{})
	if len(report.Months) != 0 || len(report.Series) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
