package models

import (
	"encoding/json"
	"time"
)

// TimeRecord is one booked time entry after normalization. Field names and
// casing of the upstream payload are resolved in internal/normalize; nothing
// past that boundary sees the raw synonyms.
type TimeRecord struct {
	Employee        string    `json:"employee"`
	Customer        string    `json:"customer"`
	ProjectCode     string    `json:"project_code"`
	ProjectName     string    `json:"project_name,omitempty"`
	ServiceTypeCode string    `json:"service_type_code,omitempty"`
	BusinessUnit    string    `json:"business_unit,omitempty"`
	Date            time.Time `json:"date"`
	// HasDate is false when the raw date failed to parse; such records are
	// kept for plain totals but excluded from any date-bucketed view.
	HasDate     bool    `json:"has_date"`
	HoursBilled float64 `json:"hours_billed"`
	HoursWorked float64 `json:"hours_worked"`
}

type RevenueRecord struct {
	Customer          string    `json:"customer"`
	ProjectCode       string    `json:"project_code"`
	Date              time.Time `json:"date"`
	HasDate           bool      `json:"has_date"`
	RevenueActual     float64   `json:"revenue_actual"`
	RevenueCalculated float64   `json:"revenue_calculated"`
}

// Mapping is the operator-maintained classification rule set, persisted as
// {projects, tokens}.
type Mapping struct {
	Projects []string `json:"projects"`
	Tokens   []string `json:"tokens"`
}

type ProjectAggregate struct {
	Code          string  `json:"code"`
	TotalBilled   float64 `json:"total_billed"`
	TotalWorked   float64 `json:"total_worked"`
	RevenueActual float64 `json:"revenue_actual"`
}

type CustomerAggregate struct {
	Name          string             `json:"name"`
	TotalBilled   float64            `json:"total_billed"`
	TotalWorked   float64            `json:"total_worked"`
	RevenueActual float64            `json:"revenue_actual"`
	Projects      []ProjectAggregate `json:"projects"`
}

type Totals struct {
	Billed  float64 `json:"billed"`
	Worked  float64 `json:"worked"`
	Revenue float64 `json:"revenue"`
}

type Series struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
	Total  float64   `json:"total"`
}

const (
	ReasonInternalShare = "internal_share"
	ReasonZeroLastWeek  = "zero_last_week"
	ReasonMinTotal      = "min_total"
)

// Reason is a tagged variant; Weeks is only set for internal_share.
type Reason struct {
	Kind  string   `json:"kind"`
	Weeks []string `json:"weeks,omitempty"`
}

type WeekBucket struct {
	Week          string  `json:"week"`
	InternalHours float64 `json:"internal_hours"`
	TotalHours    float64 `json:"total_hours"`
	Ratio         float64 `json:"ratio"`
}

type WatchdogRow struct {
	Employee      string       `json:"employee"`
	InternalHours float64      `json:"internal_hours"`
	TotalHours    float64      `json:"total_hours"`
	Ratio         float64      `json:"ratio"`
	Weeks         []WeekBucket `json:"weeks"`
	Reasons       []Reason     `json:"reasons"`
}

const (
	TimesheetBad  = "bad"
	TimesheetWarn = "warn"
	TimesheetGood = "good"
)

type TimesheetRow struct {
	Employee string  `json:"employee"`
	Total    float64 `json:"total"`
	Expected float64 `json:"expected"`
	Ratio    float64 `json:"ratio"`
	Status   string  `json:"status"`
}

// Exception overrides timesheet evaluation for one employee. Exclude wins
// over a part-time override for the same name.
type Exception struct {
	Name          string   `json:"name"`
	Exclude       bool     `json:"exclude"`
	PartTimeHours *float64 `json:"part_time_hours"`
}

type DateRange struct {
	From time.Time `json:"datum_von"`
	To   time.Time `json:"datum_bis"`
}

type Run struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at"`
	Status     string          `json:"status"`
	Summary    json.RawMessage `json:"summary"`
}
