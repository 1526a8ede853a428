package service

import (
	"time"

	"github.com/consulting-control/backend/internal/models"
)

type CombineMode string

const (
	CombineAnd CombineMode = "and"
	CombineOr  CombineMode = "or"
)

// WatchdogConfig selects and combines the independent offender criteria. A
// single fixed share rule produces both false positives and false negatives,
// so the operator chooses which signals count and how they combine.
type WatchdogConfig struct {
	Threshold        float64     `json:"threshold"`
	WeeksBack        int         `json:"weeks_back"`
	UseInternalShare bool        `json:"use_internal_share"`
	UseZeroLastWeek  bool        `json:"use_zero_last_week"`
	UseMinTotal      bool        `json:"use_min_total"`
	MinTotalHours    float64     `json:"min_total_hours"`
	Combine          CombineMode `json:"combine"`
}

type WatchdogResult struct {
	Rows      []models.WatchdogRow `json:"rows"`
	Offenders []models.WatchdogRow `json:"offenders"`
	Range     models.DateRange     `json:"range"`
}

// EvaluateWatchdog computes per-employee internal-work stats over the
// trailing WeeksBack ISO weeks and flags offenders per the enabled criteria.
// Absence-marked records are skipped entirely so leave neither counts as
// internal work nor dilutes the share.
func EvaluateWatchdog(records []models.TimeRecord, rules RuleSet, cfg WatchdogConfig, now time.Time) WatchdogResult {
	if cfg.WeeksBack < 1 {
		cfg.WeeksBack = 1
	}
	weekKeys := TrailingWeekKeys(now, cfg.WeeksBack)
	weekIndex := make(map[string]int, len(weekKeys))
	for i, k := range weekKeys {
		weekIndex[k] = i
	}

	from := ISOWeekStart(isoParts(now.AddDate(0, 0, -7*(cfg.WeeksBack-1))))
	_, to := ISOWeekRange(isoParts(now))

	type bucketed struct {
		weeks []models.WeekBucket
	}
	byEmployee := map[string]*bucketed{}
	var order []string

	for _, r := range records {
		if !r.HasDate {
			continue
		}
		pos, ok := weekIndex[WeekKey(r.Date)]
		if !ok {
			continue
		}
		verdict := Classify(r, rules)
		if verdict.Excluded {
			continue
		}
		b, ok := byEmployee[r.Employee]
		if !ok {
			b = &bucketed{weeks: make([]models.WeekBucket, len(weekKeys))}
			for i, k := range weekKeys {
				b.weeks[i].Week = k
			}
			byEmployee[r.Employee] = b
			order = append(order, r.Employee)
		}
		b.weeks[pos].TotalHours += r.HoursWorked
		if verdict.Internal {
			b.weeks[pos].InternalHours += r.HoursWorked
		}
	}

	result := WatchdogResult{
		Rows:      []models.WatchdogRow{},
		Offenders: []models.WatchdogRow{},
		Range:     models.DateRange{From: from, To: to},
	}

	for _, employee := range order {
		b := byEmployee[employee]
		row := models.WatchdogRow{Employee: employee, Reasons: []models.Reason{}}
		var shareWeeks []string
		for i := range b.weeks {
			w := &b.weeks[i]
			w.Ratio = ratio(w.InternalHours, w.TotalHours)
			if w.Ratio >= cfg.Threshold {
				shareWeeks = append(shareWeeks, w.Week)
			}
			row.InternalHours += w.InternalHours
			row.TotalHours += w.TotalHours
		}
		row.Ratio = ratio(row.InternalHours, row.TotalHours)
		row.Weeks = b.weeks

		shareFired := len(shareWeeks) > 0
		zeroFired := b.weeks[len(b.weeks)-1].TotalHours == 0
		minFired := row.TotalHours < cfg.MinTotalHours

		if cfg.UseInternalShare && shareFired {
			row.Reasons = append(row.Reasons, models.Reason{Kind: models.ReasonInternalShare, Weeks: shareWeeks})
		}
		if cfg.UseZeroLastWeek && zeroFired {
			row.Reasons = append(row.Reasons, models.Reason{Kind: models.ReasonZeroLastWeek})
		}
		if cfg.UseMinTotal && minFired {
			row.Reasons = append(row.Reasons, models.Reason{Kind: models.ReasonMinTotal})
		}

		criteria := []criterion{
			{cfg.UseInternalShare, shareFired},
			{cfg.UseZeroLastWeek, zeroFired},
			{cfg.UseMinTotal, minFired},
		}

		result.Rows = append(result.Rows, row)
		if combine(criteria, cfg.Combine) {
			result.Offenders = append(result.Offenders, row)
		}
	}
	return result
}

type criterion struct {
	enabled bool
	fired   bool
}

// combine reduces the enabled criteria via AND/OR. Disabled criteria are
// excluded from the reduction; with no enabled criterion nothing is ever
// flagged.
func combine(criteria []criterion, mode CombineMode) bool {
	enabled := 0
	fired := 0
	for _, c := range criteria {
		if !c.enabled {
			continue
		}
		enabled++
		if c.fired {
			fired++
		}
	}
	if enabled == 0 {
		return false
	}
	if mode == CombineAnd {
		return fired == enabled
	}
	return fired > 0
}

func ratio(internal, total float64) float64 {
	if total == 0 {
		return 0
	}
	return internal / total
}

func isoParts(d time.Time) (int, int) {
	return d.ISOWeek()
}
