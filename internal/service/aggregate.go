package service

import (
	"sort"
	"time"

	"github.com/consulting-control/backend/internal/models"
)

type Overview struct {
	Customers []models.CustomerAggregate `json:"customers"`
	Totals    models.Totals              `json:"totals"`
}

// Aggregate rolls the flat record collection up into per-customer,
// per-project sums. Customer totals are always derived from the project sums,
// never from the raw records, so the tree stays internally consistent even
// when duplicate rows disagree about pairing. Negative hours are summed
// as-is; rejecting anomalies is a presentation concern.
func Aggregate(records []models.TimeRecord, revenue []models.RevenueRecord) Overview {
	type groupKey struct {
		customer string
		project  string
	}

	sums := map[groupKey]*models.ProjectAggregate{}
	var customerOrder []string
	projectOrder := map[string][]string{}
	seenCustomer := map[string]bool{}

	touch := func(customer, project string) *models.ProjectAggregate {
		k := groupKey{customer, project}
		agg, ok := sums[k]
		if !ok {
			agg = &models.ProjectAggregate{Code: project}
			sums[k] = agg
			if !seenCustomer[customer] {
				seenCustomer[customer] = true
				customerOrder = append(customerOrder, customer)
			}
			projectOrder[customer] = append(projectOrder[customer], project)
		}
		return agg
	}

	for _, r := range records {
		agg := touch(r.Customer, r.ProjectCode)
		agg.TotalBilled += r.HoursBilled
		agg.TotalWorked += r.HoursWorked
	}
	for _, r := range revenue {
		agg := touch(r.Customer, r.ProjectCode)
		agg.RevenueActual += r.RevenueActual
	}

	out := Overview{Customers: make([]models.CustomerAggregate, 0, len(customerOrder))}
	for _, customer := range customerOrder {
		ca := models.CustomerAggregate{Name: customer}
		for _, project := range projectOrder[customer] {
			p := sums[groupKey{customer, project}]
			ca.Projects = append(ca.Projects, *p)
			ca.TotalBilled += p.TotalBilled
			ca.TotalWorked += p.TotalWorked
			ca.RevenueActual += p.RevenueActual
		}
		sort.SliceStable(ca.Projects, func(i, j int) bool {
			return ca.Projects[i].TotalBilled > ca.Projects[j].TotalBilled
		})
		out.Totals.Billed += ca.TotalBilled
		out.Totals.Worked += ca.TotalWorked
		out.Totals.Revenue += ca.RevenueActual
		out.Customers = append(out.Customers, ca)
	}

	// Ties keep input order; customer names are expected unique, so no
	// secondary key.
	sort.SliceStable(out.Customers, func(i, j int) bool {
		return out.Customers[i].TotalBilled > out.Customers[j].TotalBilled
	})
	return out
}

type Dimension string

const (
	DimCustomer Dimension = "customer"
	DimProject  Dimension = "project"
	DimEmployee Dimension = "employee"
)

type Metric string

const (
	MetricBilled Metric = "billed"
	MetricWorked Metric = "worked"
)

type MonthlyReport struct {
	Months []string        `json:"months"`
	Series []models.Series `json:"series"`
}

// MonthlySeries builds one dense vector per dimension value over the month
// axis. Records without a parsable date are excluded from every bucketed
// view. When from/to are zero the axis spans the months actually touched.
func MonthlySeries(records []models.TimeRecord, dim Dimension, metric Metric, from, to time.Time) MonthlyReport {
	dated := make([]models.TimeRecord, 0, len(records))
	for _, r := range records {
		if r.HasDate {
			dated = append(dated, r)
		}
	}

	if from.IsZero() || to.IsZero() {
		if len(dated) == 0 {
			return MonthlyReport{Months: []string{}, Series: []models.Series{}}
		}
		from, to = dated[0].Date, dated[0].Date
		for _, r := range dated[1:] {
			if r.Date.Before(from) {
				from = r.Date
			}
			if r.Date.After(to) {
				to = r.Date
			}
		}
	}

	months := monthAxis(from, to)
	index := make(map[string]int, len(months))
	for i, m := range months {
		index[m] = i
	}

	var keys []string
	vectors := map[string][]float64{}
	for _, r := range dated {
		pos, ok := index[monthKey(r.Date)]
		if !ok {
			continue
		}
		key := dimensionKey(r, dim)
		vec, ok := vectors[key]
		if !ok {
			vec = make([]float64, len(months))
			vectors[key] = vec
			keys = append(keys, key)
		}
		switch metric {
		case MetricWorked:
			vec[pos] += r.HoursWorked
		default:
			vec[pos] += r.HoursBilled
		}
	}

	report := MonthlyReport{Months: months, Series: make([]models.Series, 0, len(keys))}
	for _, key := range keys {
		s := models.Series{Key: key, Values: vectors[key]}
		for _, v := range s.Values {
			s.Total += v
		}
		report.Series = append(report.Series, s)
	}
	return report
}

// TopN ranks series by vector sum, descending, ties kept in creation order.
// The stable sort is what makes repeated runs reproducible.
func TopN(series []models.Series, n int) []models.Series {
	ranked := make([]models.Series, len(series))
	copy(ranked, series)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func dimensionKey(r models.TimeRecord, dim Dimension) string {
	switch dim {
	case DimProject:
		return r.ProjectCode
	case DimEmployee:
		return r.Employee
	default:
		return r.Customer
	}
}

func monthKey(d time.Time) string {
	return d.Format("2006-01")
}

func monthAxis(from, to time.Time) []string {
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []string
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		out = append(out, m.Format("2006-01"))
	}
	return out
}
