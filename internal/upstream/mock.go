package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/consulting-control/backend/internal/utils"
)

// MockSource produces deterministic demo records for local development.
// Output only depends on the unit name and the current week, so repeated
// evaluations see a stable dataset.
type MockSource struct{}

var (
	mockEmployees = []string{"A. Berger", "C. Duval", "E. Fischer", "G. Huber", "I. Jansen"}
	mockCustomers = []string{"Acme AG", "Borealis GmbH", "Cantor SE"}
	mockProjects  = []string{"P-1001", "P-1002", "INT-OPS", "P-2001"}
	mockServices  = []string{"B1", "B2", "IV", "U1"}
)

func (MockSource) FetchTimeRecords(ctx context.Context, unit string) ([]map[string]any, error) {
	var rows []map[string]any
	now := time.Now().UTC()
	for day := 0; day < 28; day++ {
		date := now.AddDate(0, 0, -day)
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		for i, employee := range mockEmployees {
			h := utils.HashStringToUint64(fmt.Sprintf("%s|%s|%d", unit, employee, day))
			project := mockProjects[h%uint64(len(mockProjects))]
			rows = append(rows, map[string]any{
				"MITARBEITER":  employee,
				"KUNDE":        mockCustomers[(int(h%1000)/3+i)%len(mockCustomers)],
				"PROJEKT":      project,
				"projektname":  "Projekt " + project,
				"LEISTUNGSART": mockServices[(h/7)%uint64(len(mockServices))],
				"einheit":      unit,
				"datum":        date.Format("2006-01-02"),
				"stunden_gel":  float64(h%9) + 1,
				"stunden_fakt": float64(h % 8),
			})
		}
	}
	return rows, nil
}

func (MockSource) FetchRevenueRecords(ctx context.Context, unit string) ([]map[string]any, error) {
	var rows []map[string]any
	now := time.Now().UTC()
	for month := 0; month < 6; month++ {
		date := now.AddDate(0, -month, 0)
		for _, customer := range mockCustomers {
			h := utils.HashStringToUint64(fmt.Sprintf("%s|%s|%d", unit, customer, month))
			rows = append(rows, map[string]any{
				"kunde":       customer,
				"projektcode": mockProjects[h%uint64(len(mockProjects))],
				"datum":       date.Format("2006-01-02"),
				"umsatz_ist":  float64(h%9000) / 10,
				"umsatz_kalk": float64(h%8000) / 10,
			})
		}
	}
	return rows, nil
}
