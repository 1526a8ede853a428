package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/consulting-control/backend/internal/models"
)

// The upstream business system is inconsistent about field casing and uses a
// handful of synonyms per logical field. Each list is tried in order; the
// first present, non-null value wins.
var (
	employeeKeys    = []string{"mitarbeiter"}
	customerKeys    = []string{"kunde"}
	projectCodeKeys = []string{"projektcode", "projekt"}
	projectNameKeys = []string{"projektname"}
	serviceTypeKeys = []string{"leistungsart", "leistart"}
	unitKeys        = []string{"einheit", "unit", "bereich"}
	billedKeys      = []string{"stunden_fakt", "std_fakturiert"}
	workedKeys      = []string{"stunden_gel", "std_geleistet"}
	dateKeys        = []string{"datum", "datum_von", "datum_bis", "date"}
	revenueKeys     = []string{"umsatz_ist", "umsatz"}
	revenueCalcKeys = []string{"umsatz_kalk", "umsatz_kalkuliert"}
)

type TimeResult struct {
	Records  []models.TimeRecord
	Dropped  int
	BadDates int
}

type RevenueResult struct {
	Records  []models.RevenueRecord
	Dropped  int
	BadDates int
}

// TimeRecords canonicalizes a batch of loosely-typed upstream rows. Rows that
// carry neither billed nor worked hours are dropped (counted, not errored);
// rows whose date fails to parse stay in the batch with HasDate unset.
func TimeRecords(raw []map[string]any) TimeResult {
	res := TimeResult{}
	for _, row := range raw {
		if row == nil {
			res.Dropped++
			continue
		}
		fields := lowerKeys(row)

		billedRaw, billedPresent := firstPresent(fields, billedKeys)
		workedRaw, workedPresent := firstPresent(fields, workedKeys)
		if !billedPresent && !workedPresent {
			res.Dropped++
			continue
		}

		rec := models.TimeRecord{
			Employee:        fallbackString(fields, employeeKeys, "Unknown"),
			Customer:        fallbackString(fields, customerKeys, "Unknown"),
			ProjectCode:     fallbackString(fields, projectCodeKeys, ""),
			ProjectName:     fallbackString(fields, projectNameKeys, ""),
			ServiceTypeCode: fallbackString(fields, serviceTypeKeys, ""),
			BusinessUnit:    fallbackString(fields, unitKeys, ""),
			HoursBilled:     ParseHours(billedRaw),
			HoursWorked:     ParseHours(workedRaw),
		}

		if dateRaw, ok := firstPresent(fields, dateKeys); ok {
			if d, ok := ParseDate(dateRaw); ok {
				rec.Date = d
				rec.HasDate = true
			}
		}
		if !rec.HasDate {
			res.BadDates++
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// RevenueRecords canonicalizes upstream revenue rows. Rows without any
// revenue field are dropped.
func RevenueRecords(raw []map[string]any) RevenueResult {
	res := RevenueResult{}
	for _, row := range raw {
		if row == nil {
			res.Dropped++
			continue
		}
		fields := lowerKeys(row)

		actualRaw, actualPresent := firstPresent(fields, revenueKeys)
		calcRaw, calcPresent := firstPresent(fields, revenueCalcKeys)
		if !actualPresent && !calcPresent {
			res.Dropped++
			continue
		}

		rec := models.RevenueRecord{
			Customer:          fallbackString(fields, customerKeys, "Unknown"),
			ProjectCode:       fallbackString(fields, projectCodeKeys, ""),
			RevenueActual:     ParseHours(actualRaw),
			RevenueCalculated: ParseHours(calcRaw),
		}
		if dateRaw, ok := firstPresent(fields, dateKeys); ok {
			if d, ok := ParseDate(dateRaw); ok {
				rec.Date = d
				rec.HasDate = true
			}
		}
		if !rec.HasDate {
			res.BadDates++
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// ParseHours converts a raw numeric field into hours. It accepts native JSON
// numbers as well as German-formatted strings ("1.234,56"); anything
// unparsable becomes 0. It never returns an error: missing or garbage numeric
// data is a data anomaly, not a failure.
func ParseHours(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		return parseNumericString(t)
	default:
		return 0
	}
}

func parseNumericString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		// decimal comma, dot as thousands separator
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006",
}

// ParseDate tries the layouts the upstream system is known to emit. The
// second return is false when none matched.
func ParseDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func lowerKeys(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		key := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(k, "\ufeff", "")))
		if _, exists := out[key]; exists && v == nil {
			continue
		}
		out[key] = v
	}
	return out
}

func firstPresent(fields map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func fallbackString(fields map[string]any, keys []string, def string) string {
	v, ok := firstPresent(fields, keys)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
