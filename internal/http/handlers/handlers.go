package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/consulting-control/backend/internal/db"
	"github.com/consulting-control/backend/internal/models"
	"github.com/consulting-control/backend/internal/normalize"
	"github.com/consulting-control/backend/internal/service"
	"github.com/consulting-control/backend/internal/upstream"
)

type Handler struct {
	Store              *db.Store
	Source             upstream.Source
	Units              []string
	Validator          *validator.Validate
	Logger             zerolog.Logger
	AdminKey           string
	AbsencePrefix      string
	InternalPrefix     string
	DefaultHoursPerDay float64
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Customer/project hour and revenue rollup
// @Tags reports
// @Produce json
// @Param unit query string false "Business unit, ALL for every unit"
// @Param datum_von query string false "Range start (YYYY-MM-DD)"
// @Param datum_bis query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} map[string]any
// @Router /api/reports/customers [get]
func (h *Handler) ReportCustomers(c *gin.Context) {
	unit := unitParam(c)
	from, to, err := rangeParams(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range", err.Error())
		return
	}

	timeRes, revRes, fetchErr := h.fetchNormalized(c.Request.Context(), unit)
	if fetchErr != nil {
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch records", fetchErr.Error())
		return
	}

	records := timeRes.Records
	revenue := revRes.Records
	if !from.IsZero() {
		records = filterTimeRange(records, from, to)
		revenue = filterRevenueRange(revenue, from, to)
	}

	overview := service.Aggregate(records, revenue)
	c.JSON(http.StatusOK, gin.H{
		"customers": overview.Customers,
		"totals":    overview.Totals,
		"range":     rangePayload(from, to),
		"counts": gin.H{
			"records":   len(timeRes.Records),
			"dropped":   timeRes.Dropped + revRes.Dropped,
			"bad_dates": timeRes.BadDates + revRes.BadDates,
		},
	})
}

// @Summary Dense monthly series with top-N ranking
// @Tags reports
// @Produce json
// @Param unit query string false "Business unit"
// @Param dimension query string false "customer|project|employee"
// @Param metric query string false "billed|worked"
// @Param top query int false "Top N series"
// @Success 200 {object} map[string]any
// @Router /api/reports/monthly [get]
func (h *Handler) ReportMonthly(c *gin.Context) {
	unit := unitParam(c)
	from, to, err := rangeParams(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range", err.Error())
		return
	}
	dim := service.Dimension(c.DefaultQuery("dimension", string(service.DimCustomer)))
	metric := service.Metric(c.DefaultQuery("metric", string(service.MetricBilled)))
	top, _ := strconv.Atoi(c.DefaultQuery("top", "0"))

	timeRes, _, fetchErr := h.fetchNormalized(c.Request.Context(), unit)
	if fetchErr != nil {
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch records", fetchErr.Error())
		return
	}

	report := service.MonthlySeries(timeRes.Records, dim, metric, from, to)
	series := report.Series
	if top > 0 {
		series = service.TopN(series, top)
	}
	c.JSON(http.StatusOK, gin.H{
		"months": report.Months,
		"series": series,
		"range":  rangePayload(from, to),
	})
}

// @Summary Internal-work watchdog evaluation
// @Tags watchdog
// @Produce json
// @Success 200 {object} service.WatchdogResult
// @Router /api/watchdog/internal [get]
func (h *Handler) WatchdogInternal(c *gin.Context) {
	result, _, err := h.runWatchdog(c)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, result)
}

// WatchdogInternalRun evaluates and records the run so the external alerting
// pipeline can pick up the latest offender summary.
func (h *Handler) WatchdogInternalRun(c *gin.Context) {
	runID, err := h.Store.CreateRun(c.Request.Context(), "RUNNING")
	if err != nil {
		h.Logger.Error().Err(err).Msg("failed to create run")
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create run", err.Error())
		return
	}

	result, cfg, evalErr := h.runWatchdog(c)
	status := "SUCCESS"
	if evalErr != nil {
		status = "FAILED"
	}
	summary, _ := json.Marshal(gin.H{
		"params":    cfg,
		"rows":      len(result.Rows),
		"offenders": len(result.Offenders),
		"range":     result.Range,
	})
	if finishErr := h.Store.FinishRun(c.Request.Context(), runID, status, summary); finishErr != nil {
		h.Logger.Error().Err(finishErr).Msg("failed to finish run")
	}
	if evalErr != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "rows": result.Rows, "offenders": result.Offenders, "range": result.Range})
}

func (h *Handler) runWatchdog(c *gin.Context) (service.WatchdogResult, service.WatchdogConfig, error) {
	unit := unitParam(c)
	cfg := service.WatchdogConfig{
		Threshold:        floatParam(c, "threshold", 0.5),
		WeeksBack:        intParam(c, "weeksBack", 4),
		UseInternalShare: boolParam(c, "useInternalShare", true),
		UseZeroLastWeek:  boolParam(c, "useZeroLastWeek", false),
		UseMinTotal:      boolParam(c, "useMinTotal", false),
		MinTotalHours:    floatParam(c, "minTotalHours", 0),
		Combine:          service.CombineMode(c.DefaultQuery("combine", string(service.CombineOr))),
	}

	mapping, err := h.Store.GetMapping(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load mapping", err.Error())
		return service.WatchdogResult{}, cfg, err
	}
	rules := service.NewRuleSet(mapping, h.AbsencePrefix, h.InternalPrefix)

	timeRes, fetchErr := h.fetchTimeNormalized(c.Request.Context(), unit)
	if fetchErr != nil {
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch records", fetchErr.Error())
		return service.WatchdogResult{}, cfg, fetchErr
	}

	return service.EvaluateWatchdog(timeRes.Records, rules, cfg, time.Now().UTC()), cfg, nil
}

// @Summary Timesheet-completeness evaluation
// @Tags watchdog
// @Produce json
// @Success 200 {object} service.TimesheetResult
// @Router /api/watchdog/timesheet [get]
func (h *Handler) WatchdogTimesheet(c *gin.Context) {
	unit := unitParam(c)
	from, to, err := timesheetPeriod(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid period", err.Error())
		return
	}
	hoursPerDay := floatParam(c, "hoursPerDay", h.DefaultHoursPerDay)

	exceptions, err := h.Store.ListExceptions(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load exceptions", err.Error())
		return
	}
	holidays, err := h.Store.ListHolidays(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load holidays", err.Error())
		return
	}

	timeRes, fetchErr := h.fetchTimeNormalized(c.Request.Context(), unit)
	if fetchErr != nil {
		writeError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to fetch records", fetchErr.Error())
		return
	}

	result := service.EvaluateTimesheet(timeRes.Records, service.TimesheetConfig{
		From:                from,
		To:                  to,
		ExpectedHoursPerDay: hoursPerDay,
		Exceptions:          exceptions,
		Holidays:            holidays,
	})
	c.JSON(http.StatusOK, result)
}

func (h *Handler) MappingGet(c *gin.Context) {
	mapping, err := h.Store.GetMapping(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load mapping", err.Error())
		return
	}
	c.JSON(http.StatusOK, mapping)
}

type MappingRequest struct {
	Projects []string `json:"projects" validate:"required"`
	Tokens   []string `json:"tokens" validate:"required"`
}

func (h *Handler) MappingPut(c *gin.Context) {
	var req MappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if err := h.Store.SaveMapping(c.Request.Context(), models.Mapping{Projects: req.Projects, Tokens: req.Tokens}); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save mapping", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ExceptionsGet(c *gin.Context) {
	exceptions, err := h.Store.ListExceptions(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load exceptions", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": exceptions})
}

type ExceptionsRequest struct {
	Items []models.Exception `json:"items" validate:"required,dive"`
}

func (h *Handler) ExceptionsPut(c *gin.Context) {
	var req ExceptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if err := h.Store.SaveExceptions(c.Request.Context(), req.Items); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save exceptions", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) HolidaysGet(c *gin.Context) {
	from, to, err := rangeParams(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid date range", err.Error())
		return
	}
	if from.IsZero() {
		now := time.Now().UTC()
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	days, err := h.Store.ListHolidays(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load holidays", err.Error())
		return
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, gin.H{"days": out})
}

type HolidaysRequest struct {
	Days []string `json:"days" validate:"required"`
}

func (h *Handler) HolidaysPut(c *gin.Context) {
	var req HolidaysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	days := make([]time.Time, 0, len(req.Days))
	for _, raw := range req.Days {
		d, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid holiday date: "+raw, err.Error())
			return
		}
		days = append(days, d)
	}
	if err := h.Store.SaveHolidays(c.Request.Context(), days); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save holidays", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *Handler) fetchNormalized(ctx context.Context, unit string) (normalize.TimeResult, normalize.RevenueResult, error) {
	timeRes, err := h.fetchTimeNormalized(ctx, unit)
	if err != nil {
		return normalize.TimeResult{}, normalize.RevenueResult{}, err
	}
	rawRevenue, err := upstream.FetchRevenueRecords(ctx, h.Source, unit, h.Units)
	if err != nil {
		return normalize.TimeResult{}, normalize.RevenueResult{}, err
	}
	return timeRes, normalize.RevenueRecords(rawRevenue), nil
}

func (h *Handler) fetchTimeNormalized(ctx context.Context, unit string) (normalize.TimeResult, error) {
	raw, err := upstream.FetchTimeRecords(ctx, h.Source, unit, h.Units)
	if err != nil {
		return normalize.TimeResult{}, err
	}
	return normalize.TimeRecords(raw), nil
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func unitParam(c *gin.Context) string {
	unit := strings.TrimSpace(c.Query("unit"))
	if unit == "" {
		return upstream.UnitAll
	}
	return unit
}

func rangeParams(c *gin.Context) (time.Time, time.Time, error) {
	fromStr := strings.TrimSpace(c.Query("datum_von"))
	toStr := strings.TrimSpace(c.Query("datum_bis"))
	if fromStr == "" && toStr == "" {
		return time.Time{}, time.Time{}, nil
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// timesheetPeriod resolves one of the three period forms: an explicit
// datum_von/datum_bis pair, isoWeek+isoYear, or month+monthYear. Without any,
// mode picks the current ISO week or month.
func timesheetPeriod(c *gin.Context) (time.Time, time.Time, error) {
	if from, to, err := rangeParams(c); err != nil {
		return time.Time{}, time.Time{}, err
	} else if !from.IsZero() {
		return from, to, nil
	}

	now := time.Now().UTC()
	if weekStr := c.Query("isoWeek"); weekStr != "" {
		week, err := strconv.Atoi(weekStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		year := intParam(c, "isoYear", now.Year())
		from, to := service.ISOWeekRange(year, week)
		return from, to, nil
	}
	if monthStr := c.Query("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		year := intParam(c, "monthYear", now.Year())
		from, to := service.MonthRange(year, time.Month(month))
		return from, to, nil
	}

	if c.DefaultQuery("mode", "weekly") == "monthly" {
		from, to := service.MonthRange(now.Year(), now.Month())
		return from, to, nil
	}
	year, week := now.ISOWeek()
	from, to := service.ISOWeekRange(year, week)
	return from, to, nil
}

func floatParam(c *gin.Context, name string, def float64) float64 {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func intParam(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func boolParam(c *gin.Context, name string, def bool) bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	if raw == "1" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func filterTimeRange(records []models.TimeRecord, from, to time.Time) []models.TimeRecord {
	out := make([]models.TimeRecord, 0, len(records))
	for _, r := range records {
		if !r.HasDate {
			continue
		}
		if r.Date.Before(from) || !r.Date.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filterRevenueRange(records []models.RevenueRecord, from, to time.Time) []models.RevenueRecord {
	out := make([]models.RevenueRecord, 0, len(records))
	for _, r := range records {
		if !r.HasDate {
			continue
		}
		if r.Date.Before(from) || !r.Date.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func rangePayload(from, to time.Time) gin.H {
	if from.IsZero() {
		return gin.H{"datum_von": nil, "datum_bis": nil}
	}
	return gin.H{"datum_von": from.Format("2006-01-02"), "datum_bis": to.Format("2006-01-02")}
}
