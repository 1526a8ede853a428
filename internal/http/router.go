package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/consulting-control/backend/internal/config"
	"github.com/consulting-control/backend/internal/db"
	"github.com/consulting-control/backend/internal/http/handlers"
	"github.com/consulting-control/backend/internal/http/middleware"
	"github.com/consulting-control/backend/internal/upstream"

	_ "github.com/consulting-control/backend/docs"
)

func Router(cfg config.Config, store *db.Store, source upstream.Source, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:              store,
		Source:             source,
		Units:              cfg.Units(),
		Validator:          validator.New(),
		Logger:             logger,
		AdminKey:           cfg.AdminKey,
		AbsencePrefix:      cfg.AbsenceServiceType,
		InternalPrefix:     cfg.InternalServiceType,
		DefaultHoursPerDay: cfg.ExpectedHoursPerDay,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/reports/customers", h.ReportCustomers)
		api.GET("/reports/monthly", h.ReportMonthly)
		api.GET("/watchdog/internal", h.WatchdogInternal)
		api.GET("/watchdog/timesheet", h.WatchdogTimesheet)
		api.GET("/runs/latest", h.RunsLatest)
		api.GET("/settings/mapping", h.MappingGet)
		api.GET("/settings/exceptions", h.ExceptionsGet)
		api.GET("/settings/holidays", h.HolidaysGet)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.PUT("/settings/mapping", h.MappingPut)
		admin.PUT("/settings/exceptions", h.ExceptionsPut)
		admin.PUT("/settings/holidays", h.HolidaysPut)
		admin.POST("/watchdog/internal/run", h.WatchdogInternalRun)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
