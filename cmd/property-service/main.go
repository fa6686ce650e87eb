package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/proveritus/estatecloud/internal/property/audit"
	"github.com/proveritus/estatecloud/internal/property/handler"
	"github.com/proveritus/estatecloud/internal/property/model"
	"github.com/proveritus/estatecloud/internal/property/service"
	"github.com/proveritus/estatecloud/pkg/apperr"
	"github.com/proveritus/estatecloud/pkg/config"
	"github.com/proveritus/estatecloud/pkg/database"
	"github.com/proveritus/estatecloud/pkg/jwtutil"
	"github.com/proveritus/estatecloud/pkg/logger"
	"github.com/proveritus/estatecloud/pkg/metrics"
	"github.com/proveritus/estatecloud/pkg/middleware"
	"github.com/proveritus/estatecloud/pkg/userclient"
)

const serviceName = "property-service"

func main() {
	appConfig, err := config.Load(serviceName)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       appConfig.Log.Level,
		Environment: appConfig.Server.Env,
		ServiceName: serviceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting property-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      appConfig.JWT.SigningKey,
		ExpirationHours: appConfig.JWT.ExpirationHours,
	})
	log.Info("JWT utility initialized")

	httpMetrics := metrics.NewHTTPMetrics(appConfig.Metrics.Prefix)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	db, err := database.InitDB(&appConfig.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	if err := database.MigrateModels(
		&model.Property{},
		&model.Floor{},
		&model.Unit{},
		&audit.Entry{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	users := userclient.NewHTTPDirectory(
		appConfig.UserService.BaseURL,
		appConfig.UserService.Timeout,
		serviceName,
		jwtUtil,
		log,
	)

	recorder := audit.NewRecorder(db)
	propertyService := service.NewPropertyService(db, users)
	floorService := service.NewFloorService(db)
	unitService := service.NewUnitService(db, floorService)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	handler.RegisterRoutes(e,
		handler.NewPropertyHandler(propertyService, recorder),
		handler.NewFloorHandler(floorService, recorder),
		handler.NewUnitHandler(unitService, recorder),
		jwtUtil,
	)

	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
