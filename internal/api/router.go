package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/docs"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/handler"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/middleware"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// Deps are the use cases and health checks the router wires into handlers.
type Deps struct {
	Auth       ports.AuthService
	Users      ports.UserService
	Reports    ports.ReportService
	IPQC       ports.IPQCService
	Inspection ports.InspectionService
	BGrade     ports.BGradeService
	Peel       ports.PeelService
	Health     map[string]handler.Pinger

	CORSOrigins []string
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("qc"))

	// --- Health, metrics and docs (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	docs.SwaggerInfo.BasePath = "/"
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := middleware.Auth(d.Auth)

	// --- Auth and users ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Users)
	userHandler := handler.NewUserHandler(d.Users)

	e.POST("/user/auth/login", authHandler.Login)
	authGroup := e.Group("/user/auth", auth)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me)
	authGroup.POST("/change-password", authHandler.ChangePassword)

	self := e.Group("/user", auth)
	self.PUT("/signature", userHandler.SetSignature)
	self.DELETE("/signature/:employeeId", userHandler.RemoveSignature)
	self.PUT("/me/theme", userHandler.SetTheme)

	admin := e.Group("/user/users", auth, middleware.RBAC(domain.RoleAdmin))
	admin.GET("", userHandler.List)
	admin.POST("", userHandler.Create)
	admin.DELETE("/:id", userHandler.Delete)
	admin.PATCH("/:id/status", userHandler.ToggleStatus)

	// --- Reports, one resource per kind ---
	for _, kind := range domain.ReportKinds {
		handler.NewReportHandler(kind, d.Reports).Register(e.Group(kind.RoutePrefix(), auth))
	}
	handler.NewIPQCHandler(d.IPQC).Register(e.Group("/api/ipqc-audits", auth))

	// --- Analytics ---
	handler.NewQAHandler(d.Inspection).Register(e.Group("/qa/api", auth))
	handler.NewBGradeHandler(d.BGrade).Register(e.Group("/bgrade/api", auth))
	handler.NewPeelHandler(d.Peel).Register(e.Group("/peel", auth))
	handler.NewChartHandler(d.BGrade, d.Inspection, d.Peel).Register(e.Group("/charts", middleware.QueryToken("token"), auth))

	return e
}
