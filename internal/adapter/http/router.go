package http

import (
	"time"

	"procurement-approval/internal/adapter/middleware"
	"procurement-approval/pkg/id"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RouterDeps carries everything NewRouter wires. Redis may be nil, in which
// case mutating routes run without idempotency.
type RouterDeps struct {
	Health    *Handler
	Requests  *RequestHandler
	Approvals *ApprovalHandler
	Workflows *WorkflowHandler
	Budgets   *BudgetHandler

	JWTSecret []byte
	Redis     *redis.Client
	IdempTTL  time.Duration
	Log       *zap.Logger
}

func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: id.NewID32}))
	e.Use(middleware.Observe(d.Log))

	e.GET("/health", d.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("", middleware.Actor(d.JWTSecret))
	if d.Redis != nil {
		api.Use(middleware.Idempotency(d.Redis, d.IdempTTL, d.Log))
	}

	api.POST("/requests", d.Requests.Create)
	api.GET("/requests/:id", d.Requests.Get)
	api.PUT("/requests/:id", d.Requests.Update)
	api.DELETE("/requests/:id", d.Requests.Delete)
	api.POST("/requests/:id/submit", d.Requests.Submit)
	api.POST("/requests/:id/withdraw", d.Requests.Withdraw)

	api.POST("/workflow/:request_id/action", d.Approvals.TakeAction)
	api.GET("/workflow/my-actions", d.Approvals.MyActions)
	api.GET("/workflow/:request_id/history", d.Approvals.History)

	api.POST("/workflows", d.Workflows.Create)
	api.GET("/workflows/:id", d.Workflows.Get)
	api.POST("/workflows/:id/steps", d.Workflows.AddStep)
	api.PUT("/workflows/:id/steps/:step_id/order", d.Workflows.MoveStep)
	api.DELETE("/workflows/:id/steps/:step_id", d.Workflows.RemoveStep)
	api.PUT("/workflows/:id/steps/:step_id/role", d.Workflows.AssignRole)
	api.GET("/workflows/:id/steps/:step_id/eligible-users", d.Workflows.EligibleUsers)
	api.PUT("/workflows/:id/steps/:step_id/escalation", d.Workflows.ConfigureEscalation)

	api.POST("/budget-codes", d.Budgets.Create)
	api.PUT("/budget-codes/:id", d.Budgets.Update)

	return e
}
