package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/gardenhub/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Account *apiHandler.AccountHandler
	Garden  *apiHandler.GardenHandler
	Plot    *apiHandler.PlotHandler
	Order   *apiHandler.OrderHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/activate", handlers.Auth.Activate)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Account
	r.GET("/api/v1/me", authMiddleware(handlers.Account.Me))
	r.GET("/api/v1/me/roles", authMiddleware(handlers.Account.Roles))
	r.GET("/api/v1/me/peers", authMiddleware(handlers.Account.Peers))

	// Gardens
	r.GET("/api/v1/gardens", authMiddleware(handlers.Garden.List))
	r.POST("/api/v1/gardens", authMiddleware(handlers.Garden.Create))
	r.GET("/api/v1/gardens/{id}", authMiddleware(handlers.Garden.Get))
	r.PUT("/api/v1/gardens/{id}", authMiddleware(handlers.Garden.Update))
	r.DELETE("/api/v1/gardens/{id}", authMiddleware(handlers.Garden.Delete))
	r.POST("/api/v1/gardens/{id}/managers", authMiddleware(handlers.Garden.AssignManagers))
	r.DELETE("/api/v1/gardens/{id}/managers/{userID}", authMiddleware(handlers.Garden.RemoveManager))
	r.POST("/api/v1/gardens/{id}/pickers", authMiddleware(handlers.Garden.AssignPickers))
	r.DELETE("/api/v1/gardens/{id}/pickers/{userID}", authMiddleware(handlers.Garden.RemovePicker))

	// Plots
	r.GET("/api/v1/plots", authMiddleware(handlers.Plot.List))
	r.POST("/api/v1/plots", authMiddleware(handlers.Plot.Create))
	r.GET("/api/v1/plots/{id}", authMiddleware(handlers.Plot.Get))
	r.PUT("/api/v1/plots/{id}", authMiddleware(handlers.Plot.Update))
	r.POST("/api/v1/plots/{id}/gardeners", authMiddleware(handlers.Plot.AssignGardeners))
	r.DELETE("/api/v1/plots/{id}/gardeners/{userID}", authMiddleware(handlers.Plot.RemoveGardener))
	r.PUT("/api/v1/plots/{id}/crops", authMiddleware(handlers.Plot.SetCrops))
	r.POST("/api/v1/plots/{id}/picks", authMiddleware(handlers.Order.RecordPick))

	// Orders
	r.GET("/api/v1/orders", authMiddleware(handlers.Order.List))
	r.POST("/api/v1/orders", authMiddleware(handlers.Order.Place))
	r.GET("/api/v1/orders/picking", authMiddleware(handlers.Order.ListForPicker))
	r.GET("/api/v1/orders/{id}", authMiddleware(handlers.Order.Get))
	r.DELETE("/api/v1/orders/{id}", authMiddleware(handlers.Order.Cancel))

	// Crops
	r.GET("/api/v1/crops", authMiddleware(handlers.Plot.ListCrops))

	return r
}
