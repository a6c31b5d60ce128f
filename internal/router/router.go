package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskmanager/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Task    *apiHandler.TaskHandler
	Subtask *apiHandler.SubtaskHandler
	Suggest *apiHandler.SuggestHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/signup", handlers.Auth.SignUp)
	r.POST("/api/v1/auth/signin", handlers.Auth.SignIn)
	r.POST("/api/v1/auth/signout", authMiddleware(handlers.Auth.SignOut))
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	r.GET("/api/v1/auth/me", authMiddleware(handlers.Auth.Me))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PATCH("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/v1/tasks/{id}/subtasks", authMiddleware(handlers.Subtask.List))
	r.POST("/api/v1/tasks/{id}/subtasks", authMiddleware(handlers.Subtask.Create))
	r.PUT("/api/v1/tasks/{id}/subtasks/order", authMiddleware(handlers.Subtask.Reorder))
	r.PATCH("/api/v1/subtasks/{id}", authMiddleware(handlers.Subtask.Update))
	r.DELETE("/api/v1/subtasks/{id}", authMiddleware(handlers.Subtask.Delete))
	r.PUT("/api/v1/subtasks/{id}/order", authMiddleware(handlers.Subtask.SetOrder))

	r.POST("/functions/v1/generate-subtasks", authMiddleware(handlers.Suggest.Generate))

	return r
}
