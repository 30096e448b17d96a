package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
)

// Routes groups the handlers served under /api.
type Routes struct {
	Auth  *AuthHandler
	Tasks *TaskHandler
	Users *UserHandler
	Gate  *middleware.AuthMiddleware
}

// Mount registers every endpoint on r. Auth endpoints other than logout are
// public; everything else sits behind the authorization gate.
func (rt Routes) Mount(r chi.Router) {
	r.Post("/auth/register", rt.Auth.Register)
	r.Post("/auth/login", rt.Auth.Login)
	r.Post("/auth/refresh", rt.Auth.RefreshToken)

	r.Group(func(r chi.Router) {
		r.Use(rt.Gate.Authenticate)

		r.Post("/auth/logout", rt.Auth.Logout)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", rt.Tasks.ListTasks)
			r.Post("/", rt.Tasks.CreateTask)
			r.Get("/stats", rt.Tasks.GetStats)
			r.Get("/{id}", rt.Tasks.GetTask)
			r.Put("/{id}", rt.Tasks.UpdateTask)
			r.Delete("/{id}", rt.Tasks.DeleteTask)
		})

		r.Get("/users/profile", rt.Users.GetProfile)
		r.Put("/users/profile", rt.Users.UpdateProfile)
	})
}
