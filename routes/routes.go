package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/branch-portal/app"
	"github.com/mbolis/branch-portal/httpx"
	"github.com/mbolis/branch-portal/model"
	"github.com/mbolis/branch-portal/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, httpx.AccessLog, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.Group(func(r chi.Router) {
		r.Use(middlewares.Device(app.Sessions))

		r.Post("/setup", Setup(app))
		r.Post("/login", SignIn(app))

		r.Group(func(r chi.Router) {
			r.Use(middlewares.Gate(SetupScreen(app), LoginScreen(app)))

			r.Get("/", Home(app))
			for _, c := range model.Categories {
				if c.IsForm() {
					r.Get("/"+c.Slug(), ShowForm(app, c))
					r.Post("/"+c.Slug(), PostForm(app, c))
				}
			}
			r.Get("/schedule", ShowSchedule(app))
			r.Post("/schedule", PostSchedule(app))
			r.Get("/dashboard", Dashboard(app))
			r.Post("/logout", SignOut(app))
		})
	})

	root.NotFound(http.RedirectHandler("/", http.StatusFound).ServeHTTP)

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	api.Group(func(r chi.Router) {
		r.Use(middlewares.Bearer(app.TokenSecret))

		r.Get("/reference", GetReference(app))
		r.Get("/categories/{slug}/questions", GetQuestions(app))
		r.Get("/area-managers/{name}/district", GetDistrict(app))
		r.Get("/districts/{district}/branches", GetBranches(app))
		r.Get("/history", GetHistory(app))
		r.Post("/submissions", CreateSubmission(app))
		r.Post("/schedules", CreateSchedule(app))
	})

	api.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	return api
}
