package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /auth/signup", app.signupHandler)
	mux.HandleFunc("POST /auth/login", app.loginHandler)
	mux.HandleFunc("GET /auth/logout", app.requireAuth(app.logoutHandler))
	mux.HandleFunc("GET /auth/whoami", app.requireAuth(app.whoamiHandler))

	// Intentionally public: the dashboard shows every task with its
	// creator's name without a session.
	mux.HandleFunc("GET /alltasks", app.getAllTasksHandler)

	mux.HandleFunc("POST /tasks", app.requireAuth(app.createTaskHandler))
	mux.HandleFunc("GET /tasks", app.requireAuth(app.getTasksHandler))
	mux.HandleFunc("PUT /tasks/{id}/status", app.requireAuth(app.updateTaskStatusHandler))
	mux.HandleFunc("PUT /tasks/{id}/done", app.requireAuth(app.markTaskDoneHandler))
	mux.HandleFunc("PUT /tasks/{id}", app.requireAuth(app.editTaskHandler))
	mux.HandleFunc("DELETE /tasks/{id}", app.requireAuth(app.deleteTaskHandler))

	return app.enableCORS(mux)
}
