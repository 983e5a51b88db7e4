// Package api serves the JSON interface of the evaluation tool.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jiayueytl/malaymeta-eval/auth"
	"github.com/jiayueytl/malaymeta-eval/core"
	"github.com/julienschmidt/httprouter"
)

// we need the CoreDB in the handlers
type context struct {
	*core.Request
	db *core.CoreDB
}

func middleware(db *core.CoreDB, requireLoggedIn bool, f func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var ctx = &context{
			Request: db.NewRequest(w, req),
			db:      db,
		}
		defer ctx.Cleanup()

		if requireLoggedIn && !ctx.LoggedIn() {
			writeError(w, core.ErrUnauthenticated)
			return
		}

		if err := f(w, req, ctx, params); err != nil {
			writeError(w, err)
		}
	}
}

func NewRouter(db *core.CoreDB) http.Handler {

	var router = httprouter.New()

	// public
	router.POST("/auth/login", middleware(db, false, login))
	router.POST("/auth/logout", middleware(db, false, logout))

	// private
	router.GET("/tasks", middleware(db, true, listTasks))
	router.GET("/tasks/:id", middleware(db, true, getTask))
	router.PATCH("/tasks/:id", middleware(db, true, patchTask))
	router.POST("/tasks/assign", middleware(db, true, assign))

	return router
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy to HTTP status codes. Login failures
// are always reported as "Invalid credentials", whatever the underlying
// cause was, and storage errors stay server-side.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{"Unauthorized"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{"Invalid credentials"})
	case errors.Is(err, core.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{"Forbidden"})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{"Not found"})
	case errors.Is(err, core.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{"Internal error"})
	}
}
