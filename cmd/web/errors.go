package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/0xrinful/LibraryCatalog/internal/data"
)

func (app *application) logError(r *http.Request, err error) {
	app.logger.PrintError(err, map[string]string{
		"request_method": r.Method,
		"request_url":    r.URL.String(),
		"request_id":     requestID(r),
	})
}

// HTML responses.

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	page := "500.html"
	ts, ok := app.templateCache[page]
	if !ok {
		app.logError(r, fmt.Errorf("the template %s does not exist", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	err = ts.ExecuteTemplate(w, "base", &templateData{})
	if err != nil {
		app.logError(r, err)
	}
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		app.notFoundResponse(w, r)
		return
	}
	app.render(w, r, http.StatusNotFound, "404.html", &templateData{})
}

func (app *application) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		app.methodNotAllowedResponse(w, r)
		return
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// JSON responses.

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message any) {
	env := envelope{"error": message}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *application) failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

// modelErrorResponse maps the data package's error taxonomy onto HTTP:
// NotFound is 404, InvalidState is 409, anything else is 500.
func (app *application) modelErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		app.errorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, data.ErrInvalidState):
		app.errorResponse(w, r, http.StatusConflict, err.Error())
	default:
		app.serverErrorResponse(w, r, err)
	}
}
