package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

// validAlias reports whether a short code can be routed as a single path segment.
func validAlias(fl validator.FieldLevel) bool {
	alias := fl.Field().String()
	return len(alias) >= 2 && !strings.Contains(alias, "/") && !strings.HasPrefix(alias, "-")
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("alias", validAlias); err != nil {
		panic(err)
	}

	return validate
}

// decodeAndValidate reads a JSON body into v and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		render.Status(r, http.StatusBadRequest)
		if errors.Is(err, io.EOF) {
			render.JSON(w, r, emptyRequestBodyResponse)
		} else {
			render.JSON(w, r, invalidRequestBodyResponse)
		}
		return false
	}

	if err := validate.Struct(v); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return false
	}

	return true
}

// renderError maps err to a response. Client errors carry their own message;
// anything else is logged with the request and reported as a server error.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *entity.Error
	if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
		render.Status(r, appErr.Status)
		render.JSON(w, r, newErrorResponse(appErr.Message))
		return
	}

	httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

	render.Status(r, http.StatusInternalServerError)
	if appErr != nil {
		render.JSON(w, r, newErrorResponse(appErr.Message))
		return
	}
	render.JSON(w, r, serverErrorResponse)
}
