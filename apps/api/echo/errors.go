package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/user"
)

var (
	errUnauthorized      = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errAdminRequired     = echo.NewHTTPError(http.StatusForbidden, "Access denied. Admin privileges required.")
	errActivityNotFound  = echo.NewHTTPError(http.StatusNotFound, "Activity not found")
	errInvalidSignature  = echo.NewHTTPError(http.StatusBadRequest, "Invalid signature")
	errNoPrimaryEmail    = echo.NewHTTPError(http.StatusBadRequest, "No primary email found")
	errUnprovisionedUser = echo.NewHTTPError(http.StatusForbidden, "Unauthorized email - User not found in database")
)

const accessDeniedMsg = "Access denied. This email is not authorized to use this application."

// httpStatus maps err to a status code & response body.
// ok is false for unexpected errors, which are reported as 500s.
func httpStatus(err error, translator ut.Translator) (code int, body interface{}, ok bool) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause == middleware.ErrJWTMissing { // echo answers 400 for a missing token
			return http.StatusUnauthorized, cause.Message, true
		}
		if inner, isHTTP := cause.Internal.(*echo.HTTPError); isHTTP {
			cause = inner
		}
		return cause.Code, cause.Message, true

	case validator.ValidationErrors:
		fields := make(map[string]string, len(cause))
		for _, fe := range cause {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return http.StatusBadRequest, fields, true

	case *core.ValidationError:
		if len(cause.Fields) == 0 {
			return http.StatusBadRequest, cause.Error(), true
		}
		fields := make(map[string]string, len(cause.Fields))
		for _, fe := range cause.Fields {
			fields[fe.Field] = fe.Error
		}
		return http.StatusBadRequest, fields, true
	}
	return http.StatusInternalServerError, "Internal server error", false
}

// newAppHTTPErrorHandler turns handler errors into JSON responses.
// Unexpected errors are logged with the session user, and a core shutdown error triggers signalShutdown.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, body, ok := httpStatus(err, translator)
		if !ok {
			args := []interface{}{errors.Wrap(err, "unhandled error")}
			if usr, found := ctx.Get(contextUserKey).(user.User); found {
				args = append(args, usr)
			}
			logger.Error(http.StatusText(code), args...)

			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if msg, isStr := body.(string); isStr {
			body = echo.Map{"error": msg}
		}
		if ctx.Echo().Debug {
			body = echo.Map{"error": err.Error()}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
