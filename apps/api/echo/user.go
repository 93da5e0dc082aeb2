package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := userApi{svc: s.usrSvc, validate: s.validate}

	ug := g.Group("/users/me", jwt, sessionMiddleware(api.svc))
	ug.GET("", api.me)
	ug.PUT("/settings", api.updateSettings)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "user": usr})
}

func (api *userApi) updateSettings(ctx echo.Context) error {
	var data user.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	usr, err = api.svc.UpdateSettings(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user settings")
	}
	ctx.Set(contextUserKey, usr)

	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Settings updated successfully",
		"user":    usr,
	})
}
