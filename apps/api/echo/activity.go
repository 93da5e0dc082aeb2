package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/user"
)

type activityApi struct {
	svc      *activity.Service
	usrSvc   *user.Service
	validate *validator.Validate
	now      func() time.Time
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := activityApi{
		svc:      s.actSvc,
		usrSvc:   s.usrSvc,
		validate: s.validate,
		now:      func() time.Time { return s.now() },
	}

	ag := g.Group("/activities", jwt, sessionMiddleware(api.usrSvc))
	ag.POST("", api.create)
	ag.GET("", api.query)

	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

func trapActivityNotFound(err error, msg string) error {
	if errors.Is(err, activity.ErrNotFound) {
		return errActivityNotFound
	}
	return errors.Wrap(err, msg)
}

func (api *activityApi) create(ctx echo.Context) error {
	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Create(ctx.Request().Context(), usr, data, api.now())
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": true, "activity": a})
}

// query lists the user's recent activities; admins may pass all=true for the whole team.
// date=YYYY-MM-DD restricts the list to one day, otherwise the last `days` days are listed.
func (api *activityApi) query(ctx echo.Context) error {
	days, err := daysParam.Bind(ctx)
	if err != nil {
		return err
	}
	limit, err := limitParam.Bind(ctx)
	if err != nil {
		return err
	}
	date, err := dateParam(ctx, "date")
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	filter := activity.QueryFilter{Limit: limit}
	if !(usr.IsAdmin() && boolParam(ctx, "all")) {
		filter.UserID = usr.ID
	}
	if date.IsZero() {
		today := usr.Today(api.now())
		filter.From, filter.To = today.AddDays(-days), today
	} else {
		filter.From, filter.To = date, date
	}

	activities, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying activities")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "activities": activities})
}

func (api *activityApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Get(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return trapActivityNotFound(err, "getting activity")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "activity": a})
}

func (api *activityApi) update(ctx echo.Context) error {
	var data activity.UpdateActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateActivity")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Update(ctx.Request().Context(), usr, ctx.Param("id"), data, api.now())
	if err != nil {
		return trapActivityNotFound(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "activity": a})
}

func (api *activityApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return trapActivityNotFound(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}
