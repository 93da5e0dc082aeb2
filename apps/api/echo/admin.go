package echoapi

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/user"
	exportsvc "github.com/trezcool/devtracker/services/export"
)

type adminApi struct {
	actSvc *activity.Service
	usrSvc *user.Service
	now    func() time.Time
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := adminApi{
		actSvc: s.actSvc,
		usrSvc: s.usrSvc,
		now:    func() time.Time { return s.now() },
	}

	ag := g.Group("/admin", jwt, adminMiddleware(api.usrSvc))
	ag.GET("/activities", api.teamActivities)
	ag.GET("/activities/export", api.exportActivities)
	ag.GET("/users", api.users)
}

func bindCriteria(ctx echo.Context) activity.Criteria {
	c := activity.Criteria{
		Search:      ctx.QueryParam("search"),
		Developer:   ctx.QueryParam("developer"),
		MeetingType: ctx.QueryParam("meeting_type"),
	}
	c.Clean()
	return c
}

func (api *adminApi) teamActivities(ctx echo.Context) error {
	days, err := teamDaysParam.Bind(ctx)
	if err != nil {
		return err
	}
	limit, err := teamLimitParam.Bind(ctx)
	if err != nil {
		return err
	}
	page, err := pageParam.Bind(ctx)
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rep, err := api.actSvc.TeamReport(ctx.Request().Context(), days, bindCriteria(ctx), core.NewPage(page, limit), usr.Today(api.now()))
	if err != nil {
		return errors.Wrap(err, "building team report")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"activities": rep.Activities,
		"total":      rep.Total,
		"stats":      rep.Stats,
		"filters":    rep.Options,
	})
}

// exportActivities downloads every activity matching the dashboard filters as .xlsx.
func (api *adminApi) exportActivities(ctx echo.Context) error {
	days, err := teamDaysParam.Bind(ctx)
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	today := usr.Today(api.now())
	rep, err := api.actSvc.TeamReport(ctx.Request().Context(), days, bindCriteria(ctx), core.Page{}, today)
	if err != nil {
		return errors.Wrap(err, "building team report")
	}

	var buf bytes.Buffer
	if err = exportsvc.WriteActivities(&buf, rep.Activities, usr.Location()); err != nil {
		return errors.Wrap(err, "exporting activities")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportsvc.Filename(today)+`"`)
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}

func (api *adminApi) users(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	var filter user.QueryFilter
	filter.Search = ctx.QueryParam("search")
	filter.Role = ctx.QueryParam("role")
	filter.Clean()

	users, err := api.usrSvc.Query(ctx.Request().Context(), &filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	summaries := make([]user.Summary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "users": summaries})
}
