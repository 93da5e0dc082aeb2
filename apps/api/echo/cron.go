package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/reminder"
)

type cronApi struct {
	runner *reminder.Runner
	logger core.Logger
	now    func() time.Time
}

type reminderRunResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Results   reminder.Result `json:"results"`
	Timestamp time.Time       `json:"timestamp"`
}

func registerCronAPI(g *echo.Group, s *Server) {
	api := cronApi{
		runner: s.reminders,
		logger: s.logger,
		now:    func() time.Time { return s.now() },
	}

	g.GET("/cron/reminders", api.sendReminders, cronAuthMiddleware(s.conf.CronSecret))
}

// sendReminders runs the reminder routine once; it is triggered by an external scheduler.
func (api *cronApi) sendReminders(ctx echo.Context) error {
	now := api.now()
	res, err := api.runner.Run(ctx.Request().Context(), now)
	if err != nil {
		api.logger.Error("reminder run failed", errors.WithStack(err))
		return ctx.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Internal server error",
			"message": err.Error(),
		})
	}
	return ctx.JSON(http.StatusOK, reminderRunResponse{
		Success:   true,
		Message:   "Reminder emails processed",
		Results:   res,
		Timestamp: now.UTC(),
	})
}
