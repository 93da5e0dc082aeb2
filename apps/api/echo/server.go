package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/devtracker/core"
	"github.com/trezcool/devtracker/core/activity"
	"github.com/trezcool/devtracker/core/reminder"
	"github.com/trezcool/devtracker/core/user"
)

type Server struct {
	conf       *core.Config
	logger     core.Logger
	app        *echo.Echo
	validate   *validator.Validate
	translator ut.Translator
	usrSvc     *user.Service
	actSvc     *activity.Service
	reminders  *reminder.Runner
	now        func() time.Time
	errors     chan error
	shutdown   chan os.Signal
}

func NewServer(
	conf *core.Config,
	logger core.Logger,
	validate *validator.Validate,
	translator ut.Translator,
	usrSvc *user.Service,
	actSvc *activity.Service,
	reminders *reminder.Runner,
) *Server {
	s := &Server{
		conf:       conf,
		logger:     logger,
		app:        echo.New(),
		validate:   validate,
		translator: translator,
		usrSvc:     usrSvc,
		actSvc:     actSvc,
		reminders:  reminders,
		now:        time.Now,
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.translator, s.SignalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.conf.FrontendBaseURL},
	}))

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(s.conf))

	registerAuthAPI(v1, jwt, s)
	registerUserAPI(v1, jwt, s)
	registerActivityAPI(v1, jwt, s)
	registerAdminAPI(v1, jwt, s)
	registerCronAPI(v1, s)
}

// SetClock replaces the clock the handlers read "now" from.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Server) Start() {
	srv := &http.Server{
		Addr:         s.conf.Server.Host,
		ReadTimeout:  s.conf.Server.ReadTimeout,
		WriteTimeout: s.conf.Server.WriteTimeout,
	}
	if err := s.app.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
