package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/class"
	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/institution"
	"github.com/aykutjm/ogrencim/core/meeting"
	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/subject"
	"github.com/aykutjm/ogrencim/core/teacher"
	"github.com/aykutjm/ogrencim/core/user"
	"github.com/aykutjm/ogrencim/services/ratelimit"
)

type (
	// ServerDeps holds everything the API handlers need.
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Limiter    ratelimit.Limiter // nil disables rate limiting

		UserSvc        user.ServiceInterface
		InstitutionSvc institution.ServiceInterface
		ClassSvc       class.ServiceInterface
		SubjectSvc     subject.ServiceInterface
		TeacherSvc     teacher.ServiceInterface
		GuardianSvc    guardian.ServiceInterface
		StudentSvc     student.ServiceInterface
		RatingSvc      rating.ServiceInterface
		MeetingSvc     meeting.ServiceInterface
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		auth     authenticator
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		conf:     deps.Conf,
		app:      echo.New(),
		auth:     newAuthenticator(deps.Conf, deps.UserSvc),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup(deps)
	return s
}

func (s *Server) setup(deps ServerDeps) {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORS())

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(deps.Logger, deps.Translator, s.signalShutdown)
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.GET("/", s.home)

	g := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.auth.jwtConfig)
	limit := rateLimitMiddleware(deps.Limiter, deps.Logger)

	registerUserAPI(g, jwt, limit, s.auth, deps.UserSvc, deps.Validate)
	registerInstitutionAPI(g, jwt, deps.InstitutionSvc, deps.Validate)
	registerClassAPI(g, jwt, deps.ClassSvc, deps.StudentSvc, deps.RatingSvc, deps.Validate)
	registerSubjectAPI(g, jwt, deps.SubjectSvc, deps.Validate)
	registerTeacherAPI(g, jwt, deps.TeacherSvc, deps.UserSvc, deps.Validate)
	registerGuardianAPI(g, jwt, deps.GuardianSvc, deps.StudentSvc, deps.RatingSvc, deps.Validate)
	sg := registerStudentAPI(g, jwt, studentAPIDeps{
		studentSvc: deps.StudentSvc,
		ratingSvc:  deps.RatingSvc,
		meetingSvc: deps.MeetingSvc,
		validate:   deps.Validate,
	})
	registerRatingAPI(g, sg, jwt, deps.RatingSvc, deps.TeacherSvc, deps.Validate)
	registerMeetingAPI(g, sg, jwt, deps.MeetingSvc, deps.TeacherSvc, deps.Validate)
}

func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the error that stopped the server.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal receives SIGINT, SIGTERM and shutdown requests raised by handlers.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
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
