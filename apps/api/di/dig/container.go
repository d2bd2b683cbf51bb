package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/aykutjm/ogrencim/apps/api/echo"
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
	emailsvc "github.com/aykutjm/ogrencim/services/email"
	logsvc "github.com/aykutjm/ogrencim/services/logger"
	"github.com/aykutjm/ogrencim/services/ratelimit"
	"github.com/aykutjm/ogrencim/storage/database"
	boiledrepos "github.com/aykutjm/ogrencim/storage/database/sqlboiler"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// newDB creates the database if needed, opens it and applies the pending migrations.
func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sql.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newLimiter(conf *core.Config, logger core.Logger) ratelimit.Limiter {
	limiter, err := ratelimit.New(conf)
	if err != nil {
		// requests are not limited rather than refused
		logger.Error(fmt.Sprintf("setting up rate limiter: %v", err), err)
		return nil
	}
	return limiter
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Limiter    ratelimit.Limiter

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

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:           p.Conf,
		Logger:         p.Logger,
		Validate:       p.Validate,
		Translator:     p.Translator,
		Limiter:        p.Limiter,
		UserSvc:        p.UserSvc,
		InstitutionSvc: p.InstitutionSvc,
		ClassSvc:       p.ClassSvc,
		SubjectSvc:     p.SubjectSvc,
		TeacherSvc:     p.TeacherSvc,
		GuardianSvc:    p.GuardianSvc,
		StudentSvc:     p.StudentSvc,
		RatingSvc:      p.RatingSvc,
		MeetingSvc:     p.MeetingSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newLimiter))

	// repositories
	must(c.Provide(boiledrepos.NewUserRepository, dig.As(new(user.Repository))))
	must(c.Provide(boiledrepos.NewInstitutionRepository, dig.As(new(institution.Repository))))
	must(c.Provide(boiledrepos.NewClassRepository, dig.As(new(class.Repository))))
	must(c.Provide(boiledrepos.NewSubjectRepository, dig.As(new(subject.Repository))))
	must(c.Provide(boiledrepos.NewTeacherRepository, dig.As(new(teacher.Repository))))
	must(c.Provide(boiledrepos.NewGuardianRepository, dig.As(new(guardian.Repository))))
	must(c.Provide(boiledrepos.NewStudentRepository, dig.As(new(student.Repository))))
	must(c.Provide(boiledrepos.NewRatingRepository, dig.As(new(rating.Repository))))
	must(c.Provide(boiledrepos.NewMeetingRepository, dig.As(new(meeting.Repository))))

	// services
	must(c.Provide(user.NewService, dig.As(new(user.ServiceInterface))))
	must(c.Provide(institution.NewService, dig.As(new(institution.ServiceInterface))))
	must(c.Provide(class.NewService, dig.As(new(class.ServiceInterface))))
	must(c.Provide(subject.NewService, dig.As(new(subject.ServiceInterface))))
	must(c.Provide(teacher.NewService, dig.As(new(teacher.ServiceInterface))))
	must(c.Provide(guardian.NewService, dig.As(new(guardian.ServiceInterface))))
	must(c.Provide(student.NewService, dig.As(new(student.ServiceInterface))))
	must(c.Provide(rating.NewService, dig.As(new(rating.ServiceInterface))))
	must(c.Provide(meeting.NewService, dig.As(new(meeting.ServiceInterface))))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
