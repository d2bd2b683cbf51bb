package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"net/mail"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/user"
	logsvc "github.com/aykutjm/ogrencim/services/logger"
)

// NewConfig returns the configuration used by tests; it does not read the environment.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "Ogrencim",
		Build:                     "test",
		SecretKey:                 "test-secret-key",
		DefaultFromEmail:          mail.Address{Name: "Ogrencim", Address: "noreply@ogrencim.local"},
		FrontendBaseURL:           "http://localhost:3000",
		PasswordResetTimeoutDelta: time.Hour,
	}
	conf.Server.JWTExpirationDelta = 15 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 24 * time.Hour
	conf.Server.DisableReqLogs = true
	conf.RateLimit.Requests = 5
	conf.RateLimit.Window = time.Minute
	conf.Import.ChunkSize = 100
	return conf
}

// NewLogger returns a logger discarding everything.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with the app validators & their english translations registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	institutionID ...string,
) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(institutionID) > 0 {
		usr.InstitutionID = institutionID[0]
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
