package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aykutjm/ogrencim/core/class"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/user"
	emailsvc "github.com/aykutjm/ogrencim/services/email"
	inmemdb "github.com/aykutjm/ogrencim/storage/database/inmem"
	"github.com/aykutjm/ogrencim/tests"
)

type testEnv struct {
	cli         *commandLine
	out         *bytes.Buffer
	usrRepo     user.Repository
	classRepo   class.Repository
	studentRepo student.Repository
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	conf := testutil.NewConfig()
	db := inmemdb.NewDB()
	env := &testEnv{
		out:         new(bytes.Buffer),
		usrRepo:     inmemdb.NewUserRepository(db),
		classRepo:   inmemdb.NewClassRepository(db),
		studentRepo: inmemdb.NewStudentRepository(db),
	}

	// start CLI
	env.cli = &commandLine{
		out:     env.out,
		usrRepo: env.usrRepo,
		usrSvc:  user.NewService(env.usrRepo, emailsvc.NewConsoleServiceMock(conf), conf),
		studentSvc: student.NewService(
			nil,
			env.studentRepo,
			env.classRepo,
			inmemdb.NewGuardianRepository(db),
			conf,
		),
	}
	return env
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	env := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "add_grades", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, env.cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	env := setup(t)
	existing := testutil.CreateUser(t, env.usrRepo, "Veli", "veli@test.tr", "Pa$$w0rd!", user.RoleParent, false)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"adduser", "-name", "Admin", "-email", "admin@test.tr"}, wantErr: errHelp},
		{name: "invalid role", args: []string{"adduser", "-name", "Admin", "-email", "admin@test.tr", "-role", "janitor"}, extra: extra{pwd: "lol"}, wantErr: errInvalidRole},
		{name: "create", args: []string{"adduser", "-name", "Admin", "-email", " Admin@Test.tr "}, extra: extra{pwd: "lol"}},
		{name: "update", args: []string{"adduser", "-name", "Veli Bey", "-email", "veli@test.tr", "-role", "admin"}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, env.cli.run(args))
		})
	}

	created, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{Email: "admin@test.tr"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleSuperAdmin, created.Role)
	assert.NoError(t, created.CheckPassword("lol"))

	updated, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID})
	require.NoError(t, err)
	assert.Equal(t, "Veli Bey", updated.Name)
	assert.Equal(t, user.RoleAdmin, updated.Role)
	assert.True(t, updated.IsActive)
	assert.NoError(t, updated.CheckPassword("lmao"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "User", "user@test.tr", "Pa$$w0rd!", user.RoleTeacher, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.tr"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.tr"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, env.cli.run(args))
		})
	}

	refreshed, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("lmao"))
}

func Test_commandLine_importStudents(t *testing.T) {
	env := setup(t)
	_, err := env.classRepo.CreateClass(context.Background(), class.Class{Name: "5A"})
	require.NoError(t, err)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "students.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"fullName,className,motherName,motherPhone,fatherName,fatherPhone\n"+
			"Ayşe Kaya,5A,Fatma Kaya,5551112222,,\n"+
			"Mehmet Kaya,5A,Fatma Kaya,5551112222,,\n"+
			"Cem Ak,9Z,,,,\n",
	), 0o600))
	unknownPath := filepath.Join(dir, "students.txt")
	require.NoError(t, os.WriteFile(unknownPath, []byte("fullName,className\n"), 0o600))

	tests := []cliTest{
		{name: "no args", args: []string{"importstudents"}, wantErr: errHelp},
		{name: "unsupported file", args: []string{"importstudents", "-file", unknownPath}, wantErr: errUnsupportedFile},
		{name: "import", args: []string{"importstudents", "-file", csvPath}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, env.cli.run(args))
		})
	}

	students, err := env.studentRepo.QueryStudents(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, students, 2)
	assert.Contains(t, env.out.String(), "class not found: 9Z (Cem Ak)")
	assert.Contains(t, env.out.String(), "Import completed successfully!")
}
