package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
	"github.com/aykutjm/ogrencim/services/ratelimit"
	inmemdb "github.com/aykutjm/ogrencim/storage/database/inmem"
	"github.com/aykutjm/ogrencim/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// testApp is a Server backed by a fresh in-memory store.
type testApp struct {
	*echoapi.Server
	ctx  context.Context
	conf *core.Config

	usrRepo      user.Repository
	instRepo     institution.Repository
	classRepo    class.Repository
	subjectRepo  subject.Repository
	teacherRepo  teacher.Repository
	guardianRepo guardian.Repository
	studentRepo  student.Repository
	ratingRepo   rating.Repository
	meetingRepo  meeting.Repository
}

func setup(t *testing.T) *testApp {
	t.Helper()
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	db := inmemdb.NewDB()
	app := &testApp{
		ctx:          context.Background(),
		conf:         conf,
		usrRepo:      inmemdb.NewUserRepository(db),
		instRepo:     inmemdb.NewInstitutionRepository(db),
		classRepo:    inmemdb.NewClassRepository(db),
		subjectRepo:  inmemdb.NewSubjectRepository(db),
		teacherRepo:  inmemdb.NewTeacherRepository(db),
		guardianRepo: inmemdb.NewGuardianRepository(db),
		studentRepo:  inmemdb.NewStudentRepository(db),
		ratingRepo:   inmemdb.NewRatingRepository(db),
		meetingRepo:  inmemdb.NewMeetingRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(app.usrRepo, mailSvc, conf)
	app.Server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		Limiter:        ratelimit.NewMemoryLimiter(conf.RateLimit.Requests, conf.RateLimit.Window),
		UserSvc:        usrSvc,
		InstitutionSvc: institution.NewService(nil, app.instRepo),
		ClassSvc:       class.NewService(app.classRepo),
		SubjectSvc:     subject.NewService(app.subjectRepo),
		TeacherSvc:     teacher.NewService(nil, app.teacherRepo, usrSvc),
		GuardianSvc:    guardian.NewService(app.guardianRepo),
		StudentSvc:     student.NewService(nil, app.studentRepo, app.classRepo, app.guardianRepo, conf),
		RatingSvc:      rating.NewService(app.ratingRepo),
		MeetingSvc:     meeting.NewService(app.meetingRepo, mailSvc, logger),
	})
	return app
}

func (app *testApp) createUser(t *testing.T, name, email, role string, institutionID ...string) user.User {
	return testutil.CreateUser(t, app.usrRepo, name, email, "Pa$$w0rd!", role, true, institutionID...)
}

func (app *testApp) token(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := echoapi.GenerateToken(app.conf, echoapi.GetUserClaims(app.conf, usr))
	require.NoError(t, err)
	return token
}

func (app *testApp) createClass(t *testing.T, name string, institutionID ...string) class.Class {
	t.Helper()
	cls := class.Class{Name: name}
	if len(institutionID) > 0 {
		cls.InstitutionID = institutionID[0]
	}
	cls, err := app.classRepo.CreateClass(app.ctx, cls)
	require.NoError(t, err)
	return cls
}

func (app *testApp) createSubject(t *testing.T, name string) subject.Subject {
	t.Helper()
	sbj, err := app.subjectRepo.CreateSubject(app.ctx, subject.Subject{Name: name})
	require.NoError(t, err)
	return sbj
}

// createTeacher creates a teacher login and its teacher record.
func (app *testApp) createTeacher(t *testing.T, name, email string) (user.User, teacher.Teacher) {
	t.Helper()
	usr := app.createUser(t, name, email, user.RoleTeacher)
	tch, err := app.teacherRepo.CreateTeacher(app.ctx, teacher.Teacher{UserID: usr.ID, FullName: name, Email: email})
	require.NoError(t, err)
	return usr, tch
}

func (app *testApp) createGuardian(t *testing.T, g guardian.Guardian) guardian.Guardian {
	t.Helper()
	created, err := app.guardianRepo.CreateGuardians(app.ctx, []guardian.Guardian{g})
	require.NoError(t, err)
	return created[0]
}

func (app *testApp) createStudent(t *testing.T, firstName, lastName, classID, parentID string) student.Student {
	t.Helper()
	created, err := app.studentRepo.CreateStudents(app.ctx, []student.Student{{
		FirstName: firstName,
		LastName:  lastName,
		ClassID:   classID,
		ParentID:  parentID,
	}})
	require.NoError(t, err)
	return created[0]
}

func (app *testApp) createRating(t *testing.T, r rating.Rating) rating.Rating {
	t.Helper()
	r, err := app.ratingRepo.CreateRating(app.ctx, r)
	require.NoError(t, err)
	return r
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do serves tt and checks the response code.
func (app *testApp) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	return rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), obj), rec.Body.String())
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
