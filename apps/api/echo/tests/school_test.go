package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/aykutjm/ogrencim/apps/api/echo"
	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/teacher"
	"github.com/aykutjm/ogrencim/core/user"
)

func Test_classApi_retrieve(t *testing.T) {
	app := setup(t)
	cls := app.createClass(t, "5A")
	math := app.createSubject(t, "Matematik")
	music := app.createSubject(t, "Müzik")
	teacherUsr, tch := app.createTeacher(t, "Öğretmen", "ogretmen@test.tr")
	parent := app.createUser(t, "Veli", "veli@test.tr", user.RoleParent)

	ayse := app.createStudent(t, "Ayşe", "Kaya", cls.ID, "")
	app.createStudent(t, "Cem", "Ak", cls.ID, "")
	for _, r := range []rating.Rating{
		{StudentID: ayse.ID, TeacherID: tch.ID, SubjectID: math.ID, Rating: 3, Visibility: true},
		{StudentID: ayse.ID, TeacherID: tch.ID, SubjectID: music.ID, Rating: 5, Visibility: true},
		{StudentID: ayse.ID, TeacherID: tch.ID, SubjectID: math.ID, Rating: 5, Visibility: false},
	} {
		app.createRating(t, r)
	}

	path := "/api/classes/" + cls.ID
	app.do(t, httpTest{method: http.MethodGet, path: path, token: app.token(t, parent), wantCode: http.StatusForbidden})

	rec := app.do(t, httpTest{method: http.MethodGet, path: path, token: app.token(t, teacherUsr), wantCode: http.StatusOK})
	var detail echoapi.ClassDetail
	unmarshal(t, rec, &detail)
	assert.Equal(t, "5A", detail.Name)
	require.Len(t, detail.Students, 2)

	assert.Equal(t, "Ayşe", detail.Students[0].FirstName)
	assert.Equal(t, "Müzik", detail.Students[0].TopSkill)
	assert.Equal(t, 5.0, detail.Students[0].TopRating)
	assert.Equal(t, 2, detail.Students[0].TotalRatings)

	assert.Equal(t, "Cem", detail.Students[1].FirstName)
	assert.Equal(t, "", detail.Students[1].TopSkill)
	assert.Equal(t, 0, detail.Students[1].TotalRatings)
}

func Test_guardianApi_children(t *testing.T) {
	app := setup(t)
	cls := app.createClass(t, "5A")
	sbj := app.createSubject(t, "Matematik")
	_, tch := app.createTeacher(t, "Öğretmen", "ogretmen@test.tr")
	parent := app.createUser(t, "Fatma Kaya", "fatma@test.tr", user.RoleParent)
	unlinked := app.createUser(t, "Yeni Veli", "yeni@test.tr", user.RoleParent)

	g := app.createGuardian(t, guardian.Guardian{FullName: "Fatma Kaya", Email: "fatma@test.tr", UserID: parent.ID})
	ayse := app.createStudent(t, "Ayşe", "Kaya", cls.ID, g.ID)
	app.createStudent(t, "Zeynep", "Kaya", cls.ID, g.ID)
	app.createStudent(t, "Cem", "Ak", cls.ID, "")
	app.createRating(t, rating.Rating{StudentID: ayse.ID, TeacherID: tch.ID, SubjectID: sbj.ID, Rating: 4, Visibility: true})
	app.createRating(t, rating.Rating{StudentID: ayse.ID, TeacherID: tch.ID, SubjectID: sbj.ID, Rating: 1, Visibility: false})

	path := "/api/guardians/me/children"
	t.Run("Parent", func(t *testing.T) {
		rec := app.do(t, httpTest{method: http.MethodGet, path: path, token: app.token(t, parent), wantCode: http.StatusOK})
		var children []echoapi.Child
		unmarshal(t, rec, &children)
		require.Len(t, children, 2)
		assert.Equal(t, "Ayşe", children[0].FirstName)
		assert.Equal(t, "5A", children[0].ClassName)
		require.Len(t, children[0].Ratings, 1)
		assert.Equal(t, 4, children[0].Ratings[0].Rating)
		assert.Equal(t, "Zeynep", children[1].FirstName)
		assert.NotNil(t, children[1].Ratings)
		assert.Empty(t, children[1].Ratings)
	})

	t.Run("Parent without guardian record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, app.token(t, unlinked))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte("[]")}, rec)
	})

	t.Run("Staff only routes", func(t *testing.T) {
		app.do(t, httpTest{method: http.MethodGet, path: "/api/guardians", token: app.token(t, parent), wantCode: http.StatusForbidden})
		app.do(t, httpTest{method: http.MethodGet, path: "/api/guardians/" + g.ID, token: app.token(t, parent), wantCode: http.StatusForbidden})
	})
}

func Test_teacherApi_create(t *testing.T) {
	app := setup(t)
	admin := app.createUser(t, "Admin", "admin@test.tr", user.RoleAdmin)
	teacherUsr, _ := app.createTeacher(t, "Öğretmen", "ogretmen@test.tr")

	nt := teacher.NewTeacher{
		FullName:        "Yeni Öğretmen",
		Email:           "Yeni@Test.tr",
		Password:        "Kal3m#Defter",
		PasswordConfirm: "Kal3m#Defter",
	}
	app.do(t, httpTest{method: http.MethodPost, path: "/api/teachers", token: app.token(t, teacherUsr), body: marshalObj(t, nt), wantCode: http.StatusForbidden})

	dup := nt
	dup.Email = "ogretmen@test.tr"
	app.do(t, httpTest{method: http.MethodPost, path: "/api/teachers", token: app.token(t, admin), body: marshalObj(t, dup), wantCode: http.StatusBadRequest})

	weak := nt
	weak.Password, weak.PasswordConfirm = "12345678", "12345678"
	req, rec := newAuthRequest(http.MethodPost, "/api/teachers", app.token(t, admin), marshalObj(t, weak))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marshalObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
	}, rec)

	rec = app.do(t, httpTest{method: http.MethodPost, path: "/api/teachers", token: app.token(t, admin), body: marshalObj(t, nt), wantCode: http.StatusCreated})
	var created teacher.Teacher
	unmarshal(t, rec, &created)
	assert.Equal(t, "Yeni Öğretmen", created.FullName)
	assert.Equal(t, "yeni@test.tr", created.Email)

	login, err := app.usrRepo.GetUser(app.ctx, user.GetFilter{ID: created.UserID})
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, login.Role)
	assert.NoError(t, login.CheckPassword("Kal3m#Defter"))

	// the new teacher can log in and find their record
	rec = app.do(t, httpTest{method: http.MethodGet, path: "/api/teachers/me", token: app.token(t, login), wantCode: http.StatusOK})
	var me teacher.Teacher
	unmarshal(t, rec, &me)
	assert.Equal(t, created.ID, me.ID)
}
