package tests

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	echoapi "github.com/aykutjm/ogrencim/apps/api/echo"
	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/user"
)

func Test_studentApi_bulkImport(t *testing.T) {
	app := setup(t)
	app.createClass(t, "5A")
	app.createClass(t, "6B")
	admin := app.createUser(t, "Admin", "admin@test.tr", user.RoleAdmin)
	parent := app.createUser(t, "Veli", "veli@test.tr", user.RoleParent)
	token := app.token(t, admin)

	tests := []httpTest{
		{
			name: "Auth required", body: []byte(`{"students": []}`),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "Staff required", token: app.token(t, parent), body: []byte(`{"students": []}`),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Students missing", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "students must be an array"}),
		},
		{
			name: "Students not an array", token: token, body: []byte(`{"students": {"fullName": "Ayşe Kaya"}}`),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "students must be an array"}),
		},
		{
			name: "Missing class name", token: token,
			body:     []byte(`{"students": [{"fullName": "Ayşe Kaya", "className": "5A"}, {"fullName": "Cem Ak"}]}`),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "row 1: all students need a full name and a class name"}),
		},
		{
			name: "Empty import", token: token, body: []byte(`{"students": []}`),
			wantCode: http.StatusInternalServerError, wantData: marshalObj(t, httpErr{Error: "no students imported"}),
		},
		{
			name: "Nothing imported", token: token,
			body:     []byte(`{"students": [{"fullName": "Ayşe Kaya", "className": "9Z"}]}`),
			wantCode: http.StatusInternalServerError,
			wantData: marshalObj(t, echoapi.BulkImportError{
				Error:   "no students imported",
				Details: []string{"class not found: 9Z (Ayşe Kaya)"},
			}),
		},
		{
			name: "Partial success", token: token,
			body: marshalObj(t, map[string]interface{}{"students": []student.BulkRecord{
				{FullName: "Ayşe Kaya", ClassName: "5A", MotherName: "Fatma Kaya", MotherPhone: "5551112222"},
				{FullName: "Mehmet Kaya", ClassName: "6B", MotherName: "Fatma K.", MotherPhone: "5551112222"},
				{FullName: "Cem Ak", ClassName: "7C"},
			}}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.BulkImportResponse{
				Success:      true,
				Count:        2,
				TotalParents: 1,
				Errors:       []string{"class not found: 7C (Cem Ak)"},
			}),
		},
		{
			name: "Existing guardians are counted", token: token,
			body: marshalObj(t, map[string]interface{}{"students": []student.BulkRecord{
				{FullName: "Zeynep Kaya", ClassName: "5A", MotherName: "Fatma", MotherPhone: "5551112222"},
				{FullName: "Deniz Ak", ClassName: "5A"},
			}}),
			wantCode: http.StatusOK,
			wantData: marshalObj(t, echoapi.BulkImportResponse{Success: true, Count: 2, TotalParents: 1}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/api/students/bulk"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	guardians, err := app.guardianRepo.QueryGuardians(app.ctx, nil)
	require.NoError(t, err)
	require.Len(t, guardians, 1)
	assert.Equal(t, "5551112222@parent.local", guardians[0].Email)

	students, err := app.studentRepo.QueryStudents(app.ctx, &student.QueryFilter{ParentID: guardians[0].ID})
	require.NoError(t, err)
	assert.Len(t, students, 3)
}

func Test_studentApi_bulkImportXLSX(t *testing.T) {
	app := setup(t)
	cls := app.createClass(t, "5A")
	teacher, _ := app.createTeacher(t, "Öğretmen", "ogretmen@test.tr")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"fullName", "className", "motherName", "motherPhone", "fatherName", "fatherPhone"},
		{"Ayşe Kaya", "5A", "Fatma Kaya", "5551112222"},
		{"Mert Kaya", "5A", "", "", "Ali Kaya", "5553334444"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "students.xlsx")
	require.NoError(t, err)
	require.NoError(t, f.Write(fw))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/students/bulk/xlsx", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+app.token(t, teacher))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marshalObj(t, echoapi.BulkImportResponse{Success: true, Count: 2, TotalParents: 2}),
	}, rec)

	students, err := app.studentRepo.QueryStudents(app.ctx, &student.QueryFilter{ClassID: cls.ID})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Ayşe", students[0].FirstName)
	assert.Equal(t, "Kaya", students[0].LastName)

	t.Run("File required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/students/bulk/xlsx", app.token(t, teacher))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "an xlsx file is required"}),
		}, rec)
	})
}

func Test_studentApi_siblings(t *testing.T) {
	app := setup(t)
	cls5 := app.createClass(t, "5A")
	cls6 := app.createClass(t, "6B")
	teacher, _ := app.createTeacher(t, "Öğretmen", "ogretmen@test.tr")
	token := app.token(t, teacher)

	g := app.createGuardian(t, guardian.Guardian{FullName: "Fatma Kaya", Email: "5551112222@parent.local", Phone: "5551112222", MotherPhone: "5551112222"})
	byPhone := app.createGuardian(t, guardian.Guardian{FullName: "Ali Kaya", Email: "ali@test.tr", MotherPhone: "5551112222"})
	ayse := app.createStudent(t, "Ayşe", "Kaya", cls5.ID, g.ID)
	zeynep := app.createStudent(t, "Zeynep", "Kaya", cls6.ID, g.ID)
	alone := app.createStudent(t, "Cem", "Ak", cls5.ID, "")
	mert := app.createStudent(t, "Mert", "Kaya", cls5.ID, byPhone.ID)

	tests := []httpTest{
		{
			name: "Same guardian", path: "/api/students/" + ayse.ID + "/siblings",
			wantData: marshalObj(t, []student.Sibling{{ID: zeynep.ID, FirstName: "Zeynep", LastName: "Kaya", ClassName: "6B"}}),
		},
		{
			name: "Guardian phone", path: "/api/students/" + mert.ID + "/siblings",
			wantData: marshalObj(t, []student.Sibling{
				{ID: ayse.ID, FirstName: "Ayşe", LastName: "Kaya", ClassName: "5A"},
				{ID: zeynep.ID, FirstName: "Zeynep", LastName: "Kaya", ClassName: "6B"},
			}),
		},
		{name: "No guardian", path: "/api/students/" + alone.ID + "/siblings", wantData: []byte("[]")},
		{
			name: "Unknown student", path: "/api/students/3b241101-e2bb-4255-8caf-4136c566a962/siblings",
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "student not found"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.token = token
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_studentApi_retrieve(t *testing.T) {
	app := setup(t)
	cls := app.createClass(t, "5A")
	sbj := app.createSubject(t, "Matematik")
	teacherUsr, tch := app.createTeacher(t, "Öğretmen", "ogretmen@test.tr")
	parentUsr := app.createUser(t, "Fatma Kaya", "fatma@test.tr", user.RoleParent)
	otherParent := app.createUser(t, "Başka Veli", "baska@test.tr", user.RoleParent)

	g := app.createGuardian(t, guardian.Guardian{FullName: "Fatma Kaya", Email: "fatma@test.tr", UserID: parentUsr.ID})
	ayse := app.createStudent(t, "Ayşe", "Kaya", cls.ID, g.ID)
	app.createStudent(t, "Zeynep", "Kaya", cls.ID, g.ID)

	visible := app.createRating(t, rating.Rating{StudentID: ayse.ID, TeacherID: tch.ID, SubjectID: sbj.ID, Rating: 5, Visibility: true})
	app.createRating(t, rating.Rating{StudentID: ayse.ID, TeacherID: tch.ID, SubjectID: sbj.ID, Rating: 1, Visibility: false})

	t.Run("Parent sees their child", func(t *testing.T) {
		rec := app.do(t, httpTest{method: http.MethodGet, path: "/api/students/" + ayse.ID, token: app.token(t, parentUsr), wantCode: http.StatusOK})

		var detail echoapi.StudentDetail
		unmarshal(t, rec, &detail)
		assert.Equal(t, ayse.ID, detail.ID)
		assert.Equal(t, "5A", detail.ClassName)
		require.NotNil(t, detail.Guardian)
		assert.Equal(t, g.ID, detail.Guardian.ID)
		require.Len(t, detail.Ratings, 1)
		assert.Equal(t, visible.ID, detail.Ratings[0].ID)
		assert.Equal(t, "Matematik", detail.Ratings[0].SubjectName)
		assert.Equal(t, "Öğretmen", detail.Ratings[0].TeacherName)
		require.Len(t, detail.Siblings, 1)
		assert.Equal(t, "Zeynep", detail.Siblings[0].FirstName)
		assert.Nil(t, detail.Meetings)
	})

	t.Run("Other parents do not", func(t *testing.T) {
		app.do(t, httpTest{method: http.MethodGet, path: "/api/students/" + ayse.ID, token: app.token(t, otherParent), wantCode: http.StatusNotFound})
		app.do(t, httpTest{method: http.MethodGet, path: "/api/students/" + ayse.ID + "/siblings", token: app.token(t, otherParent), wantCode: http.StatusNotFound})
	})

	t.Run("Teacher", func(t *testing.T) {
		rec := app.do(t, httpTest{method: http.MethodGet, path: "/api/students/" + ayse.ID, token: app.token(t, teacherUsr), wantCode: http.StatusOK})

		var body map[string]interface{}
		unmarshal(t, rec, &body)
		assert.Contains(t, body, "ratings")
		assert.Contains(t, body, "siblings")
	})
}

func Test_studentApi_crud(t *testing.T) {
	app := setup(t)
	cls := app.createClass(t, "5A")
	other := app.createClass(t, "6B")
	teacher, _ := app.createTeacher(t, "Öğretmen", "ogretmen@test.tr")
	admin := app.createUser(t, "Admin", "admin@test.tr", user.RoleAdmin)
	teacherToken := app.token(t, teacher)

	rec := app.do(t, httpTest{
		method: http.MethodPost, path: "/api/students", token: teacherToken, wantCode: http.StatusCreated,
		body: marshalObj(t, student.NewStudent{FirstName: " Ayşe ", LastName: "Kaya", ClassID: cls.ID}),
	})
	var created student.Student
	unmarshal(t, rec, &created)
	assert.Equal(t, "Ayşe", created.FirstName)
	assert.Equal(t, "5A", created.ClassName)

	app.do(t, httpTest{
		method: http.MethodPost, path: "/api/students", token: teacherToken, wantCode: http.StatusBadRequest,
		body: marshalObj(t, student.NewStudent{FirstName: "Cem", LastName: "Ak", ClassID: "5A"}),
	})

	rec = app.do(t, httpTest{
		method: http.MethodPut, path: "/api/students/" + created.ID, token: teacherToken, wantCode: http.StatusOK,
		body: marshalObj(t, student.UpdateStudent{FirstName: "Ayşe", LastName: "Kaya", ClassID: other.ID}),
	})
	var updated student.Student
	unmarshal(t, rec, &updated)
	assert.Equal(t, "6B", updated.ClassName)

	rec = app.do(t, httpTest{method: http.MethodGet, path: "/api/students?class_id=" + other.ID, token: teacherToken, wantCode: http.StatusOK})
	var listed []student.Student
	unmarshal(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	app.do(t, httpTest{method: http.MethodDelete, path: "/api/students/" + created.ID, token: teacherToken, wantCode: http.StatusForbidden})
	app.do(t, httpTest{method: http.MethodDelete, path: "/api/students/" + created.ID, token: app.token(t, admin), wantCode: http.StatusNoContent})
	app.do(t, httpTest{method: http.MethodGet, path: "/api/students/" + created.ID, token: teacherToken, wantCode: http.StatusNotFound})
}
