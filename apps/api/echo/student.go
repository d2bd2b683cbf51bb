package echoapi

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/meeting"
	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/user"
)

var errStdNotFoundInCtx = errors.New("student object not found in echo.Context")

const (
	msgStudentsNotArray  = "students must be an array"
	msgImportFileMissing = "an xlsx file is required"
)

type studentAPIDeps struct {
	studentSvc student.ServiceInterface
	ratingSvc  rating.ServiceInterface
	meetingSvc meeting.ServiceInterface
	validate   *validator.Validate
}

type studentApi struct {
	studentAPIDeps
}

// registerStudentAPI returns the group of the student detail routes, "object" holding the Student.
func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps studentAPIDeps) *echo.Group {
	api := studentApi{studentAPIDeps: deps}
	staff := roleMiddleware(user.StaffRoles...)

	sg := g.Group("/students", jwt)
	sg.GET("", api.query, staff)
	sg.POST("", api.create, staff)
	sg.POST("/bulk", api.bulkImport, staff)
	sg.POST("/bulk/xlsx", api.bulkImportXLSX, staff)

	dg := sg.Group("/:id", api.ctxStudentMiddleware)
	dg.GET("", api.retrieve)
	dg.GET("/siblings", api.siblings)
	dg.PUT("", api.update, staff)
	dg.DELETE("", api.destroy, roleMiddleware(user.AdminRoles...))
	return dg
}

type (
	// StudentDetail is a student with everything shown on their page.
	StudentDetail struct {
		student.Student
		Ratings  []rating.Rating   `json:"ratings"`
		Siblings []student.Sibling `json:"siblings"`
		Meetings []meeting.Meeting `json:"meetings,omitempty"`
	}

	BulkImportRequest struct {
		Students []student.BulkRecord
	}

	BulkImportResponse struct {
		Success      bool     `json:"success"`
		Count        int      `json:"count"`
		TotalParents int      `json:"totalParents"`
		Errors       []string `json:"errors,omitempty"`
	}

	BulkImportError struct {
		Error   string   `json:"error"`
		Details []string `json:"details,omitempty"`
	}
)

// UnmarshalJSON rejects bodies whose `students` is missing or not an array.
func (br *BulkImportRequest) UnmarshalJSON(data []byte) error {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	raw := bytes.TrimSpace(body["students"])
	if len(raw) == 0 || raw[0] != '[' {
		return errors.New(msgStudentsNotArray)
	}
	return json.Unmarshal(raw, &br.Students)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	filter.InstitutionID = institutionScope(claims, filter.InstitutionID)

	students, err := api.studentSvc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.InstitutionID = institutionScope(claims, data.InstitutionID)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.studentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *studentApi) bulkImport(ctx echo.Context) error {
	var data BulkImportRequest
	body, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading request body")
	}
	if err = json.Unmarshal(body, &data); err != nil {
		return ctx.JSON(http.StatusBadRequest, BulkImportError{Error: msgStudentsNotArray})
	}
	return api.runImport(ctx, data.Students)
}

func (api *studentApi) bulkImportXLSX(ctx echo.Context) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, BulkImportError{Error: msgImportFileMissing})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	records, err := student.ReadXLSX(f)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, BulkImportError{Error: errors.Cause(err).Error()})
	}
	return api.runImport(ctx, records)
}

func (api *studentApi) runImport(ctx echo.Context, records []student.BulkRecord) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	opts := student.ImportOptions{InstitutionID: institutionScope(claims, ctx.QueryParam("institution_id"))}

	res, err := api.studentSvc.Import(ctx.Request().Context(), records, opts)
	if err != nil {
		var depErr *student.DependencyError
		switch {
		case core.IsValidationError(err):
			return ctx.JSON(http.StatusBadRequest, BulkImportError{Error: errors.Cause(err).Error()})
		case errors.Cause(err) == student.ErrNothingImported:
			return ctx.JSON(http.StatusInternalServerError, BulkImportError{Error: err.Error(), Details: res.Messages()})
		case errors.As(err, &depErr):
			return ctx.JSON(http.StatusInternalServerError, BulkImportError{Error: depErr.Error()})
		}
		return errors.Wrap(err, "importing students")
	}

	return ctx.JSON(http.StatusOK, BulkImportResponse{
		Success:      true,
		Count:        res.Count(),
		TotalParents: res.GuardiansResolved,
		Errors:       res.Messages(),
	})
}

// retrieve returns the student with their visible ratings and siblings; staff also get the meetings.
func (api *studentApi) retrieve(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	detail := StudentDetail{Student: s}
	if detail.Ratings, err = api.ratingSvc.VisibleByStudent(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "querying ratings")
	}
	if detail.Ratings == nil {
		detail.Ratings = []rating.Rating{}
	}
	if detail.Siblings, err = api.studentSvc.Siblings(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "finding siblings")
	}
	if user.IsTeacherOrAbove(claims.Role) {
		if detail.Meetings, err = api.meetingSvc.QueryByStudent(ctx.Request().Context(), s.ID); err != nil {
			return errors.Wrap(err, "querying meetings")
		}
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *studentApi) siblings(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	siblings, err := api.studentSvc.Siblings(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "finding siblings")
	}
	return ctx.JSON(http.StatusOK, siblings)
}

func (api *studentApi) update(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.studentSvc.Update(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	if err := api.studentSvc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ctxStudentMiddleware loads the Student of the `:id` path param in the "object" context key.
// Parents only reach their own children; 404 otherwise.
func (api *studentApi) ctxStudentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}

		s, err := api.studentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding student by ID")
		}
		if claims.Role == user.RoleParent && (s.Guardian == nil || s.Guardian.UserID != claims.Subject) {
			return errHttpNotFound
		}
		ctx.Set("object", s)
		return next(ctx)
	}
}
