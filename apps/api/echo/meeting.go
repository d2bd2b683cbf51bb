package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/meeting"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/teacher"
	"github.com/aykutjm/ogrencim/core/user"
)

var errMtgNotFoundInCtx = errors.New("meeting object not found in echo.Context")

type meetingApi struct {
	svc        meeting.ServiceInterface
	teacherSvc teacher.ServiceInterface
	validate   *validator.Validate
}

// registerMeetingAPI serves the meetings of a student under studentGroup and single meetings under /meetings.
func registerMeetingAPI(
	g *echo.Group,
	studentGroup *echo.Group,
	jwt echo.MiddlewareFunc,
	svc meeting.ServiceInterface,
	teacherSvc teacher.ServiceInterface,
	validate *validator.Validate,
) {
	api := meetingApi{svc: svc, teacherSvc: teacherSvc, validate: validate}
	staff := roleMiddleware(user.StaffRoles...)

	studentGroup.GET("/meetings", api.queryByStudent, staff)
	studentGroup.POST("/meetings", api.create, roleMiddleware(user.RoleTeacher))

	mg := g.Group("/meetings/:id", jwt, staff, api.ctxMeetingMiddleware)
	mg.GET("", api.retrieve)
	mg.PUT("", api.update, api.authorOrAdminMiddleware)
	mg.DELETE("", api.destroy, api.authorOrAdminMiddleware)
}

func (api *meetingApi) queryByStudent(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	meetings, err := api.svc.QueryByStudent(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "querying meetings")
	}
	if meetings == nil {
		meetings = []meeting.Meeting{}
	}
	return ctx.JSON(http.StatusOK, meetings)
}

func (api *meetingApi) create(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}
	tch, err := contextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return err
	}

	var data meeting.NewMeeting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMeeting")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Create(ctx.Request().Context(), s.ID, tch.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating meeting")
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *meetingApi) retrieve(ctx echo.Context) error {
	m, ok := ctx.Get("meeting").(meeting.Meeting)
	if !ok {
		return errors.Wrap(errMtgNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *meetingApi) update(ctx echo.Context) error {
	m, ok := ctx.Get("meeting").(meeting.Meeting)
	if !ok {
		return errors.Wrap(errMtgNotFoundInCtx, "retrieving object from context")
	}

	var data meeting.UpdateMeeting
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMeeting")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.Update(ctx.Request().Context(), m, data)
	if err != nil {
		return errors.Wrap(err, "updating meeting")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *meetingApi) destroy(ctx echo.Context) error {
	m, ok := ctx.Get("meeting").(meeting.Meeting)
	if !ok {
		return errors.Wrap(errMtgNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), m.ID); err != nil {
		return errors.Wrap(err, "deleting meeting")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *meetingApi) ctxMeetingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		m, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding meeting by ID")
		}
		ctx.Set("meeting", m)
		return next(ctx)
	}
}

// authorOrAdminMiddleware lets through admins and the teacher who logged the meeting.
func (api *meetingApi) authorOrAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		m, ok := ctx.Get("meeting").(meeting.Meeting)
		if !ok {
			return errors.Wrap(errMtgNotFoundInCtx, "retrieving object from context")
		}
		if err := checkAuthorOrAdmin(ctx, api.teacherSvc, m.TeacherID); err != nil {
			return err
		}
		return next(ctx)
	}
}
