package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/teacher"
	"github.com/aykutjm/ogrencim/core/user"
)

var errTchNotFoundInCtx = errors.New("teacher object not found in echo.Context")

type teacherApi struct {
	svc      teacher.ServiceInterface
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerTeacherAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc teacher.ServiceInterface,
	usrSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := teacherApi{svc: svc, usrSvc: usrSvc, validate: validate}
	admin := roleMiddleware(user.AdminRoles...)

	tg := g.Group("/teachers", jwt, roleMiddleware(user.StaffRoles...))
	tg.GET("", api.query)
	tg.POST("", api.create, admin)
	tg.GET("/me", api.me, roleMiddleware(user.RoleTeacher))

	dg := tg.Group("/:id", api.ctxTeacherMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, admin)
	dg.DELETE("", api.destroy, admin)
}

func (api *teacherApi) query(ctx echo.Context) error {
	filter := new(teacher.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []teacher.Teacher{})
	}
	filter.Clean()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	filter.InstitutionID = institutionScope(claims, filter.InstitutionID)

	teachers, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

// create registers the teacher along with their login.
func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.InstitutionID = institutionScope(claims, data.InstitutionID)
	if err := data.Validate(ctx.Request().Context(), api.validate, api.usrSvc); err != nil {
		return err
	}

	tch, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *teacherApi) me(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tch, err := api.svc.GetByUserID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding teacher by user ID")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	tch, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTchNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) update(ctx echo.Context) error {
	tch, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTchNotFoundInCtx, "retrieving object from context")
	}

	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(tch, api.validate); err != nil {
		return err
	}

	tch, err := api.svc.Update(ctx.Request().Context(), tch, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	tch, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTchNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), tch); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) ctxTeacherMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding teacher by ID")
		}
		ctx.Set("object", tch)
		return next(ctx)
	}
}

// contextTeacher returns the Teacher record of the caller.
func contextTeacher(ctx echo.Context, svc teacher.ServiceInterface) (teacher.Teacher, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
	}
	tch, err := svc.GetByUserID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return teacher.Teacher{}, errHttpForbidden
		}
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by user ID")
	}
	return tch, nil
}
