package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/subject"
	"github.com/aykutjm/ogrencim/core/user"
)

var errSbjNotFoundInCtx = errors.New("subject object not found in echo.Context")

type subjectApi struct {
	svc      subject.ServiceInterface
	validate *validator.Validate
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc subject.ServiceInterface, validate *validator.Validate) {
	api := subjectApi{svc: svc, validate: validate}
	admin := roleMiddleware(user.AdminRoles...)

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.query)
	sg.POST("", api.create, admin)

	dg := sg.Group("/:id", api.ctxSubjectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, admin)
	dg.DELETE("", api.destroy, admin)
}

func (api *subjectApi) query(ctx echo.Context) error {
	filter := new(subject.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []subject.Subject{})
	}
	filter.Clean()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	filter.InstitutionID = institutionScope(claims, filter.InstitutionID)

	subjects, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.InstitutionID = institutionScope(claims, data.InstitutionID)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sbj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sbj)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sbj, ok := ctx.Get("object").(subject.Subject)
	if !ok {
		return errors.Wrap(errSbjNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, sbj)
}

func (api *subjectApi) update(ctx echo.Context) error {
	sbj, ok := ctx.Get("object").(subject.Subject)
	if !ok {
		return errors.Wrap(errSbjNotFoundInCtx, "retrieving object from context")
	}

	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sbj, err := api.svc.Update(ctx.Request().Context(), sbj, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sbj)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	sbj, ok := ctx.Get("object").(subject.Subject)
	if !ok {
		return errors.Wrap(errSbjNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), sbj.ID); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *subjectApi) ctxSubjectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		sbj, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding subject by ID")
		}
		ctx.Set("object", sbj)
		return next(ctx)
	}
}
