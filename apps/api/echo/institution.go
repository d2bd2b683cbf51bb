package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/institution"
	"github.com/aykutjm/ogrencim/core/user"
)

var errInstNotFoundInCtx = errors.New("institution object not found in echo.Context")

type institutionApi struct {
	svc      institution.ServiceInterface
	validate *validator.Validate
}

func registerInstitutionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc institution.ServiceInterface, validate *validator.Validate) {
	api := institutionApi{svc: svc, validate: validate}
	superadmin := roleMiddleware(user.RoleSuperAdmin)

	ig := g.Group("/institutions", jwt)
	ig.GET("", api.query)
	ig.POST("", api.create, superadmin)

	dg := ig.Group("/:id", api.ctxInstitutionMiddleware)
	dg.GET("", api.retrieve)
	dg.GET("/stats", api.stats, roleMiddleware(user.AdminRoles...))
	dg.PUT("", api.update, superadmin)
	dg.DELETE("", api.destroy, superadmin)
}

func (api *institutionApi) query(ctx echo.Context) error {
	filter := new(institution.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []institution.Institution{})
	}
	filter.Clean()

	insts, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying institutions")
	}
	return ctx.JSON(http.StatusOK, insts)
}

func (api *institutionApi) create(ctx echo.Context) error {
	var data institution.NewInstitution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstitution")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inst, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating institution")
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *institutionApi) retrieve(ctx echo.Context) error {
	inst, ok := ctx.Get("object").(institution.Institution)
	if !ok {
		return errors.Wrap(errInstNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *institutionApi) stats(ctx echo.Context) error {
	inst, ok := ctx.Get("object").(institution.Institution)
	if !ok {
		return errors.Wrap(errInstNotFoundInCtx, "retrieving object from context")
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), inst.ID)
	if err != nil {
		return errors.Wrap(err, "counting institution records")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *institutionApi) update(ctx echo.Context) error {
	inst, ok := ctx.Get("object").(institution.Institution)
	if !ok {
		return errors.Wrap(errInstNotFoundInCtx, "retrieving object from context")
	}

	var data institution.UpdateInstitution
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInstitution")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inst, err := api.svc.Update(ctx.Request().Context(), inst, data)
	if err != nil {
		return errors.Wrap(err, "updating institution")
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *institutionApi) destroy(ctx echo.Context) error {
	inst, ok := ctx.Get("object").(institution.Institution)
	if !ok {
		return errors.Wrap(errInstNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), inst.ID); err != nil {
		return errors.Wrap(err, "deleting institution")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *institutionApi) ctxInstitutionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		inst, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding institution by ID")
		}
		ctx.Set("object", inst)
		return next(ctx)
	}
}
