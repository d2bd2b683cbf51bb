package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/user"
)

var errGrdNotFoundInCtx = errors.New("guardian object not found in echo.Context")

type guardianApi struct {
	svc        guardian.ServiceInterface
	studentSvc student.ServiceInterface
	ratingSvc  rating.ServiceInterface
	validate   *validator.Validate
}

func registerGuardianAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc guardian.ServiceInterface,
	studentSvc student.ServiceInterface,
	ratingSvc rating.ServiceInterface,
	validate *validator.Validate,
) {
	api := guardianApi{svc: svc, studentSvc: studentSvc, ratingSvc: ratingSvc, validate: validate}
	admin := roleMiddleware(user.AdminRoles...)

	gg := g.Group("/guardians", jwt)
	gg.GET("/me/children", api.children, roleMiddleware(user.RoleParent))

	sg := gg.Group("", roleMiddleware(user.StaffRoles...))
	sg.GET("", api.query)

	dg := sg.Group("/:id", api.ctxGuardianMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, admin)
	dg.DELETE("", api.destroy, admin)
}

// Child is a student of the calling parent with their visible ratings.
type Child struct {
	student.Student
	Ratings []rating.Rating `json:"ratings"`
}

func (api *guardianApi) query(ctx echo.Context) error {
	filter := new(guardian.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []guardian.Guardian{})
	}
	filter.Clean()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	filter.InstitutionID = institutionScope(claims, filter.InstitutionID)

	guardians, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying guardians")
	}
	return ctx.JSON(http.StatusOK, guardians)
}

func (api *guardianApi) retrieve(ctx echo.Context) error {
	g, ok := ctx.Get("object").(guardian.Guardian)
	if !ok {
		return errors.Wrap(errGrdNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *guardianApi) update(ctx echo.Context) error {
	g, ok := ctx.Get("object").(guardian.Guardian)
	if !ok {
		return errors.Wrap(errGrdNotFoundInCtx, "retrieving object from context")
	}

	var data guardian.UpdateGuardian
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGuardian")
	}
	if err := data.Validate(g, api.validate); err != nil {
		return err
	}

	g, err := api.svc.Update(ctx.Request().Context(), g, data)
	if err != nil {
		return errors.Wrap(err, "updating guardian")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *guardianApi) destroy(ctx echo.Context) error {
	g, ok := ctx.Get("object").(guardian.Guardian)
	if !ok {
		return errors.Wrap(errGrdNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), g.ID); err != nil {
		return errors.Wrap(err, "deleting guardian")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *guardianApi) children(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	children := make([]Child, 0)
	g, err := api.svc.GetByUserID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		// a parent login not linked to a guardian record yet
		if errors.Cause(err) == guardian.ErrNotFound {
			return ctx.JSON(http.StatusOK, children)
		}
		return errors.Wrap(err, "finding guardian by user ID")
	}

	students, err := api.studentSvc.Query(ctx.Request().Context(), &student.QueryFilter{ParentID: g.ID})
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	ratings, err := api.ratingSvc.VisibleByStudents(ctx.Request().Context(), ids)
	if err != nil {
		return errors.Wrap(err, "querying children ratings")
	}

	for _, s := range students {
		rs := ratings[s.ID]
		if rs == nil {
			rs = []rating.Rating{}
		}
		children = append(children, Child{Student: s, Ratings: rs})
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *guardianApi) ctxGuardianMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		g, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding guardian by ID")
		}
		ctx.Set("object", g)
		return next(ctx)
	}
}
