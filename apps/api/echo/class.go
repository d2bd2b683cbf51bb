package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/class"
	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/user"
)

var errClsNotFoundInCtx = errors.New("class object not found in echo.Context")

type classApi struct {
	svc        class.ServiceInterface
	studentSvc student.ServiceInterface
	ratingSvc  rating.ServiceInterface
	validate   *validator.Validate
}

func registerClassAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc class.ServiceInterface,
	studentSvc student.ServiceInterface,
	ratingSvc rating.ServiceInterface,
	validate *validator.Validate,
) {
	api := classApi{svc: svc, studentSvc: studentSvc, ratingSvc: ratingSvc, validate: validate}
	admin := roleMiddleware(user.AdminRoles...)

	cg := g.Group("/classes", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, admin)

	dg := cg.Group("/:id", api.ctxClassMiddleware)
	dg.GET("", api.retrieve, roleMiddleware(user.StaffRoles...))
	dg.PUT("", api.update, admin)
	dg.DELETE("", api.destroy, admin)
}

type (
	// ClassStudent is a student of a class with its rating overview.
	ClassStudent struct {
		student.Student
		TopSkill     string  `json:"top_skill,omitempty"`
		TopRating    float64 `json:"top_rating"`
		TotalRatings int     `json:"total_ratings"`
	}

	ClassDetail struct {
		class.Class
		Students []ClassStudent `json:"students"`
	}
)

func (api *classApi) query(ctx echo.Context) error {
	filter := new(class.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []class.Class{})
	}
	filter.Clean()
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	filter.InstitutionID = institutionScope(claims, filter.InstitutionID)

	classes, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	data.InstitutionID = institutionScope(claims, data.InstitutionID)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

// retrieve returns the class with its students, each with a summary of their visible ratings.
func (api *classApi) retrieve(ctx echo.Context) error {
	cls, ok := ctx.Get("object").(class.Class)
	if !ok {
		return errors.Wrap(errClsNotFoundInCtx, "retrieving object from context")
	}

	students, err := api.studentSvc.Query(ctx.Request().Context(), &student.QueryFilter{ClassID: cls.ID})
	if err != nil {
		return errors.Wrap(err, "querying class students")
	}
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	ratings, err := api.ratingSvc.VisibleByStudents(ctx.Request().Context(), ids)
	if err != nil {
		return errors.Wrap(err, "querying class ratings")
	}

	detail := ClassDetail{Class: cls, Students: make([]ClassStudent, 0, len(students))}
	for _, s := range students {
		sum := rating.Summarize(ratings[s.ID])
		detail.Students = append(detail.Students, ClassStudent{
			Student:      s,
			TopSkill:     sum.TopSkill,
			TopRating:    sum.TopRating,
			TotalRatings: sum.Total,
		})
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *classApi) update(ctx echo.Context) error {
	cls, ok := ctx.Get("object").(class.Class)
	if !ok {
		return errors.Wrap(errClsNotFoundInCtx, "retrieving object from context")
	}

	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Update(ctx.Request().Context(), cls, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	cls, ok := ctx.Get("object").(class.Class)
	if !ok {
		return errors.Wrap(errClsNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), cls.ID); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) ctxClassMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding class by ID")
		}
		ctx.Set("object", cls)
		return next(ctx)
	}
}
