package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core/rating"
	"github.com/aykutjm/ogrencim/core/student"
	"github.com/aykutjm/ogrencim/core/teacher"
	"github.com/aykutjm/ogrencim/core/user"
)

var errRtgNotFoundInCtx = errors.New("rating object not found in echo.Context")

type ratingApi struct {
	svc        rating.ServiceInterface
	teacherSvc teacher.ServiceInterface
	validate   *validator.Validate
}

// registerRatingAPI serves the ratings of a student under studentGroup and single ratings under /ratings.
func registerRatingAPI(
	g *echo.Group,
	studentGroup *echo.Group,
	jwt echo.MiddlewareFunc,
	svc rating.ServiceInterface,
	teacherSvc teacher.ServiceInterface,
	validate *validator.Validate,
) {
	api := ratingApi{svc: svc, teacherSvc: teacherSvc, validate: validate}

	studentGroup.GET("/ratings", api.queryByStudent)
	studentGroup.POST("/ratings", api.create, roleMiddleware(user.RoleTeacher))

	rg := g.Group("/ratings/:id", jwt, roleMiddleware(user.StaffRoles...), api.ctxRatingMiddleware)
	rg.GET("", api.retrieve)
	rg.PUT("", api.update, api.authorOrAdminMiddleware)
	rg.DELETE("", api.destroy, api.authorOrAdminMiddleware)
}

func (api *ratingApi) queryByStudent(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}

	ratings, err := api.svc.VisibleByStudent(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "querying ratings")
	}
	if ratings == nil {
		ratings = []rating.Rating{}
	}
	return ctx.JSON(http.StatusOK, ratings)
}

func (api *ratingApi) create(ctx echo.Context) error {
	s, ok := ctx.Get("object").(student.Student)
	if !ok {
		return errors.Wrap(errStdNotFoundInCtx, "retrieving object from context")
	}
	tch, err := contextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return err
	}

	var data rating.NewRating
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRating")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), s.ID, tch.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating rating")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *ratingApi) retrieve(ctx echo.Context) error {
	r, ok := ctx.Get("rating").(rating.Rating)
	if !ok {
		return errors.Wrap(errRtgNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *ratingApi) update(ctx echo.Context) error {
	r, ok := ctx.Get("rating").(rating.Rating)
	if !ok {
		return errors.Wrap(errRtgNotFoundInCtx, "retrieving object from context")
	}

	var data rating.UpdateRating
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRating")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Update(ctx.Request().Context(), r, data)
	if err != nil {
		return errors.Wrap(err, "updating rating")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *ratingApi) destroy(ctx echo.Context) error {
	r, ok := ctx.Get("rating").(rating.Rating)
	if !ok {
		return errors.Wrap(errRtgNotFoundInCtx, "retrieving object from context")
	}

	if err := api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return errors.Wrap(err, "deleting rating")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *ratingApi) ctxRatingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		r, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "finding rating by ID")
		}
		ctx.Set("rating", r)
		return next(ctx)
	}
}

// authorOrAdminMiddleware lets through admins and the teacher who gave the rating.
func (api *ratingApi) authorOrAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		r, ok := ctx.Get("rating").(rating.Rating)
		if !ok {
			return errors.Wrap(errRtgNotFoundInCtx, "retrieving object from context")
		}
		if err := checkAuthorOrAdmin(ctx, api.teacherSvc, r.TeacherID); err != nil {
			return err
		}
		return next(ctx)
	}
}

// checkAuthorOrAdmin returns errHttpForbidden unless the caller is an admin or the teacher authorID.
func checkAuthorOrAdmin(ctx echo.Context, teacherSvc teacher.ServiceInterface, authorID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if user.IsAdminOrAbove(claims.Role) {
		return nil
	}
	tch, err := contextTeacher(ctx, teacherSvc)
	if err != nil {
		return err
	}
	if tch.ID != authorID {
		return errHttpForbidden
	}
	return nil
}
