package class

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		CreateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		// QueryClasses returns classes ordered by name.
		QueryClasses(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Class, error)
		GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (Class, error)
		UpdateClass(ctx context.Context, cls Class, exec ...core.DBExecutor) (Class, error)
		DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Class, error)
		GetByID(ctx context.Context, id string) (Class, error)
		Update(ctx context.Context, cls Class, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NameIndex maps class names to class IDs. Later duplicates of a name win.
func NameIndex(classes []Class) map[string]string {
	idx := make(map[string]string, len(classes))
	for _, cls := range classes {
		idx[cls.Name] = cls.ID
	}
	return idx
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	return svc.repo.CreateClass(ctx, Class{
		Name:          nc.Name,
		GradeLevel:    nc.GradeLevel,
		AcademicYear:  nc.AcademicYear,
		InstitutionID: nc.InstitutionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *Service) Update(ctx context.Context, cls Class, uc UpdateClass) (Class, error) {
	cls.Name = uc.Name
	cls.GradeLevel = uc.GradeLevel
	cls.AcademicYear = uc.AcademicYear
	if uc.InstitutionID != "" {
		cls.InstitutionID = uc.InstitutionID
	}
	cls.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, cls)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteClass(ctx, id)
}
