package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
)

var ErrNotFound = errors.New("subject not found")

type (
	Repository interface {
		CreateSubject(ctx context.Context, sbj Subject, exec ...core.DBExecutor) (Subject, error)
		// QuerySubjects returns subjects ordered by name.
		QuerySubjects(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Subject, error)
		GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (Subject, error)
		UpdateSubject(ctx context.Context, sbj Subject, exec ...core.DBExecutor) (Subject, error)
		DeleteSubject(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewSubject) (Subject, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Subject, error)
		GetByID(ctx context.Context, id string) (Subject, error)
		Update(ctx context.Context, sbj Subject, us UpdateSubject) (Subject, error)
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

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	return svc.repo.CreateSubject(ctx, Subject{
		Name:          ns.Name,
		Description:   ns.Description,
		InstitutionID: ns.InstitutionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) Update(ctx context.Context, sbj Subject, us UpdateSubject) (Subject, error) {
	sbj.Name = us.Name
	sbj.Description = us.Description
	if us.InstitutionID != "" {
		sbj.InstitutionID = us.InstitutionID
	}
	sbj.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, sbj)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}
