package institution

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
)

var ErrNotFound = errors.New("institution not found")

type (
	Repository interface {
		CreateInstitution(ctx context.Context, inst Institution, exec ...core.DBExecutor) (Institution, error)
		// QueryInstitutions returns institutions ordered by name.
		QueryInstitutions(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Institution, error)
		GetInstitution(ctx context.Context, id string, exec ...core.DBExecutor) (Institution, error)
		UpdateInstitution(ctx context.Context, inst Institution, exec ...core.DBExecutor) (Institution, error)
		DeleteInstitution(ctx context.Context, id string, exec ...core.DBExecutor) error
		GetInstitutionStats(ctx context.Context, id string, exec ...core.DBExecutor) (Stats, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ni NewInstitution) (Institution, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Institution, error)
		GetByID(ctx context.Context, id string) (Institution, error)
		Update(ctx context.Context, inst Institution, ui UpdateInstitution) (Institution, error)
		Delete(ctx context.Context, id string) error
		Stats(ctx context.Context, id string) (Stats, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, ni NewInstitution) (Institution, error) {
	now := time.Now().UTC()
	inst := Institution{
		Name:      ni.Name,
		Address:   ni.Address,
		Phone:     ni.Phone,
		Email:     ni.Email,
		LogoURL:   ni.LogoURL,
		IsActive:  ni.IsActive == nil || *ni.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateInstitution(ctx, inst)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Institution, error) {
	return svc.repo.QueryInstitutions(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Institution, error) {
	return svc.repo.GetInstitution(ctx, id)
}

func (svc *Service) Update(ctx context.Context, inst Institution, ui UpdateInstitution) (Institution, error) {
	inst.Name = ui.Name
	inst.Address = ui.Address
	inst.Phone = ui.Phone
	inst.Email = ui.Email
	inst.LogoURL = ui.LogoURL
	if ui.IsActive != nil {
		inst.IsActive = *ui.IsActive
	}
	inst.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateInstitution(ctx, inst)
}

// Delete removes an Institution unless teachers or students still reference it (*InUseError).
func (svc *Service) Delete(ctx context.Context, id string) error {
	return core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		stats, err := svc.repo.GetInstitutionStats(ctx, id, exec)
		if err != nil {
			return errors.Wrap(err, "counting institution records")
		}
		if stats.Teachers > 0 || stats.Students > 0 {
			return &InUseError{Teachers: stats.Teachers, Students: stats.Students}
		}
		return svc.repo.DeleteInstitution(ctx, id, exec)
	})
}

func (svc *Service) Stats(ctx context.Context, id string) (Stats, error) {
	if _, err := svc.repo.GetInstitution(ctx, id); err != nil {
		return Stats{}, err
	}
	return svc.repo.GetInstitutionStats(ctx, id)
}
