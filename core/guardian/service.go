package guardian

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
)

var ErrNotFound = errors.New("guardian not found")

// CreateError is returned when the guardians of an import could not be created.
type CreateError struct {
	Err error
}

func (e *CreateError) Error() string {
	return "parent records could not be created: " + e.Err.Error()
}

type (
	Repository interface {
		// CreateGuardians inserts all guardians at once; it either creates them all or none.
		CreateGuardians(ctx context.Context, guardians []Guardian, exec ...core.DBExecutor) ([]Guardian, error)
		// QueryGuardians returns guardians ordered by full name.
		QueryGuardians(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Guardian, error)
		GetGuardian(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Guardian, error)
		UpdateGuardian(ctx context.Context, g Guardian, exec ...core.DBExecutor) (Guardian, error)
		DeleteGuardian(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Query(ctx context.Context, filter *QueryFilter) ([]Guardian, error)
		GetByID(ctx context.Context, id string) (Guardian, error)
		GetByUserID(ctx context.Context, userID string) (Guardian, error)
		Update(ctx context.Context, g Guardian, ug UpdateGuardian) (Guardian, error)
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

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Guardian, error) {
	return svc.repo.QueryGuardians(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Guardian, error) {
	return svc.repo.GetGuardian(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Guardian, error) {
	return svc.repo.GetGuardian(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Update(ctx context.Context, g Guardian, ug UpdateGuardian) (Guardian, error) {
	g.FullName = ug.FullName
	g.Email = ug.Email
	g.Phone = ug.Phone
	g.MotherName = ug.MotherName
	g.MotherPhone = ug.MotherPhone
	g.FatherName = ug.FatherName
	g.FatherPhone = ug.FatherPhone
	if ug.UserID != nil {
		g.UserID = *ug.UserID
	}
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGuardian(ctx, g)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteGuardian(ctx, id)
}

// Resolution maps guardian keys (emails) to guardian IDs.
type Resolution struct {
	IDs      map[string]string
	Existing int
	Created  int
}

// Resolve finds or creates one Guardian per pending record, matching on Email.
// pending must hold one record per email. Records already stored are reused;
// the others are created in a single bulk insert. A failed insert returns a *CreateError.
func Resolve(ctx context.Context, repo Repository, pending []Guardian, institutionID string, exec ...core.DBExecutor) (Resolution, error) {
	res := Resolution{IDs: make(map[string]string, len(pending))}
	if len(pending) == 0 {
		return res, nil
	}

	emails := make([]string, 0, len(pending))
	for _, g := range pending {
		emails = append(emails, g.Email)
	}
	existing, err := repo.QueryGuardians(ctx, &QueryFilter{Emails: emails}, exec...)
	if err != nil {
		return Resolution{}, errors.Wrap(err, "querying existing guardians")
	}
	for _, g := range existing {
		res.IDs[g.Email] = g.ID
	}
	res.Existing = len(existing)

	now := time.Now().UTC()
	toCreate := make([]Guardian, 0, len(pending))
	for _, g := range pending {
		if _, ok := res.IDs[g.Email]; ok {
			continue
		}
		g.InstitutionID = institutionID
		g.CreatedAt = now
		g.UpdatedAt = now
		toCreate = append(toCreate, g)
	}
	if len(toCreate) == 0 {
		return res, nil
	}

	created, err := repo.CreateGuardians(ctx, toCreate, exec...)
	if err != nil {
		return Resolution{}, &CreateError{Err: err}
	}
	for _, g := range created {
		res.IDs[g.Email] = g.ID
	}
	res.Created = len(created)
	return res, nil
}
