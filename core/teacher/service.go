package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/user"
)

var ErrNotFound = errors.New("teacher not found")

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		// QueryTeachers returns teachers ordered by full name.
		QueryTeachers(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Teacher, error)
		GetTeacher(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeacher(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Teacher, error)
		GetByID(ctx context.Context, id string) (Teacher, error)
		GetByUserID(ctx context.Context, userID string) (Teacher, error)
		Update(ctx context.Context, tch Teacher, ut UpdateTeacher) (Teacher, error)
		Delete(ctx context.Context, tch Teacher) error
	}

	Service struct {
		db     core.DB
		repo   Repository
		usrSvc user.ServiceInterface
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, usrSvc user.ServiceInterface) *Service {
	return &Service{db: db, repo: repo, usrSvc: usrSvc}
}

// Create creates the teacher login and the Teacher record in a single transaction.
func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	var tch Teacher
	err := core.RunInTx(ctx, svc.db, func(exec core.DBExecutor) error {
		usr, err := svc.usrSvc.Create(ctx, nt.userData(), exec)
		if err != nil {
			return errors.Wrap(err, "creating teacher user")
		}

		now := time.Now().UTC()
		tch, err = svc.repo.CreateTeacher(ctx, Teacher{
			UserID:        usr.ID,
			FullName:      nt.FullName,
			Email:         nt.Email,
			SubjectID:     nt.SubjectID,
			InstitutionID: nt.InstitutionID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}, exec)
		return errors.Wrap(err, "creating teacher")
	})
	if err != nil {
		return Teacher{}, err
	}
	return tch, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Update(ctx context.Context, tch Teacher, ut UpdateTeacher) (Teacher, error) {
	tch.FullName = ut.FullName
	tch.Email = ut.Email
	tch.SubjectID = ut.SubjectID
	if ut.InstitutionID != "" {
		tch.InstitutionID = ut.InstitutionID
	}
	tch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, tch)
}

// Delete removes the Teacher, then their login.
func (svc *Service) Delete(ctx context.Context, tch Teacher) error {
	if err := svc.repo.DeleteTeacher(ctx, tch.ID); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return errors.Wrap(svc.usrSvc.Delete(ctx, tch.UserID), "deleting teacher user")
}
