package rating

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
)

var ErrNotFound = errors.New("rating not found")

type (
	Repository interface {
		CreateRating(ctx context.Context, r Rating, exec ...core.DBExecutor) (Rating, error)
		// QueryRatings returns ratings, newest first, with teacher & subject names.
		QueryRatings(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Rating, error)
		GetRating(ctx context.Context, id string, exec ...core.DBExecutor) (Rating, error)
		UpdateRating(ctx context.Context, r Rating, exec ...core.DBExecutor) (Rating, error)
		DeleteRating(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, studentID, teacherID string, nr NewRating) (Rating, error)
		// VisibleByStudent returns the visible ratings of a student, newest first.
		VisibleByStudent(ctx context.Context, studentID string) ([]Rating, error)
		// VisibleByStudents returns the visible ratings of many students, grouped by student ID.
		VisibleByStudents(ctx context.Context, studentIDs []string) (map[string][]Rating, error)
		GetByID(ctx context.Context, id string) (Rating, error)
		Update(ctx context.Context, r Rating, ur UpdateRating) (Rating, error)
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

func (svc *Service) Create(ctx context.Context, studentID, teacherID string, nr NewRating) (Rating, error) {
	now := time.Now().UTC()
	r := Rating{
		StudentID:  studentID,
		TeacherID:  teacherID,
		SubjectID:  nr.SubjectID,
		Rating:     nr.Rating,
		Comment:    nr.Comment,
		Visibility: nr.Visibility == nil || *nr.Visibility,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := svc.repo.CreateRating(ctx, r)
	if err != nil {
		return Rating{}, err
	}
	// reload to get the joined names
	return svc.repo.GetRating(ctx, created.ID)
}

func (svc *Service) VisibleByStudent(ctx context.Context, studentID string) ([]Rating, error) {
	return svc.repo.QueryRatings(ctx, &QueryFilter{StudentIDs: []string{studentID}, VisibleOnly: true})
}

func (svc *Service) VisibleByStudents(ctx context.Context, studentIDs []string) (map[string][]Rating, error) {
	grouped := make(map[string][]Rating, len(studentIDs))
	if len(studentIDs) == 0 {
		return grouped, nil
	}
	ratings, err := svc.repo.QueryRatings(ctx, &QueryFilter{StudentIDs: studentIDs, VisibleOnly: true})
	if err != nil {
		return nil, err
	}
	for _, r := range ratings {
		grouped[r.StudentID] = append(grouped[r.StudentID], r)
	}
	return grouped, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Rating, error) {
	return svc.repo.GetRating(ctx, id)
}

func (svc *Service) Update(ctx context.Context, r Rating, ur UpdateRating) (Rating, error) {
	if ur.Rating != 0 {
		r.Rating = ur.Rating
	}
	r.Comment = ur.Comment
	if ur.Visibility != nil {
		r.Visibility = *ur.Visibility
	}
	r.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateRating(ctx, r); err != nil {
		return Rating{}, err
	}
	return svc.repo.GetRating(ctx, r.ID)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteRating(ctx, id)
}
