package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/class"
	"github.com/aykutjm/ogrencim/core/guardian"
)

var ErrNotFound = errors.New("student not found")

const defaultChunkSize = 100

type (
	Repository interface {
		// CreateStudents inserts all students in one statement; it either creates them all or none.
		CreateStudents(ctx context.Context, students []Student, exec ...core.DBExecutor) ([]Student, error)
		// QueryStudents returns students ordered by first name, with their class name and guardian.
		QueryStudents(ctx context.Context, filter *QueryFilter, exec ...core.DBExecutor) ([]Student, error)
		// GetStudent returns the student with its class name and guardian.
		GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, s Student, exec ...core.DBExecutor) (Student, error)
		DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Update(ctx context.Context, s Student, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
		Import(ctx context.Context, records []BulkRecord, opts ImportOptions) (ImportResult, error)
		Siblings(ctx context.Context, studentID string) ([]Sibling, error)
	}

	Service struct {
		db           core.DB
		repo         Repository
		classRepo    class.Repository
		guardianRepo guardian.Repository
		chunkSize    int
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, classRepo class.Repository, guardianRepo guardian.Repository, conf *core.Config) *Service {
	chunkSize := conf.Import.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Service{
		db:           db,
		repo:         repo,
		classRepo:    classRepo,
		guardianRepo: guardianRepo,
		chunkSize:    chunkSize,
	}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	created, err := svc.repo.CreateStudents(ctx, []Student{{
		FirstName:     ns.FirstName,
		LastName:      ns.LastName,
		ClassID:       ns.ClassID,
		ParentID:      ns.ParentID,
		InstitutionID: ns.InstitutionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}})
	if err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudent(ctx, created[0].ID)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, s Student, us UpdateStudent) (Student, error) {
	s.FirstName = us.FirstName
	s.LastName = us.LastName
	s.ClassID = us.ClassID
	s.ParentID = us.ParentID
	if us.InstitutionID != "" {
		s.InstitutionID = us.InstitutionID
	}
	s.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateStudent(ctx, s); err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudent(ctx, s.ID)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}
