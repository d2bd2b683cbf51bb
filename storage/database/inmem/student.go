package inmemdb

import (
	"context"
	"sort"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// load joins the class name and the guardian.
func (repo *studentRepository) load(s student.Student) student.Student {
	s.ClassName = ""
	s.Guardian = nil
	if cls, ok := repo.db.classes[s.ClassID]; ok {
		s.ClassName = cls.Name
	}
	if g, ok := repo.db.guardians[s.ParentID]; ok {
		g := *g
		s.Guardian = &g
	}
	return s
}

func (repo *studentRepository) CreateStudents(_ context.Context, students []student.Student, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := make([]student.Student, 0, len(students))
	for _, s := range students {
		s.ID = newID(s.ID)
		s.ClassName = ""
		s.Guardian = nil
		s := s
		repo.db.students[s.ID] = &s
		created = append(created, repo.load(s))
	}
	return created, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, _ ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0)
	for _, s := range repo.db.students {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, s.FirstName, s.LastName) {
				continue
			}
			if filter.ClassID != "" && s.ClassID != filter.ClassID {
				continue
			}
			if filter.ParentID != "" && s.ParentID != filter.ParentID {
				continue
			}
			if filter.InstitutionID != "" && s.InstitutionID != filter.InstitutionID {
				continue
			}
			if filter.ExcludeID != "" && s.ID == filter.ExcludeID {
				continue
			}
			if filter.HasGuardian && s.ParentID == "" {
				continue
			}
		}
		students = append(students, repo.load(*s))
	}
	sort.SliceStable(students, func(i, j int) bool { return lessFold(students[i].FirstName, students[j].FirstName) })
	return students, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return repo.load(*s), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student, _ ...core.DBExecutor) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	s.ClassName = ""
	s.Guardian = nil
	repo.db.students[s.ID] = &s
	return repo.load(s), nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.students, id)
	// cascade
	for rid, r := range repo.db.ratings {
		if r.StudentID == id {
			delete(repo.db.ratings, rid)
		}
	}
	for mid, m := range repo.db.meetings {
		if m.StudentID == id {
			delete(repo.db.meetings, mid)
		}
	}
	return nil
}
