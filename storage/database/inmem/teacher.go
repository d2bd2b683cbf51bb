package inmemdb

import (
	"context"
	"sort"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

// load joins the subject name.
func (repo *teacherRepository) load(tch teacher.Teacher) teacher.Teacher {
	tch.SubjectName = ""
	if sbj, ok := repo.db.subjects[tch.SubjectID]; ok {
		tch.SubjectName = sbj.Name
	}
	return tch
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, tch teacher.Teacher, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, t := range repo.db.teachers {
		if t.UserID == tch.UserID {
			return teacher.Teacher{}, core.NewFieldValidationError("user_id", errTaken)
		}
	}
	tch.ID = newID(tch.ID)
	tch.SubjectName = ""
	repo.db.teachers[tch.ID] = &tch
	return repo.load(tch), nil
}

func (repo *teacherRepository) QueryTeachers(_ context.Context, filter *teacher.QueryFilter, _ ...core.DBExecutor) ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, tch.FullName, tch.Email) {
				continue
			}
			if filter.SubjectID != "" && tch.SubjectID != filter.SubjectID {
				continue
			}
			if filter.InstitutionID != "" && tch.InstitutionID != filter.InstitutionID {
				continue
			}
		}
		teachers = append(teachers, repo.load(*tch))
	}
	sort.SliceStable(teachers, func(i, j int) bool { return lessFold(teachers[i].FullName, teachers[j].FullName) })
	return teachers, nil
}

func (repo *teacherRepository) GetTeacher(_ context.Context, filter teacher.GetFilter, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if tch, ok := repo.db.teachers[filter.ID]; ok {
			return repo.load(*tch), nil
		}
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if filter.UserID != "" {
		for _, tch := range repo.db.teachers {
			if tch.UserID == filter.UserID {
				return repo.load(*tch), nil
			}
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, tch teacher.Teacher, _ ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[tch.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	tch.SubjectName = ""
	repo.db.teachers[tch.ID] = &tch
	return repo.load(tch), nil
}

func (repo *teacherRepository) DeleteTeacher(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[id]; !ok {
		return teacher.ErrNotFound
	}
	delete(repo.db.teachers, id)
	// cascade
	for rid, r := range repo.db.ratings {
		if r.TeacherID == id {
			delete(repo.db.ratings, rid)
		}
	}
	for mid, m := range repo.db.meetings {
		if m.TeacherID == id {
			delete(repo.db.meetings, mid)
		}
	}
	return nil
}
