package inmemdb

import (
	"context"
	"sort"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(_ context.Context, sbj subject.Subject, _ ...core.DBExecutor) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sbj.ID = newID(sbj.ID)
	repo.db.subjects[sbj.ID] = &sbj
	return sbj, nil
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, filter *subject.QueryFilter, _ ...core.DBExecutor) ([]subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, sbj := range repo.db.subjects {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, sbj.Name, sbj.Description) {
				continue
			}
			if filter.InstitutionID != "" && sbj.InstitutionID != filter.InstitutionID {
				continue
			}
		}
		subjects = append(subjects, *sbj)
	}
	sort.SliceStable(subjects, func(i, j int) bool { return lessFold(subjects[i].Name, subjects[j].Name) })
	return subjects, nil
}

func (repo *subjectRepository) GetSubject(_ context.Context, id string, _ ...core.DBExecutor) (subject.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sbj, ok := repo.db.subjects[id]; ok {
		return *sbj, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(_ context.Context, sbj subject.Subject, _ ...core.DBExecutor) (subject.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[sbj.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	repo.db.subjects[sbj.ID] = &sbj
	return sbj, nil
}

func (repo *subjectRepository) DeleteSubject(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrNotFound
	}
	delete(repo.db.subjects, id)
	for _, t := range repo.db.teachers {
		if t.SubjectID == id {
			t.SubjectID = ""
		}
	}
	for rid, r := range repo.db.ratings {
		if r.SubjectID == id {
			delete(repo.db.ratings, rid)
		}
	}
	return nil
}
