package inmemdb

import (
	"context"
	"sort"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cls.ID = newID(cls.ID)
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) QueryClasses(_ context.Context, filter *class.QueryFilter, _ ...core.DBExecutor) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, cls.Name) {
				continue
			}
			if filter.InstitutionID != "" && cls.InstitutionID != filter.InstitutionID {
				continue
			}
		}
		classes = append(classes, *cls)
	}
	sort.SliceStable(classes, func(i, j int) bool { return lessFold(classes[i].Name, classes[j].Name) })
	return classes, nil
}

func (repo *classRepository) GetClass(_ context.Context, id string, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class, _ ...core.DBExecutor) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[cls.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return class.ErrNotFound
	}
	delete(repo.db.classes, id)
	for _, s := range repo.db.students {
		if s.ClassID == id {
			s.ClassID = ""
		}
	}
	return nil
}
