package inmemdb

import (
	"context"
	"sort"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/institution"
)

type institutionRepository struct {
	db *DB
}

var _ institution.Repository = (*institutionRepository)(nil)

func NewInstitutionRepository(db *DB) *institutionRepository {
	return &institutionRepository{db: db}
}

func (repo *institutionRepository) CreateInstitution(_ context.Context, inst institution.Institution, _ ...core.DBExecutor) (institution.Institution, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	inst.ID = newID(inst.ID)
	repo.db.institutions[inst.ID] = &inst
	return inst, nil
}

func (repo *institutionRepository) QueryInstitutions(_ context.Context, filter *institution.QueryFilter, _ ...core.DBExecutor) ([]institution.Institution, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	insts := make([]institution.Institution, 0, len(repo.db.institutions))
	for _, inst := range repo.db.institutions {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, inst.Name, inst.Email) {
				continue
			}
			if filter.IsActive != nil && inst.IsActive != *filter.IsActive {
				continue
			}
		}
		insts = append(insts, *inst)
	}
	sort.SliceStable(insts, func(i, j int) bool { return lessFold(insts[i].Name, insts[j].Name) })
	return insts, nil
}

func (repo *institutionRepository) GetInstitution(_ context.Context, id string, _ ...core.DBExecutor) (institution.Institution, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inst, ok := repo.db.institutions[id]; ok {
		return *inst, nil
	}
	return institution.Institution{}, institution.ErrNotFound
}

func (repo *institutionRepository) UpdateInstitution(_ context.Context, inst institution.Institution, _ ...core.DBExecutor) (institution.Institution, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.institutions[inst.ID]; !ok {
		return institution.Institution{}, institution.ErrNotFound
	}
	repo.db.institutions[inst.ID] = &inst
	return inst, nil
}

func (repo *institutionRepository) DeleteInstitution(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.institutions[id]; !ok {
		return institution.ErrNotFound
	}
	delete(repo.db.institutions, id)
	return nil
}

func (repo *institutionRepository) GetInstitutionStats(_ context.Context, id string, _ ...core.DBExecutor) (institution.Stats, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var stats institution.Stats
	for _, t := range repo.db.teachers {
		if t.InstitutionID == id {
			stats.Teachers++
		}
	}
	for _, s := range repo.db.students {
		if s.InstitutionID == id {
			stats.Students++
		}
	}
	for _, c := range repo.db.classes {
		if c.InstitutionID == id {
			stats.Classes++
		}
	}
	for _, g := range repo.db.guardians {
		if g.InstitutionID == id {
			stats.Parents++
		}
	}
	return stats, nil
}
