package inmemdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/guardian"
)

type guardianRepository struct {
	db *DB
}

var _ guardian.Repository = (*guardianRepository)(nil)

func NewGuardianRepository(db *DB) *guardianRepository {
	return &guardianRepository{db: db}
}

func (repo *guardianRepository) emailTaken(email, excludedID string) bool {
	for _, g := range repo.db.guardians {
		if g.Email == email && g.ID != excludedID {
			return true
		}
	}
	return false
}

// CreateGuardians enforces unique emails like the parents table does.
func (repo *guardianRepository) CreateGuardians(_ context.Context, guardians []guardian.Guardian, _ ...core.DBExecutor) ([]guardian.Guardian, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	seen := make(map[string]bool, len(guardians))
	for _, g := range guardians {
		if seen[g.Email] || repo.emailTaken(g.Email, "") {
			return nil, errors.Errorf("duplicate guardian email %q", g.Email)
		}
		seen[g.Email] = true
	}

	created := make([]guardian.Guardian, 0, len(guardians))
	for _, g := range guardians {
		g.ID = newID(g.ID)
		g := g
		repo.db.guardians[g.ID] = &g
		created = append(created, g)
	}
	return created, nil
}

func (repo *guardianRepository) QueryGuardians(_ context.Context, filter *guardian.QueryFilter, _ ...core.DBExecutor) ([]guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var emails map[string]bool
	if filter != nil && filter.Emails != nil {
		emails = make(map[string]bool, len(filter.Emails))
		for _, e := range filter.Emails {
			emails[e] = true
		}
	}

	guardians := make([]guardian.Guardian, 0)
	for _, g := range repo.db.guardians {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, g.FullName, g.Email, g.Phone, g.MotherName, g.FatherName) {
				continue
			}
			if filter.InstitutionID != "" && g.InstitutionID != filter.InstitutionID {
				continue
			}
			if emails != nil && !emails[g.Email] {
				continue
			}
		}
		guardians = append(guardians, *g)
	}
	sort.SliceStable(guardians, func(i, j int) bool { return lessFold(guardians[i].FullName, guardians[j].FullName) })
	return guardians, nil
}

func (repo *guardianRepository) GetGuardian(_ context.Context, filter guardian.GetFilter, _ ...core.DBExecutor) (guardian.Guardian, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if g, ok := repo.db.guardians[filter.ID]; ok {
			return *g, nil
		}
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	if filter.UserID != "" {
		for _, g := range repo.db.guardians {
			if g.UserID == filter.UserID {
				return *g, nil
			}
		}
	}
	return guardian.Guardian{}, guardian.ErrNotFound
}

func (repo *guardianRepository) UpdateGuardian(_ context.Context, g guardian.Guardian, _ ...core.DBExecutor) (guardian.Guardian, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.guardians[g.ID]; !ok {
		return guardian.Guardian{}, guardian.ErrNotFound
	}
	if repo.emailTaken(g.Email, g.ID) {
		return guardian.Guardian{}, core.NewFieldValidationError("email", errTaken)
	}
	repo.db.guardians[g.ID] = &g
	return g, nil
}

// DeleteGuardian unlinks the students of the guardian.
func (repo *guardianRepository) DeleteGuardian(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.guardians[id]; !ok {
		return guardian.ErrNotFound
	}
	delete(repo.db.guardians, id)
	for _, s := range repo.db.students {
		if s.ParentID == id {
			s.ParentID = ""
		}
	}
	return nil
}
