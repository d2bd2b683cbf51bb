package inmemdb

import (
	"context"
	"sort"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/rating"
)

type ratingRepository struct {
	db *DB
}

var _ rating.Repository = (*ratingRepository)(nil)

func NewRatingRepository(db *DB) *ratingRepository {
	return &ratingRepository{db: db}
}

// load joins the teacher and subject names.
func (repo *ratingRepository) load(r rating.Rating) rating.Rating {
	r.TeacherName, r.TeacherEmail, r.SubjectName = "", "", ""
	if tch, ok := repo.db.teachers[r.TeacherID]; ok {
		r.TeacherName = tch.FullName
		r.TeacherEmail = tch.Email
	}
	if sbj, ok := repo.db.subjects[r.SubjectID]; ok {
		r.SubjectName = sbj.Name
	}
	return r
}

func (repo *ratingRepository) CreateRating(_ context.Context, r rating.Rating, _ ...core.DBExecutor) (rating.Rating, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = newID(r.ID)
	repo.db.ratings[r.ID] = &r
	return repo.load(r), nil
}

func (repo *ratingRepository) QueryRatings(_ context.Context, filter *rating.QueryFilter, _ ...core.DBExecutor) ([]rating.Rating, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var studentIDs map[string]bool
	if filter != nil && filter.StudentIDs != nil {
		studentIDs = make(map[string]bool, len(filter.StudentIDs))
		for _, id := range filter.StudentIDs {
			studentIDs[id] = true
		}
	}

	ratings := make([]rating.Rating, 0)
	for _, r := range repo.db.ratings {
		if filter != nil {
			if studentIDs != nil && !studentIDs[r.StudentID] {
				continue
			}
			if filter.TeacherID != "" && r.TeacherID != filter.TeacherID {
				continue
			}
			if filter.SubjectID != "" && r.SubjectID != filter.SubjectID {
				continue
			}
			if filter.VisibleOnly && !r.Visibility {
				continue
			}
		}
		ratings = append(ratings, repo.load(*r))
	}
	sort.SliceStable(ratings, func(i, j int) bool { return ratings[i].CreatedAt.After(ratings[j].CreatedAt) })
	return ratings, nil
}

func (repo *ratingRepository) GetRating(_ context.Context, id string, _ ...core.DBExecutor) (rating.Rating, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.ratings[id]; ok {
		return repo.load(*r), nil
	}
	return rating.Rating{}, rating.ErrNotFound
}

func (repo *ratingRepository) UpdateRating(_ context.Context, r rating.Rating, _ ...core.DBExecutor) (rating.Rating, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.ratings[r.ID]; !ok {
		return rating.Rating{}, rating.ErrNotFound
	}
	repo.db.ratings[r.ID] = &r
	return repo.load(r), nil
}

func (repo *ratingRepository) DeleteRating(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.ratings[id]; !ok {
		return rating.ErrNotFound
	}
	delete(repo.db.ratings, id)
	return nil
}
