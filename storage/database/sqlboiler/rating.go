package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/rating"
)

const ratingsTable = "skill_ratings"

var ratingColumns = []string{"id", "student_id", "teacher_id", "subject_id", "rating", "comment", "visibility", "created_at", "updated_at"}

type ratingRow struct {
	ID           string      `boil:"id"`
	StudentID    string      `boil:"student_id"`
	TeacherID    string      `boil:"teacher_id"`
	SubjectID    string      `boil:"subject_id"`
	Rating       int         `boil:"rating"`
	Comment      null.String `boil:"comment"`
	Visibility   bool        `boil:"visibility"`
	CreatedAt    time.Time   `boil:"created_at"`
	UpdatedAt    time.Time   `boil:"updated_at"`
	TeacherName  null.String `boil:"teacher_name"`
	TeacherEmail null.String `boil:"teacher_email"`
	SubjectName  null.String `boil:"subject_name"`
}

type ratingRepository struct {
	repository
}

var _ rating.Repository = (*ratingRepository)(nil)

func NewRatingRepository(exec core.DBExecutor) *ratingRepository {
	return &ratingRepository{repository{exec: exec}}
}

func (repo ratingRepository) boil(r rating.Rating) []interface{} {
	return []interface{}{
		r.ID,
		r.StudentID,
		r.TeacherID,
		r.SubjectID,
		r.Rating,
		nullString(r.Comment),
		r.Visibility,
		r.CreatedAt.UTC(),
		r.UpdatedAt.UTC(),
	}
}

func (repo ratingRepository) unboil(row *ratingRow) rating.Rating {
	return rating.Rating{
		ID:           row.ID,
		StudentID:    row.StudentID,
		TeacherID:    row.TeacherID,
		SubjectID:    row.SubjectID,
		Rating:       row.Rating,
		Comment:      row.Comment.String,
		Visibility:   row.Visibility,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		TeacherName:  row.TeacherName.String,
		TeacherEmail: row.TeacherEmail.String,
		SubjectName:  row.SubjectName.String,
	}
}

func selectRatings(mods ...qm.QueryMod) []qm.QueryMod {
	cols := make([]string, 0, len(ratingColumns)+3)
	for _, col := range ratingColumns {
		cols = append(cols, "r."+col)
	}
	cols = append(cols, "t.full_name AS teacher_name", "t.email AS teacher_email", "sb.name AS subject_name")
	return append([]qm.QueryMod{
		qm.Select(cols...),
		qm.From(quote(ratingsTable) + " AS r"),
		qm.LeftOuterJoin(quote(teachersTable) + " AS t ON t.id = r.teacher_id"),
		qm.LeftOuterJoin(quote(subjectsTable) + " AS sb ON sb.id = r.subject_id"),
	}, mods...)
}

func (repo ratingRepository) CreateRating(ctx context.Context, r rating.Rating, exec ...core.DBExecutor) (rating.Rating, error) {
	r.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(ratingsTable, ratingColumns, 1), repo.boil(r)...)
	if err != nil {
		return rating.Rating{}, errors.Wrap(err, "inserting rating")
	}
	return r, nil
}

func (repo ratingRepository) QueryRatings(ctx context.Context, filter *rating.QueryFilter, exec ...core.DBExecutor) ([]rating.Rating, error) {
	var mods []qm.QueryMod
	if filter != nil {
		if filter.StudentIDs != nil {
			mods = append(mods, qm.Where("r.student_id = ANY(?)", pq.Array(filter.StudentIDs)))
		}
		if filter.TeacherID != "" {
			mods = append(mods, qm.Where("r.teacher_id = ?", filter.TeacherID))
		}
		if filter.SubjectID != "" {
			mods = append(mods, qm.Where("r.subject_id = ?", filter.SubjectID))
		}
		if filter.VisibleOnly {
			mods = append(mods, qm.Where("r.visibility"))
		}
	}
	mods = append(mods, qm.OrderBy("r.created_at DESC"))

	var rows []*ratingRow
	if err := newQuery(selectRatings(mods...)...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying ratings")
	}
	ratings := make([]rating.Rating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, repo.unboil(row))
	}
	return ratings, nil
}

func (repo ratingRepository) GetRating(ctx context.Context, id string, exec ...core.DBExecutor) (rating.Rating, error) {
	if _, err := uuid.Parse(id); err != nil {
		return rating.Rating{}, rating.ErrNotFound
	}
	row := new(ratingRow)
	if err := newQuery(selectRatings(qm.Where("r.id = ?", id))...).Bind(ctx, repo.getExec(exec), row); err != nil {
		return rating.Rating{}, trapNoRowsErr(err, rating.ErrNotFound, "finding rating")
	}
	return repo.unboil(row), nil
}

func (repo ratingRepository) UpdateRating(ctx context.Context, r rating.Rating, exec ...core.DBExecutor) (rating.Rating, error) {
	args := append(repo.boil(r)[1:], r.ID)
	err := execOne(ctx, repo.getExec(exec), rating.ErrNotFound, updateQuery(ratingsTable, ratingColumns[1:]), args...)
	if err != nil {
		if err == rating.ErrNotFound {
			return rating.Rating{}, err
		}
		return rating.Rating{}, errors.Wrap(err, "updating rating")
	}
	return r, nil
}

func (repo ratingRepository) DeleteRating(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), rating.ErrNotFound, deleteQuery(ratingsTable), id)
	if err != nil && err != rating.ErrNotFound {
		return errors.Wrap(err, "deleting rating")
	}
	return err
}
