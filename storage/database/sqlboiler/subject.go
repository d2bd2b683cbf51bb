package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/subject"
)

const subjectsTable = "subjects"

var subjectColumns = []string{"id", "name", "description", "institution_id", "created_at", "updated_at"}

type subjectRow struct {
	ID            string      `boil:"id"`
	Name          string      `boil:"name"`
	Description   null.String `boil:"description"`
	InstitutionID null.String `boil:"institution_id"`
	CreatedAt     time.Time   `boil:"created_at"`
	UpdatedAt     time.Time   `boil:"updated_at"`
}

type subjectRepository struct {
	repository
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(exec core.DBExecutor) *subjectRepository {
	return &subjectRepository{repository{exec: exec}}
}

func (repo subjectRepository) boil(sbj subject.Subject) []interface{} {
	return []interface{}{
		sbj.ID,
		sbj.Name,
		nullString(sbj.Description),
		nullString(sbj.InstitutionID),
		sbj.CreatedAt.UTC(),
		sbj.UpdatedAt.UTC(),
	}
}

func (repo subjectRepository) unboil(row *subjectRow) subject.Subject {
	return subject.Subject{
		ID:            row.ID,
		Name:          row.Name,
		Description:   row.Description.String,
		InstitutionID: row.InstitutionID.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sbj subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	sbj.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(subjectsTable, subjectColumns, 1), repo.boil(sbj)...)
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sbj, nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, filter *subject.QueryFilter, exec ...core.DBExecutor) ([]subject.Subject, error) {
	mods := []qm.QueryMod{qm.Select(subjectColumns...), qm.From(quote(subjectsTable)), qm.OrderBy("name")}
	if filter != nil {
		if filter.Search != "" {
			val := searchPattern(filter.Search)
			mods = append(mods, qm.Where("(name ILIKE ? OR description ILIKE ?)", val, val))
		}
		if filter.InstitutionID != "" {
			mods = append(mods, qm.Where("institution_id = ?", filter.InstitutionID))
		}
	}

	var rows []*subjectRow
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, repo.unboil(row))
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubject(ctx context.Context, id string, exec ...core.DBExecutor) (subject.Subject, error) {
	if _, err := uuid.Parse(id); err != nil {
		return subject.Subject{}, subject.ErrNotFound
	}
	row := new(subjectRow)
	q := newQuery(qm.Select(subjectColumns...), qm.From(quote(subjectsTable)), qm.Where("id = ?", id))
	if err := q.Bind(ctx, repo.getExec(exec), row); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "finding subject")
	}
	return repo.unboil(row), nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, sbj subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	args := append(repo.boil(sbj)[1:], sbj.ID)
	err := execOne(ctx, repo.getExec(exec), subject.ErrNotFound, updateQuery(subjectsTable, subjectColumns[1:]), args...)
	if err != nil {
		if err == subject.ErrNotFound {
			return subject.Subject{}, err
		}
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	return sbj, nil
}

func (repo subjectRepository) DeleteSubject(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), subject.ErrNotFound, deleteQuery(subjectsTable), id)
	if err != nil && err != subject.ErrNotFound {
		return errors.Wrap(err, "deleting subject")
	}
	return err
}
