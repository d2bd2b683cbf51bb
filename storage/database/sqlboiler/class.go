package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/class"
)

const classesTable = "classes"

var classColumns = []string{"id", "name", "grade_level", "academic_year", "institution_id", "created_at", "updated_at"}

type classRow struct {
	ID            string      `boil:"id"`
	Name          string      `boil:"name"`
	GradeLevel    null.Int    `boil:"grade_level"`
	AcademicYear  null.String `boil:"academic_year"`
	InstitutionID null.String `boil:"institution_id"`
	CreatedAt     time.Time   `boil:"created_at"`
	UpdatedAt     time.Time   `boil:"updated_at"`
}

type classRepository struct {
	repository
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(exec core.DBExecutor) *classRepository {
	return &classRepository{repository{exec: exec}}
}

func (repo classRepository) boil(cls class.Class) []interface{} {
	return []interface{}{
		cls.ID,
		cls.Name,
		null.IntFromPtr(cls.GradeLevel),
		nullString(cls.AcademicYear),
		nullString(cls.InstitutionID),
		cls.CreatedAt.UTC(),
		cls.UpdatedAt.UTC(),
	}
}

func (repo classRepository) unboil(row *classRow) class.Class {
	return class.Class{
		ID:            row.ID,
		Name:          row.Name,
		GradeLevel:    row.GradeLevel.Ptr(),
		AcademicYear:  row.AcademicYear.String,
		InstitutionID: row.InstitutionID.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	cls.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(classesTable, classColumns, 1), repo.boil(cls)...)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo classRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, exec ...core.DBExecutor) ([]class.Class, error) {
	mods := []qm.QueryMod{qm.Select(classColumns...), qm.From(quote(classesTable)), qm.OrderBy("name")}
	if filter != nil {
		if filter.Search != "" {
			mods = append(mods, qm.Where("name ILIKE ?", searchPattern(filter.Search)))
		}
		if filter.InstitutionID != "" {
			mods = append(mods, qm.Where("institution_id = ?", filter.InstitutionID))
		}
	}

	var rows []*classRow
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, repo.unboil(row))
	}
	return classes, nil
}

func (repo classRepository) GetClass(ctx context.Context, id string, exec ...core.DBExecutor) (class.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return class.Class{}, class.ErrNotFound
	}
	row := new(classRow)
	q := newQuery(qm.Select(classColumns...), qm.From(quote(classesTable)), qm.Where("id = ?", id))
	if err := q.Bind(ctx, repo.getExec(exec), row); err != nil {
		return class.Class{}, trapNoRowsErr(err, class.ErrNotFound, "finding class")
	}
	return repo.unboil(row), nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class, exec ...core.DBExecutor) (class.Class, error) {
	args := append(repo.boil(cls)[1:], cls.ID)
	err := execOne(ctx, repo.getExec(exec), class.ErrNotFound, updateQuery(classesTable, classColumns[1:]), args...)
	if err != nil {
		if err == class.ErrNotFound {
			return class.Class{}, err
		}
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	return cls, nil
}

func (repo classRepository) DeleteClass(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), class.ErrNotFound, deleteQuery(classesTable), id)
	if err != nil && err != class.ErrNotFound {
		return errors.Wrap(err, "deleting class")
	}
	return err
}
