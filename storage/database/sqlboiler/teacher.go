package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/teacher"
)

const teachersTable = "teachers"

var teacherColumns = []string{"id", "user_id", "full_name", "email", "subject_id", "institution_id", "created_at", "updated_at"}

type teacherRow struct {
	ID            string      `boil:"id"`
	UserID        string      `boil:"user_id"`
	FullName      string      `boil:"full_name"`
	Email         string      `boil:"email"`
	SubjectID     null.String `boil:"subject_id"`
	SubjectName   null.String `boil:"subject_name"`
	InstitutionID null.String `boil:"institution_id"`
	CreatedAt     time.Time   `boil:"created_at"`
	UpdatedAt     time.Time   `boil:"updated_at"`
}

type teacherRepository struct {
	repository
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{repository{exec: exec}}
}

func (repo teacherRepository) boil(tch teacher.Teacher) []interface{} {
	return []interface{}{
		tch.ID,
		tch.UserID,
		tch.FullName,
		tch.Email,
		nullString(tch.SubjectID),
		nullString(tch.InstitutionID),
		tch.CreatedAt.UTC(),
		tch.UpdatedAt.UTC(),
	}
}

func (repo teacherRepository) unboil(row *teacherRow) teacher.Teacher {
	return teacher.Teacher{
		ID:            row.ID,
		UserID:        row.UserID,
		FullName:      row.FullName,
		Email:         row.Email,
		SubjectID:     row.SubjectID.String,
		SubjectName:   row.SubjectName.String,
		InstitutionID: row.InstitutionID.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// selectTeachers selects teachers along with the name of their subject.
func selectTeachers(mods ...qm.QueryMod) []qm.QueryMod {
	return append([]qm.QueryMod{
		qm.Select(
			"t.id", "t.user_id", "t.full_name", "t.email", "t.subject_id",
			"s.name AS subject_name", "t.institution_id", "t.created_at", "t.updated_at",
		),
		qm.From(quote(teachersTable) + " AS t"),
		qm.LeftOuterJoin(quote(subjectsTable) + " AS s ON s.id = t.subject_id"),
	}, mods...)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	tch.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(teachersTable, teacherColumns, 1), repo.boil(tch)...)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.Teacher{}, core.NewFieldValidationError("user_id", errors.New("already taken"))
		}
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return repo.GetTeacher(ctx, teacher.GetFilter{ID: tch.ID}, exec...)
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, filter *teacher.QueryFilter, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	var mods []qm.QueryMod
	if filter != nil {
		if filter.Search != "" {
			val := searchPattern(filter.Search)
			mods = append(mods, qm.Where("(t.full_name ILIKE ? OR t.email ILIKE ?)", val, val))
		}
		if filter.SubjectID != "" {
			mods = append(mods, qm.Where("t.subject_id = ?", filter.SubjectID))
		}
		if filter.InstitutionID != "" {
			mods = append(mods, qm.Where("t.institution_id = ?", filter.InstitutionID))
		}
	}
	mods = append(mods, qm.OrderBy("t.full_name"))

	var rows []*teacherRow
	if err := newQuery(selectTeachers(mods...)...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, repo.unboil(row))
	}
	return teachers, nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var where qm.QueryMod
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		where = qm.Where("t.id = ?", filter.ID)
	case filter.UserID != "":
		if _, err := uuid.Parse(filter.UserID); err != nil {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		where = qm.Where("t.user_id = ?", filter.UserID)
	default:
		return teacher.Teacher{}, teacher.ErrNotFound
	}

	row := new(teacherRow)
	if err := newQuery(selectTeachers(where)...).Bind(ctx, repo.getExec(exec), row); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "finding teacher")
	}
	return repo.unboil(row), nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	args := append(repo.boil(tch)[1:], tch.ID)
	err := execOne(ctx, repo.getExec(exec), teacher.ErrNotFound, updateQuery(teachersTable, teacherColumns[1:]), args...)
	if err != nil {
		if err == teacher.ErrNotFound {
			return teacher.Teacher{}, err
		}
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	return repo.GetTeacher(ctx, teacher.GetFilter{ID: tch.ID}, exec...)
}

func (repo teacherRepository) DeleteTeacher(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), teacher.ErrNotFound, deleteQuery(teachersTable), id)
	if err != nil && err != teacher.ErrNotFound {
		return errors.Wrap(err, "deleting teacher")
	}
	return err
}
