package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/guardian"
	"github.com/aykutjm/ogrencim/core/student"
)

const studentsTable = "students"

var studentColumns = []string{"id", "first_name", "last_name", "class_id", "parent_id", "institution_id", "created_at", "updated_at"}

// studentRow is a student joined with its class name and guardian (g_ columns).
type studentRow struct {
	ID            string      `boil:"id"`
	FirstName     string      `boil:"first_name"`
	LastName      string      `boil:"last_name"`
	ClassID       null.String `boil:"class_id"`
	ParentID      null.String `boil:"parent_id"`
	InstitutionID null.String `boil:"institution_id"`
	CreatedAt     time.Time   `boil:"created_at"`
	UpdatedAt     time.Time   `boil:"updated_at"`
	ClassName     null.String `boil:"class_name"`

	GuardianID            null.String `boil:"g_id"`
	GuardianUserID        null.String `boil:"g_user_id"`
	GuardianFullName      null.String `boil:"g_full_name"`
	GuardianEmail         null.String `boil:"g_email"`
	GuardianPhone         null.String `boil:"g_phone"`
	GuardianMotherName    null.String `boil:"g_mother_name"`
	GuardianMotherPhone   null.String `boil:"g_mother_phone"`
	GuardianFatherName    null.String `boil:"g_father_name"`
	GuardianFatherPhone   null.String `boil:"g_father_phone"`
	GuardianInstitutionID null.String `boil:"g_institution_id"`
	GuardianCreatedAt     null.Time   `boil:"g_created_at"`
	GuardianUpdatedAt     null.Time   `boil:"g_updated_at"`
}

type studentRepository struct {
	repository
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{repository{exec: exec}}
}

func (repo studentRepository) boil(s student.Student) []interface{} {
	return []interface{}{
		s.ID,
		s.FirstName,
		s.LastName,
		nullString(s.ClassID),
		nullString(s.ParentID),
		nullString(s.InstitutionID),
		s.CreatedAt.UTC(),
		s.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) unboil(row *studentRow) student.Student {
	s := student.Student{
		ID:            row.ID,
		FirstName:     row.FirstName,
		LastName:      row.LastName,
		ClassID:       row.ClassID.String,
		ParentID:      row.ParentID.String,
		InstitutionID: row.InstitutionID.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		ClassName:     row.ClassName.String,
	}
	if row.GuardianID.Valid {
		s.Guardian = &guardian.Guardian{
			ID:            row.GuardianID.String,
			UserID:        row.GuardianUserID.String,
			FullName:      row.GuardianFullName.String,
			Email:         row.GuardianEmail.String,
			Phone:         row.GuardianPhone.String,
			MotherName:    row.GuardianMotherName.String,
			MotherPhone:   row.GuardianMotherPhone.String,
			FatherName:    row.GuardianFatherName.String,
			FatherPhone:   row.GuardianFatherPhone.String,
			InstitutionID: row.GuardianInstitutionID.String,
			CreatedAt:     row.GuardianCreatedAt.Time,
			UpdatedAt:     row.GuardianUpdatedAt.Time,
		}
	}
	return s
}

// selectStudents selects students along with their class name and guardian.
func selectStudents(mods ...qm.QueryMod) []qm.QueryMod {
	cols := []string{
		"s.id", "s.first_name", "s.last_name", "s.class_id", "s.parent_id",
		"s.institution_id", "s.created_at", "s.updated_at", "c.name AS class_name",
	}
	for _, col := range guardianColumns {
		cols = append(cols, "p."+col+" AS g_"+col)
	}
	return append([]qm.QueryMod{
		qm.Select(cols...),
		qm.From(quote(studentsTable) + " AS s"),
		qm.LeftOuterJoin(quote(classesTable) + " AS c ON c.id = s.class_id"),
		qm.LeftOuterJoin(quote(guardiansTable) + " AS p ON p.id = s.parent_id"),
	}, mods...)
}

// CreateStudents inserts students with a single multi-row statement.
func (repo studentRepository) CreateStudents(ctx context.Context, students []student.Student, exec ...core.DBExecutor) ([]student.Student, error) {
	if len(students) == 0 {
		return []student.Student{}, nil
	}

	created := make([]student.Student, 0, len(students))
	args := make([]interface{}, 0, len(students)*len(studentColumns))
	for _, s := range students {
		s.ID = uuid.New().String()
		s.ClassName = ""
		s.Guardian = nil
		created = append(created, s)
		args = append(args, repo.boil(s)...)
	}

	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(studentsTable, studentColumns, len(students)), args...)
	if err != nil {
		return nil, errors.Wrap(err, "inserting students")
	}
	return created, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, exec ...core.DBExecutor) ([]student.Student, error) {
	var mods []qm.QueryMod
	if filter != nil {
		if filter.Search != "" {
			val := searchPattern(filter.Search)
			mods = append(mods, qm.Where("(s.first_name ILIKE ? OR s.last_name ILIKE ?)", val, val))
		}
		if filter.ClassID != "" {
			mods = append(mods, qm.Where("s.class_id = ?", filter.ClassID))
		}
		if filter.ParentID != "" {
			mods = append(mods, qm.Where("s.parent_id = ?", filter.ParentID))
		}
		if filter.InstitutionID != "" {
			mods = append(mods, qm.Where("s.institution_id = ?", filter.InstitutionID))
		}
		if filter.ExcludeID != "" {
			mods = append(mods, qm.Where("s.id <> ?", filter.ExcludeID))
		}
		if filter.HasGuardian {
			mods = append(mods, qm.Where("s.parent_id IS NOT NULL"))
		}
	}
	mods = append(mods, qm.OrderBy("s.first_name"))

	var rows []*studentRow
	if err := newQuery(selectStudents(mods...)...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unboil(row))
	}
	return students, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Student{}, student.ErrNotFound
	}
	row := new(studentRow)
	if err := newQuery(selectStudents(qm.Where("s.id = ?", id))...).Bind(ctx, repo.getExec(exec), row); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return repo.unboil(row), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, s student.Student, exec ...core.DBExecutor) (student.Student, error) {
	args := append(repo.boil(s)[1:], s.ID)
	err := execOne(ctx, repo.getExec(exec), student.ErrNotFound, updateQuery(studentsTable, studentColumns[1:]), args...)
	if err != nil {
		if err == student.ErrNotFound {
			return student.Student{}, err
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return repo.GetStudent(ctx, s.ID, exec...)
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), student.ErrNotFound, deleteQuery(studentsTable), id)
	if err != nil && err != student.ErrNotFound {
		return errors.Wrap(err, "deleting student")
	}
	return err
}
