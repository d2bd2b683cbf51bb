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
	"github.com/aykutjm/ogrencim/core/guardian"
)

const guardiansTable = "parents"

var guardianColumns = []string{
	"id", "user_id", "full_name", "email", "phone", "mother_name", "mother_phone",
	"father_name", "father_phone", "institution_id", "created_at", "updated_at",
}

type guardianRow struct {
	ID            string      `boil:"id"`
	UserID        null.String `boil:"user_id"`
	FullName      string      `boil:"full_name"`
	Email         string      `boil:"email"`
	Phone         null.String `boil:"phone"`
	MotherName    null.String `boil:"mother_name"`
	MotherPhone   null.String `boil:"mother_phone"`
	FatherName    null.String `boil:"father_name"`
	FatherPhone   null.String `boil:"father_phone"`
	InstitutionID null.String `boil:"institution_id"`
	CreatedAt     time.Time   `boil:"created_at"`
	UpdatedAt     time.Time   `boil:"updated_at"`
}

type guardianRepository struct {
	repository
}

var _ guardian.Repository = (*guardianRepository)(nil)

func NewGuardianRepository(exec core.DBExecutor) *guardianRepository {
	return &guardianRepository{repository{exec: exec}}
}

func (repo guardianRepository) boil(g guardian.Guardian) []interface{} {
	return []interface{}{
		g.ID,
		nullString(g.UserID),
		g.FullName,
		g.Email,
		nullString(g.Phone),
		nullString(g.MotherName),
		nullString(g.MotherPhone),
		nullString(g.FatherName),
		nullString(g.FatherPhone),
		nullString(g.InstitutionID),
		g.CreatedAt.UTC(),
		g.UpdatedAt.UTC(),
	}
}

func (repo guardianRepository) unboil(row *guardianRow) guardian.Guardian {
	return guardian.Guardian{
		ID:            row.ID,
		UserID:        row.UserID.String,
		FullName:      row.FullName,
		Email:         row.Email,
		Phone:         row.Phone.String,
		MotherName:    row.MotherName.String,
		MotherPhone:   row.MotherPhone.String,
		FatherName:    row.FatherName.String,
		FatherPhone:   row.FatherPhone.String,
		InstitutionID: row.InstitutionID.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

// CreateGuardians inserts guardians with a single multi-row statement.
func (repo guardianRepository) CreateGuardians(ctx context.Context, guardians []guardian.Guardian, exec ...core.DBExecutor) ([]guardian.Guardian, error) {
	if len(guardians) == 0 {
		return []guardian.Guardian{}, nil
	}

	created := make([]guardian.Guardian, 0, len(guardians))
	args := make([]interface{}, 0, len(guardians)*len(guardianColumns))
	for _, g := range guardians {
		g.ID = uuid.New().String()
		created = append(created, g)
		args = append(args, repo.boil(g)...)
	}

	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(guardiansTable, guardianColumns, len(guardians)), args...)
	if err != nil {
		return nil, errors.Wrap(err, "inserting guardians")
	}
	return created, nil
}

func (repo guardianRepository) QueryGuardians(ctx context.Context, filter *guardian.QueryFilter, exec ...core.DBExecutor) ([]guardian.Guardian, error) {
	mods := []qm.QueryMod{qm.Select(guardianColumns...), qm.From(quote(guardiansTable))}
	if filter != nil {
		if filter.Search != "" {
			val := searchPattern(filter.Search)
			mods = append(mods, qm.Where(
				"(full_name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR mother_name ILIKE ? OR father_name ILIKE ?)",
				val, val, val, val, val,
			))
		}
		if filter.InstitutionID != "" {
			mods = append(mods, qm.Where("institution_id = ?", filter.InstitutionID))
		}
		if filter.Emails != nil {
			mods = append(mods, qm.Where("email = ANY(?)", pq.Array(filter.Emails)))
		}
	}
	mods = append(mods, qm.OrderBy("full_name"))

	var rows []*guardianRow
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying guardians")
	}
	guardians := make([]guardian.Guardian, 0, len(rows))
	for _, row := range rows {
		guardians = append(guardians, repo.unboil(row))
	}
	return guardians, nil
}

func (repo guardianRepository) GetGuardian(ctx context.Context, filter guardian.GetFilter, exec ...core.DBExecutor) (guardian.Guardian, error) {
	mods := []qm.QueryMod{qm.Select(guardianColumns...), qm.From(quote(guardiansTable))}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return guardian.Guardian{}, guardian.ErrNotFound
		}
		mods = append(mods, qm.Where("id = ?", filter.ID))
	case filter.UserID != "":
		if _, err := uuid.Parse(filter.UserID); err != nil {
			return guardian.Guardian{}, guardian.ErrNotFound
		}
		mods = append(mods, qm.Where("user_id = ?", filter.UserID))
	default:
		return guardian.Guardian{}, guardian.ErrNotFound
	}

	row := new(guardianRow)
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), row); err != nil {
		return guardian.Guardian{}, trapNoRowsErr(err, guardian.ErrNotFound, "finding guardian")
	}
	return repo.unboil(row), nil
}

func (repo guardianRepository) UpdateGuardian(ctx context.Context, g guardian.Guardian, exec ...core.DBExecutor) (guardian.Guardian, error) {
	args := append(repo.boil(g)[1:], g.ID)
	err := execOne(ctx, repo.getExec(exec), guardian.ErrNotFound, updateQuery(guardiansTable, guardianColumns[1:]), args...)
	if err != nil {
		if err == guardian.ErrNotFound {
			return guardian.Guardian{}, err
		}
		if isUniqueViolation(err) {
			return guardian.Guardian{}, core.NewFieldValidationError("email", errors.New("already taken"))
		}
		return guardian.Guardian{}, errors.Wrap(err, "updating guardian")
	}
	return g, nil
}

func (repo guardianRepository) DeleteGuardian(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), guardian.ErrNotFound, deleteQuery(guardiansTable), id)
	if err != nil && err != guardian.ErrNotFound {
		return errors.Wrap(err, "deleting guardian")
	}
	return err
}
