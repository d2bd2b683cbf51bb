package boiledrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"
	"github.com/volatiletech/sqlboiler/v4/queries/qm"

	"github.com/aykutjm/ogrencim/core"
	"github.com/aykutjm/ogrencim/core/institution"
)

const institutionsTable = "institutions"

var institutionColumns = []string{"id", "name", "address", "phone", "email", "logo_url", "is_active", "created_at", "updated_at"}

type institutionRow struct {
	ID        string      `boil:"id"`
	Name      string      `boil:"name"`
	Address   null.String `boil:"address"`
	Phone     null.String `boil:"phone"`
	Email     null.String `boil:"email"`
	LogoURL   null.String `boil:"logo_url"`
	IsActive  bool        `boil:"is_active"`
	CreatedAt time.Time   `boil:"created_at"`
	UpdatedAt time.Time   `boil:"updated_at"`
}

type institutionRepository struct {
	repository
}

var _ institution.Repository = (*institutionRepository)(nil)

func NewInstitutionRepository(exec core.DBExecutor) *institutionRepository {
	return &institutionRepository{repository{exec: exec}}
}

func (repo institutionRepository) boil(inst institution.Institution) []interface{} {
	return []interface{}{
		inst.ID,
		inst.Name,
		nullString(inst.Address),
		nullString(inst.Phone),
		nullString(inst.Email),
		nullString(inst.LogoURL),
		inst.IsActive,
		inst.CreatedAt.UTC(),
		inst.UpdatedAt.UTC(),
	}
}

func (repo institutionRepository) unboil(row *institutionRow) institution.Institution {
	return institution.Institution{
		ID:        row.ID,
		Name:      row.Name,
		Address:   row.Address.String,
		Phone:     row.Phone.String,
		Email:     row.Email.String,
		LogoURL:   row.LogoURL.String,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo institutionRepository) CreateInstitution(ctx context.Context, inst institution.Institution, exec ...core.DBExecutor) (institution.Institution, error) {
	inst.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(institutionsTable, institutionColumns, 1), repo.boil(inst)...)
	if err != nil {
		return institution.Institution{}, errors.Wrap(err, "inserting institution")
	}
	return inst, nil
}

func (repo institutionRepository) QueryInstitutions(ctx context.Context, filter *institution.QueryFilter, exec ...core.DBExecutor) ([]institution.Institution, error) {
	mods := []qm.QueryMod{qm.Select(institutionColumns...), qm.From(quote(institutionsTable)), qm.OrderBy("name")}
	if filter != nil {
		if filter.Search != "" {
			val := searchPattern(filter.Search)
			mods = append(mods, qm.Where("(name ILIKE ? OR email ILIKE ?)", val, val))
		}
		if filter.IsActive != nil {
			mods = append(mods, qm.Where("is_active = ?", *filter.IsActive))
		}
	}

	var rows []*institutionRow
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying institutions")
	}
	insts := make([]institution.Institution, 0, len(rows))
	for _, row := range rows {
		insts = append(insts, repo.unboil(row))
	}
	return insts, nil
}

func (repo institutionRepository) GetInstitution(ctx context.Context, id string, exec ...core.DBExecutor) (institution.Institution, error) {
	if _, err := uuid.Parse(id); err != nil {
		return institution.Institution{}, institution.ErrNotFound
	}
	row := new(institutionRow)
	q := newQuery(qm.Select(institutionColumns...), qm.From(quote(institutionsTable)), qm.Where("id = ?", id))
	if err := q.Bind(ctx, repo.getExec(exec), row); err != nil {
		return institution.Institution{}, trapNoRowsErr(err, institution.ErrNotFound, "finding institution")
	}
	return repo.unboil(row), nil
}

func (repo institutionRepository) UpdateInstitution(ctx context.Context, inst institution.Institution, exec ...core.DBExecutor) (institution.Institution, error) {
	args := append(repo.boil(inst)[1:], inst.ID)
	err := execOne(ctx, repo.getExec(exec), institution.ErrNotFound, updateQuery(institutionsTable, institutionColumns[1:]), args...)
	if err != nil {
		if err == institution.ErrNotFound {
			return institution.Institution{}, err
		}
		return institution.Institution{}, errors.Wrap(err, "updating institution")
	}
	return inst, nil
}

func (repo institutionRepository) DeleteInstitution(ctx context.Context, id string, exec ...core.DBExecutor) error {
	err := execOne(ctx, repo.getExec(exec), institution.ErrNotFound, deleteQuery(institutionsTable), id)
	if err != nil && err != institution.ErrNotFound {
		return errors.Wrap(err, "deleting institution")
	}
	return err
}

type institutionStatsRow struct {
	Teachers int `boil:"teachers"`
	Students int `boil:"students"`
	Classes  int `boil:"classes"`
	Parents  int `boil:"parents"`
}

func (repo institutionRepository) GetInstitutionStats(ctx context.Context, id string, exec ...core.DBExecutor) (institution.Stats, error) {
	var row institutionStatsRow
	err := queries.Raw(`
		SELECT
			(SELECT COUNT(*) FROM teachers WHERE institution_id = $1) AS teachers,
			(SELECT COUNT(*) FROM students WHERE institution_id = $1) AS students,
			(SELECT COUNT(*) FROM classes WHERE institution_id = $1) AS classes,
			(SELECT COUNT(*) FROM parents WHERE institution_id = $1) AS parents`, id,
	).Bind(ctx, repo.getExec(exec), &row)
	if err != nil {
		return institution.Stats{}, errors.Wrap(err, "counting institution records")
	}
	return institution.Stats(row), nil
}
