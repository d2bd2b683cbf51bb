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
	"github.com/aykutjm/ogrencim/core/user"
)

const usersTable = "users"

var userColumns = []string{
	"id", "name", "email", "role", "is_active", "password_hash",
	"institution_id", "created_at", "updated_at", "last_login",
}

// user fields that may be ordered on
var userOrderings = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
	"last_login": "last_login",
}

type userRow struct {
	ID            string      `boil:"id"`
	Name          string      `boil:"name"`
	Email         string      `boil:"email"`
	Role          string      `boil:"role"`
	IsActive      bool        `boil:"is_active"`
	PasswordHash  null.Bytes  `boil:"password_hash"`
	InstitutionID null.String `boil:"institution_id"`
	CreatedAt     time.Time   `boil:"created_at"`
	UpdatedAt     time.Time   `boil:"updated_at"`
	LastLogin     null.Time   `boil:"last_login"`
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) boil(usr user.User) []interface{} {
	return []interface{}{
		usr.ID,
		usr.Name,
		usr.Email,
		usr.Role,
		usr.IsActive,
		null.BytesFrom(usr.PasswordHash),
		nullString(usr.InstitutionID),
		usr.CreatedAt.UTC(),
		usr.UpdatedAt.UTC(),
		nullTime(usr.LastLogin),
	}
}

func (repo userRepository) unboil(row *userRow) user.User {
	if row == nil {
		return user.User{}
	}
	return user.User{
		ID:            row.ID,
		Name:          row.Name,
		Email:         row.Email,
		Role:          row.Role,
		IsActive:      row.IsActive,
		PasswordHash:  row.PasswordHash.Bytes,
		InstitutionID: row.InstitutionID.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		LastLogin:     row.LastLogin.Time,
	}
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	mods := []qm.QueryMod{qm.From(quote(usersTable)), qm.Where("email = ?", email)}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		mods = append(mods, qm.Where("NOT (id = ANY(?))", pq.Array(ids)))
	}

	var count int64
	if err := countQuery(ctx, repo.getExec(exec), &count, mods...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	_, err := repo.getExec(exec).ExecContext(ctx, insertQuery(usersTable, userColumns, 1), repo.boil(usr)...)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	mods := []qm.QueryMod{qm.Select(userColumns...), qm.From(quote(usersTable))}

	if filter != nil {
		// users with Name or Email matching the search keyword
		if filter.Search != "" {
			val := searchPattern(filter.Search)
			mods = append(mods, qm.Where("(name ILIKE ? OR email ILIKE ?)", val, val))
		}
		if len(filter.Roles) > 0 {
			mods = append(mods, qm.WhereIn("role IN ?", stringArgs(filter.Roles)...))
		}
		if filter.IsActive != nil {
			mods = append(mods, qm.Where("is_active = ?", *filter.IsActive))
		}
		if filter.InstitutionID != "" {
			mods = append(mods, qm.Where("institution_id = ?", filter.InstitutionID))
		}
	}

	orderBy := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if col, ok := userOrderings[ord.Field]; ok {
			orderBy = append(orderBy, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(orderBy) == 0 {
		orderBy = append(orderBy, "created_at DESC")
	}
	for _, ob := range orderBy {
		mods = append(mods, qm.OrderBy(ob))
	}

	var rows []*userRow
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unboil(row))
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	mods := []qm.QueryMod{qm.Select(userColumns...), qm.From(quote(usersTable)), qm.Limit(1)}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		mods = append(mods, qm.Where("id = ?", filter.ID))
	case filter.Email != "":
		mods = append(mods, qm.Where("email = ?", filter.Email))
	default:
		return user.User{}, user.ErrNotFound
	}

	row := new(userRow)
	if err := newQuery(mods...).Bind(ctx, repo.getExec(exec), row); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	args := append(repo.boil(usr)[1:], usr.ID)
	err := execOne(ctx, repo.getExec(exec), user.ErrNotFound, updateQuery(usersTable, userColumns[1:]), args...)
	if err != nil {
		if err == user.ErrNotFound {
			return user.User{}, err
		}
		if isUniqueViolation(err) {
			return user.User{}, core.NewFieldValidationError("email", user.ErrEmailExists)
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	cnt, err := deleteWhere(ctx, repo.getExec(exec), usersTable, qm.WhereIn("id IN ?", stringArgs(ids)...))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(cnt), nil
}
