package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/user"
)

const userColumns = "id, name, username, email, class_id, is_active, roles, password_hash, created_at, updated_at, last_login"

var defaultUserOrdering = core.DBOrdering{Field: "username", Ascending: true}

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     string         `db:"username"`
	Email        null.String    `db:"email"`
	ClassID      null.String    `db:"class_id"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func toUserRow(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         null.NewString(usr.Name, usr.Name != ""),
		Username:     usr.Username,
		Email:        null.NewString(usr.Email, usr.Email != ""),
		ClassID:      null.NewString(usr.ClassID, usr.ClassID != ""),
		IsActive:     null.BoolFromPtr(usr.IsActive),
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name.String,
		Username:     r.Username,
		Email:        r.Email.String,
		ClassID:      r.ClassID.String,
		IsActive:     r.IsActive.Ptr(),
		Roles:        []string(r.Roles),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Time.UTC(),
	}
}

type userRepository struct {
	db sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

// NewUserRepository works on a *sqlx.DB or a *sqlx.Tx.
func NewUserRepository(db sqlx.ExtContext) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	var w where
	w.add("username = ?", username)
	for _, u := range excludedUsers {
		if u.ID != "" {
			w.add("id <> ?", u.ID)
		}
	}

	var exists bool
	q := repo.db.Rebind("SELECT EXISTS (SELECT 1 FROM users"+w.String()+")")
	if err := sqlx.GetContext(ctx, repo.db, &exists, q, w.args...); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := toUserRow(usr)
	if !row.IsActive.Valid {
		row.IsActive = null.BoolFrom(true)
	}
	if row.Roles == nil {
		row.Roles = pq.StringArray{}
	}

	q := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :username, :email, :class_id, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db, q, row); err != nil {
		if pqCode(err) == uniqueViolation {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return row.user(), nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	var w where
	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(name ILIKE ? OR username ILIKE ? OR email ILIKE ?)", val, val, val)
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			patterns := make(pq.StringArray, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				patterns = append(patterns, role+"%")
			}
			w.add("EXISTS (SELECT 1 FROM UNNEST(roles) AS user_role WHERE user_role ILIKE ANY (?))", patterns)
		}
		if filter.ClassID != "" {
			if !isUUID(filter.ClassID) {
				return []user.User{}, nil
			}
			w.add("class_id = ?", filter.ClassID)
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{defaultUserOrdering}
	}

	var rows []userRow
	q := repo.db.Rebind("SELECT "+userColumns+" FROM users"+w.String()+orderBy("", ordering))
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var w where
	switch {
	case filter.ID != "":
		if !isUUID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.Username != "":
		w.add("username = ?", filter.Username)
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	q := repo.db.Rebind("SELECT "+userColumns+" FROM users"+w.String())
	if err := sqlx.GetContext(ctx, repo.db, &row, q, w.args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.user(), nil
}

// UpdateUser saves every field of `usr`; nil Roles, PasswordHash and IsActive keep their stored value.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !isUUID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	q := `UPDATE users SET
			name = :name,
			username = :username,
			email = :email,
			class_id = :class_id,
			is_active = COALESCE(:is_active, is_active),
			roles = COALESCE(:roles, roles),
			password_hash = COALESCE(:password_hash, password_hash),
			updated_at = :updated_at,
			last_login = :last_login
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db, q, toUserRow(usr))
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

// DeleteUsers also deletes the grades of the deleted users (ON DELETE CASCADE).
func (repo *userRepository) DeleteUsers(ctx context.Context, ids ...string) error {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", valid)
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
