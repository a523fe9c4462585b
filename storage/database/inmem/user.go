package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/user"
)

var defaultUserOrdering = []core.DBOrdering{{Field: "username", Ascending: true}}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func cloneUser(usr *user.User) user.User {
	u := *usr
	u.Roles = cloneStrings(usr.Roles)
	if usr.IsActive != nil {
		u.SetActive(*usr.IsActive)
	}
	return u
}

func userField(u user.User, column string) interface{} {
	switch column {
	case "name":
		return u.Name
	case "username":
		return u.Username
	case "created_at":
		return u.CreatedAt
	case "last_login":
		return u.LastLogin
	}
	return nil
}

func (db *DB) getUser(filter user.GetFilter) (user.User, error) {
	if filter.ID != "" {
		if usr, ok := db.users[filter.ID]; ok {
			return cloneUser(usr), nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Username != "" {
		for _, usr := range db.users {
			if usr.Username == filter.Username {
				return cloneUser(usr), nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func hasRolePrefix(usr *user.User, prefixes []string) bool {
	for _, prefix := range prefixes {
		if usr.RoleStartsWith(prefix) {
			return true
		}
	}
	return false
}

func (db *DB) queryUsers(filter *user.QueryFilter, ordering []core.DBOrdering) []user.User {
	users := make([]user.User, 0, len(db.users))
	for _, usr := range db.users {
		if filter != nil {
			if filter.Search != "" {
				search := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(usr.Name), search) &&
					!strings.Contains(strings.ToLower(usr.Username), search) &&
					!strings.Contains(strings.ToLower(usr.Email), search) {
					continue
				}
			}
			if len(filter.Roles) > 0 && !hasRolePrefix(usr, filter.Roles) {
				continue
			}
			if filter.ClassID != "" && usr.ClassID != filter.ClassID {
				continue
			}
			if filter.IsActive != nil && usr.Active() != *filter.IsActive {
				continue
			}
		}
		users = append(users, cloneUser(usr))
	}

	if len(ordering) == 0 {
		ordering = defaultUserOrdering
	}
	orderBy(users, func(i int, col string) interface{} { return userField(users[i], col) }, ordering)
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.db.users {
		if usr.Username == username && !excluded[usr.ID] {
			return user.ErrUsernameExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = newID()
	stored := cloneUser(&usr)
	repo.db.users[usr.ID] = &stored
	return cloneUser(&stored), nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.queryUsers(filter, ordering), nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.getUser(filter)
}

// UpdateUser saves every field of `usr`; nil Roles, PasswordHash and IsActive keep their stored value.
func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	updated := cloneUser(&usr)
	if updated.Roles == nil {
		updated.Roles = cloneStrings(orig.Roles)
	}
	if updated.PasswordHash == nil {
		updated.PasswordHash = orig.PasswordHash
	}
	if updated.IsActive == nil {
		updated.IsActive = orig.IsActive
	}
	updated.CreatedAt = orig.CreatedAt
	repo.db.users[usr.ID] = &updated
	return cloneUser(&updated), nil
}

// DeleteUsers also deletes the grades of the deleted users.
func (repo *userRepository) DeleteUsers(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.users, id)
		for gid, e := range repo.db.grades {
			if e.StudentID == id {
				delete(repo.db.grades, gid)
			}
		}
	}
	return nil
}
