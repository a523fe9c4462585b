package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
)

// BulletinStore runs every View in a read-only REPEATABLE READ transaction,
// so a bulletin never mixes committed states.
type BulletinStore struct {
	db *sqlx.DB
}

var _ bulletin.Store = (*BulletinStore)(nil) // interface compliance check

func NewBulletinStore(db *sqlx.DB) *BulletinStore {
	return &BulletinStore{db: db}
}

func (st *BulletinStore) View(ctx context.Context, fn func(src bulletin.Source) error) error {
	tx, err := st.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return errors.Wrap(err, "beginning snapshot transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = fn(newSource(tx)); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing snapshot transaction")
}

type source struct {
	users   *userRepository
	classes *classRepository
	grades  *gradeRepository
}

func newSource(tx *sqlx.Tx) source {
	return source{
		users:   NewUserRepository(tx),
		classes: NewClassRepository(tx),
		grades:  NewGradeRepository(tx),
	}
}

func (src source) Student(ctx context.Context, id string) (bulletin.Student, error) {
	usr, err := src.users.GetUser(ctx, user.GetFilter{ID: id})
	if err != nil {
		return bulletin.Student{}, err
	}
	if !usr.IsStudent() {
		return bulletin.Student{}, user.ErrNotAStudent
	}
	s := bulletin.Student{
		ID:       usr.ID,
		Username: usr.Username,
		Name:     usr.Name,
		Email:    usr.Email,
		ClassID:  usr.ClassID,
	}
	if usr.ClassID != "" {
		cls, err := src.classes.GetClass(ctx, usr.ClassID)
		switch {
		case err == nil:
			s.ClassName = cls.Name
		case err != class.ErrNotFound:
			return bulletin.Student{}, errors.Wrap(err, "getting class")
		}
	}
	return s, nil
}

func (src source) Entries(ctx context.Context, studentID, period string) ([]grade.Entry, error) {
	return src.grades.QueryEntries(ctx, &grade.QueryFilter{StudentID: studentID, Period: period}, nil)
}

func (src source) ClassEntries(ctx context.Context, classID, period string) ([]bulletin.StudentEntries, error) {
	students, err := src.users.QueryUsers(ctx, &user.QueryFilter{Roles: user.StudentRoles, ClassID: classID}, nil)
	if err != nil {
		return nil, err
	}
	entries, err := src.grades.QueryEntries(ctx, &grade.QueryFilter{ClassID: classID, Period: period}, nil)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[string][]grade.Entry, len(students))
	for _, e := range entries {
		byStudent[e.StudentID] = append(byStudent[e.StudentID], e)
	}
	all := make([]bulletin.StudentEntries, 0, len(students))
	for _, s := range students {
		all = append(all, bulletin.StudentEntries{StudentID: s.ID, Entries: byStudent[s.ID]})
	}
	return all, nil
}

func (src source) Template(ctx context.Context, classID string) (class.Template, error) {
	return src.classes.GetTemplateByClass(ctx, classID)
}

func (src source) LatestPeriod(ctx context.Context, studentID string) (string, error) {
	entries, err := src.grades.latest(ctx, studentID)
	if err != nil || len(entries) == 0 {
		return "", err
	}
	return entries[0].Period, nil
}
