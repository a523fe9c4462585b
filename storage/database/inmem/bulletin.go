package inmemdb

import (
	"context"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
)

// BulletinStore reads bulletin inputs under the DB read lock: writers wait until View returns.
type BulletinStore struct {
	db *DB
}

var _ bulletin.Store = (*BulletinStore)(nil) // interface compliance check

func NewBulletinStore(db *DB) *BulletinStore {
	return &BulletinStore{db: db}
}

func (st *BulletinStore) View(ctx context.Context, fn func(src bulletin.Source) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	st.db.mu.RLock()
	defer st.db.mu.RUnlock()
	return fn(source{db: st.db})
}

// source must only be used while the read lock is held.
type source struct {
	db *DB
}

func (src source) Student(_ context.Context, id string) (bulletin.Student, error) {
	usr, err := src.db.getUser(user.GetFilter{ID: id})
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
	if cls, ok := src.db.classes[usr.ClassID]; ok {
		s.ClassName = cls.Name
	}
	return s, nil
}

func (src source) Entries(_ context.Context, studentID, period string) ([]grade.Entry, error) {
	return src.db.queryEntries(&grade.QueryFilter{StudentID: studentID, Period: period}, nil), nil
}

func (src source) ClassEntries(_ context.Context, classID, period string) ([]bulletin.StudentEntries, error) {
	students := src.db.queryUsers(&user.QueryFilter{Roles: user.StudentRoles, ClassID: classID}, nil)
	all := make([]bulletin.StudentEntries, 0, len(students))
	for _, s := range students {
		all = append(all, bulletin.StudentEntries{
			StudentID: s.ID,
			Entries:   src.db.queryEntries(&grade.QueryFilter{StudentID: s.ID, Period: period}, nil),
		})
	}
	return all, nil
}

func (src source) Template(_ context.Context, classID string) (class.Template, error) {
	return src.db.getTemplateByClass(classID)
}

func (src source) LatestPeriod(_ context.Context, studentID string) (string, error) {
	entries := src.db.queryEntries(
		&grade.QueryFilter{StudentID: studentID},
		[]core.DBOrdering{{Field: "created_at", Ascending: false}},
	)
	if len(entries) == 0 {
		return "", nil
	}
	return entries[0].Period, nil
}
