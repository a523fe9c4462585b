package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
	inmemdb "github.com/trezcool/bulletin/storage/database/inmem"
)

// Repos are in-memory repositories sharing one DB.
type Repos struct {
	DB        *inmemdb.DB
	Users     user.Repository
	Classes   class.Repository
	Grades    grade.Repository
	Bulletins *inmemdb.BulletinStore
}

func NewRepos() Repos {
	db := inmemdb.NewDB()
	return Repos{
		DB:        db,
		Users:     inmemdb.NewUserRepository(db),
		Classes:   inmemdb.NewClassRepository(db),
		Grades:    inmemdb.NewGradeRepository(db),
		Bulletins: inmemdb.NewBulletinStore(db),
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateStudent creates an active student of the class `classID` ("" for none).
func CreateStudent(t *testing.T, repo user.Repository, uname, email, classID string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Username:  uname,
		Email:     email,
		ClassID:   classID,
		Roles:     user.StudentRoles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword("Pwd.1234"); err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo class.Repository, name string) class.SchoolClass {
	t.Helper()
	cls, err := repo.CreateClass(context.Background(), class.SchoolClass{Name: name, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateTemplate(t *testing.T, repo class.Repository, classID string, part1, part2 []string) class.Template {
	t.Helper()
	now := time.Now().UTC()
	tmpl, err := repo.CreateTemplate(context.Background(), class.Template{
		ClassID:   classID,
		Part1:     part1,
		Part2:     part2,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTemplate() failed: %v", err)
	}
	return tmpl
}

func CreateGrade(
	t *testing.T,
	repo grade.Repository,
	studentID, subject string,
	classAvg, composition float64,
	coef int,
	period string,
	createdAt ...time.Time,
) grade.Entry {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	e, err := repo.CreateEntry(context.Background(), grade.Entry{
		StudentID:   studentID,
		Subject:     subject,
		ClassAvg:    classAvg,
		Composition: composition,
		Coef:        coef,
		Period:      period,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return e
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}
