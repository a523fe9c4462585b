package inmemdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
	testutil "github.com/trezcool/bulletin/tests"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepos()
	cls := testutil.CreateClass(t, r.Classes, "12e SE")

	admin := testutil.CreateUser(t, r.Users, "Admin", "admin", "admin@test.ml", "", user.AdminRoles, true)
	teacher := testutil.CreateUser(t, r.Users, "Moussa Keita", "moussa", "mk@test.ml", "", user.TeacherRoles, false)
	awa := testutil.CreateStudent(t, r.Users, "awa", "awa@test.ml", cls.ID)
	bakary := testutil.CreateStudent(t, r.Users, "bakary", "", "")

	t.Run("uniqueness", func(t *testing.T) {
		assert.Equal(t, user.ErrUsernameExists, r.Users.CheckUsernameUniqueness(ctx, "awa"))
		assert.NoError(t, r.Users.CheckUsernameUniqueness(ctx, "awa", awa))
		assert.NoError(t, r.Users.CheckUsernameUniqueness(ctx, "nobody"))
	})

	active := true
	tests := []struct {
		name     string
		filter   *user.QueryFilter
		ordering []core.DBOrdering
		want     []string
	}{
		{name: "all by username", want: []string{admin.ID, awa.ID, bakary.ID, teacher.ID}},
		{name: "search", filter: &user.QueryFilter{Search: "KEITA"}, want: []string{teacher.ID}},
		{name: "students", filter: &user.QueryFilter{Roles: []string{"student"}}, want: []string{awa.ID, bakary.ID}},
		{name: "class", filter: &user.QueryFilter{ClassID: cls.ID}, want: []string{awa.ID}},
		{name: "active", filter: &user.QueryFilter{IsActive: &active, Roles: []string{user.RoleTeacher, user.RoleAdmin}}, want: []string{admin.ID}},
		{
			name:     "ordering",
			filter:   &user.QueryFilter{Roles: user.StudentRoles},
			ordering: []core.DBOrdering{{Field: "username", Ascending: false}},
			want:     []string{bakary.ID, awa.ID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := r.Users.QueryUsers(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			ids := make([]string, 0, len(users))
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("update keeps unset fields", func(t *testing.T) {
		usr, err := r.Users.GetUser(ctx, user.GetFilter{Username: "awa"})
		require.NoError(t, err)
		usr.ClassID = ""
		usr.Roles = nil
		usr.PasswordHash = nil

		updated, err := r.Users.UpdateUser(ctx, usr)
		require.NoError(t, err)
		assert.Empty(t, updated.ClassID)
		assert.Equal(t, user.StudentRoles, updated.Roles)
		assert.NoError(t, updated.CheckPassword("Pwd.1234"))
	})

	t.Run("delete cascades grades", func(t *testing.T) {
		e := testutil.CreateGrade(t, r.Grades, bakary.ID, "MATHS", 12, 13, 2, "1ère Période")
		require.NoError(t, r.Users.DeleteUsers(ctx, bakary.ID))

		_, err := r.Users.GetUser(ctx, user.GetFilter{ID: bakary.ID})
		assert.Equal(t, user.ErrNotFound, err)
		_, err = r.Grades.GetEntry(ctx, e.ID)
		assert.Equal(t, grade.ErrNotFound, err)
	})
}

func TestClassRepository_templates(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepos()
	c1 := testutil.CreateClass(t, r.Classes, "10e")
	c2 := testutil.CreateClass(t, r.Classes, "11e L")

	_, err := r.Classes.CreateClass(ctx, class.SchoolClass{Name: "10e"})
	assert.Equal(t, class.ErrClassExists, err)

	t1 := testutil.CreateTemplate(t, r.Classes, c1.ID, []string{"MATHS"}, []string{"EPS"})
	_, err = r.Classes.CreateTemplate(ctx, class.Template{ClassID: c1.ID})
	assert.Equal(t, class.ErrTemplateExists, err)

	t2 := testutil.CreateTemplate(t, r.Classes, c2.ID, nil, nil)
	t2.ClassID = c1.ID
	_, err = r.Classes.UpdateTemplate(ctx, t2)
	assert.Equal(t, class.ErrTemplateExists, err)

	got, err := r.Classes.GetTemplateByClass(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, t1, got)

	got.Part1[0] = "mutated"
	again, err := r.Classes.GetTemplate(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, "MATHS", again.Part1[0])

	require.NoError(t, r.Classes.DeleteTemplate(ctx, t1.ID))
	_, err = r.Classes.GetTemplateByClass(ctx, c1.ID)
	assert.Equal(t, class.ErrTemplateNotFound, err)
	assert.Equal(t, class.ErrTemplateNotFound, r.Classes.DeleteTemplate(ctx, t1.ID))

	classes, err := r.Classes.QueryClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "10e", classes[0].Name)
}

func TestGradeRepository_QueryEntries(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepos()
	cls := testutil.CreateClass(t, r.Classes, "12e SE")
	awa := testutil.CreateStudent(t, r.Users, "awa", "", cls.ID)
	lone := testutil.CreateStudent(t, r.Users, "lone", "", "")

	t0 := time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)
	physique := testutil.CreateGrade(t, r.Grades, awa.ID, "PHYSIQUE", 14, 15, 3, "1ère Période", t0)
	maths2 := testutil.CreateGrade(t, r.Grades, awa.ID, "MATHS", 10, 12, 4, "1ère Période", t0.Add(time.Hour))
	maths1 := testutil.CreateGrade(t, r.Grades, awa.ID, "MATHS", 16, 17, 4, "1ère Période", t0)
	other := testutil.CreateGrade(t, r.Grades, lone.ID, "MATHS", 9, 9, 4, "2e Période", t0)

	ids := func(entries []grade.Entry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.ID)
		}
		return out
	}

	entries, err := r.Grades.QueryEntries(ctx, &grade.QueryFilter{StudentID: awa.ID}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{maths1.ID, maths2.ID, physique.ID}, ids(entries), "subject then creation time")

	entries, err = r.Grades.QueryEntries(ctx, &grade.QueryFilter{ClassID: cls.ID}, []core.DBOrdering{{Field: "coef"}})
	require.NoError(t, err)
	assert.Equal(t, []string{maths1.ID, maths2.ID, physique.ID}, ids(entries))

	entries, err = r.Grades.QueryEntries(ctx, &grade.QueryFilter{Period: "2e Période"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{other.ID}, ids(entries))

	_, err = r.Grades.CreateEntry(ctx, grade.Entry{StudentID: "missing"})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestBulletinStore_View(t *testing.T) {
	ctx := context.Background()
	r := testutil.NewRepos()
	cls := testutil.CreateClass(t, r.Classes, "12e SE")
	tmpl := testutil.CreateTemplate(t, r.Classes, cls.ID, []string{"MATHS"}, []string{"EPS"})
	awa := testutil.CreateStudent(t, r.Users, "awa", "awa@test.ml", cls.ID)
	bakary := testutil.CreateStudent(t, r.Users, "bakary", "", cls.ID)
	teacher := testutil.CreateUser(t, r.Users, "", "moussa", "", "", user.TeacherRoles, true)

	t0 := time.Date(2025, time.January, 6, 8, 0, 0, 0, time.UTC)
	testutil.CreateGrade(t, r.Grades, awa.ID, "MATHS", 14, 15, 4, "1ère Période", t0)
	testutil.CreateGrade(t, r.Grades, awa.ID, "MATHS", 12, 11, 4, "2e Période", t0.Add(24*time.Hour))

	err := r.Bulletins.View(ctx, func(src bulletin.Source) error {
		s, err := src.Student(ctx, awa.ID)
		require.NoError(t, err)
		assert.Equal(t, bulletin.Student{ID: awa.ID, Username: "awa", Email: "awa@test.ml", ClassID: cls.ID, ClassName: "12e SE"}, s)

		_, err = src.Student(ctx, teacher.ID)
		assert.Equal(t, user.ErrNotAStudent, err)
		_, err = src.Student(ctx, "missing")
		assert.Equal(t, user.ErrNotFound, err)

		period, err := src.LatestPeriod(ctx, awa.ID)
		require.NoError(t, err)
		assert.Equal(t, "2e Période", period)
		period, err = src.LatestPeriod(ctx, bakary.ID)
		require.NoError(t, err)
		assert.Empty(t, period)

		entries, err := src.Entries(ctx, awa.ID, "1ère Période")
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		mates, err := src.ClassEntries(ctx, cls.ID, "1ère Période")
		require.NoError(t, err)
		require.Len(t, mates, 2)
		assert.Equal(t, awa.ID, mates[0].StudentID)
		assert.Len(t, mates[0].Entries, 1)
		assert.Empty(t, mates[1].Entries)

		got, err := src.Template(ctx, cls.ID)
		require.NoError(t, err)
		assert.Equal(t, tmpl, got)
		return nil
	})
	require.NoError(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	called := false
	err = r.Bulletins.View(cctx, func(bulletin.Source) error { called = true; return nil })
	assert.Error(t, err)
	assert.False(t, called)
}
