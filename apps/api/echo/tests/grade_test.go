package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core/grade"
	"github.com/trezcool/bulletin/core/user"
	"github.com/trezcool/bulletin/tests"
)

func Test_gradeApi(t *testing.T) {
	app := setup(t)
	tc := testutil.CreateClass(t, app.repos.Classes, "Terminale C")
	teacher := testutil.CreateUser(t, app.repos.Users, "Prof", "prof", "", "", user.TeacherRoles, true)
	awa := testutil.CreateStudent(t, app.repos.Users, "awa", "", tc.ID)
	zoe := testutil.CreateStudent(t, app.repos.Users, "zoe", "", tc.ID)
	token := app.token(t, teacher)
	p1, p2 := grade.StandardPeriods[0], grade.StandardPeriods[1]

	anglais := testutil.CreateGrade(t, app.repos.Grades, awa.ID, "ANGLAIS", 9, 10, 2, p1)
	zoeMaths := testutil.CreateGrade(t, app.repos.Grades, zoe.ID, "MATHS", 15, 16, 4, p1)

	rec := app.run(t, httpTest{
		method: http.MethodPost, path: "/api/grades", token: token,
		body: marchallObj(t, grade.NewEntry{StudentID: awa.ID, Subject: " MATHS ", ClassAvg: 12, Composition: 14.5, Coef: 4, Period: p1}),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var maths grade.Entry
	decode(t, rec, &maths)
	assert.Equal(t, "MATHS", maths.Subject)
	assert.Equal(t, awa.ID, maths.StudentID)

	query := func(v url.Values) string { return "/api/grades?" + v.Encode() }

	runTests(t, app, []httpTest{
		{name: "periods", path: "/api/periods", token: app.token(t, awa), wantData: marchallObj(t, grade.StandardPeriods)},
		{
			name: "student cannot grade", method: http.MethodPost, path: "/api/grades", token: app.token(t, awa),
			body: marchallObj(t, grade.NewEntry{StudentID: awa.ID, Subject: "MATHS", ClassAvg: 20, Composition: 20, Coef: 4, Period: p1}),
			wantCode: http.StatusForbidden,
		},
		{
			name: "teacher is not a student", method: http.MethodPost, path: "/api/grades", token: token,
			body:     marchallObj(t, grade.NewEntry{StudentID: teacher.ID, Subject: "MATHS", Coef: 1, Period: p1}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"student_id": user.ErrNotAStudent.Error()}),
		},
		{name: "student grades", path: query(url.Values{"student_id": {awa.ID}}), token: token, wantData: marchallList(t, anglais, maths)},
		{name: "class grades ordered by -n_compo", path: query(url.Values{"class_id": {tc.ID}, "ordering": {"-n_compo"}}), token: token, wantData: marchallList(t, zoeMaths, maths, anglais)},
		{name: "subject filter", path: query(url.Values{"subject": {"MATHS"}, "period": {p1}}), token: token, wantData: marchallList(t, zoeMaths, maths)},
		{name: "other period", path: query(url.Values{"period": {p2}}), token: token, wantData: marchallList(t)},
		{name: "mine", path: "/api/grades/me", token: app.token(t, zoe), wantData: marchallList(t, zoeMaths)},
		{name: "mine needs a student", path: "/api/grades/me", token: token, wantCode: http.StatusForbidden},
	})

	t.Run("out of range scores", func(t *testing.T) {
		rec := app.run(t, httpTest{
			method: http.MethodPost, path: "/api/grades", token: token,
			body: marchallObj(t, grade.NewEntry{StudentID: awa.ID, Subject: "MATHS", ClassAvg: 25, Composition: -1, Coef: 0, Period: p1}),
		})
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		var fields map[string]string
		decode(t, rec, &fields)
		assert.Contains(t, fields, "moy_cl")
		assert.Contains(t, fields, "n_compo")
		assert.Contains(t, fields, "coef")
	})

	t.Run("update", func(t *testing.T) {
		rec := app.run(t, httpTest{
			method: http.MethodPut, path: "/api/grades/" + maths.ID, token: token,
			body: marchallObj(t, grade.UpdateEntry{ClassAvg: 13, Composition: 15, Coef: 5, Period: " " + p2}),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated grade.Entry
		decode(t, rec, &updated)
		assert.Equal(t, "MATHS", updated.Subject)
		assert.Equal(t, 5, updated.Coef)
		assert.Equal(t, p2, updated.Period)
	})

	runTests(t, app, []httpTest{
		{
			name: "update unknown", method: http.MethodPut, path: "/api/grades/nope", token: token,
			body:     marchallObj(t, grade.UpdateEntry{ClassAvg: 13, Composition: 15, Coef: 5, Period: p2}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: grade.ErrNotFound.Error()}),
		},
		{name: "delete", method: http.MethodDelete, path: "/api/grades/" + maths.ID, token: token, wantCode: http.StatusNoContent},
		{name: "delete again", method: http.MethodDelete, path: "/api/grades/" + maths.ID, token: token, wantCode: http.StatusNotFound},
		{name: "deleted", path: query(url.Values{"student_id": {awa.ID}}), token: token, wantData: marchallList(t, anglais)},
	})
}
