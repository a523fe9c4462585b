package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/user"
	"github.com/trezcool/bulletin/tests"
)

const teacherCode = "SCHOOL2025"

func newValidator() *validator.Validate {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate
}

// fieldTags returns the failing fields of a validation error with their tag.
func fieldTags(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErrs validator.ValidationErrors
	require.True(t, errors.As(err, &vErrs), "want validator.ValidationErrors, got %v", err)
	tags := make(map[string]string, len(vErrs))
	for _, fe := range vErrs {
		tags[fe.Field()] = fe.Tag()
	}
	return tags
}

func TestRegisterUser_Validate(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, repos.Classes)
	validate := newValidator()
	ctx := context.Background()
	cls := testutil.CreateClass(t, repos.Classes, "Terminale C")
	testutil.CreateStudent(t, repos.Users, "taken", "", cls.ID)

	valid := func() user.RegisterUser {
		return user.RegisterUser{
			Name:            "Awa Traoré",
			Username:        "  Awa_T ",
			Email:           "AWA@test.ml",
			Password:        "Kx8#qLm2",
			PasswordConfirm: "Kx8#qLm2",
			Role:            "student",
			ClassID:         cls.ID,
		}
	}

	t.Run("valid student is cleaned", func(t *testing.T) {
		ru := valid()
		require.NoError(t, ru.Validate(ctx, validate, svc, teacherCode))
		assert.Equal(t, "awa_t", ru.Username)
		assert.Equal(t, "awa@test.ml", ru.Email)
	})

	t.Run("valid teacher", func(t *testing.T) {
		ru := valid()
		ru.Role, ru.ClassID, ru.TeacherCode = "Teacher", "", teacherCode
		assert.NoError(t, ru.Validate(ctx, validate, svc, teacherCode))
	})

	tests := []struct {
		name   string
		modify func(ru *user.RegisterUser)
		field  string
		tag    string
	}{
		{name: "short username", modify: func(ru *user.RegisterUser) { ru.Username = "ab" }, field: "username", tag: "min"},
		{name: "bad username", modify: func(ru *user.RegisterUser) { ru.Username = "a.b.c" }, field: "username", tag: "alphanum_"},
		{name: "bad email", modify: func(ru *user.RegisterUser) { ru.Email = "nope" }, field: "email", tag: "email"},
		{name: "unknown role", modify: func(ru *user.RegisterUser) { ru.Role = "admin" }, field: "role", tag: "oneof"},
		{name: "student without class", modify: func(ru *user.RegisterUser) { ru.ClassID = "" }, field: "class_id", tag: "classrequired"},
		{
			name:   "teacher without code",
			modify: func(ru *user.RegisterUser) { ru.Role, ru.ClassID = "teacher", "" },
			field:  "teacher_code", tag: "teachercode",
		},
		{
			name:   "short password",
			modify: func(ru *user.RegisterUser) { ru.Password, ru.PasswordConfirm = "a1b2", "a1b2" },
			field:  "password", tag: "pwdminlen",
		},
		{
			name:   "password with space",
			modify: func(ru *user.RegisterUser) { ru.Password, ru.PasswordConfirm = "abc 12345", "abc 12345" },
			field:  "password", tag: "pwdnospace",
		},
		{
			name:   "password like username",
			modify: func(ru *user.RegisterUser) { ru.Username, ru.Password, ru.PasswordConfirm = "awatraore", "awatraore1", "awatraore1" },
			field:  "password", tag: "pwdtoosim",
		},
		{name: "confirm mismatch", modify: func(ru *user.RegisterUser) { ru.PasswordConfirm = "other" }, field: "password_confirm", tag: "eqfield"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ru := valid()
			tt.modify(&ru)
			tags := fieldTags(t, ru.Validate(ctx, validate, svc, teacherCode))
			assert.Equal(t, tt.tag, tags[tt.field], "tags: %v", tags)
		})
	}

	t.Run("wrong teacher code", func(t *testing.T) {
		ru := valid()
		ru.Role, ru.ClassID, ru.TeacherCode = "teacher", "", "guess"
		err := ru.Validate(ctx, validate, svc, teacherCode)
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, user.ErrInvalidTeacherCode.Error(), err.Error())
	})

	t.Run("username taken", func(t *testing.T) {
		ru := valid()
		ru.Username = "TAKEN"
		err := ru.Validate(ctx, validate, svc, teacherCode)
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, user.ErrUsernameExists.Error(), err.Error())
	})
}

func TestService_Register(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, repos.Classes)
	ctx := context.Background()
	cls := testutil.CreateClass(t, repos.Classes, "Seconde A")

	student, err := svc.Register(ctx, user.RegisterUser{
		Username: "moussa", Password: "Kx8#qLm2", Role: "student", ClassID: cls.ID, TeacherCode: "ignored",
	})
	require.NoError(t, err)
	assert.True(t, student.IsStudent())
	assert.Equal(t, cls.ID, student.ClassID)
	assert.True(t, student.Active())
	assert.NoError(t, student.CheckPassword("Kx8#qLm2"))

	teacher, err := svc.Register(ctx, user.RegisterUser{
		Username: "prof", Password: "Kx8#qLm2", Role: "teacher", ClassID: cls.ID, TeacherCode: teacherCode,
	})
	require.NoError(t, err)
	assert.True(t, teacher.IsTeacher())
	assert.Empty(t, teacher.ClassID, "teachers are not enrolled")

	_, err = svc.Register(ctx, user.RegisterUser{
		Username: "ghost", Password: "Kx8#qLm2", Role: "student", ClassID: "5d1c4c2e-2bb5-4b7d-9a3c-5f0a4b3b6c11",
	})
	assert.True(t, core.IsValidationError(err))
}

func TestService_AssignClass(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, repos.Classes)
	ctx := context.Background()
	cls := testutil.CreateClass(t, repos.Classes, "Terminale C")
	student := testutil.CreateStudent(t, repos.Users, "awa", "", "")
	teacher := testutil.CreateUser(t, repos.Users, "Prof", "prof", "", "Pwd.1234", user.TeacherRoles, true)

	usr, err := svc.AssignClass(ctx, student.ID, cls.ID)
	require.NoError(t, err)
	assert.Equal(t, cls.ID, usr.ClassID)

	usr, err = svc.AssignClass(ctx, student.ID, "")
	require.NoError(t, err)
	assert.Empty(t, usr.ClassID)

	_, err = svc.AssignClass(ctx, teacher.ID, cls.ID)
	assert.Equal(t, user.ErrNotAStudent, err)

	_, err = svc.AssignClass(ctx, "nope", cls.ID)
	assert.Equal(t, user.ErrNotFound, err)

	_, err = svc.AssignClass(ctx, student.ID, "5d1c4c2e-2bb5-4b7d-9a3c-5f0a4b3b6c11")
	assert.True(t, core.IsValidationError(err))
}

func TestService_SetPassword(t *testing.T) {
	repos := testutil.NewRepos()
	svc := user.NewService(repos.Users, repos.Classes)
	ctx := context.Background()
	student := testutil.CreateStudent(t, repos.Users, "awa", "", "")

	_, err := svc.SetPassword(ctx, student.ID, "N3w.pass")
	require.NoError(t, err)
	usr, err := svc.GetByUsername(ctx, " AWA ")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("N3w.pass"))
	assert.Error(t, usr.CheckPassword("Pwd.1234"))
}

func TestUser_roles(t *testing.T) {
	usr := user.User{Roles: []string{user.RoleTeacher}}
	assert.True(t, usr.IsTeacher())
	assert.False(t, usr.IsStudent())
	assert.False(t, usr.IsAdmin())
	assert.Equal(t, 21, user.MaxRolePriority([]string{user.RoleStudent, user.RoleAdmin}))
	assert.Equal(t, 0, user.MaxRolePriority(nil))
	assert.True(t, usr.Active(), "nil IsActive means active")
	assert.Equal(t, "prof", user.User{Username: "prof"}.DisplayName())
}
