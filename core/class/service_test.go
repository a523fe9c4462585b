package class_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/tests"
)

func TestService_classes(t *testing.T) {
	repos := testutil.NewRepos()
	svc := class.NewService(repos.Classes, testutil.NopLogger{})
	ctx := context.Background()

	tc, err := svc.CreateClass(ctx, class.NewClass{Name: "Terminale C"})
	require.NoError(t, err)
	_, err = svc.CreateClass(ctx, class.NewClass{Name: "Seconde A"})
	require.NoError(t, err)

	_, err = svc.CreateClass(ctx, class.NewClass{Name: "Terminale C"})
	require.True(t, core.IsValidationError(err))
	assert.Equal(t, class.ErrClassExists.Error(), err.Error())

	classes, err := svc.QueryClasses(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "Seconde A", classes[0].Name)

	got, err := svc.GetClass(ctx, tc.ID)
	require.NoError(t, err)
	assert.Equal(t, tc, got)
}

func TestService_templates(t *testing.T) {
	repos := testutil.NewRepos()
	svc := class.NewService(repos.Classes, testutil.NopLogger{})
	ctx := context.Background()
	tc := testutil.CreateClass(t, repos.Classes, "Terminale C")
	sa := testutil.CreateClass(t, repos.Classes, "Seconde A")

	tmpl, err := svc.CreateTemplate(ctx, class.NewTemplate{ClassID: tc.ID, Part1: " MATHS , PHYSIQUE,, ", Part2: "EPS"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MATHS", "PHYSIQUE"}, tmpl.Part1)
	assert.Equal(t, []string{"EPS"}, tmpl.Part2)

	t.Run("one template per class", func(t *testing.T) {
		_, err := svc.CreateTemplate(ctx, class.NewTemplate{ClassID: tc.ID, Part1: "MATHS"})
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, class.ErrTemplateExists.Error(), err.Error())

		other, err := svc.CreateTemplate(ctx, class.NewTemplate{ClassID: sa.ID, Part1: "FRANCAIS"})
		require.NoError(t, err)
		_, err = svc.UpdateTemplate(ctx, other.ID, class.UpdateTemplate{ClassID: tc.ID, Part1: "FRANCAIS"})
		require.True(t, core.IsValidationError(err))
		require.NoError(t, svc.DeleteTemplate(ctx, other.ID))
	})

	t.Run("unknown class", func(t *testing.T) {
		_, err := svc.CreateTemplate(ctx, class.NewTemplate{ClassID: "5d1c4c2e-2bb5-4b7d-9a3c-5f0a4b3b6c11"})
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("update replaces the sections", func(t *testing.T) {
		updated, err := svc.UpdateTemplate(ctx, tmpl.ID, class.UpdateTemplate{Part1: "PHYSIQUE, MATHS", Part2: ""})
		require.NoError(t, err)
		assert.Equal(t, tc.ID, updated.ClassID)
		assert.Equal(t, []string{"PHYSIQUE", "MATHS"}, updated.Part1)
		assert.Empty(t, updated.Part2)

		got, err := svc.TemplateFor(ctx, tc.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("subjects", func(t *testing.T) {
		_, err := svc.UpdateTemplate(ctx, tmpl.ID, class.UpdateTemplate{Part1: "PHYSIQUE, MATHS", Part2: "EPS, MATHS"})
		require.NoError(t, err)
		subjects, err := svc.Subjects(ctx, tc.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"EPS", "MATHS", "PHYSIQUE"}, subjects)

		subjects, err = svc.Subjects(ctx, sa.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{}, subjects)

		_, err = svc.Subjects(ctx, "nope")
		assert.Equal(t, class.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.DeleteTemplate(ctx, tmpl.ID))
		assert.Equal(t, class.ErrTemplateNotFound, svc.DeleteTemplate(ctx, tmpl.ID))
		_, err := svc.TemplateFor(ctx, tc.ID)
		assert.Equal(t, class.ErrTemplateNotFound, err)
	})
}

func TestService_SeedDefaults(t *testing.T) {
	repos := testutil.NewRepos()
	svc := class.NewService(repos.Classes, testutil.NopLogger{})
	ctx := context.Background()
	testutil.CreateClass(t, repos.Classes, "10e")

	report, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Len(t, report.CreatedClasses, len(class.DefaultClasses)-1)
	assert.NotContains(t, report.CreatedClasses, "10e")
	assert.Equal(t, []string{"Terminale C", "Seconde A"}, report.CreatedTemplates)
	assert.Empty(t, report.Skipped)

	tc, err := repos.Classes.GetClassByName(ctx, "Terminale C")
	require.NoError(t, err)
	tmpl, err := svc.TemplateFor(ctx, tc.ID)
	require.NoError(t, err)
	assert.Equal(t, class.DefaultTemplates[0].Part1, tmpl.Part1)

	// idempotent
	report, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.CreatedClasses)
	assert.Empty(t, report.CreatedTemplates)
}
