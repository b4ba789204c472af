package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdojo/backend/internal/domain"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Cold Calls":           "cold-calls",
		"  Работа с   ценой! ": "работа-с-ценой",
		"Q&A 2024":             "qa-2024",
		"Ёлка":                 "ёлка",
		"!!!":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestCategories_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.content.CreateCategory(ctx, "admin", CategoryInput{Name: "Холодные звонки", OrderIndex: 5})
	require.NoError(t, err)
	assert.Equal(t, "холодные-звонки", c.Slug)
	assert.Equal(t, "globe.svg", c.Icon)

	_, err = f.content.CreateCategory(ctx, "admin", CategoryInput{Name: "холодные звонки"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = f.content.CreateCategory(ctx, "admin", CategoryInput{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	updated, err := f.content.UpdateCategory(ctx, "admin", c.ID, CategoryInput{Name: "Cold calls", Icon: "phone.svg"})
	require.NoError(t, err)
	assert.Equal(t, "cold-calls", updated.Slug)
	assert.Equal(t, "phone.svg", updated.Icon)

	require.NoError(t, f.content.DeleteCategory(ctx, "admin", c.ID))
	assert.ErrorIs(t, f.content.DeleteCategory(ctx, "admin", c.ID), domain.ErrNotFound)
}

func TestDeleteCategory_WithLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	needs, err := f.store.Categories.GetBySlug(ctx, "needs")
	require.NoError(t, err)
	err = f.content.DeleteCategory(ctx, "admin", needs.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLessons_PublishedOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	needs, err := f.store.Categories.GetBySlug(ctx, "needs")
	require.NoError(t, err)

	draft := false
	l, err := f.content.CreateLesson(ctx, "admin", LessonInput{
		CategoryID: &needs.ID, Title: "Draft", Description: "d", Content: "c", IsPublished: &draft,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LessonTypeSprint, l.Type)
	assert.Equal(t, "demo", l.Icon)
	require.NotNil(t, l.Category)
	assert.Equal(t, "needs", l.Category.Slug)

	listed, err := f.content.ListLessons(ctx, domain.LessonFilter{CategorySlug: "needs"})
	require.NoError(t, err)
	for _, x := range listed {
		assert.NotEqual(t, l.ID, x.ID, "drafts are hidden by default")
	}

	drafts, err := f.content.ListLessons(ctx, domain.LessonFilter{Published: &draft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	_, err = f.content.GetLesson(ctx, l.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	published := true
	_, err = f.content.UpdateLesson(ctx, "admin", l.ID, LessonInput{
		CategoryID: &needs.ID, Title: "Live", Description: "d", Content: "c", IsPublished: &published,
	})
	require.NoError(t, err)
	got, err := f.content.GetLesson(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Live", got.Title)

	require.NoError(t, f.content.DeleteLesson(ctx, "admin", l.ID))
	_, err = f.content.GetLesson(ctx, l.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateLesson_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.content.CreateLesson(context.Background(), "admin", LessonInput{Title: "only title"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.content.CreateLesson(context.Background(), "admin", LessonInput{
		Title: "t", Description: "d", Content: "c", Type: "webinar",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
