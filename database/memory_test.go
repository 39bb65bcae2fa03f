package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
)

func TestMemoryCollegeRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	in := model.College{Name: "Round Trip College", City: "Pune", CreatedAt: time.Unix(100, 0).UTC()}
	in.Normalize()
	require.NoError(t, store.Colleges().Create(ctx, &in))
	require.NotEmpty(t, in.ID)

	got, err := store.Colleges().GetByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in, *got)

	got.Name = "Changed"
	fresh, err := store.Colleges().GetByID(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, "Round Trip College", fresh.Name)
}

func TestMemoryCollegeSlugUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a := model.College{Name: "Same Name"}
	a.Normalize()
	require.NoError(t, store.Colleges().Create(ctx, &a))

	b := model.College{Name: "Same Name"}
	b.Normalize()
	assert.ErrorIs(t, store.Colleges().Create(ctx, &b), ErrDuplicateSlug)

	c := model.College{Name: "Other"}
	c.Normalize()
	require.NoError(t, store.Colleges().Create(ctx, &c))
	c.Slug = a.Slug
	assert.ErrorIs(t, store.Colleges().Update(ctx, &c), ErrDuplicateSlug)

	// keeping its own slug is not a conflict
	a.Name = "Renamed"
	assert.NoError(t, store.Colleges().Update(ctx, &a))
}

func TestMemoryCollegeConcurrentSlug(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := model.College{Name: "Race College"}
			c.Normalize()
			errs <- store.Colleges().Create(ctx, &c)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateSlug)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestMemoryCollegeNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Colleges().GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Colleges().Delete(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, store.Colleges().Update(ctx, &model.College{ID: "missing"}), ErrNotFound)
}

func TestMemoryCollegeDeleteAndStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i, status := range []model.CollegeStatus{model.CollegeStatusPublished, model.CollegeStatusDraft, model.CollegeStatusPublished} {
		c := model.College{Name: "Stats " + string(rune('A'+i)), Status: status}
		for j := 0; j <= i; j++ {
			c.Courses = append(c.Courses, model.Course{Name: "Course", Fees: 1000})
		}
		c.Normalize()
		require.NoError(t, store.Colleges().Create(ctx, &c))
	}

	stats, err := store.Colleges().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{TotalColleges: 3, Published: 2, Drafts: 1, TotalCourses: 6}, stats)

	all, err := catalog.All(ctx, store.Colleges(), catalog.Admin)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NoError(t, store.Colleges().Delete(ctx, all[0].ID))

	stats, err = store.Colleges().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalColleges)
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	u := &model.User{Email: "a@example.com", Name: "A", Role: model.RoleStudent}
	require.NoError(t, store.Users().Create(ctx, u))
	assert.ErrorIs(t, store.Users().Create(ctx, &model.User{Email: "A@example.com"}), ErrDuplicateEmail)

	got, err := store.Users().GetByEmail(ctx, "A@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.TokenVersion = 3
	require.NoError(t, store.Users().Update(ctx, got))
	again, err := store.Users().GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.TokenVersion)

	n, err := store.Users().CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSeeder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seeder := NewSeeder(store)

	require.NoError(t, seeder.SeedAdminUser(ctx, "", ""))
	n, err := store.Users().CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, seeder.SeedAdminUser(ctx, "Admin@Example.com", "supersecret"))
	require.NoError(t, seeder.SeedAdminUser(ctx, "other@example.com", "supersecret"))
	n, err = store.Users().CountByRole(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	admin, err := store.Users().GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	colleges := []model.College{{Name: "Seed One"}, {Name: "Seed Two"}, {Name: "Seed One"}}
	inserted, err := seeder.SeedColleges(ctx, colleges)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = seeder.SeedColleges(ctx, colleges)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
