package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/sahilchouksey/degreefyd-api/database"
	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
	"github.com/sahilchouksey/degreefyd-api/services/media"
)

type fakeMedia struct {
	prefix string
	body   []byte
	err    error
}

func (f *fakeMedia) Upload(_ context.Context, prefix, filename string, body io.ReadSeeker, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.prefix = prefix
	f.body, _ = io.ReadAll(body)
	return "https://cdn.example.com/" + prefix + "/" + filename, nil
}

func newTestCollegeService(t *testing.T) (*CollegeService, *MemoryListingCache, *fakeMedia) {
	t.Helper()
	cache := NewMemoryListingCache(time.Minute)
	fm := &fakeMedia{}
	svc := NewCollegeService(database.NewMemoryStore().Colleges(), cache, fm)

	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, cache, fm
}

func sampleCollege(name string, status model.CollegeStatus, fees ...float64) model.College {
	c := model.College{Name: name, City: "Pune", Status: status, Type: model.CollegeTypePrivate}
	for _, fee := range fees {
		c.Courses = append(c.Courses, model.Course{Name: "Course", Fees: fee})
	}
	return c
}

func TestCollegeServiceCreate(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	in := sampleCollege("Symbiosis Institute", model.CollegeStatusPublished, 120000)
	in.ID = "client-chosen"
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	assert.NotEqual(t, "client-chosen", created.ID)
	assert.Equal(t, "symbiosis-institute", created.Slug)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Courses, got.Courses)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}

func TestCollegeServiceCreateDefaults(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)

	created, err := svc.Create(context.Background(), model.College{Name: "  Minimal College  "})
	require.NoError(t, err)
	assert.Equal(t, "Minimal College", created.Name)
	assert.Equal(t, model.CollegeStatusDraft, created.Status)
	assert.Equal(t, model.CollegeTypePrivate, created.Type)
	assert.NotNil(t, created.Courses)
}

func TestCollegeServiceCreateValidation(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		college model.College
	}{
		{name: "missing name", college: model.College{}},
		{name: "rating above five", college: model.College{Name: "Bad Rating", Rating: 7}},
		{name: "unknown type", college: model.College{Name: "Bad Type", Type: "Secret"}},
		{name: "negative course fee", college: model.College{Name: "Bad Fee", Courses: datatypes.JSONSlice[model.Course]{{Name: "X", Fees: -1}}}},
		{name: "highest below average", college: model.College{Name: "Bad Placement", Placement: model.PlacementStats{AveragePackage: 10, HighestPackage: 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.college)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Error())
		})
	}
}

func TestCollegeServiceDuplicateSlug(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.College{Name: "Twin College"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.College{Name: "Twin College"})
	assert.ErrorIs(t, err, database.ErrDuplicateSlug)
}

func TestCollegeServiceUpdateReplacesTopLevelFields(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleCollege("Update College", model.CollegeStatusDraft, 100, 200, 300))
	require.NoError(t, err)

	body := []byte(`{"id":"other","rating":4.5,"courses":[{"name":"Only","fees":50}],"createdAt":"2001-01-01T00:00:00Z"}`)
	updated, err := svc.Update(ctx, created.ID, body)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, 4.5, updated.Rating)
	require.Len(t, updated.Courses, 1)
	assert.Equal(t, "Only", updated.Courses[0].Name)
	assert.Equal(t, "Pune", updated.City)
	assert.Equal(t, "update-college", updated.Slug)
}

func TestCollegeServiceUpdateErrors(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", []byte(`{}`))
	assert.ErrorIs(t, err, database.ErrNotFound)

	created, err := svc.Create(ctx, model.College{Name: "Some College"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, []byte(`not json`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Update(ctx, created.ID, []byte(`{"rating":"high"}`))
	assert.ErrorIs(t, err, ErrInvalidInput)

	var verr *ValidationError
	_, err = svc.Update(ctx, created.ID, []byte(`{"status":"archived"}`))
	assert.ErrorAs(t, err, &verr)
}

func TestCollegeServiceToggleAndSlugVisibility(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, sampleCollege("Hidden College", model.CollegeStatusDraft))
	require.NoError(t, err)

	_, err = svc.GetBySlug(ctx, "hidden-college")
	assert.ErrorIs(t, err, database.ErrNotFound)

	toggled, err := svc.ToggleStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CollegeStatusPublished, toggled.Status)

	got, err := svc.GetBySlug(ctx, "hidden-college")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	toggled, err = svc.ToggleStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CollegeStatusDraft, toggled.Status)

	_, err = svc.ToggleStatus(ctx, "missing")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCollegeServiceListUsesAndInvalidatesCache(t *testing.T) {
	svc, cache, _ := newTestCollegeService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, sampleCollege("First College", model.CollegeStatusPublished, 100))
	require.NoError(t, err)
	_, err = svc.Create(ctx, sampleCollege("Draft College", model.CollegeStatusDraft, 50))
	require.NoError(t, err)

	page, err := svc.List(ctx, catalog.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	key := catalog.Normalize(catalog.Params{}).Key()
	_, _, ok := cache.Get(ctx, key)
	assert.True(t, ok)

	second, err := svc.Create(ctx, sampleCollege("Second College", model.CollegeStatusPublished, 80))
	require.NoError(t, err)
	_, _, ok = cache.Get(ctx, key)
	assert.False(t, ok)

	page, err = svc.List(ctx, catalog.Params{Sort: "fees-low"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, second.ID, page.Data[0].ID)

	require.NoError(t, svc.Delete(ctx, second.ID))
	page, err = svc.List(ctx, catalog.Params{Sort: "fees-low"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestCollegeServiceListAllIncludesDrafts(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, sampleCollege("Old College", model.CollegeStatusPublished))
	require.NoError(t, err)
	second, err := svc.Create(ctx, sampleCollege("New College", model.CollegeStatusDraft))
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestCollegeServiceDeleteAndStats(t *testing.T) {
	svc, _, _ := newTestCollegeService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, sampleCollege("Stats A", model.CollegeStatusPublished, 1, 2))
	require.NoError(t, err)
	_, err = svc.Create(ctx, sampleCollege("Stats B", model.CollegeStatusDraft, 3))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{TotalColleges: 2, Published: 1, Drafts: 1, TotalCourses: 3}, stats)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), database.ErrNotFound)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalColleges)
	assert.Equal(t, int64(1), stats.TotalCourses)
}

func TestCollegeServiceUploadMedia(t *testing.T) {
	svc, _, fm := newTestCollegeService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.College{Name: "Media College"})
	require.NoError(t, err)

	updated, err := svc.UploadMedia(ctx, created.ID, MediaLogo, "logo.png", "image/png", bytes.NewReader([]byte("png")))
	require.NoError(t, err)
	assert.Equal(t, "colleges/"+created.ID+"/logo", fm.prefix)
	assert.Equal(t, []byte("png"), fm.body)
	assert.Contains(t, updated.Logo, "logo.png")
	assert.Empty(t, updated.Image)

	_, err = svc.UploadMedia(ctx, created.ID, MediaImage, "doc.pdf", "application/pdf", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, err = svc.UploadMedia(ctx, created.ID, "banner", "a.png", "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UploadMedia(ctx, "missing", MediaImage, "a.png", "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, database.ErrNotFound)

	fm.err = errors.New("bucket gone")
	_, err = svc.UploadMedia(ctx, created.ID, MediaImage, "a.png", "image/png", bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestCollegeServiceUploadMediaDisabled(t *testing.T) {
	svc := NewCollegeService(database.NewMemoryStore().Colleges(), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.College{Name: "No Media"})
	require.NoError(t, err)

	_, err = svc.UploadMedia(ctx, created.ID, MediaImage, "a.png", "image/png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, media.ErrDisabled)
}

func TestCollegeServiceWarmCache(t *testing.T) {
	svc, cache, _ := newTestCollegeService(t)
	ctx := context.Background()

	n, err := svc.WarmCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	_, _, ok := cache.Get(ctx, catalog.Normalize(catalog.Params{Sort: "rating"}).Key())
	assert.True(t, ok)

	uncached := NewCollegeService(database.NewMemoryStore().Colleges(), nil, nil)
	n, err = uncached.WarmCache(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryListingCacheExpires(t *testing.T) {
	cache := NewMemoryListingCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	page := catalog.Page{Data: []model.College{{ID: "a", Facilities: []string{"Gym"}}}, Total: 1, Page: 1, TotalPages: 1}
	cache.Set(ctx, "k", "0", page)

	got, _, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	got.Data[0].Facilities[0] = "Pool"

	again, _, _ := cache.Get(ctx, "k")
	assert.Equal(t, "Gym", again.Data[0].Facilities[0])

	now = now.Add(2 * time.Minute)
	_, _, ok = cache.Get(ctx, "k")
	assert.False(t, ok)
}

// togglingStore flips a college's status right after serving a Find, the
// way a concurrent admin request can land between a read and a cache write.
type togglingStore struct {
	database.CollegeStore
	svc      *CollegeService
	toggleID string
}

func (s *togglingStore) Find(ctx context.Context, filter catalog.Filter, key catalog.SortKey, window catalog.Window) ([]model.College, error) {
	res, err := s.CollegeStore.Find(ctx, filter, key, window)
	if id := s.toggleID; id != "" {
		s.toggleID = ""
		if _, terr := s.svc.ToggleStatus(ctx, id); terr != nil {
			return nil, terr
		}
	}
	return res, err
}

func TestListDoesNotCacheAcrossInvalidation(t *testing.T) {
	ctx := context.Background()
	store := &togglingStore{CollegeStore: database.NewMemoryStore().Colleges()}
	svc := NewCollegeService(store, NewMemoryListingCache(time.Minute), nil)
	store.svc = svc

	created, err := svc.Create(ctx, sampleCollege("Only College", model.CollegeStatusPublished, 100))
	require.NoError(t, err)

	store.toggleID = created.ID
	page, err := svc.List(ctx, catalog.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total, "the in-flight read still sees the published college")

	page, err = svc.List(ctx, catalog.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Empty(t, page.Data)
}

func TestMemoryListingCacheDropsStaleVersion(t *testing.T) {
	cache := NewMemoryListingCache(time.Minute)
	ctx := context.Background()

	_, version, ok := cache.Get(ctx, "k")
	require.False(t, ok)

	cache.Invalidate(ctx)
	cache.Set(ctx, "k", version, catalog.Page{Total: 1})
	_, _, ok = cache.Get(ctx, "k")
	assert.False(t, ok)

	_, version, _ = cache.Get(ctx, "k")
	cache.Set(ctx, "k", version, catalog.Page{Total: 1})
	_, _, ok = cache.Get(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryListingCacheEvictsExpired(t *testing.T) {
	cache := NewMemoryListingCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		_, version, _ := cache.Get(ctx, "warm")
		cache.Set(ctx, fmt.Sprintf("search-%d", i), version, catalog.Page{})
		now = now.Add(time.Second)
	}
	assert.LessOrEqual(t, cache.Len(), 121)

	cache.Set(ctx, "k", "0", catalog.Page{})
	now = now.Add(2 * time.Minute)
	before := cache.Len()
	_, _, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, before-1, cache.Len())
}
