package database

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/services/catalog"
)

// parityCorpus covers every predicate and sort edge: mixed casing, ties,
// colleges without courses and multi-course fee spreads.
func parityCorpus() []model.College {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []struct {
		name   string
		city   string
		state  string
		typ    model.CollegeType
		status model.CollegeStatus
		rating float64
		rank   int
		placed float64
		fees   []float64
		tie    bool
	}{
		{"Mumbai Institute of Technology", "Mumbai", "Maharashtra", model.CollegeTypePublic, model.CollegeStatusPublished, 4.5, 3, 92, []float64{50000, 300000}, false},
		{"Pune College of Arts", "PUNE", "Maharashtra", model.CollegeTypePrivate, model.CollegeStatusPublished, 4.0, 7, 70, []float64{120000}, false},
		{"Navi Mumbai Science College", "Navi Mumbai", "Maharashtra", model.CollegeTypePrivate, model.CollegeStatusPublished, 4.0, 7, 70, []float64{90000}, true},
		{"Delhi School of Law", "delhi", "Delhi", model.CollegeTypeGovernment, model.CollegeStatusDraft, 3.5, 1, 88, []float64{20000}, false},
		{"Chennai Deemed University", "Chennai", "Tamil Nadu", model.CollegeTypeDeemed, model.CollegeStatusPublished, 3.9, 12, 0, nil, false},
		{"Bangalore 100% Tech", "Bengaluru", "Karnataka", model.CollegeTypePrivate, model.CollegeStatusPublished, 4.8, 2, 97, []float64{250000, 90000}, true},
		{"Kolkata Medical_College", "Kolkata", "West Bengal", model.CollegeTypePublic, model.CollegeStatusPublished, 4.2, 5, 85, []float64{90000}, false},
		{"Jaipur Design Academy", "Jaipur", "Rajasthan", model.CollegeTypePrivate, model.CollegeStatusDraft, 2.5, 30, 40, nil, false},
	}

	out := make([]model.College, 0, len(rows))
	for i, s := range rows {
		created := base.Add(time.Duration(i) * time.Minute)
		if s.tie {
			created = base
		}
		c := model.College{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Name:      s.name,
			City:      s.city,
			State:     s.state,
			Type:      s.typ,
			Status:    s.status,
			Rating:    s.rating,
			Ranking:   s.rank,
			Placement: model.PlacementStats{Percentage: s.placed},
			CreatedAt: created,
			UpdatedAt: created,
		}
		for _, f := range s.fees {
			c.Courses = append(c.Courses, model.Course{Name: "Course", Fees: f})
		}
		c.Normalize()
		out = append(out, c)
	}
	return out
}

func fptr(f float64) *float64 { return &f }

var parityParams = []catalog.Params{
	{},
	{Search: "mumbai"},
	{Search: "100%"},
	{Search: "medical_"},
	{Search: "MAHARASHTRA", Sort: "rating"},
	{City: []string{"Mumbai", "Pune"}},
	{City: []string{"DELHI"}},
	{Type: []string{"Private", "Deemed"}, Sort: "placement"},
	{MinFee: fptr(100000)},
	{MaxFee: fptr(60000)},
	{MinFee: fptr(100000), MaxFee: fptr(60000)},
	{Sort: "fees-low"},
	{Sort: "fees-high"},
	{Sort: "fees-low", Page: 2, Limit: 3},
	{Sort: "rating", Page: 3, Limit: 2},
	{Page: 9},
}

func collegeIDs(colleges []model.College) []string {
	out := make([]string, len(colleges))
	for i, c := range colleges {
		out[i] = c.ID
	}
	return out
}

// assertParity runs every parity query against store and the in-memory
// reference and requires identical pages.
func assertParity(t *testing.T, store CollegeStore) {
	ctx := context.Background()
	corpus := parityCorpus()
	for i := range corpus {
		c := corpus[i].Clone()
		require.NoError(t, store.Create(ctx, &c))
	}
	reference := catalog.NewSliceCorpus(corpus)

	for _, scope := range []catalog.Scope{catalog.Public, catalog.Admin} {
		for i, p := range parityParams {
			t.Run(fmt.Sprintf("%s/%d", scope, i), func(t *testing.T) {
				d := catalog.Normalize(p)
				want, err := catalog.Run(ctx, reference, scope, d)
				require.NoError(t, err)
				got, err := catalog.Run(ctx, store, scope, d)
				require.NoError(t, err)

				assert.Equal(t, want.Total, got.Total)
				assert.Equal(t, want.TotalPages, got.TotalPages)
				assert.Equal(t, collegeIDs(want.Data), collegeIDs(got.Data))
			})
		}
	}

	all, err := catalog.All(ctx, store, catalog.Admin)
	require.NoError(t, err)
	wantAll, err := catalog.All(ctx, reference, catalog.Admin)
	require.NoError(t, err)
	assert.Equal(t, collegeIDs(wantAll), collegeIDs(all))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{TotalColleges: 8, Published: 6, Drafts: 2, TotalCourses: 8}, stats)
}

func TestMemoryParity(t *testing.T) {
	assertParity(t, NewMemoryStore().Colleges())
}

func TestPostgresParity(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping Postgres integration test")
	}

	store, err := OpenGORM(dsn, "test")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.DB().Exec("DELETE FROM colleges").Error)

	assertParity(t, store.Colleges())

	dup := model.College{Name: "Mumbai Institute of Technology"}
	dup.Normalize()
	assert.ErrorIs(t, store.Colleges().Create(ctx, &dup), ErrDuplicateSlug)
}

func TestMongoParity(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping MongoDB integration test")
	}

	store, err := StartMongo(uri, "degreefyd_test")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	_, err = store.Database().Collection(collegesCollection).DeleteMany(ctx, bson.M{})
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx))

	assertParity(t, store.Colleges())

	dup := model.College{Name: "Mumbai Institute of Technology"}
	dup.Normalize()
	assert.ErrorIs(t, store.Colleges().Create(ctx, &dup), ErrDuplicateSlug)
}
