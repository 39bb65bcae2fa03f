package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/degreefyd-api/model"
	"github.com/sahilchouksey/degreefyd-api/utils/validation"
)

func TestCollegesAreValid(t *testing.T) {
	colleges, err := Colleges()
	require.NoError(t, err)
	require.Len(t, colleges, 12)

	v := validation.NewValidator()
	published := 0
	slugs := map[string]bool{}
	for _, c := range colleges {
		c.Normalize()
		assert.NoError(t, v.ValidateStruct(c), c.Name)
		assert.False(t, slugs[c.Slug], "duplicate slug %s", c.Slug)
		slugs[c.Slug] = true
		assert.False(t, c.CreatedAt.IsZero())
		if c.Status == model.CollegeStatusPublished {
			published++
		}
	}
	assert.Equal(t, 9, published)
}

func TestCollegesReturnsFreshCopies(t *testing.T) {
	a := MustColleges()
	a[0].Name = "changed"
	b := MustColleges()
	assert.NotEqual(t, "changed", b[0].Name)
}
