package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "CACHE_TTL", "ALLOW_ADMIN_SIGNUP", "CRON_ENABLED", "JWT_SECRET", "GO_ENV", "S3_BUCKET"} {
		t.Setenv(key, "")
	}

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 8080, env.PORT)
	assert.Equal(t, DriverPostgres, env.STORE_DRIVER)
	assert.Equal(t, 5*time.Minute, env.CACHE_TTL)
	assert.False(t, env.ALLOW_ADMIN_SIGNUP)
	assert.True(t, env.CRON_ENABLED)
	assert.NotEmpty(t, env.JWT_SECRET)
	assert.False(t, env.MediaEnabled())
}

func TestGetOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("ALLOW_ADMIN_SIGNUP", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "nonsense")

	env, err := Get()
	require.NoError(t, err)
	assert.Equal(t, 9000, env.PORT)
	assert.Equal(t, DriverMemory, env.STORE_DRIVER)
	assert.Equal(t, 30*time.Second, env.CACHE_TTL)
	assert.True(t, env.ALLOW_ADMIN_SIGNUP)
	assert.Equal(t, time.Minute, env.RATE_LIMIT_WINDOW)
}

func TestGetRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := Get()
	assert.Error(t, err)
}

func TestGetRequiresSecretInProduction(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("GO_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Get()
	assert.Error(t, err)
}
