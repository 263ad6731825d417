package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "memory")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 24*time.Hour, c.JWTTTL)
	assert.Equal(t, "direct", c.NotifyMode)
	assert.Equal(t, 3, c.NotifyMaxAttempts)
	assert.Equal(t, 2*time.Second, c.NotifyRetryDelay)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSAllowOrigins)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadValidatesDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("STORE_DRIVER", "sqlite")
	_, err = Load()
	assert.ErrorContains(t, err, "sqlite")
}

func TestLoadParsesLists(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("NOTIFY_MAX_ATTEMPTS", "0")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowOrigins)
	assert.Equal(t, 1, c.NotifyMaxAttempts)
}

func TestLocation(t *testing.T) {
	c := App{ClinicTZ: "UTC"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}
