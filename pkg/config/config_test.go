package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 20, cfg.School.DefaultCourseCapacity)
	assert.Equal(t, time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Enrollment.LockTTL)
	assert.False(t, cfg.Auth.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ENV", EnvProduction)
	v.Set("STORE_DRIVER", "POSTGRES")
	v.Set("DEFAULT_COURSE_CAPACITY", 0)
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := fromViper(v)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, 20, cfg.School.DefaultCourseCapacity)
	assert.Equal(t, time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestAuthFlagOverridesEnvironment(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ENV", EnvProduction)
	v.Set("AUTH_ENABLED", false)

	cfg := fromViper(v)
	assert.False(t, cfg.Auth.Enabled)
}
