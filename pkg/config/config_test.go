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
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "school_dashboard", cfg.Database.Name)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, time.Minute, cfg.Stats.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("API_PREFIX", "v2/")
	v.Set("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	v.Set("STATS_CACHE_TTL", "not-a-duration")

	cfg := fromViper(v)

	assert.Equal(t, "/v2", cfg.APIPrefix)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Stats.CacheTTL)
}

func TestNormalisePrefix(t *testing.T) {
	assert.Equal(t, "", normalisePrefix("/"))
	assert.Equal(t, "", normalisePrefix(""))
	assert.Equal(t, "/api", normalisePrefix("/api/"))
}

func TestValidateProductionSecrets(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)
	assert.NoError(t, cfg.Validate())

	cfg.Env = EnvProduction
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET must be set in production")

	cfg.JWT.Secret = "prod-secret"
	assert.EqualError(t, cfg.Validate(), "REPORTS_SIGNED_URL_SECRET must be set in production")

	cfg.Reports.Enabled = false
	assert.NoError(t, cfg.Validate())

	cfg.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestConnectionStrings(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "school", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=school sslmode=require", db.DSN())
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
