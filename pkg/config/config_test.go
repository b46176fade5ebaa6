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
	assert.Equal(t, "/console/api", cfg.APIPrefix)
	assert.Equal(t, "http://localhost:9091/api", cfg.Backend.BaseURL)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Second, cfg.Redis.PingTimeout)
	assert.Equal(t, []int{3, 5, 10, 15, 20, 25}, cfg.Screens.PageSizes)
	assert.Equal(t, 10, cfg.Screens.DefaultPageSize)
	assert.Equal(t, "name", cfg.Screens.UserSortBy)
	assert.Equal(t, "createdOn", cfg.Screens.WorkerSortBy)
	assert.Equal(t, "desc", cfg.Screens.WorkerSortDir)
}

func TestFromViperOverrides(t *testing.T) {
	t.Setenv("SESSION_STORE", "Memory")
	t.Setenv("PAGE_SIZES", "10, 50,abc,-1")
	t.Setenv("BACKEND_BASE_URL", "https://backend.example.com/api/")
	t.Setenv("FETCH_TIMEOUT", "not-a-duration")
	t.Setenv("REDIS_PING_TIMEOUT", "750ms")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, []int{10, 50}, cfg.Screens.PageSizes)
	assert.Equal(t, "https://backend.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Screens.FetchTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.Redis.PingTimeout)
}
