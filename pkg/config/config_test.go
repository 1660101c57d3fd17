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
	assert.Equal(t, 0.10, cfg.Scheduler.CapacityBuffer)
	assert.Equal(t, AllocationOrderChronological, cfg.Scheduler.AllocationOrder)
	assert.Equal(t, 128, cfg.Scheduler.GridCacheSize)
	assert.Equal(t, 15, cfg.Registration.MinCredits)
	assert.Equal(t, 25, cfg.Registration.MaxCredits)
	assert.Equal(t, 30*time.Second, cfg.Optimizer.Timeout)
	assert.False(t, cfg.Events.Enabled)
	assert.True(t, cfg.Swagger.Enabled)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ENV", EnvProduction)
	v.Set("SCHEDULER_ALLOCATION_ORDER", "STORED")
	v.Set("SCHEDULER_CAPACITY_BUFFER", -1)
	v.Set("SCHEDULER_GRID_CACHE_SIZE", 0)
	v.Set("OPTIMIZER_BASE_URL", "http://optimizer:8001/")
	v.Set("OPTIMIZER_TIMEOUT", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, AllocationOrderStored, cfg.Scheduler.AllocationOrder)
	assert.Zero(t, cfg.Scheduler.CapacityBuffer)
	assert.Equal(t, 128, cfg.Scheduler.GridCacheSize)
	assert.Equal(t, "http://optimizer:8001", cfg.Optimizer.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Optimizer.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Swagger.Enabled)
}
