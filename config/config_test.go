package config

import (
	"testing"

	"resorthub/internal/logger"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		ServerPort:           8280,
		SecurityJwtSecret:    "secret",
		SessionTTLHours:      24,
		ReservationHoldHours: 24,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.ServerPort = 0 }, wantError: true},
		{name: "missing jwt secret", mutate: func(c *Config) { c.SecurityJwtSecret = "" }, wantError: true},
		{name: "non-positive session ttl", mutate: func(c *Config) { c.SessionTTLHours = 0 }, wantError: true},
		{name: "non-positive hold", mutate: func(c *Config) { c.ReservationHoldHours = -1 }, wantError: true},
		{
			name: "partial cloudinary credentials",
			mutate: func(c *Config) {
				c.CloudinaryCloudName = "demo"
			},
			wantError: true,
		},
		{
			name: "full cloudinary credentials",
			mutate: func(c *Config) {
				c.CloudinaryCloudName = "demo"
				c.CloudinaryAPIKey = "key"
				c.CloudinaryAPISecret = "secret"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := validateConfig(cfg, logger.New("test"))
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, cfg, GetConfig())
		})
	}
}

func TestInitConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("SECURITY_JWT_SECRET", "test-secret")
	t.Setenv("SCHEDULER_ENABLED", "true")

	cfg, err := InitConfig()

	assert.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DatabaseHost)
	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, DefaultReservationHoldHours, cfg.ReservationHoldHours)
	assert.Equal(t, DefaultSessionTTLHours, cfg.SessionTTLHours)
	assert.False(t, cfg.HasCloudinary())
}
