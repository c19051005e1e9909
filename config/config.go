package config

import (
	"resorthub/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	SecurityJwtSecret    string `mapstructure:"SECURITY_JWT_SECRET"`
	SessionTTLHours      int    `mapstructure:"SESSION_TTL_HOURS"`
	ReservationHoldHours int    `mapstructure:"RESERVATION_HOLD_HOURS"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	CloudinaryCloudName  string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey     string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret  string `mapstructure:"CLOUDINARY_API_SECRET"`
	AdminDefaultPassword string `mapstructure:"ADMIN_DEFAULT_PASSWORD"`
}

const (
	DefaultSessionTTLHours      = 24
	DefaultReservationHoldHours = 24
)

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS",
	"SECURITY_JWT_SECRET", "SESSION_TTL_HOURS", "RESERVATION_HOLD_HOURS",
	"SCHEDULER_ENABLED",
	"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
	"ADMIN_DEFAULT_PASSWORD",
}

func InitConfig() (Config, error) {
	log := logger.New("config").Function("InitConfig")
	log.Info("Initializing config")

	viper.AutomaticEnv()
	viper.SetDefault("SESSION_TTL_HOURS", DefaultSessionTTLHours)
	viper.SetDefault("RESERVATION_HOLD_HOURS", DefaultReservationHoldHours)
	viper.SetDefault("DB_CACHE_RESET", -1)

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info("Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"schedulerEnabled", config.SchedulerEnabled,
		"imageStore", config.HasCloudinary(),
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

// HasCloudinary reports whether image uploads can go to Cloudinary.
func (c Config) HasCloudinary() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error(
			"Fatal error: invalid server port",
			"port", config.ServerPort,
		)
	}

	if config.SecurityJwtSecret == "" {
		return log.ErrMsg("Fatal error: SECURITY_JWT_SECRET is required")
	}

	if config.SessionTTLHours <= 0 {
		return log.Error(
			"Fatal error: SESSION_TTL_HOURS must be positive",
			"sessionTTLHours", config.SessionTTLHours,
		)
	}

	if config.ReservationHoldHours <= 0 {
		return log.Error(
			"Fatal error: RESERVATION_HOLD_HOURS must be positive",
			"reservationHoldHours", config.ReservationHoldHours,
		)
	}

	anyCloudinary := config.CloudinaryCloudName != "" ||
		config.CloudinaryAPIKey != "" ||
		config.CloudinaryAPISecret != ""
	if anyCloudinary && !config.HasCloudinary() {
		return log.ErrMsg(
			"Fatal error: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set together",
		)
	}

	ConfigInstance = config
	return nil
}
