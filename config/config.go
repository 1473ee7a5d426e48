package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func InitializeConfig() error {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	NewLoggerService()
	if err := ConnectDatabase(); err != nil {
		return err
	}
	if err := NewInfluxDB(); err != nil {
		return err
	}
	if err := LoadPlanConfig(); err != nil {
		return err
	}

	return nil
}

func GetEnv(key, default_value string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return default_value
}

func GetEnvAsInt(key string, default_value int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return default_value
}

func GetEnvAsBool(key string, default_value bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return default_value
}
