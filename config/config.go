// Package config provides build-time metadata and environment-based
// configuration for the recipe-box application.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("RBOX_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("RBOX_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("RBOX_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/recipe-box"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("RBOX_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetRecipeAPIKey returns the Spoonacular API key from the environment.
// It seeds the recipeApiKey setting on first run and acts as a fallback
// when the stored setting is empty.
func GetRecipeAPIKey() string {
	return os.Getenv("RBOX_RECIPE_API_KEY")
}
