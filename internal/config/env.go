package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvEnableTelemetry is the process-wide enable gate.
const EnvEnableTelemetry = "ENABLE_TELEMETRY"

// TelemetryEnabled applies the gate rule: only a case-insensitive "false"
// disables telemetry; an absent variable means enabled.
func TelemetryEnabled(lookup func(string) (string, bool)) bool {
	v, ok := lookup(EnvEnableTelemetry)
	if !ok {
		return true
	}
	return !strings.EqualFold(v, "false")
}

// loadEnvFile loads environment variables from .env/.env.local files.
// It stops at the first file that parses; existing process variables are not overwritten.
func loadEnvFile() error {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return nil
		}
	}
	return fmt.Errorf("no .env file found")
}
