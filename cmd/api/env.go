package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// envFileVar names the variable that overrides the .env location.
const envFileVar = "CALCULATOR_ENV_FILE"

// loadDotEnv loads environment variables from .env (or $CALCULATOR_ENV_FILE)
// when present. Existing process environment variables are not overridden.
// A missing default file is ignored; a missing explicit file is an error.
func loadDotEnv() error {
	path, explicit := os.LookupEnv(envFileVar)
	if !explicit || path == "" {
		path, explicit = ".env", false
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}

	return fmt.Errorf("load %s: %w", path, err)
}
