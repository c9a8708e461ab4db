package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wefthq/weft/pkg/config"
	"github.com/wefthq/weft/pkg/db"
	"github.com/wefthq/weft/pkg/envelope"
	"github.com/wefthq/weft/pkg/logging"
	"github.com/wefthq/weft/pkg/store"
)

// masterKeyring decodes WEFT_MASTER_KEY and builds the keyring. The key
// is passed to the keyring explicitly so nothing below the CLI reads
// process environment.
func masterKeyring() (*envelope.Keyring, error) {
	masterKeyB64, ok := os.LookupEnv("WEFT_MASTER_KEY")
	if !ok {
		return nil, fmt.Errorf("WEFT_MASTER_KEY environment variable is required")
	}

	masterKey, err := base64.StdEncoding.DecodeString(masterKeyB64)
	if err != nil {
		return nil, fmt.Errorf("invalid WEFT_MASTER_KEY: %w", err)
	}

	return envelope.NewKeyring(masterKey)
}

// loadConfig reads dir from WEFT_CONFIG_DIR, falling back to the
// packaged default path.
func loadConfig() (config.Config, error) {
	return config.Load(os.Getenv("WEFT_CONFIG_DIR"))
}

func connectAdapter() (*store.GormAdapter, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logger = zap.NewNop()
	}

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Logger: logger})
	if err != nil {
		return nil, err
	}
	return store.NewGormAdapter(database), nil
}
