package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/loginetl/internal/common"
)

const dotEnvFile = ".env"

// loadDotEnv copies variables from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: read %s: %v", common.ErrInvalidConfig, path, err)
	}
	return nil
}

// parseEnv overlays environment variables. Unset variables leave the field
// unchanged.
func parseEnv(config *Config) error {
	strs := map[string]*string{
		"ETL_QUEUE_URL":         &config.QueueURL,
		"ETL_QUEUE_ENDPOINT":    &config.QueueEndpoint,
		"AWS_REGION":            &config.Region,
		"AWS_ACCESS_KEY_ID":     &config.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY": &config.SecretAccessKey,
		"ETL_AES_PASSPHRASE":    &config.Passphrase,
		"ETL_CIPHER_MODE":       &config.CipherMode,
		"ETL_DATABASE_DSN":      &config.DatabaseDSN,
		"ETL_REJECT_BUCKET":     &config.RejectBucket,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("ETL_MAX_MESSAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: ETL_MAX_MESSAGES: %v", common.ErrInvalidConfig, err)
		}
		config.MaxMessages = n
	}

	return nil
}
