package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate checks struct-tag constraints plus the handful of cross-field
// rules that tags can't express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	if cfg.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket: must be set")
	}
	seen := make(map[string]bool, len(cfg.DefaultSubdirectories))
	for _, name := range cfg.DefaultSubdirectories {
		if seen[name] {
			return fmt.Errorf("defaultSubdirectories: duplicate entry %q", name)
		}
		seen[name] = true
	}
	return nil
}

func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on %q tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
