package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var sqlIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Validate checks the loaded configuration against its `validate` tags.
func Validate(conf *Configuration) error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	return v.Struct(conf)
}

// ValidateOffline is Validate without the database DSN, for commands that
// never connect.
func ValidateOffline(conf *Configuration) error {
	v, err := newValidator()
	if err != nil {
		return err
	}
	return v.StructExcept(conf, "Database.URL")
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdentRe.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}
	return v, nil
}
