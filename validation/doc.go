// Package validation validates configuration structs using struct tags
// (go-playground/validator).
//
//	type Config struct {
//	    BatchSize int `mapstructure:"batch_size" validate:"min=1"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as *errors.AppError with code INVALID_INPUT and a
// "fields" detail listing every offending field.
package validation
