package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tsawler/layoutseq/model"
	"github.com/tsawler/layoutseq/pages"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(yamlName)
		if err := RegisterCustomValidators(v); err != nil {
			panic(fmt.Sprintf("registering validators: %v", err))
		}
		validate = v
	})
	return validate
}

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("page_selector", validatePageSelector)
}

// validatePageSelector checks a page selector against the grammar
func validatePageSelector(fl validator.FieldLevel) bool {
	sel, ok := fl.Field().Interface().(pages.Selector)
	if !ok {
		sel = pages.Selector(fl.Field().String())
	}
	_, err := pages.Parse(sel)
	return err == nil
}

func yamlName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Validate checks struct tags and the cross-field rules. Failures are
// reported as *model.ConfigurationError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return &model.ConfigurationError{Key: "config", Reason: "configuration cannot be nil"}
	}

	if err := getValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &model.ConfigurationError{
				Key:    strings.TrimPrefix(fe.Namespace(), "Config."),
				Value:  fe.Value(),
				Reason: fmt.Sprintf("failed %q validation", fe.Tag()),
			}
		}
		return &model.ConfigurationError{Key: "config", Reason: err.Error()}
	}

	return validateCustom(cfg)
}

// validateCustom performs custom validation beyond struct tags
func validateCustom(cfg *Config) error {
	if _, err := cfg.SegmentClassifier.Policy(); err != nil {
		return err
	}
	if cfg.Debug.Enabled && cfg.Debug.OutputDir == "" {
		return &model.ConfigurationError{Key: "debug.output_dir_path", Reason: "required when debug is enabled"}
	}
	return nil
}
