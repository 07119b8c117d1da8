package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	for _, s := range c.Matching.Separators {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("matching.separators: blank separator %q", s)
		}
		if s != strings.ToLower(s) {
			return fmt.Errorf("matching.separators: %q must be lowercase, artist strings are lowercased before splitting", s)
		}
	}

	if contains(c.Preprocess.NumericalColumns, c.Preprocess.TargetColumn) {
		return fmt.Errorf("preprocess.target_column %q cannot also be a numerical feature", c.Preprocess.TargetColumn)
	}
	for _, col := range c.Preprocess.CategoricalColumns {
		if contains(c.Preprocess.NumericalColumns, col) {
			return fmt.Errorf("preprocess: column %q is both categorical and numerical", col)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
