package request

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"

	"github.com/djcafe/cafe/internal/model"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.ValidCategory(fl.Field().String())
	})
	// An empty schedule clears it.
	validate.RegisterValidation("cronspec", func(fl validator.FieldLevel) bool {
		spec := fl.Field().String()
		if spec == "" {
			return true
		}
		_, err := cron.ParseStandard(spec)
		return err == nil
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}
