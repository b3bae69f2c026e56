package handlers

import (
	"fmt"

	"github.com/dbbank/bank_backend/internal/utils/recurrence"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// recurrenceRule validates a custom recurrence rule string such as
// "FREQ=WEEKLY;BYDAY=MO,FR".
func recurrenceRule(fl validator.FieldLevel) bool {
	_, err := recurrence.ParseRule(fl.Field().String())
	return err == nil
}

// registerValidators adds the custom tags used by the request DTOs to gin's
// validator engine.
func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("recurrence_rule", recurrenceRule)
}
