package validator

import (
	"errors"
	"fmt"
	"strings"

	"courtside/internal/conflict"
	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type FacilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewFacilityValidator(log *logger.Logger) *FacilityValidator {
	v := validator.New()
	log.Info("Facility validator initialized successfully")
	return &FacilityValidator{
		validate: v,
		logger:   log,
	}
}

func (v *FacilityValidator) Validate(facility *model.Facility) error {
	if err := v.validate.Struct(facility); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if facility.Timeslots != nil {
		if err := v.ValidateTimeslots(facility.Timeslots); err != nil {
			return err
		}
	}
	return nil
}

func (v *FacilityValidator) ValidateUpdate(update *model.FacilityUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateTimeslots checks every day of a weekly template: weekday names
// must be canonical and no day may contain duplicate or overlapping ranges.
// Any violation fails the whole template.
func (v *FacilityValidator) ValidateTimeslots(timeslots model.Timeslots) error {
	if len(timeslots) == 0 {
		return ValidationErrors{
			ValidationError{Field: "Timeslots", Message: "template must contain at least one weekday"},
		}
	}

	for day, slots := range timeslots {
		if !model.IsWeekday(day) {
			return ValidationErrors{
				ValidationError{Field: "Timeslots", Message: fmt.Sprintf("%q is not a valid weekday name", day)},
			}
		}
		if err := conflict.CheckDaySlots(slots); err != nil {
			return ValidationErrors{
				ValidationError{Field: "Timeslots." + day, Message: err.Error()},
			}
		}
	}
	return nil
}

func (v *FacilityValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
