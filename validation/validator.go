package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/anjiri1684/teacheron/apperrors"
	"github.com/anjiri1684/teacheron/models"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("signup_role", func(fl validator.FieldLevel) bool {
		r := models.Role(fl.Field().String())
		return r == models.RoleStudent || r == models.RoleTutor
	})
	_ = v.RegisterValidation("user_status", func(fl validator.FieldLevel) bool {
		return models.UserStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("approval_decision", func(fl validator.FieldLevel) bool {
		s := models.ApprovalStatus(fl.Field().String())
		return s == models.ApprovalApproved || s == models.ApprovalRejected
	})
	_ = v.RegisterValidation("job_status", func(fl validator.FieldLevel) bool {
		return models.JobStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return &Validator{validate: v}
}

// Struct validates s and converts failures into an *apperrors.ValidationError.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}
	return apperrors.NewValidationError(fields...)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid id"
	case "alphanum":
		return "may only contain letters and digits"
	case "url":
		return "must be a valid URL"
	case "signup_role":
		return "must be student or tutor"
	case "user_status":
		return "must be active, pending or banned"
	case "approval_decision":
		return "must be approved or rejected"
	case "job_status":
		return "must be open, assigned, completed or cancelled"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
