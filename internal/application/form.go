package application

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Form is a complete application as the applicant filled it in.
type Form struct {
	Email          string            `json:"email"`
	Name           string            `json:"name" validate:"required"`
	Age            string            `json:"age" validate:"required,adult,plausibleage"`
	Contact        string            `json:"contact" validate:"required,phone10"`
	Occupation     string            `json:"occupation" validate:"required"`
	Institute      string            `json:"institute" validate:"required"`
	AhmedabadBased string            `json:"ahmedabadBased" validate:"required"`
	LinkedIn       string            `json:"linkedin"`
	Team           string            `json:"team" validate:"required,team"`
	AboutYou       string            `json:"aboutYou"`
	Answers        map[string]string `json:"answers"`
}

// messages shown next to a field, keyed by field then failed rule
var fieldMessages = map[string]map[string]string{
	"name":           {"required": "Name is required"},
	"age":            {"required": "Age is required", "adult": "Only 18+ can apply (No exceptions)", "plausibleage": "Please enter a valid age"},
	"contact":        {"required": "Contact number is required", "phone10": "Please enter a valid 10-digit number"},
	"occupation":     {"required": "Please select your occupation"},
	"institute":      {"required": "Institute/Organization is required"},
	"ahmedabadBased": {"required": "Please select an option"},
	"team":           {"required": "Please select a team", "team": "Please select a team"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		age, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && age >= 18
	})

	_ = v.RegisterValidation("plausibleage", func(fl validator.FieldLevel) bool {
		age, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && age <= 99
	})

	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return len(digitsOnly(fl.Field().String())) == 10
	})

	_ = v.RegisterValidation("team", func(fl validator.FieldLevel) bool {
		_, ok := TeamByName(fl.Field().String())
		return ok
	})

	return v
}

// returns field → message for every problem, or nil when the form is complete
func (f *Form) Validate() map[string]string {
	problems := make(map[string]string)

	trimmed := *f
	trimmed.Name = strings.TrimSpace(f.Name)
	trimmed.Contact = strings.TrimSpace(f.Contact)
	trimmed.Institute = strings.TrimSpace(f.Institute)

	if err := validate.Struct(&trimmed); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			problems["form"] = "invalid form"
			return problems
		}

		for _, fe := range fieldErrs {
			problems[fe.Field()] = messageFor(fe.Field(), fe.Tag())
		}
	}

	if team, ok := TeamByName(f.Team); ok {
		for _, q := range team.Questions {
			if q.Required && strings.TrimSpace(f.Answers[q.Key]) == "" {
				problems[q.Key] = q.Message
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}

	return problems
}

// returns the answers belonging to the selected team only
func (f *Form) TeamAnswers() map[string]string {
	team, ok := TeamByName(f.Team)
	if !ok {
		return nil
	}

	answers := make(map[string]string, len(team.Questions))
	for _, q := range team.Questions {
		answers[q.Key] = f.Answers[q.Key]
	}

	return answers
}

func messageFor(field, tag string) string {
	if byTag, ok := fieldMessages[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}

	return "This field is invalid"
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
