package application

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// personal fields every field map must name
var personalFields = []string{
	"email", "name", "age", "contact", "occupation", "institute",
	"ahmedabadBased", "linkedin", "team", "aboutYou", "verificationToken",
}

// FieldMap ties logical form fields to Google Form entry ids.
type FieldMap struct {
	FormURL string            `yaml:"form_url"`
	Fields  map[string]string `yaml:"fields"`
}

// reads and checks a YAML field map
func LoadFieldMap(path string) (*FieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field map: %w", err)
	}

	return ParseFieldMap(data)
}

func ParseFieldMap(data []byte) (*FieldMap, error) {
	var fm FieldMap
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse field map: %w", err)
	}

	if err := fm.check(); err != nil {
		return nil, err
	}

	return &fm, nil
}

func (fm *FieldMap) check() error {
	u, err := url.Parse(fm.FormURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("form_url must be an https URL")
	}

	if !strings.HasSuffix(u.Path, "/formResponse") {
		return fmt.Errorf("form_url must point at the form's formResponse endpoint")
	}

	var missing []string
	for _, name := range personalFields {
		if fm.Fields[name] == "" {
			missing = append(missing, name)
		}
	}

	for _, team := range teams {
		for _, q := range team.Questions {
			if fm.Fields[q.Key] == "" {
				missing = append(missing, q.Key)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("field map is missing entries for: %s", strings.Join(missing, ", "))
	}

	return nil
}

// encodes the form as the Google Form expects it
func (fm *FieldMap) Encode(form *Form, token string) url.Values {
	values := url.Values{}

	set := func(field, value string) {
		values.Set(fm.Fields[field], value)
	}

	set("email", form.Email)
	set("name", form.Name)
	set("age", form.Age)
	set("contact", form.Contact)
	set("occupation", form.Occupation)
	set("institute", form.Institute)
	set("ahmedabadBased", form.AhmedabadBased)
	set("linkedin", form.LinkedIn)
	set("team", form.Team)
	set("aboutYou", form.AboutYou)
	set("verificationToken", token)

	for key, answer := range form.TeamAnswers() {
		set(key, answer)
	}

	return values
}
