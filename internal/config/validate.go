// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "storage.db.host"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// credentials is the subset of DBConfig a composed connection string needs.
type credentials struct {
	Host string `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port int    `json:"port" validate:"min=1,max=65535"`
	Name string `json:"name" validate:"required"`
	User string `json:"user" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json names so issue paths match the file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Callers decide whether warnings are fatal;
// cmd/etl refuses to run only on errors.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels logs and metrics",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransform(p.Transform)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.path",
			Message:  "source.path must not be empty",
		})
	}
	if strings.TrimSpace(s.Encoding) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "source.encoding",
			Message:  "no preferred encoding; utf-8 is tried first",
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	switch p.Kind {
	case "", "csv", "xlsx":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unknown parser kind %q; want csv or xlsx", p.Kind),
		})
	}

	if v, ok := p.Options["comma"]; ok {
		s, _ := v.(string)
		if s != "tab" && utf8.RuneCountInString(s) != 1 {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "parser.options.comma",
				Message:  fmt.Sprintf("comma must be a single character, got %v", v),
			})
		}
	}
	if p.Kind == "csv" && p.Options.String("sheet", "") != "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.sheet",
			Message:  "sheet is ignored by the csv parser",
		})
	}
	return issues
}

func validateTransform(t Transform) []Issue {
	var issues []Issue
	roles := t.Roles()
	if roles.NumericColumn == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform.numeric_column",
			Message:  "no numeric column; median imputation is skipped",
		})
	}
	seen := make(map[string]struct{}, len(roles.CategoricalColumns))
	for i, c := range roles.CategoricalColumns {
		if strings.TrimSpace(c) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform.categorical_columns[%d]", i),
				Message:  "column name must not be empty",
			})
			continue
		}
		if c == roles.NumericColumn {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("transform.categorical_columns[%d]", i),
				Message:  fmt.Sprintf("%q is already the numeric column", c),
			})
		}
		if _, dup := seen[c]; dup {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("transform.categorical_columns[%d]", i),
				Message:  fmt.Sprintf("%q listed twice", c),
			})
		}
		seen[c] = struct{}{}
	}
	return issues
}

// validateStorage validates storage configuration and DB settings.
func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	case "postgres", "mssql", "mysql", "sqlite":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	db := s.DB
	if strings.TrimSpace(db.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}
	if db.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.batch_size",
			Message:  "batch_size must not be negative",
		})
	}

	if db.DSN != "" {
		return issues
	}
	if s.Kind == "sqlite" {
		if db.Name == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "storage.db.name",
				Message:  "sqlite needs db.name (a file path) or db.dsn",
			})
		}
		return issues
	}
	issues = append(issues, validateCredentials(db)...)
	if db.Password == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.db.password",
			Message:  "no password set; relying on trust or a password file",
		})
	}
	return issues
}

// validateCredentials runs the struct-tag rules of credentials against db.
func validateCredentials(db DBConfig) []Issue {
	err := validate.Struct(credentials{Host: db.Host, Port: db.Port, Name: db.Name, User: db.User})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Severity: SeverityError, Path: "storage.db", Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db." + fe.Field(),
			Message:  describe(fe),
		})
	}
	return issues
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required when no dsn is given"
	case "min", "max":
		return fmt.Sprintf("%s=%v is out of range 1..65535", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s=%v is not a valid %s", fe.Field(), fe.Value(), fe.Tag())
	}
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend needs pushgateway_url",
			})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend needs datadog_addr",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; want none, pushgateway or datadog", m.Backend),
		})
	}
	return issues
}
