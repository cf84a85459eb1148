// Package config defines the JSON/YAML pipeline model for cleanload: where the
// source lives, how it is parsed, which columns the cleaning steps treat as
// numeric, categorical or free text, and where the result is written.
//
// Example (trimmed):
//
//	{
//	  "job":       "ai_jobs",
//	  "source":    { "path": "data/ai_job_dataset.csv", "encoding": "utf-8" },
//	  "parser":    { "kind": "csv", "options": { "comma": "," } },
//	  "transform": { "numeric_column": "salary_in_usd" },
//	  "storage":   { "kind": "postgres", "db": { "host": "localhost", "name": "postgres", "table": "ai_jobs" } },
//	  "metrics":   { "backend": "none" }
//	}
package config

import (
	"encoding/json"
	"slices"

	pcsv "cleanload/internal/parser/csv"
	"cleanload/internal/transformer"
)

// Defaults mirror the environment fallbacks of the original job.
const (
	DefaultJob      = "cleanload"
	DefaultEncoding = "utf-8"
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultDBName   = "postgres"
	DefaultUser     = "postgres"
	DefaultTable    = "ai_jobs"
	DefaultKind     = "postgres"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job labels logs and metrics for this run.
	Job string `json:"job"`

	Source Source `json:"source"`

	// Parser configures how raw bytes become a table.
	Parser Parser `json:"parser"`

	// Transform assigns column roles to the fixed cleaning chain. The chain
	// itself is not configurable.
	Transform Transform `json:"transform"`

	// Storage describes where the cleaned table is written.
	Storage Storage `json:"storage"`
	Metrics Metrics `json:"metrics"`
	Logging Logging `json:"logging"`
}

// Source identifies the input. Path is a local path or an http(s) URL.
type Source struct {
	Path string `json:"path"`

	// Encoding is tried first; UTF-8, Latin-1 and Windows-1252 follow.
	Encoding string `json:"encoding"`
}

// Parser selects how to parse the raw source into rows.
type Parser struct {
	// Kind is "csv" or "xlsx". Empty means the file extension decides.
	Kind string `json:"kind"`

	// Options is a free-form map. Recognized keys:
	//   comma (string), normalize_headers (bool), header_map (object),
	//   sheet (string, xlsx only)
	Options Options `json:"options"`
}

// CSV returns the csv parser options carried in p.Options.
func (p Parser) CSV() pcsv.Options {
	return pcsv.Options{
		Comma:            p.Options.Rune("comma", ','),
		NormalizeHeaders: p.Options.Bool("normalize_headers", false),
		HeaderMap:        p.Options.StringMap("header_map"),
	}
}

// Sheet returns the worksheet to read from xlsx sources; empty means the first.
func (p Parser) Sheet() string {
	return p.Options.String("sheet", "")
}

// Transform names the columns each cleaning step works on. A nil slice (key
// absent) selects the defaults; an explicit empty list disables that role.
type Transform struct {
	NumericColumn      string   `json:"numeric_column"`
	CategoricalColumns []string `json:"categorical_columns"`
	TextColumns        []string `json:"text_columns"`
}

// Roles returns the transformer configuration with defaults filled in.
func (t Transform) Roles() transformer.Config {
	cfg := transformer.DefaultConfig()
	if t.NumericColumn != "" {
		cfg.NumericColumn = t.NumericColumn
	}
	if t.CategoricalColumns != nil {
		cfg.CategoricalColumns = slices.Clone(t.CategoricalColumns)
	}
	if t.TextColumns != nil {
		cfg.TextColumns = slices.Clone(t.TextColumns)
	}
	return cfg
}

// Storage selects the backend the table is written to.
type Storage struct {
	// Kind is a registered storage kind: "postgres", "mssql", "mysql" or "sqlite".
	Kind string   `json:"kind"`
	DB   DBConfig `json:"db"`
}

// DBConfig configures the destination. Either DSN is set, or the connection
// string is composed from the individual fields (see ConnString).
type DBConfig struct {
	DSN string `json:"dsn"`

	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"password"`

	// SSLMode is passed to postgres as sslmode; empty leaves the driver default.
	SSLMode string `json:"sslmode"`

	// Table is the destination table, optionally schema qualified
	// ("public.ai_jobs"). It is replaced on every run.
	Table string `json:"table"`

	// BatchSize bounds the rows sent per bulk-copy call. Zero uses the
	// storage default.
	BatchSize int `json:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog". Empty means "none".
	Backend string `json:"backend"`

	PushgatewayURL string   `json:"pushgateway_url"`
	DatadogAddr    string   `json:"datadog_addr"`
	Tags           []string `json:"tags"`
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `json:"level"`
	Development bool   `json:"development"`
	File        string `json:"file"`
}

// Default returns the pipeline used when no file is given: the AI jobs
// dataset written to a local postgres.
func Default() Pipeline {
	return Pipeline{
		Job:    DefaultJob,
		Source: Source{Encoding: DefaultEncoding},
		Parser: Parser{Options: Options{}},
		Storage: Storage{
			Kind: DefaultKind,
			DB: DBConfig{
				Host:  DefaultHost,
				Port:  DefaultPort,
				Name:  DefaultDBName,
				User:  DefaultUser,
				Table: DefaultTable,
			},
		},
		Metrics: Metrics{Backend: "none"},
		Logging: Logging{Level: "info"},
	}
}

// Options is a small helper to fetch typed values from free-form JSON maps.
// It performs only minimal type coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty. "\t" and "tab" both select a tab delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			if s == "tab" {
				return '\t'
			}
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored. Returns nil when
// the key is missing or the value is not an object.
func (o Options) StringMap(key string) map[string]string {
	v, ok := o[key]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	res := make(map[string]string, len(m))
	for k, vv := range m {
		if s, ok := vv.(string); ok {
			res[k] = s
		}
	}
	return res
}

// UnmarshalJSON decodes a missing or null "options" object to a non-nil,
// empty Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
