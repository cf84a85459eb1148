package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override (ETL_DB_HOST, ...). Each key
// also falls back to its unprefixed name (DB_HOST, ...).
const EnvPrefix = "ETL"

// Env holds the environment overrides. Unset variables leave the pipeline
// value untouched.
type Env struct {
	StorageKind    string `envconfig:"STORAGE_KIND"`
	DSN            string `envconfig:"DB_DSN"`
	DBHost         string `envconfig:"DB_HOST"`
	DBPort         int    `envconfig:"DB_PORT"`
	DBName         string `envconfig:"DB_NAME"`
	DBUser         string `envconfig:"DB_USER"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	Table          string `envconfig:"TABLE"`
	SourcePath     string `envconfig:"SOURCE_PATH"`
	SourceEncoding string `envconfig:"SOURCE_ENCODING"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

// Load builds a Pipeline from defaults, then the file at path (if any), then
// the environment. Files ending in .yaml or .yml are read as YAML; anything
// else as JSON. Unknown keys are rejected.
func Load(path string) (Pipeline, error) {
	p := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Pipeline{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(b, filepath.Ext(path), &p); err != nil {
			return Pipeline{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Pipeline{}, fmt.Errorf("config: env: %w", err)
	}
	env.Apply(&p)
	return p, nil
}

// Decode decodes b into p. Fields absent from b keep their current value, so
// callers pre-fill p with defaults. ext selects the format (".yaml", ".yml" or
// anything else for JSON).
func Decode(b []byte, ext string, p *Pipeline) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		js, err := yaml.YAMLToJSON(b)
		if err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		b = js
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// Apply copies every set override onto p.
func (e Env) Apply(p *Pipeline) {
	setString(&p.Storage.Kind, e.StorageKind)
	setString(&p.Storage.DB.DSN, e.DSN)
	setString(&p.Storage.DB.Host, e.DBHost)
	if e.DBPort != 0 {
		p.Storage.DB.Port = e.DBPort
	}
	setString(&p.Storage.DB.Name, e.DBName)
	setString(&p.Storage.DB.User, e.DBUser)
	setString(&p.Storage.DB.Password, e.DBPassword)
	setString(&p.Storage.DB.Table, e.Table)
	setString(&p.Source.Path, e.SourcePath)
	setString(&p.Source.Encoding, e.SourceEncoding)
	setString(&p.Logging.Level, e.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
