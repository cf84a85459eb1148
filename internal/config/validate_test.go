package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

// validPipeline returns a pipeline that lints clean.
func validPipeline() Pipeline {
	p := Default()
	p.Source.Path = "data/ai_job_dataset.csv"
	p.Storage.DB.Password = "secret"
	return p
}

func TestValidatePipeline_ValidMinimal(t *testing.T) {
	t.Parallel()

	if issues := ValidatePipeline(validPipeline()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidatePipeline_MissingJobAndSource(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Job = " "
	p.Source = Source{}

	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected job error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "source.path", "must not be empty") {
		t.Fatalf("expected source.path error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "source.encoding", "utf-8") {
		t.Fatalf("expected source.encoding warning; got %+v", issues)
	}
	if !HasErrors(issues) {
		t.Fatalf("HasErrors = false")
	}
}

func TestValidatePipeline_Parser(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Parser = Parser{Kind: "xml", Options: Options{"comma": ";;"}}
	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "parser.kind", "unknown parser kind") {
		t.Fatalf("expected parser.kind error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "parser.options.comma", "single character") {
		t.Fatalf("expected comma error; got %+v", issues)
	}

	p.Parser = Parser{Kind: "csv", Options: Options{"comma": "tab", "sheet": "x"}}
	issues = ValidatePipeline(p)
	if hasIssue(t, issues, SeverityError, "parser.options.comma", "") {
		t.Fatalf("tab rejected as comma; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "parser.options.sheet", "ignored") {
		t.Fatalf("expected sheet warning; got %+v", issues)
	}
}

func TestValidatePipeline_TransformRoles(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Transform = Transform{
		NumericColumn:      "salary",
		CategoricalColumns: []string{"salary", "", "size", "size"},
	}
	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "transform.categorical_columns[0]", "numeric column") {
		t.Fatalf("expected numeric/categorical clash; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "transform.categorical_columns[1]", "must not be empty") {
		t.Fatalf("expected empty name error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityWarning, "transform.categorical_columns[3]", "listed twice") {
		t.Fatalf("expected duplicate warning; got %+v", issues)
	}
}

func TestValidatePipeline_StorageCredentials(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Storage.DB = DBConfig{Host: "not a host!", Port: 70000, Table: "ai_jobs"}

	issues := ValidatePipeline(p)
	for _, want := range []struct {
		path, msg string
	}{
		{"storage.db.host", "not a valid"},
		{"storage.db.port", "out of range"},
		{"storage.db.name", "required"},
		{"storage.db.user", "required"},
	} {
		if !hasIssue(t, issues, SeverityError, want.path, want.msg) {
			t.Fatalf("expected %s error containing %q; got %+v", want.path, want.msg, issues)
		}
	}
	if !hasIssue(t, issues, SeverityWarning, "storage.db.password", "no password") {
		t.Fatalf("expected password warning; got %+v", issues)
	}
}

func TestValidatePipeline_StorageDSNSkipsCredentials(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Storage.DB = DBConfig{DSN: "postgres://u@h/db", Table: "ai_jobs"}
	if issues := ValidatePipeline(p); len(issues) != 0 {
		t.Fatalf("expected no issues with explicit dsn; got %+v", issues)
	}
}

func TestValidatePipeline_Storage(t *testing.T) {
	t.Parallel()

	p := validPipeline()
	p.Storage = Storage{}
	if !hasIssue(t, ValidatePipeline(p), SeverityError, "storage.kind", "must not be empty") {
		t.Fatalf("expected storage.kind error")
	}

	p.Storage = Storage{Kind: "sqlite", DB: DBConfig{BatchSize: -1}}
	issues := ValidatePipeline(p)
	if !hasIssue(t, issues, SeverityError, "storage.db.table", "must not be empty") {
		t.Fatalf("expected table error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "storage.db.batch_size", "negative") {
		t.Fatalf("expected batch_size error; got %+v", issues)
	}
	if !hasIssue(t, issues, SeverityError, "storage.db.name", "sqlite") {
		t.Fatalf("expected sqlite name error; got %+v", issues)
	}

	p.Storage = Storage{Kind: "oracle", DB: DBConfig{DSN: "x", Table: "t"}}
	if !hasIssue(t, ValidatePipeline(p), SeverityWarning, "storage.kind", "unknown storage kind") {
		t.Fatalf("expected unknown kind warning")
	}
}

func TestValidatePipeline_Metrics(t *testing.T) {
	t.Parallel()

	cases := []struct {
		m    Metrics
		path string
	}{
		{Metrics{Backend: "pushgateway"}, "metrics.pushgateway_url"},
		{Metrics{Backend: "datadog"}, "metrics.datadog_addr"},
		{Metrics{Backend: "statsd"}, "metrics.backend"},
	}
	for _, tc := range cases {
		p := validPipeline()
		p.Metrics = tc.m
		if !hasIssue(t, ValidatePipeline(p), SeverityError, tc.path, "") {
			t.Fatalf("backend %q: expected error at %s", tc.m.Backend, tc.path)
		}
	}
}

func TestIssue_Error(t *testing.T) {
	t.Parallel()

	iss := Issue{Severity: SeverityError, Path: "storage.kind", Message: "boom"}
	if got, want := iss.Error(), "error at storage.kind: boom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
