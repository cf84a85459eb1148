package transformer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cleanload/internal/dataset"
	"cleanload/internal/etlerr"
	"cleanload/internal/transformer/builtin"
)

// jobs builds the ten-row fixture: row 5 repeats row 4 exactly and rows 8 and
// 9 have no salary. The eight present salaries have median 50000.
func jobs(t *testing.T) *dataset.Dataset {
	t.Helper()
	header := []string{"job_title", "experience_level", "salary_in_usd", "company_size"}
	rows := [][]string{
		{"Data Scientist", "SE", "30000", "M"},
		{"ML Engineer", "MI", "40000", "L"},
		{"Data Analyst", "EN", "45000", "S"},
		{"  Data Engineer ", "SE", "60000", "M"},
		{"Research Scientist", "EX", "50000", "L"},
		{"Research Scientist", "EX", "50000", "L"},
		{"AI Architect", "EX", "70000", "M"},
		{"Head of Data", "EX", "90000", "L"},
		{"BI Developer", "MI", "NA", "M"},
		{"Data Manager", "SE", "", "S"},
	}
	ds, err := dataset.FromRecords(header, rows)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return ds
}

func TestTransformScenario(t *testing.T) {
	t.Parallel()

	in := jobs(t)
	before := in.Clone()

	out, rep, err := New(DefaultConfig(), nil).Transform(context.Background(), in)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if out.Len() != 9 {
		t.Fatalf("rows = %d, want 9", out.Len())
	}
	if n := out.MissingCount(); n != 0 {
		t.Fatalf("missing cells = %d, want 0", n)
	}

	salary, _ := out.Column("salary_in_usd")
	if salary.Kind != dataset.Decimal {
		t.Fatalf("salary kind = %s, want decimal", salary.Kind)
	}
	// Rows 8 and 9 shift up by one once the duplicate is gone.
	for _, i := range []int{7, 8} {
		if got := salary.Cells[i]; !got.Equal(dataset.DecimalValue(50000)) {
			t.Fatalf("salary[%d] = %v, want 50000", i, got)
		}
	}

	title, _ := out.Column("job_title")
	if got := title.Cells[3].Str(); got != "data engineer" {
		t.Fatalf("title[3] = %q, want standardized", got)
	}

	if !in.Equal(before) {
		t.Fatalf("Transform modified its input")
	}

	if rep.RowsIn != 10 || rep.RowsOut != 9 {
		t.Fatalf("report rows = %d -> %d", rep.RowsIn, rep.RowsOut)
	}
	var names []string
	for _, s := range rep.Stages {
		names = append(names, s.Stage)
	}
	if want := []string{"impute", "dedup", "standardize", "validate"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("stages = %q, want %q", names, want)
	}
	if rep.CellsImputed() != 2 || rep.RowsRemoved() != 1 {
		t.Fatalf("imputed=%d removed=%d", rep.CellsImputed(), rep.RowsRemoved())
	}
}

func TestTransformKeepsColumnIdentity(t *testing.T) {
	t.Parallel()

	in := jobs(t)
	out, _, err := New(DefaultConfig(), nil).Transform(context.Background(), in)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !reflect.DeepEqual(out.Names(), in.Names()) {
		t.Fatalf("names = %q, want %q", out.Names(), in.Names())
	}
	if out.Len() > in.Len() {
		t.Fatalf("row count grew: %d > %d", out.Len(), in.Len())
	}
}

func TestTransformRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	noRows, err := dataset.New(dataset.Column{Name: "a", Kind: dataset.Text})
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	for name, ds := range map[string]*dataset.Dataset{"nil": nil, "no_rows": noRows, "no_columns": {}} {
		_, _, err := New(DefaultConfig(), nil).Transform(context.Background(), ds)
		if !errors.Is(err, etlerr.ErrEmptyInput) {
			t.Fatalf("%s: err = %v, want EmptyInput", name, err)
		}
	}
}

func TestTransformEmptyResult(t *testing.T) {
	t.Parallel()

	ds, err := dataset.FromRecords(
		[]string{"job_title", "note"},
		[][]string{{"a", ""}, {"b", "NA"}},
	)
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	_, rep, err := New(DefaultConfig(), nil).Transform(context.Background(), ds)
	if !errors.Is(err, etlerr.ErrEmptyResult) {
		t.Fatalf("err = %v, want EmptyResult", err)
	}
	if len(rep.Stages) != 4 {
		t.Fatalf("stages run = %d, want 4", len(rep.Stages))
	}
}

type recordingStep struct {
	name  string
	calls *[]string
	err   error
}

func (s recordingStep) Name() string { return s.name }

func (s recordingStep) Apply(context.Context, *dataset.Dataset) (builtin.Result, error) {
	*s.calls = append(*s.calls, s.name)
	return builtin.Result{Warnings: []string{"w"}}, s.err
}

func TestChainStopsAtFirstError(t *testing.T) {
	t.Parallel()

	var calls []string
	boom := errors.New("boom")
	c := Chain{
		recordingStep{name: "one", calls: &calls},
		recordingStep{name: "two", calls: &calls, err: boom},
		recordingStep{name: "three", calls: &calls},
	}
	ds, _ := dataset.New(dataset.Column{Name: "a", Kind: dataset.Integer, Cells: []dataset.Value{dataset.IntValue(1)}})

	rep, err := c.Apply(context.Background(), ds)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !reflect.DeepEqual(calls, []string{"one", "two"}) {
		t.Fatalf("calls = %q", calls)
	}
	if got := rep.Warnings(); !reflect.DeepEqual(got, []string{"one: w", "two: w"}) {
		t.Fatalf("warnings = %q", got)
	}
}
