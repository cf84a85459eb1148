package csv_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"cleanload/internal/parser"
	pcsv "cleanload/internal/parser/csv"
)

func TestParse(t *testing.T) {
	t.Parallel()

	in := "\uFEFFwork_year, job_title ,salary_in_usd\n2023,Data Scientist,50000\n\n2023,\"ML, Engineer\",\n"
	tbl, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	wantHeader := []string{"work_year", "job_title", "salary_in_usd"}
	if !reflect.DeepEqual(tbl.Header, wantHeader) {
		t.Fatalf("header = %q, want %q", tbl.Header, wantHeader)
	}
	wantRows := [][]string{
		{"2023", "Data Scientist", "50000"},
		{"2023", "ML, Engineer", ""},
	}
	if !reflect.DeepEqual(tbl.Rows, wantRows) {
		t.Fatalf("rows = %q, want %q", tbl.Rows, wantRows)
	}
}

func TestParseHeaderOptions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opt  pcsv.Options
		in   string
		want []string
	}{
		{
			name: "normalize",
			opt:  pcsv.Options{NormalizeHeaders: true},
			in:   "Job Title,Salary\n",
			want: []string{"job_title", "salary"},
		},
		{
			name: "header_map_wins",
			opt:  pcsv.Options{NormalizeHeaders: true, HeaderMap: map[string]string{"Salary": "salary_in_usd"}},
			in:   "Job Title,Salary\n",
			want: []string{"job_title", "salary_in_usd"},
		},
		{
			name: "blank_and_duplicate",
			opt:  pcsv.Options{},
			in:   "a,,a,a\n",
			want: []string{"a", "col_1", "a.1", "a.2"},
		},
		{
			name: "suffix_already_taken",
			opt:  pcsv.Options{},
			in:   "a.1,a,a,a\n",
			want: []string{"a.1", "a", "a.2", "a.3"},
		},
		{
			name: "semicolon",
			opt:  pcsv.Options{Comma: ';'},
			in:   "a;b\n",
			want: []string{"a", "b"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tbl, err := pcsv.NewParser(tc.opt).Parse(strings.NewReader(tc.in))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(tbl.Header, tc.want) {
				t.Fatalf("header = %q, want %q", tbl.Header, tc.want)
			}
			if len(tbl.Rows) != 0 {
				t.Fatalf("rows = %d, want 0", len(tbl.Rows))
			}
		})
	}
}

func TestParseRejectsNonTabular(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":        "",
		"blank_lines":  "\n\n",
		"ragged":       "a,b\n1,2\n3\n",
		"bare_quote":   "a,b\n1,x\"y\n",
		"unterminated": "a,b\n\"1,2\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
			if !errors.Is(err, parser.ErrNotTabular) {
				t.Fatalf("err = %v, want ErrNotTabular", err)
			}
		})
	}
}
