package ddl

import (
	"strings"
	"testing"
	"time"

	"cleanload/internal/dataset"
	gddl "cleanload/internal/ddl"
)

func TestStatements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"drop", DropTableSQL("etl.ai_jobs"), "DROP TABLE IF EXISTS `etl`.`ai_jobs`"},
		{"rename", RenameSQL("s", "t"), "RENAME TABLE `s` TO `t`"},
		{"swap", SwapSQL("t", "s", "o"), "RENAME TABLE `t` TO `o`, `s` TO `t`"},
		{"insert", InsertSQL("t", []string{"a", "b`c"}, 2), "INSERT INTO `t` (`a`, `b``c`) VALUES (?, ?), (?, ?)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestFromDatasetMapsKinds(t *testing.T) {
	t.Parallel()

	noon := time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	ds, err := dataset.New(
		dataset.Column{Name: "salary", Kind: dataset.Decimal, Cells: []dataset.Value{dataset.DecimalValue(1), dataset.Null()}},
		dataset.Column{Name: "remote", Kind: dataset.Boolean, Cells: []dataset.Value{dataset.BoolValue(true), dataset.BoolValue(false)}},
		dataset.Column{Name: "posted", Kind: dataset.Date, Cells: []dataset.Value{dataset.DateValue(noon), dataset.DateValue(noon)}},
		dataset.Column{Name: "title", Kind: dataset.Text, Cells: []dataset.Value{dataset.TextValue("a"), dataset.TextValue("b")}},
	)
	if err != nil {
		t.Fatalf("dataset.New: %v", err)
	}
	td, err := FromDataset("jobs", ds)
	if err != nil {
		t.Fatalf("FromDataset: %v", err)
	}
	sql, err := BuildCreateTableSQL(td)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	for _, want := range []string{"`salary` DOUBLE,", "`remote` BOOLEAN NOT NULL", "`posted` DATETIME(6) NOT NULL", "`title` LONGTEXT NOT NULL"} {
		if !strings.Contains(sql, want) {
			t.Errorf("missing %q in:\n%s", want, sql)
		}
	}

	if _, err := BuildCreateTableSQL(gddl.TableDef{FQN: "t"}); err == nil || !strings.HasPrefix(err.Error(), "mysql ddl:") {
		t.Fatalf("err = %v", err)
	}
}
