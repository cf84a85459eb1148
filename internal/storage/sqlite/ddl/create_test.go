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
		{"drop", DropTableSQL("main.ai_jobs"), `DROP TABLE IF EXISTS "main"."ai_jobs"`},
		{"rename keeps schema of source", RenameTableSQL("main.t__staging_x", "main.t"), `ALTER TABLE "main"."t__staging_x" RENAME TO "t"`},
		{"insert", InsertSQL("t", []string{"a", `b"c`}), `INSERT INTO "t" ("a", "b""c") VALUES (?, ?)`},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestFromDatasetMapsKinds(t *testing.T) {
	t.Parallel()

	ds, err := dataset.New(
		dataset.Column{Name: "salary", Kind: dataset.Decimal, Cells: []dataset.Value{dataset.DecimalValue(1)}},
		dataset.Column{Name: "remote", Kind: dataset.Boolean, Cells: []dataset.Value{dataset.BoolValue(true)}},
		dataset.Column{Name: "posted", Kind: dataset.Date, Cells: []dataset.Value{dataset.DateValue(time.Now())}},
		dataset.Column{Name: "year", Kind: dataset.Integer, Cells: []dataset.Value{dataset.IntValue(2024)}},
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
	for _, want := range []string{`"salary" REAL NOT NULL`, `"remote" INTEGER NOT NULL`, `"posted" TEXT NOT NULL`, `"year" INTEGER NOT NULL`} {
		if !strings.Contains(sql, want) {
			t.Errorf("missing %q in:\n%s", want, sql)
		}
	}

	if _, err := BuildCreateTableSQL(gddl.TableDef{FQN: "t"}); err == nil || !strings.HasPrefix(err.Error(), "sqlite ddl:") {
		t.Fatalf("err = %v", err)
	}
}
