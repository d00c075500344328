package main

import (
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_create_users.sql", true, 1, "create_users"},
		{"0042_add_index.sql", true, 42, "add_index"},
		{"001_invalid.sql", false, 0, ""},
		{"0001_test", false, 0, ""},
		{"0001.sql", false, 0, ""},
		{"invalid_0001_test.sql", false, 0, ""},
		{"0000_zero.sql", false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseFilename(tt.filename)
			if ok != tt.valid {
				t.Fatalf("parseFilename(%q) ok = %v, want %v", tt.filename, ok, tt.valid)
			}
			if version != tt.version || name != tt.name {
				t.Errorf("parseFilename(%q) = (%d, %q), want (%d, %q)", tt.filename, version, name, tt.version, tt.name)
			}
		})
	}
}

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_accounts.sql": {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.accounts` (id STRING);")},
		"0001_users.sql":    {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.users` (id STRING);")},
		"README.md":         {Data: []byte("notes")},
	}

	got, err := readMigrations(fsys, "proj", "ds")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}

	var names []string
	for _, m := range got {
		names = append(names, m.Filename)
	}
	if diff := cmp.Diff([]string{"0001_users.sql", "0002_accounts.sql"}, names); diff != "" {
		t.Errorf("readMigrations() order mismatch (-want +got):\n%s", diff)
	}

	if want := "CREATE TABLE `proj.ds.users` (id STRING);"; got[0].SQL != want {
		t.Errorf("SQL = %q, want %q", got[0].SQL, want)
	}
	if strings.Contains(got[1].SQL, "{{") {
		t.Errorf("placeholders left in %q", got[1].SQL)
	}

	// The checksum ignores the target dataset.
	again, err := readMigrations(fsys, "other", "dataset")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if again[0].Checksum != got[0].Checksum {
		t.Error("checksum depends on project/dataset")
	}
	if got[0].Checksum == got[1].Checksum {
		t.Error("different files share a checksum")
	}
}

func TestReadMigrationsDuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("SELECT 1")},
		"0001_b.sql": {Data: []byte("SELECT 2")},
	}
	if _, err := readMigrations(fsys, "p", "d"); err == nil {
		t.Fatal("readMigrations() expected error for duplicate version")
	}
}

func TestPending(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Filename: "0001_a.sql", Checksum: "aaa"},
		{Version: 2, Filename: "0002_b.sql", Checksum: "bbb"},
		{Version: 3, Filename: "0003_c.sql", Checksum: "ccc"},
	}

	tests := []struct {
		name        string
		applied     []AppliedMigration
		wantPending []int
		wantChanged []int
	}{
		{
			name:        "fresh dataset",
			wantPending: []int{1, 2, 3},
		},
		{
			name:        "partially applied",
			applied:     []AppliedMigration{{Version: 1, Checksum: "aaa"}},
			wantPending: []int{2, 3},
		},
		{
			name:        "edited after apply",
			applied:     []AppliedMigration{{Version: 1, Checksum: "old"}, {Version: 2, Checksum: "bbb"}, {Version: 3}},
			wantChanged: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todo, changed := pending(migrations, tt.applied)
			var versions []int
			for _, m := range todo {
				versions = append(versions, m.Version)
			}
			if diff := cmp.Diff(tt.wantPending, versions); diff != "" {
				t.Errorf("pending mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantChanged, changed); diff != "" {
				t.Errorf("changed mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepositoryMigrations(t *testing.T) {
	got, err := readMigrations(os.DirFS("../../migrations/bigquery"), "proj", "ds")
	if err != nil {
		t.Fatalf("readMigrations() error = %v", err)
	}
	if len(got) == 0 {
		t.Fatal("no migrations found")
	}
	for i, m := range got {
		if m.Version != i+1 {
			t.Errorf("%s: version %d, want %d", m.Filename, m.Version, i+1)
		}
		if !strings.Contains(m.SQL, "`proj.ds.") {
			t.Errorf("%s: no qualified table reference", m.Filename)
		}
	}
}
