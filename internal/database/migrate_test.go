package database

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(Migrations(), "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) < 1 {
		t.Fatal("no embedded migrations")
	}

	for _, f := range files {
		data, err := fs.ReadFile(Migrations(), f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		body := string(data)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Errorf("%s is missing goose annotations", f)
		}
	}
}

func TestSnapshotTableKey(t *testing.T) {
	data, err := fs.ReadFile(Migrations(), "migrations/00001_create_price_snapshots.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "PRIMARY KEY (coin_id, fetched_at)") {
		t.Error("price_snapshots must be keyed on (coin_id, fetched_at) for ON CONFLICT")
	}
}
