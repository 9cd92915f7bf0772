package database

import (
	"strings"
	"testing"
)

func TestNew_UnreachableDatabase(t *testing.T) {
	t.Parallel()

	// Port 1 refuses connections, so the ping fails without a running Postgres
	db, err := New("postgres://planner@127.0.0.1:1/planner?sslmode=disable&connect_timeout=1")
	if err == nil {
		_ = db.Close()
		t.Fatal("New() expected error for an unreachable database")
	}
	if db != nil {
		t.Error("New() returned a pool alongside the error")
	}
	if !strings.Contains(err.Error(), "failed to ping database") {
		t.Errorf("New() error = %v, want ping failure", err)
	}
}
