package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

func openMigrated(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "integration.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(context.Background(), ""); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	tables := []string{"accounts", "children", "emergency_contacts", "daily_logs"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	// Running again is a no-op
	if err := db.RunMigrations(ctx, ""); err != nil {
		t.Fatalf("second migration run failed: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 recorded migrations, got %d", count)
	}
}

func TestUniqueEmailConstraint(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	insert := "INSERT INTO accounts (id, email, full_name) VALUES (?, ?, ?)"
	if _, err := db.ExecContext(ctx, insert, "a1", "parent@example.com", "Pat"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	_, err := db.ExecContext(ctx, insert, "a2", "parent@example.com", "Pat Again")
	if err == nil {
		t.Fatal("expected unique violation")
	}
	if !db.Dialect.IsUniqueViolation(err) {
		t.Errorf("expected IsUniqueViolation for %v", err)
	}
}

// TestDatabaseTransactions tests transaction support
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO accounts (id, email) VALUES (?, ?)", "t1", "one@example.com")
		return err
	})
	if err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO accounts (id, email) VALUES (?, ?)", "t2", "two@example.com"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO accounts (id, email) VALUES (?, ?)", "t3", "one@example.com")
		return err
	})
	if err == nil {
		t.Fatal("expected duplicate email to abort the transaction")
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		t.Fatalf("Failed to count accounts: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 account after rollback, got %d", count)
	}
}

func TestChildCascade(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			t.Fatalf("%s: %v", query, err)
		}
	}
	mustExec(`INSERT INTO children (id, first_name, last_name, date_of_birth, age_group, status, enrollment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, "c1", "Ada", "L", "2021-01-01", "toddler", "active", "2024-01-01")
	mustExec("INSERT INTO emergency_contacts (id, child_id, name, phone) VALUES (?, ?, ?, ?)", "e1", "c1", "Gran", "555")
	mustExec("DELETE FROM children WHERE id = ?", "c1")

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM emergency_contacts").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected contacts to cascade, got %d", count)
	}
}

// TestConcurrentAccess tests concurrent database access
func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openMigrated(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, "INSERT INTO accounts (id, email, full_name) VALUES (?, ?, ?)",
		"c1", "concurrent@example.com", "Concurrent")
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var name string
			err := db.QueryRowContext(ctx, "SELECT full_name FROM accounts WHERE email = ?", "concurrent@example.com").Scan(&name)
			if err != nil {
				t.Errorf("Concurrent read failed: %v", err)
			}
			if name != "Concurrent" {
				t.Errorf("Expected name 'Concurrent', got '%s'", name)
			}
		}()
	}
	wg.Wait()
}
