package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type ledgerRow struct {
	ID    int64  `gorm:"primaryKey"`
	Realm string `gorm:"type:text;not null;uniqueIndex:ux_ledger_rows,priority:1"`
	Code  string `gorm:"type:text;not null;uniqueIndex:ux_ledger_rows,priority:2"`
	Label string `gorm:"type:text"`
}

func (ledgerRow) TableName() string { return "ledger_rows" }

func setupStore(t *testing.T) (*repo, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&ledgerRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &repo{db: db}, db
}

func TestUpsertConvergesOnNaturalKey(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	conflict := []string{"realm", "code"}

	first := ledgerRow{ID: 1, Realm: "stripe", Code: "a", Label: "first"}
	if err := store.Upsert(ctx, "ledger_rows", &first, conflict); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := ledgerRow{ID: 2, Realm: "stripe", Code: "a", Label: "second"}
	if err := store.Upsert(ctx, "ledger_rows", &second, conflict); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var rows []ledgerRow
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].ID != 1 {
		t.Fatalf("expected original primary key preserved, got %d", rows[0].ID)
	}
	if rows[0].Label != "second" {
		t.Fatalf("expected label updated, got %s", rows[0].Label)
	}
}

func TestInsertRejectsDuplicateNaturalKey(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "ledger_rows", &ledgerRow{ID: 1, Realm: "stripe", Code: "a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.Insert(ctx, "ledger_rows", &ledgerRow{ID: 2, Realm: "stripe", Code: "a"}); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestDeleteMatching(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	seed := []ledgerRow{
		{ID: 1, Realm: "stripe", Code: "a"},
		{ID: 2, Realm: "stripe", Code: "b"},
		{ID: 3, Realm: "other", Code: "a"},
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := store.DeleteMatching(ctx, "ledger_rows", map[string]any{
		"realm": "stripe",
		"code":  "a",
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int64
	if err := db.Model(&ledgerRow{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows remaining, got %d", n)
	}

	// Deleting rows that do not exist is not an error.
	err = store.DeleteMatching(ctx, "ledger_rows", map[string]any{
		"realm": "stripe",
		"code":  "missing",
	})
	if err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestDeleteMatchingRequiresPredicate(t *testing.T) {
	store, _ := setupStore(t)

	if err := store.DeleteMatching(context.Background(), "ledger_rows", nil); err == nil {
		t.Fatalf("expected error on empty predicate")
	}
}
