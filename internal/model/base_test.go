package model

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// newTestDB はSQL接続なしでクエリを構築できるbun.DBを生成する。
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	return bun.NewDB(sqldb, pgdialect.New())
}

func TestBase_BeforeAppendModel_Insert_AssignsIDAndCreatedAt(t *testing.T) {
	db := newTestDB(t)
	task := &Task{Title: "test"}

	err := task.BeforeAppendModel(context.Background(), db.NewInsert())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("expected ID to be assigned on insert")
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set on insert")
	}
	if _, offset := task.CreatedAt.Zone(); offset != 9*60*60 {
		t.Errorf("CreatedAt zone offset = %d, want %d", offset, 9*60*60)
	}
	if task.UpdatedAt != nil {
		t.Error("UpdatedAt should stay nil on insert")
	}
}

func TestBase_BeforeAppendModel_Insert_KeepsExistingID(t *testing.T) {
	db := newTestDB(t)
	id := uuid.New()
	createdAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{Base: Base{ID: id, CreatedAt: createdAt}, Title: "test"}

	if err := task.BeforeAppendModel(context.Background(), db.NewInsert()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if task.ID != id {
		t.Errorf("ID = %v, want %v (must be immutable once assigned)", task.ID, id)
	}
	if !task.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v (set once at insertion)", task.CreatedAt, createdAt)
	}
}

func TestBase_BeforeAppendModel_Update_StampsUpdatedAt(t *testing.T) {
	db := newTestDB(t)
	task := &Task{Base: Base{ID: uuid.New()}, Title: "test"}

	if err := task.BeforeAppendModel(context.Background(), db.NewUpdate()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if task.UpdatedAt == nil {
		t.Fatal("expected UpdatedAt to be set on update")
	}
	if _, offset := task.UpdatedAt.Zone(); offset != 9*60*60 {
		t.Errorf("UpdatedAt zone offset = %d, want %d", offset, 9*60*60)
	}
}
