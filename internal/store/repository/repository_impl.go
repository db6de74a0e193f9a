package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smallbiznis/billingsync/internal/store/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Store {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, collection string, rows any) error {
	return r.db.WithContext(ctx).Table(collection).Create(rows).Error
}

func (r *repo) Upsert(ctx context.Context, collection string, rows any, conflictColumns []string) error {
	columns := make([]clause.Column, 0, len(conflictColumns))
	for _, name := range conflictColumns {
		columns = append(columns, clause.Column{Name: name})
	}
	return r.db.WithContext(ctx).
		Table(collection).
		Clauses(clause.OnConflict{Columns: columns, UpdateAll: true}).
		Create(rows).Error
}

func (r *repo) DeleteMatching(ctx context.Context, collection string, match map[string]any) error {
	if len(match) == 0 {
		return fmt.Errorf("delete from %s requires a match predicate", collection)
	}

	keys := make([]string, 0, len(match))
	for key := range match {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		conditions = append(conditions, key+" = ?")
		args = append(args, match[key])
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s", collection, strings.Join(conditions, " AND "))
	return r.db.WithContext(ctx).Exec(stmt, args...).Error
}
