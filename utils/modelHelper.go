package utils

import (
	"context"
	"errors"

	"github.com/avsecdata/acreditaciones_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db
// (may return RecordNotFound)
func FetchSingleModel[T any](ctx context.Context, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrorRecordNotFound
		}
		return nil, WrapStoreError(err)
	}
	return &result, nil
}

// fetch all models from db
func FetchAllModels[T any](ctx context.Context, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, WrapStoreError(err)
	}
	return results, nil
}
