package utils

import (
	"context"
	"reflect"
	"strings"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Input structs keep the `binding` tag convention.
	validate.SetTagName("binding")
}

// ValidateStruct runs tag validation on an input struct and folds field
// failures into a single ValidationError.
func ValidateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError("invalid input: %v", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, LowercaseFirst(fe.Field())+" ("+fe.Tag()+")")
	}
	return NewValidationError("invalid input: %s", strings.Join(fields, ", "))
}

func LowercaseFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// check if id exists, may return RecordNotFound error
func ValidateResourceId[T any](ctx context.Context, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrorRecordNotFound
	}
	return nil
}

// check if ALL ids exist, may return RecordNotFound error
func ValidateResourcesId[M any, ID comparable](ctx context.Context, ids []ID) error {
	if len(ids) == 0 {
		return nil
	}
	unqIds := UniqueSlice(ids)

	count, err := ResourceCountWhere[M](ctx, "id IN ?", unqIds)
	if err != nil {
		return err
	}
	if count != int64(len(unqIds)) {
		return ErrorRecordNotFound
	}
	return nil
}

func ValidateUnique[T any](ctx context.Context, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return NewValidationError("duplicate %s", column)
	}
	return nil
}

// count records matching condition
func ResourceCountWhere[T any](ctx context.Context, condition string, value ...interface{}) (int64, error) {
	var model T

	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, WrapStoreError(err)
	}
	return count, nil
}
