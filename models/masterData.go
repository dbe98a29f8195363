package models

import (
	"context"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
)

/*
Master data referenced by Tramite link tables. All four entities share the
same shape and lifecycle (name-unique, soft on/off), so the CRUD goes through
the generic helpers at the bottom of this file.
*/

type EquipoSeguridad struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Nombre      string    `gorm:"size:150;uniqueIndex;not null" json:"nombre" binding:"required"`
	Descripcion string    `gorm:"type:text" json:"descripcion"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type ServicioSeguridad struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Nombre      string    `gorm:"size:150;uniqueIndex;not null" json:"nombre" binding:"required"`
	Descripcion string    `gorm:"type:text" json:"descripcion"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type CategoriaPersonal struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Nombre      string    `gorm:"size:150;uniqueIndex;not null" json:"nombre" binding:"required"`
	Descripcion string    `gorm:"type:text" json:"descripcion"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type TipoDocumento struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Nombre      string    `gorm:"size:150;uniqueIndex;not null" json:"nombre" binding:"required"`
	Descripcion string    `gorm:"type:text" json:"descripcion"`
	IsActive    *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMasterData struct {
	Nombre      string `json:"nombre" binding:"required"`
	Descripcion string `json:"descripcion"`
}

func CreateEquipoSeguridad(ctx context.Context, input *NewMasterData) (*EquipoSeguridad, error) {
	return createNamedModel(ctx, input, func() *EquipoSeguridad {
		return &EquipoSeguridad{Nombre: input.Nombre, Descripcion: input.Descripcion, IsActive: utils.NewTrue()}
	})
}

func CreateServicioSeguridad(ctx context.Context, input *NewMasterData) (*ServicioSeguridad, error) {
	return createNamedModel(ctx, input, func() *ServicioSeguridad {
		return &ServicioSeguridad{Nombre: input.Nombre, Descripcion: input.Descripcion, IsActive: utils.NewTrue()}
	})
}

func CreateCategoriaPersonal(ctx context.Context, input *NewMasterData) (*CategoriaPersonal, error) {
	return createNamedModel(ctx, input, func() *CategoriaPersonal {
		return &CategoriaPersonal{Nombre: input.Nombre, Descripcion: input.Descripcion, IsActive: utils.NewTrue()}
	})
}

func CreateTipoDocumento(ctx context.Context, input *NewMasterData) (*TipoDocumento, error) {
	return createNamedModel(ctx, input, func() *TipoDocumento {
		return &TipoDocumento{Nombre: input.Nombre, Descripcion: input.Descripcion, IsActive: utils.NewTrue()}
	})
}

func ListEquiposSeguridad(ctx context.Context) ([]*EquipoSeguridad, error) {
	return utils.FetchAllModels[EquipoSeguridad](ctx)
}

func ListServiciosSeguridad(ctx context.Context) ([]*ServicioSeguridad, error) {
	return utils.FetchAllModels[ServicioSeguridad](ctx)
}

func ListCategoriasPersonal(ctx context.Context) ([]*CategoriaPersonal, error) {
	return utils.FetchAllModels[CategoriaPersonal](ctx)
}

func ListTiposDocumento(ctx context.Context) ([]*TipoDocumento, error) {
	return utils.FetchAllModels[TipoDocumento](ctx)
}

func ToggleActiveEquipoSeguridad(ctx context.Context, id int, isActive bool) (*EquipoSeguridad, error) {
	return toggleActiveModel[EquipoSeguridad](ctx, id, isActive)
}

func ToggleActiveServicioSeguridad(ctx context.Context, id int, isActive bool) (*ServicioSeguridad, error) {
	return toggleActiveModel[ServicioSeguridad](ctx, id, isActive)
}

func ToggleActiveCategoriaPersonal(ctx context.Context, id int, isActive bool) (*CategoriaPersonal, error) {
	return toggleActiveModel[CategoriaPersonal](ctx, id, isActive)
}

func ToggleActiveTipoDocumento(ctx context.Context, id int, isActive bool) (*TipoDocumento, error) {
	return toggleActiveModel[TipoDocumento](ctx, id, isActive)
}

func createNamedModel[T any](ctx context.Context, input *NewMasterData, build func() *T) (*T, error) {

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[T](ctx, "nombre", input.Nombre, 0); err != nil {
		return nil, err
	}

	record := build()

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return record, nil
}

func toggleActiveModel[T any](ctx context.Context, id int, isActive bool) (*T, error) {

	result, err := utils.FetchSingleModel[T](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	txCtx := tx.WithContext(ctx).Model(result).UpdateColumn("IsActive", isActive)
	if txCtx.Error != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(txCtx.Error)
	}

	referenceType := txCtx.Statement.Table
	var actionType string
	if isActive {
		actionType = "*ACTIVE*"
	} else {
		actionType = "*INACTIVE*"
	}

	if err := createHistorial(tx.WithContext(ctx), actionType, id, referenceType, nil, nil, "toggled "+utils.GetTypeName[T]()); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}

	return result, tx.Commit().Error
}
