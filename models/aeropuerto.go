package models

import (
	"context"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
)

// Aeropuerto is read-mostly reference data; accreditations and cases point at
// it by id. Lists are cached in redis and invalidated on every write.
type Aeropuerto struct {
	ID        int    `gorm:"primary_key" json:"id"`
	Codigo    string `gorm:"size:10;uniqueIndex;not null" json:"codigo" binding:"required"`
	Nombre    string `gorm:"size:150;not null" json:"nombre" binding:"required"`
	Ciudad    string `gorm:"size:100" json:"ciudad"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAeropuerto struct {
	Codigo string `json:"codigo" binding:"required"`
	Nombre string `json:"nombre" binding:"required"`
	Ciudad string `json:"ciudad"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewAeropuerto) validate(ctx context.Context, id int) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if err := utils.ValidateUnique[Aeropuerto](ctx, "codigo", input.Codigo, id); err != nil {
		return err
	}
	return nil
}

func CreateAeropuerto(ctx context.Context, input *NewAeropuerto) (*Aeropuerto, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	aeropuerto := Aeropuerto{
		Codigo:   input.Codigo,
		Nombre:   input.Nombre,
		Ciudad:   input.Ciudad,
		IsActive: utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&aeropuerto).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := createHistorial(tx.WithContext(ctx), "CREATE", aeropuerto.ID, "aeropuertos", nil, &aeropuerto, "Aeropuerto "+aeropuerto.Codigo+" creado"); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	if err := utils.RemoveRedisList[Aeropuerto](); err != nil {
		return nil, err
	}
	return &aeropuerto, nil
}

func UpdateAeropuerto(ctx context.Context, id int, input *NewAeropuerto) (*Aeropuerto, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	aeropuerto, err := utils.FetchSingleModel[Aeropuerto](ctx, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(aeropuerto).Updates(map[string]interface{}{
		"Codigo": input.Codigo,
		"Nombre": input.Nombre,
		"Ciudad": input.Ciudad,
	}).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := createHistorial(tx.WithContext(ctx), "UPDATE", id, "aeropuertos", nil, input, "Aeropuerto "+input.Codigo+" actualizado"); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	if err := utils.RemoveRedisBoth[Aeropuerto](id); err != nil {
		return nil, err
	}
	return aeropuerto, nil
}

func DeleteAeropuerto(ctx context.Context, id int) (*Aeropuerto, error) {

	result, err := utils.FetchSingleModel[Aeropuerto](ctx, id)
	if err != nil {
		return nil, err
	}

	// refuse while accreditations reference it
	count, err := utils.ResourceCountWhere[Acreditacion](ctx, "aeropuerto_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.NewValidationError("aeropuerto has acreditaciones")
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(result).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := createHistorial(tx.WithContext(ctx), "DELETE", id, "aeropuertos", &result, nil, "Aeropuerto "+result.Codigo+" eliminado"); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	if err := utils.RemoveRedisBoth[Aeropuerto](id); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAeropuerto reads through the redis cache.
func GetAeropuerto(ctx context.Context, id int) (*Aeropuerto, error) {
	result, err := utils.RetrieveRedis[Aeropuerto](id)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result, err = utils.FetchSingleModel[Aeropuerto](ctx, id)
		if err != nil {
			return nil, err
		}
		if err := utils.StoreRedis[Aeropuerto](result, id); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func ListAeropuertos(ctx context.Context, activeOnly bool) ([]*Aeropuerto, error) {

	if !activeOnly {
		return utils.FetchAllModels[Aeropuerto](ctx)
	}

	// active list is the hot path (every create validates against it)
	results, err := utils.RetrieveRedisList[Aeropuerto]()
	if err != nil {
		return nil, err
	}
	if results == nil {
		db := config.GetDB()
		if err := db.WithContext(ctx).Where("is_active = ?", true).Order("codigo").Find(&results).Error; err != nil {
			return nil, utils.WrapStoreError(err)
		}
		if err := utils.StoreRedisList[Aeropuerto](results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func ToggleActiveAeropuerto(ctx context.Context, id int, isActive bool) (*Aeropuerto, error) {
	result, err := toggleActiveModel[Aeropuerto](ctx, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := utils.RemoveRedisBoth[Aeropuerto](id); err != nil {
		return nil, err
	}
	return result, nil
}
