package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/avsecdata/acreditaciones_backend/utils"
	"gorm.io/gorm"
)

// NumeroSeries hands out the human-facing numero for each module
// ("ACC-000001", "TRM-000001"). Allocation runs under a redis lock when one
// is available; the row update itself happens inside the caller's
// transaction either way, so two concurrent creates can never commit the
// same numero.
type NumeroSeries struct {
	Modulo    string    `gorm:"primaryKey;size:30" json:"modulo"`
	Prefijo   string    `gorm:"size:10;not null" json:"prefijo"`
	Proximo   int       `gorm:"not null;default:1" json:"proximo"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func defaultPrefijo(modulo string) string {
	switch modulo {
	case NumeroModuloAcreditacion:
		return "ACC"
	case NumeroModuloTramite:
		return "TRM"
	}
	return "REF"
}

// nextNumero allocates the next numero for the module inside tx.
func nextNumero(tx *gorm.DB, modulo string) (string, error) {

	ctx := tx.Statement.Context
	release, err := utils.ResourceLock(ctx, "NumeroSeries", modulo, "models", "nextNumero")
	if err != nil {
		return "", err
	}
	defer release()

	var serie NumeroSeries
	err = tx.WithContext(ctx).Where("modulo = ?", modulo).First(&serie).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", utils.WrapStoreError(err)
		}
		serie = NumeroSeries{Modulo: modulo, Prefijo: defaultPrefijo(modulo), Proximo: 1}
		if err := tx.WithContext(ctx).Create(&serie).Error; err != nil {
			return "", utils.WrapStoreError(err)
		}
	}

	numero := fmt.Sprintf("%s-%06d", serie.Prefijo, serie.Proximo)

	if err := tx.WithContext(ctx).Model(&NumeroSeries{}).
		Where("modulo = ?", modulo).
		UpdateColumn("proximo", gorm.Expr("proximo + 1")).Error; err != nil {
		return "", utils.WrapStoreError(err)
	}

	return numero, nil
}
