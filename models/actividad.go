package models

import (
	"context"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
	"gorm.io/gorm"
)

// Actividad is one fixed step of the accreditation process. The sequence is
// provisioned once at creation time; there is no reordering.
type Actividad struct {
	ID             int             `gorm:"primary_key" json:"id"`
	AcreditacionId int             `gorm:"uniqueIndex:idx_actividad_orden;not null" json:"acreditacion_id"`
	Nombre         string          `gorm:"size:150;not null" json:"nombre" binding:"required"`
	Descripcion    string          `gorm:"type:text" json:"descripcion"`
	Orden          int             `gorm:"uniqueIndex:idx_actividad_orden;not null" json:"orden"`
	Estado         EstadoActividad `gorm:"size:20;not null" json:"estado"`
	FechaInicio    *time.Time      `json:"fecha_inicio"`
	FechaFin       *time.Time      `json:"fecha_fin"`
	Responsable    string          `gorm:"size:100" json:"responsable"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// fixed process template, order 1..4
var actividadesPlantilla = []struct {
	Nombre      string
	Descripcion string
}{
	{"Recepción de documentos", "Recepción y registro de la documentación del solicitante"},
	{"Revisión técnica", "Revisión técnica de los requisitos de la acreditación"},
	{"Validación de campo", "Verificación en sitio de la información presentada"},
	{"Aprobación final", "Dictamen final sobre la solicitud"},
}

// provisionActividades seeds the fixed sequence inside the caller's
// transaction; the create is all-or-nothing with the Acreditacion itself.
func provisionActividades(tx *gorm.DB, acreditacionId int) error {

	actividades := make([]Actividad, 0, len(actividadesPlantilla))
	for i, plantilla := range actividadesPlantilla {
		actividades = append(actividades, Actividad{
			AcreditacionId: acreditacionId,
			Nombre:         plantilla.Nombre,
			Descripcion:    plantilla.Descripcion,
			Orden:          i + 1,
			Estado:         EstadoActividadPendiente,
		})
	}
	if err := tx.Create(&actividades).Error; err != nil {
		return utils.WrapStoreError(err)
	}
	return nil
}

// CompleteActividad stamps one step as done. FechaInicio/FechaFin are only
// ever set here.
func CompleteActividad(ctx context.Context, acreditacionId int, orden int, responsable string) (*Actividad, error) {

	acreditacion, err := utils.FetchSingleModel[Acreditacion](ctx, acreditacionId)
	if err != nil {
		return nil, err
	}
	if acreditacion.Estado.IsTerminal() {
		return nil, utils.NewInvalidStateError("acreditacion %s is %s", acreditacion.Numero, acreditacion.Estado)
	}

	db := config.GetDB()
	var actividad Actividad
	if err := db.WithContext(ctx).
		Where("acreditacion_id = ? AND orden = ?", acreditacionId, orden).
		First(&actividad).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	if actividad.Estado == EstadoActividadCompletada {
		return nil, utils.NewInvalidStateError("actividad %d of acreditacion %s is already completed", orden, acreditacion.Numero)
	}

	now := time.Now().UTC()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&actividad).Updates(map[string]interface{}{
		"Estado":      EstadoActividadCompletada,
		"FechaInicio": now,
		"FechaFin":    now,
		"Responsable": responsable,
	}).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := createHistorial(tx.WithContext(ctx), "UPDATE", acreditacionId, "acreditaciones", nil, &actividad,
		"Actividad \""+actividad.Nombre+"\" completada por "+responsable); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	return &actividad, nil
}

func GetActividades(ctx context.Context, acreditacionId int) ([]*Actividad, error) {

	db := config.GetDB()
	var results []*Actividad
	if err := db.WithContext(ctx).
		Where("acreditacion_id = ?", acreditacionId).
		Order("orden").Find(&results).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return results, nil
}
