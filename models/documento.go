package models

import (
	"context"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
	"gorm.io/gorm"
)

// Documento is a required/optional attachment placeholder. The file itself
// lives outside this system; these rows track whether it arrived and whether
// an inspector signed off on it.
//
// Invariants kept by the operations below:
//   - validado = true implies subido = true
//   - fecha_validacion set implies validado = true
type Documento struct {
	ID              int        `gorm:"primary_key" json:"id"`
	AcreditacionId  int        `gorm:"index;not null" json:"acreditacion_id"`
	Nombre          string     `gorm:"size:150;not null" json:"nombre" binding:"required"`
	Descripcion     string     `gorm:"type:text" json:"descripcion"`
	Obligatorio     *bool      `gorm:"not null;default:true" json:"obligatorio"`
	Subido          *bool      `gorm:"not null;default:false" json:"subido"`
	Validado        *bool      `gorm:"not null;default:false" json:"validado"`
	FechaSubida     *time.Time `json:"fecha_subida"`
	FechaValidacion *time.Time `json:"fecha_validacion"`
	ValidadoPor     string     `gorm:"size:100" json:"validado_por"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// fixed mandatory document set
var documentosPlantilla = []string{
	"Identificación oficial",
	"Certificado médico",
	"Antecedentes penales",
}

// provisionDocumentos seeds the mandatory placeholders inside the caller's
// transaction, together with provisionActividades.
func provisionDocumentos(tx *gorm.DB, acreditacionId int) error {

	documentos := make([]Documento, 0, len(documentosPlantilla))
	for _, nombre := range documentosPlantilla {
		documentos = append(documentos, Documento{
			AcreditacionId: acreditacionId,
			Nombre:         nombre,
			Obligatorio:    utils.NewTrue(),
			Subido:         utils.NewFalse(),
			Validado:       utils.NewFalse(),
		})
	}
	if err := tx.Create(&documentos).Error; err != nil {
		return utils.WrapStoreError(err)
	}
	return nil
}

// UploadDocumento marks the attachment as received. Idempotent.
func UploadDocumento(ctx context.Context, id int) (*Documento, error) {

	documento, err := utils.FetchSingleModel[Documento](ctx, id)
	if err != nil {
		return nil, err
	}
	if documento.Subido != nil && *documento.Subido {
		return documento, nil
	}

	now := time.Now().UTC()
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(documento).Updates(map[string]interface{}{
		"Subido":      true,
		"FechaSubida": now,
	}).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return documento, nil
}

// ValidateDocumento records an inspector's sign-off. Requires the document
// to have been uploaded first.
func ValidateDocumento(ctx context.Context, id int, validadoPor string) (*Documento, error) {

	documento, err := utils.FetchSingleModel[Documento](ctx, id)
	if err != nil {
		return nil, err
	}
	if documento.Subido == nil || !*documento.Subido {
		return nil, utils.NewInvalidStateError("documento %q has not been uploaded", documento.Nombre)
	}
	if documento.Validado != nil && *documento.Validado {
		return documento, nil
	}

	now := time.Now().UTC()
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(documento).Updates(map[string]interface{}{
		"Validado":        true,
		"FechaValidacion": now,
		"ValidadoPor":     validadoPor,
	}).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := createHistorial(tx.WithContext(ctx), "UPDATE", documento.AcreditacionId, "acreditaciones", nil, &documento,
		"Documento \""+documento.Nombre+"\" validado por "+validadoPor); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	return documento, nil
}

func GetDocumentos(ctx context.Context, acreditacionId int) ([]*Documento, error) {

	db := config.GetDB()
	var results []*Documento
	if err := db.WithContext(ctx).
		Where("acreditacion_id = ?", acreditacionId).
		Order("id").Find(&results).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return results, nil
}
