package models

import (
	"github.com/avsecdata/acreditaciones_backend/utils"
	"gorm.io/gorm"
)

/*
Association rows for Tramite. Each kind is a full row type rather than a bare
join table because most carry per-link payload (descriptions, notes,
department lists). Rebuilds go through rebuildTramiteLinks: the caller's
transaction deletes every existing row for the Tramite and bulk-inserts the
replacement set, so the links always mirror the last write exactly.
*/

type TramiteAeropuerto struct {
	ID           int `gorm:"primary_key" json:"id"`
	TramiteId    int `gorm:"index;uniqueIndex:idx_tramite_aeropuerto;not null" json:"tramite_id"`
	AeropuertoId int `gorm:"uniqueIndex:idx_tramite_aeropuerto;not null" json:"aeropuerto_id"`
}

func (l TramiteAeropuerto) tramiteId() int { return l.TramiteId }

type TramiteEquipoSeguridad struct {
	ID                int    `gorm:"primary_key" json:"id"`
	TramiteId         int    `gorm:"index;uniqueIndex:idx_tramite_equipo;not null" json:"tramite_id"`
	EquipoSeguridadId int    `gorm:"uniqueIndex:idx_tramite_equipo;not null" json:"equipo_seguridad_id"`
	Descripcion       string `gorm:"type:text" json:"descripcion"`
}

func (l TramiteEquipoSeguridad) tramiteId() int { return l.TramiteId }

type TramiteServicioSeguridad struct {
	ID                  int    `gorm:"primary_key" json:"id"`
	TramiteId           int    `gorm:"index;uniqueIndex:idx_tramite_servicio;not null" json:"tramite_id"`
	ServicioSeguridadId int    `gorm:"uniqueIndex:idx_tramite_servicio;not null" json:"servicio_seguridad_id"`
	Nota                string `gorm:"type:text" json:"nota"`
}

func (l TramiteServicioSeguridad) tramiteId() int { return l.TramiteId }

type TramiteCategoriaPersonal struct {
	ID                  int        `gorm:"primary_key" json:"id"`
	TramiteId           int        `gorm:"index;uniqueIndex:idx_tramite_categoria;not null" json:"tramite_id"`
	CategoriaPersonalId int        `gorm:"uniqueIndex:idx_tramite_categoria;not null" json:"categoria_personal_id"`
	Departamentos       StringList `gorm:"type:text" json:"departamentos"`
}

func (l TramiteCategoriaPersonal) tramiteId() int { return l.TramiteId }

// TramiteTipoDocumento carries the full per-link payload: besides the
// obligatorio flag and free-text fields, Departamentos names which internal
// departments review the document for this procedure.
type TramiteTipoDocumento struct {
	ID              int        `gorm:"primary_key" json:"id"`
	TramiteId       int        `gorm:"index;uniqueIndex:idx_tramite_tipodoc;not null" json:"tramite_id"`
	TipoDocumentoId int        `gorm:"uniqueIndex:idx_tramite_tipodoc;not null" json:"tipo_documento_id"`
	Obligatorio     *bool      `gorm:"not null;default:true" json:"obligatorio"`
	Descripcion     string     `gorm:"type:text" json:"descripcion"`
	Nota            string     `gorm:"type:text" json:"nota"`
	Departamentos   StringList `gorm:"type:text" json:"departamentos"`
}

func (l TramiteTipoDocumento) tramiteId() int { return l.TramiteId }

type tramiteLink interface {
	tramiteId() int
}

func errTramiteLinkMismatch(want int, got int) error {
	return utils.NewValidationError("link references tramite %d, expected %d", got, want)
}

// rebuildTramiteLinks replaces the whole link set of one kind for a Tramite
// inside tx. An empty replacement set clears the links; rows pointing at a
// different Tramite are a programming error and abort the rebuild.
func rebuildTramiteLinks[T tramiteLink](tx *gorm.DB, tramiteId int, links []T) error {

	for _, link := range links {
		if link.tramiteId() != tramiteId {
			return errTramiteLinkMismatch(tramiteId, link.tramiteId())
		}
	}

	var model T
	if err := tx.Where("tramite_id = ?", tramiteId).Delete(&model).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}
