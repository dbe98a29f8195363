package models

import (
	"context"
	"math"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
	"gorm.io/gorm"
)

// EstadisticasAcreditaciones is the dashboard snapshot. All counters come
// from the same transaction, so Total always reconciles with the breakdowns.
type EstadisticasAcreditaciones struct {
	Total int `json:"total"`
	// Concluidas counts APROBADO only; RECHAZADO shows up in PorEstado.
	Concluidas            int                      `json:"concluidas"`
	EnTiempo              int                      `json:"en_tiempo"`
	Atrasadas             int                      `json:"atrasadas"`
	Discrepancias         int                      `json:"discrepancias"`
	PorEstado             map[string]int           `json:"por_estado"`
	TiempoPromedioProceso float64                  `json:"tiempo_promedio_proceso"` // days, over concluded records
	PorAeropuerto         []EstadisticaAeropuerto  `json:"por_aeropuerto"`
	GeneradoEl            time.Time                `json:"generado_el"`
}

// EstadisticaAeropuerto is one row of the per-airport distribution.
// Porcentaje is rounded independently per row, so the column may not sum to
// exactly 100.
type EstadisticaAeropuerto struct {
	AeropuertoId int    `json:"aeropuerto_id"`
	Codigo       string `json:"codigo"`
	Nombre       string `json:"nombre"`
	Cantidad     int    `json:"cantidad"`
	Porcentaje   int    `json:"porcentaje"`
}

// EstadisticasFiltro narrows the snapshot to one airport and/or an intake
// date range. Nil means the whole population.
type EstadisticasFiltro struct {
	AeropuertoId      *int       `json:"aeropuerto_id"`
	FechaIngresoDesde *time.Time `json:"fecha_ingreso_desde"`
	FechaIngresoHasta *time.Time `json:"fecha_ingreso_hasta"`
}

func (f *EstadisticasFiltro) apply(dbCtx *gorm.DB) *gorm.DB {
	if f == nil {
		return dbCtx
	}
	if f.AeropuertoId != nil && *f.AeropuertoId > 0 {
		dbCtx = dbCtx.Where("aeropuerto_id = ?", *f.AeropuertoId)
	}
	if f.FechaIngresoDesde != nil {
		dbCtx = dbCtx.Where("fecha_ingreso >= ?", *f.FechaIngresoDesde)
	}
	if f.FechaIngresoHasta != nil {
		dbCtx = dbCtx.Where("fecha_ingreso <= ?", *f.FechaIngresoHasta)
	}
	return dbCtx
}

type estadoConteo struct {
	Estado   EstadoAcreditacion
	Cantidad int
}

type aeropuertoConteo struct {
	AeropuertoId int
	Codigo       string
	Nombre       string
	Cantidad     int
}

// GetEstadisticasAcreditaciones computes the dashboard numbers in a single
// read transaction.
//
// Bucket rules:
//   - Concluidas: APROBADO
//   - EnTiempo / Atrasadas: open (non-terminal) records only, split on
//     fecha_vencimiento against now; records without a due date land in
//     neither bucket
//   - Discrepancias: has_warning, regardless of estado
func GetEstadisticasAcreditaciones(ctx context.Context, filtro *EstadisticasFiltro) (*EstadisticasAcreditaciones, error) {

	db := config.GetDB()
	now := time.Now().UTC()

	stats := EstadisticasAcreditaciones{
		PorEstado:     map[string]int{},
		PorAeropuerto: []EstadisticaAeropuerto{},
		GeneradoEl:    now,
	}

	tx := db.Begin()
	defer tx.Rollback()
	txCtx := tx.WithContext(ctx)

	var porEstado []estadoConteo
	if err := filtro.apply(txCtx.Model(&Acreditacion{})).
		Select("estado, COUNT(*) AS cantidad").
		Group("estado").Scan(&porEstado).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	for _, fila := range porEstado {
		stats.PorEstado[string(fila.Estado)] = fila.Cantidad
		stats.Total += fila.Cantidad
		if fila.Estado == EstadoAcreditacionAprobado {
			stats.Concluidas += fila.Cantidad
		}
	}

	var enTiempo int64
	if err := filtro.apply(txCtx.Model(&Acreditacion{})).
		Where("estado NOT IN ?", []EstadoAcreditacion{EstadoAcreditacionAprobado, EstadoAcreditacionRechazado}).
		Where("fecha_vencimiento IS NOT NULL AND fecha_vencimiento >= ?", now).
		Count(&enTiempo).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	stats.EnTiempo = int(enTiempo)

	var atrasadas int64
	if err := filtro.apply(txCtx.Model(&Acreditacion{})).
		Where("estado NOT IN ?", []EstadoAcreditacion{EstadoAcreditacionAprobado, EstadoAcreditacionRechazado}).
		Where("fecha_vencimiento IS NOT NULL AND fecha_vencimiento < ?", now).
		Count(&atrasadas).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	stats.Atrasadas = int(atrasadas)

	var discrepancias int64
	if err := filtro.apply(txCtx.Model(&Acreditacion{})).
		Where("has_warning = ?", true).
		Count(&discrepancias).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	stats.Discrepancias = int(discrepancias)

	// mean cycle time over APROBADO records only; rejected ones never finished
	// the process. Averaged in Go rather than with TIMESTAMPDIFF, which does
	// not exist on sqlite.
	var aprobadas []Acreditacion
	if err := filtro.apply(txCtx.Model(&Acreditacion{})).
		Select("fecha_ingreso, updated_at").
		Where("estado = ?", EstadoAcreditacionAprobado).
		Find(&aprobadas).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	if len(aprobadas) > 0 {
		var totalDias float64
		for _, acreditacion := range aprobadas {
			totalDias += acreditacion.UpdatedAt.Sub(acreditacion.FechaIngreso).Hours() / 24
		}
		stats.TiempoPromedioProceso = totalDias / float64(len(aprobadas))
	}

	var porAeropuerto []aeropuertoConteo
	if err := filtro.apply(txCtx.Model(&Acreditacion{})).
		Select("acreditaciones.aeropuerto_id, aeropuertos.codigo, aeropuertos.nombre, COUNT(*) AS cantidad").
		Joins("JOIN aeropuertos ON aeropuertos.id = acreditaciones.aeropuerto_id").
		Group("acreditaciones.aeropuerto_id, aeropuertos.codigo, aeropuertos.nombre").
		Order("cantidad DESC, aeropuertos.codigo").
		Scan(&porAeropuerto).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	for _, fila := range porAeropuerto {
		porcentaje := 0
		if stats.Total > 0 {
			porcentaje = int(math.Round(float64(fila.Cantidad) * 100 / float64(stats.Total)))
		}
		stats.PorAeropuerto = append(stats.PorAeropuerto, EstadisticaAeropuerto{
			AeropuertoId: fila.AeropuertoId,
			Codigo:       fila.Codigo,
			Nombre:       fila.Nombre,
			Cantidad:     fila.Cantidad,
			Porcentaje:   porcentaje,
		})
	}

	return &stats, nil
}
