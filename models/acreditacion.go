package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
	"github.com/shopspring/decimal"
)

// StringList is a denormalized name list (executors, validators) stored as a
// JSON text column. These are display names, not foreign keys.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case string:
		return json.Unmarshal([]byte(v), l)
	case []byte:
		return json.Unmarshal(v, l)
	}
	return fmt.Errorf("cannot scan %T into StringList", value)
}

// Acreditacion tracks one certification request from intake to
// approval/rejection. Estado and Progreso are kept consistent by the
// operations below; Observaciones is an append-only audit log and is never
// assigned directly.
type Acreditacion struct {
	ID               int                `gorm:"primary_key" json:"id"`
	Numero           string             `gorm:"size:30;uniqueIndex;not null" json:"numero"`
	Solicitante      string             `gorm:"size:150;not null" json:"solicitante" binding:"required"`
	Personal         string             `gorm:"size:150" json:"personal"`
	Categoria        string             `gorm:"size:100" json:"categoria"`
	Proceso          string             `gorm:"size:100" json:"proceso"`
	Subproceso       string             `gorm:"size:100" json:"subproceso"`
	Referencia       string             `gorm:"size:100" json:"referencia"`
	AeropuertoId     int                `gorm:"index;not null" json:"aeropuerto_id"`
	Estado           EstadoAcreditacion `gorm:"size:30;index;not null" json:"estado"`
	Progreso         int                `gorm:"not null;default:0" json:"progreso"`
	HasWarning       *bool              `gorm:"not null;default:false" json:"has_warning"`
	FechaIngreso     time.Time          `gorm:"not null" json:"fecha_ingreso"`
	FechaVencimiento *time.Time         `json:"fecha_vencimiento"`
	CostoUSD         decimal.Decimal    `gorm:"type:decimal(20,6)" json:"costo_usd"`
	Ejecutores       StringList         `gorm:"type:text" json:"ejecutores"`
	Validadores      StringList         `gorm:"type:text" json:"validadores"`
	Observaciones    string             `gorm:"type:text" json:"observaciones"`
	// SyncVersion guards every state-changing write; see applyAcreditacionChange.
	SyncVersion int         `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Actividades []Actividad `gorm:"foreignKey:AcreditacionId;constraint:OnDelete:CASCADE" json:"actividades"`
	Documentos  []Documento `gorm:"foreignKey:AcreditacionId;constraint:OnDelete:CASCADE" json:"documentos"`
}

// TableName keeps the Spanish plural instead of gorm's default pluralization
// ("acreditacions"); historial rows already say "acreditaciones".
func (Acreditacion) TableName() string {
	return "acreditaciones"
}

func (a Acreditacion) GetId() int {
	return a.ID
}

func (a Acreditacion) GetCursor() string {
	return a.CreatedAt.Format("2006-01-02 15:04:05.999999")
}

type NewAcreditacion struct {
	Numero           string          `json:"numero"` // allocated from the series when blank
	Solicitante      string          `json:"solicitante" binding:"required"`
	Personal         string          `json:"personal"`
	Categoria        string          `json:"categoria"`
	Proceso          string          `json:"proceso"`
	Subproceso       string          `json:"subproceso"`
	Referencia       string          `json:"referencia"`
	AeropuertoId     int             `json:"aeropuerto_id" binding:"required"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
	CostoUSD         decimal.Decimal `json:"costo_usd"`
	Ejecutores       []string        `json:"ejecutores"`
	Validadores      []string        `json:"validadores"`
	Observaciones    string          `json:"observaciones"`
}

func (input *NewAcreditacion) validate(ctx context.Context) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[Aeropuerto](ctx, input.AeropuertoId); err != nil {
		return utils.NewValidationError("aeropuerto not found")
	}
	if strings.TrimSpace(input.Numero) != "" {
		if err := utils.ValidateUnique[Acreditacion](ctx, "numero", input.Numero, 0); err != nil {
			return err
		}
	}
	return nil
}

func fechaStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

func appendObservacion(existing string, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}

func actorFromContext(ctx context.Context) string {
	if userName, ok := utils.GetUserNameFromContext(ctx); ok && userName != "" {
		return userName
	}
	return "sistema"
}

// CreateAcreditacion registers a new request and provisions its fixed
// activities and document placeholders. The whole operation is one
// transaction: a half-provisioned Acreditacion is never visible to readers.
func CreateAcreditacion(ctx context.Context, input *NewAcreditacion) (*Acreditacion, error) {

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	observaciones := appendObservacion("", fmt.Sprintf("Creada por: %s el %s", actorFromContext(ctx), fechaStamp(now)))
	if strings.TrimSpace(input.Observaciones) != "" {
		observaciones = appendObservacion(observaciones, input.Observaciones)
	}

	db := config.GetDB()
	tx := db.Begin()

	numero := strings.TrimSpace(input.Numero)
	if numero == "" {
		var err error
		numero, err = nextNumero(tx.WithContext(ctx), NumeroModuloAcreditacion)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	acreditacion := Acreditacion{
		Numero:           numero,
		Solicitante:      input.Solicitante,
		Personal:         input.Personal,
		Categoria:        input.Categoria,
		Proceso:          input.Proceso,
		Subproceso:       input.Subproceso,
		Referencia:       input.Referencia,
		AeropuertoId:     input.AeropuertoId,
		Estado:           EstadoAcreditacionPendiente,
		Progreso:         0,
		HasWarning:       utils.NewFalse(),
		FechaIngreso:     now,
		FechaVencimiento: input.FechaVencimiento,
		CostoUSD:         input.CostoUSD,
		Ejecutores:       StringList(input.Ejecutores),
		Validadores:      StringList(input.Validadores),
		Observaciones:    observaciones,
	}

	if err := tx.WithContext(ctx).Create(&acreditacion).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := provisionActividades(tx.WithContext(ctx), acreditacion.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := provisionDocumentos(tx.WithContext(ctx), acreditacion.ID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createHistorial(tx.WithContext(ctx), "CREATE", acreditacion.ID, "acreditaciones", nil, &acreditacion,
		"Acreditacion "+acreditacion.Numero+" creada"); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	return GetAcreditacion(ctx, acreditacion.ID)
}

const maxSyncRetries = 3

// applyAcreditacionChange is the write protocol shared by every lifecycle
// verb: fetch, mutate, then a conditional UPDATE guarded by sync_version.
// On a version conflict the whole logical operation is retried on a fresh
// snapshot, so concurrent observaciones appends accumulate instead of
// overwriting each other. Scalar fields are last-writer-wins.
func applyAcreditacionChange(ctx context.Context, id int, descripcion string,
	mutate func(a *Acreditacion) (map[string]interface{}, error)) (*Acreditacion, error) {

	db := config.GetDB()
	for attempt := 0; attempt < maxSyncRetries; attempt++ {
		acreditacion, err := utils.FetchSingleModel[Acreditacion](ctx, id)
		if err != nil {
			return nil, err
		}

		updates, err := mutate(acreditacion)
		if err != nil {
			return nil, err
		}
		if updates == nil {
			// nothing to change (idempotent call)
			return acreditacion, nil
		}
		updates["SyncVersion"] = acreditacion.SyncVersion + 1

		tx := db.Begin()
		res := tx.WithContext(ctx).Model(&Acreditacion{}).
			Where("id = ? AND sync_version = ?", id, acreditacion.SyncVersion).
			Updates(updates)
		if res.Error != nil {
			tx.Rollback()
			return nil, utils.WrapStoreError(res.Error)
		}
		if res.RowsAffected == 0 {
			// someone else won this round; retry on a fresh snapshot
			tx.Rollback()
			continue
		}
		if err := createHistorial(tx.WithContext(ctx), "UPDATE", id, "acreditaciones", acreditacion, updates, descripcion); err != nil {
			tx.Rollback()
			return nil, utils.WrapStoreError(err)
		}
		if err := tx.Commit().Error; err != nil {
			return nil, utils.WrapStoreError(err)
		}

		return utils.FetchSingleModel[Acreditacion](ctx, id)
	}

	return nil, utils.NewConcurrencyError("acreditacion %d: lost update detected after %d attempts", id, maxSyncRetries)
}

// SetProgressAcreditacion applies the default estado derivation from a
// progress value. Explicit verbs (approve/reject/flag) are authoritative and
// are not silently overridden: terminal records reject this call unless the
// legacy ALLOW_TERMINAL_PROGRESS flag is on.
func SetProgressAcreditacion(ctx context.Context, id int, progreso int) (*Acreditacion, error) {

	if progreso < 0 || progreso > 100 {
		return nil, utils.NewRangeError("progreso %d outside [0,100]", progreso)
	}

	actor := actorFromContext(ctx)
	return applyAcreditacionChange(ctx, id, fmt.Sprintf("Progreso actualizado a %d%%", progreso),
		func(a *Acreditacion) (map[string]interface{}, error) {
			if a.Estado.IsTerminal() && !config.AllowTerminalProgress() {
				return nil, utils.NewInvalidStateError("acreditacion %s is %s", a.Numero, a.Estado)
			}
			estado := EstadoForProgreso(progreso)
			if a.Progreso == progreso && a.Estado == estado {
				return nil, nil
			}
			linea := fmt.Sprintf("Progreso actualizado a %d%% por: %s el %s", progreso, actor, fechaStamp(time.Now()))
			return map[string]interface{}{
				"Progreso":      progreso,
				"Estado":        estado,
				"Observaciones": appendObservacion(a.Observaciones, linea),
			}, nil
		})
}

func ApproveAcreditacion(ctx context.Context, id int, actor string) (*Acreditacion, error) {

	return applyAcreditacionChange(ctx, id, "Acreditacion aprobada por "+actor,
		func(a *Acreditacion) (map[string]interface{}, error) {
			if a.Estado == EstadoAcreditacionAprobado {
				return nil, utils.NewInvalidStateError("acreditacion %s is already approved", a.Numero)
			}
			if a.Estado == EstadoAcreditacionRechazado {
				return nil, utils.NewInvalidStateError("acreditacion %s is rejected; reopen it first", a.Numero)
			}
			linea := fmt.Sprintf("Aprobado por: %s el %s", actor, fechaStamp(time.Now()))
			return map[string]interface{}{
				"Estado":        EstadoAcreditacionAprobado,
				"Progreso":      100,
				"Observaciones": appendObservacion(a.Observaciones, linea),
			}, nil
		})
}

func RejectAcreditacion(ctx context.Context, id int, motivo string, actor string) (*Acreditacion, error) {

	return applyAcreditacionChange(ctx, id, "Acreditacion rechazada por "+actor,
		func(a *Acreditacion) (map[string]interface{}, error) {
			if a.Estado.IsTerminal() {
				return nil, utils.NewInvalidStateError("acreditacion %s is %s", a.Numero, a.Estado)
			}
			linea := fmt.Sprintf("Rechazado por: %s el %s. Motivo: %s", actor, fechaStamp(time.Now()), motivo)
			return map[string]interface{}{
				"Estado":        EstadoAcreditacionRechazado,
				"HasWarning":    true,
				"Observaciones": appendObservacion(a.Observaciones, linea),
			}, nil
		})
}

// FlagDiscrepanciaAcreditacion sends the record back to review. Progreso is
// deliberately untouched.
func FlagDiscrepanciaAcreditacion(ctx context.Context, id int, detalle string, actor string) (*Acreditacion, error) {

	return applyAcreditacionChange(ctx, id, "Discrepancia registrada por "+actor,
		func(a *Acreditacion) (map[string]interface{}, error) {
			if a.Estado.IsTerminal() {
				return nil, utils.NewInvalidStateError("acreditacion %s is %s", a.Numero, a.Estado)
			}
			linea := fmt.Sprintf("Discrepancia registrada por: %s el %s. Detalle: %s", actor, fechaStamp(time.Now()), detalle)
			return map[string]interface{}{
				"Estado":        EstadoAcreditacionEnRevision,
				"HasWarning":    true,
				"Observaciones": appendObservacion(a.Observaciones, linea),
			}, nil
		})
}

// MarcarDocumentosIncompletos is only reachable from PENDIENTE/EN_PROCESO.
func MarcarDocumentosIncompletos(ctx context.Context, id int, detalle string, actor string) (*Acreditacion, error) {

	return applyAcreditacionChange(ctx, id, "Documentos incompletos registrado por "+actor,
		func(a *Acreditacion) (map[string]interface{}, error) {
			if a.Estado != EstadoAcreditacionPendiente && a.Estado != EstadoAcreditacionEnProceso {
				return nil, utils.NewInvalidStateError("acreditacion %s is %s", a.Numero, a.Estado)
			}
			linea := fmt.Sprintf("Documentos incompletos registrado por: %s el %s. Detalle: %s", actor, fechaStamp(time.Now()), detalle)
			return map[string]interface{}{
				"Estado":        EstadoAcreditacionDocumentosIncompletos,
				"Observaciones": appendObservacion(a.Observaciones, linea),
			}, nil
		})
}

// ReopenAcreditacion is the explicit override path out of a terminal state.
func ReopenAcreditacion(ctx context.Context, id int, motivo string, actor string) (*Acreditacion, error) {

	return applyAcreditacionChange(ctx, id, "Acreditacion reabierta por "+actor,
		func(a *Acreditacion) (map[string]interface{}, error) {
			if !a.Estado.IsTerminal() {
				return nil, utils.NewInvalidStateError("acreditacion %s is not terminal (%s)", a.Numero, a.Estado)
			}
			linea := fmt.Sprintf("Reabierto por: %s el %s. Motivo: %s", actor, fechaStamp(time.Now()), motivo)
			return map[string]interface{}{
				"Estado":        EstadoAcreditacionEnRevision,
				"Observaciones": appendObservacion(a.Observaciones, linea),
			}, nil
		})
}

type UpdateAcreditacionInput struct {
	Solicitante      *string             `json:"solicitante"`
	Personal         *string             `json:"personal"`
	AeropuertoId     *int                `json:"aeropuerto_id"`
	Categoria        *string             `json:"categoria"`
	Proceso          *string             `json:"proceso"`
	Subproceso       *string             `json:"subproceso"`
	Referencia       *string             `json:"referencia"`
	Estado           *EstadoAcreditacion `json:"estado"`
	Progreso         *int                `json:"progreso"`
	FechaVencimiento *time.Time          `json:"fecha_vencimiento"`
	Ejecutores       *[]string           `json:"ejecutores"`
	Validadores      *[]string           `json:"validadores"`
	Observaciones    *string             `json:"observaciones"` // appended as a note, never assigned
	CostoUSD         *decimal.Decimal    `json:"costo_usd"`
	HasWarning       *bool               `json:"has_warning"`
}

// UpdateAcreditacion patches the mutable fields. Nil fields are untouched;
// UpdatedAt is bumped on every call that writes.
func UpdateAcreditacion(ctx context.Context, id int, input *UpdateAcreditacionInput) (*Acreditacion, error) {

	if input.Progreso != nil && (*input.Progreso < 0 || *input.Progreso > 100) {
		return nil, utils.NewRangeError("progreso %d outside [0,100]", *input.Progreso)
	}
	if input.Estado != nil && !input.Estado.IsValid() {
		return nil, utils.NewValidationError("invalid estado: %q", string(*input.Estado))
	}
	if input.AeropuertoId != nil {
		if err := utils.ValidateResourceId[Aeropuerto](ctx, *input.AeropuertoId); err != nil {
			return nil, utils.NewValidationError("aeropuerto not found")
		}
	}

	actor := actorFromContext(ctx)
	return applyAcreditacionChange(ctx, id, "Acreditacion actualizada",
		func(a *Acreditacion) (map[string]interface{}, error) {
			if a.Estado.IsTerminal() && (input.Estado != nil || input.Progreso != nil) && !config.AllowTerminalProgress() {
				return nil, utils.NewInvalidStateError("acreditacion %s is %s", a.Numero, a.Estado)
			}

			updates := map[string]interface{}{}
			if input.Solicitante != nil {
				updates["Solicitante"] = *input.Solicitante
			}
			if input.Personal != nil {
				updates["Personal"] = *input.Personal
			}
			if input.AeropuertoId != nil {
				updates["AeropuertoId"] = *input.AeropuertoId
			}
			if input.Categoria != nil {
				updates["Categoria"] = *input.Categoria
			}
			if input.Proceso != nil {
				updates["Proceso"] = *input.Proceso
			}
			if input.Subproceso != nil {
				updates["Subproceso"] = *input.Subproceso
			}
			if input.Referencia != nil {
				updates["Referencia"] = *input.Referencia
			}
			if input.Estado != nil {
				updates["Estado"] = *input.Estado
			}
			if input.Progreso != nil {
				updates["Progreso"] = *input.Progreso
			}
			if input.FechaVencimiento != nil {
				updates["FechaVencimiento"] = *input.FechaVencimiento
			}
			if input.Ejecutores != nil {
				updates["Ejecutores"] = StringList(*input.Ejecutores)
			}
			if input.Validadores != nil {
				updates["Validadores"] = StringList(*input.Validadores)
			}
			if input.CostoUSD != nil {
				updates["CostoUSD"] = *input.CostoUSD
			}
			if input.HasWarning != nil {
				updates["HasWarning"] = *input.HasWarning
			}
			if input.Observaciones != nil && strings.TrimSpace(*input.Observaciones) != "" {
				linea := fmt.Sprintf("%s (nota de %s el %s)", strings.TrimSpace(*input.Observaciones), actor, fechaStamp(time.Now()))
				updates["Observaciones"] = appendObservacion(a.Observaciones, linea)
			}
			if len(updates) == 0 {
				return nil, nil
			}
			return updates, nil
		})
}

func GetAcreditacion(ctx context.Context, id int) (*Acreditacion, error) {
	return utils.FetchSingleModel[Acreditacion](ctx, id, "Actividades", "Documentos")
}

func GetAcreditacionByNumero(ctx context.Context, numero string) (*Acreditacion, error) {

	db := config.GetDB()
	var result Acreditacion
	err := db.WithContext(ctx).Preload("Actividades").Preload("Documentos").
		Where("numero = ?", numero).First(&result).Error
	if err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return &result, nil
}

type AcreditacionFiltro struct {
	Estado             *EstadoAcreditacion `json:"estado"`
	AeropuertoId       *int                `json:"aeropuerto_id"`
	Solicitante        *string             `json:"solicitante"`
	HasWarning         *bool               `json:"has_warning"`
	FechaIngresoDesde  *time.Time          `json:"fecha_ingreso_desde"`
	FechaIngresoHasta  *time.Time          `json:"fecha_ingreso_hasta"`
	Buscar             *string             `json:"buscar"`
}

func ListAcreditaciones(ctx context.Context, filtro *AcreditacionFiltro) ([]*Acreditacion, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)

	if filtro != nil {
		if filtro.Estado != nil {
			dbCtx = dbCtx.Where("estado = ?", *filtro.Estado)
		}
		if filtro.AeropuertoId != nil && *filtro.AeropuertoId > 0 {
			dbCtx = dbCtx.Where("aeropuerto_id = ?", *filtro.AeropuertoId)
		}
		if filtro.Solicitante != nil && len(*filtro.Solicitante) > 0 {
			dbCtx = dbCtx.Where("solicitante LIKE ?", "%"+*filtro.Solicitante+"%")
		}
		if filtro.HasWarning != nil {
			dbCtx = dbCtx.Where("has_warning = ?", *filtro.HasWarning)
		}
		if filtro.FechaIngresoDesde != nil {
			dbCtx = dbCtx.Where("fecha_ingreso >= ?", *filtro.FechaIngresoDesde)
		}
		if filtro.FechaIngresoHasta != nil {
			dbCtx = dbCtx.Where("fecha_ingreso <= ?", *filtro.FechaIngresoHasta)
		}
		if filtro.Buscar != nil && len(*filtro.Buscar) > 0 {
			like := "%" + *filtro.Buscar + "%"
			dbCtx = dbCtx.Where(
				"numero LIKE ? OR solicitante LIKE ? OR personal LIKE ? OR referencia LIKE ?",
				like, like, like, like)
		}
	}

	var results []*Acreditacion
	if err := dbCtx.Order("fecha_ingreso DESC, id DESC").Find(&results).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return results, nil
}
