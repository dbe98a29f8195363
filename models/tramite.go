package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tramite is a catalog procedure definition: which airports it applies to,
// what equipment/services it touches, who may request it and which document
// types it demands. The association sets are replaced wholesale on update,
// never merged.
type Tramite struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Numero      string          `gorm:"size:30;uniqueIndex;not null" json:"numero"`
	Nombre      string          `gorm:"size:200;not null" json:"nombre" binding:"required"`
	Descripcion string          `gorm:"type:text" json:"descripcion"`
	Tipo        string          `gorm:"size:100" json:"tipo"`
	Solicitante string          `gorm:"size:150" json:"solicitante"`
	CostoUSD    decimal.Decimal `gorm:"type:decimal(20,6)" json:"costo_usd"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Aeropuertos        []TramiteAeropuerto        `gorm:"foreignKey:TramiteId;constraint:OnDelete:CASCADE" json:"aeropuertos"`
	EquiposSeguridad   []TramiteEquipoSeguridad   `gorm:"foreignKey:TramiteId;constraint:OnDelete:CASCADE" json:"equipos_seguridad"`
	ServiciosSeguridad []TramiteServicioSeguridad `gorm:"foreignKey:TramiteId;constraint:OnDelete:CASCADE" json:"servicios_seguridad"`
	CategoriasPersonal []TramiteCategoriaPersonal `gorm:"foreignKey:TramiteId;constraint:OnDelete:CASCADE" json:"categorias_personal"`
	TiposDocumento     []TramiteTipoDocumento     `gorm:"foreignKey:TramiteId;constraint:OnDelete:CASCADE" json:"tipos_documento"`
}

func (t Tramite) GetId() int {
	return t.ID
}

func (t Tramite) GetCursor() string {
	return t.CreatedAt.Format("2006-01-02 15:04:05.999999")
}

var tramitePreloads = []string{
	"Aeropuertos", "EquiposSeguridad", "ServiciosSeguridad", "CategoriasPersonal", "TiposDocumento",
}

type TramiteAeropuertoInput struct {
	AeropuertoId int `json:"aeropuerto_id" binding:"required"`
}

type TramiteEquipoSeguridadInput struct {
	EquipoSeguridadId int    `json:"equipo_seguridad_id" binding:"required"`
	Descripcion       string `json:"descripcion"`
}

type TramiteServicioSeguridadInput struct {
	ServicioSeguridadId int    `json:"servicio_seguridad_id" binding:"required"`
	Nota                string `json:"nota"`
}

type TramiteCategoriaPersonalInput struct {
	CategoriaPersonalId int      `json:"categoria_personal_id" binding:"required"`
	Departamentos       []string `json:"departamentos"`
}

type TramiteTipoDocumentoInput struct {
	TipoDocumentoId int      `json:"tipo_documento_id" binding:"required"`
	Obligatorio     *bool    `json:"obligatorio"`
	Descripcion     string   `json:"descripcion"`
	Nota            string   `json:"nota"`
	Departamentos   []string `json:"departamentos"`
}

type NewTramite struct {
	Numero             string                          `json:"numero"` // allocated from the series when blank
	Nombre             string                          `json:"nombre" binding:"required"`
	Descripcion        string                          `json:"descripcion"`
	Tipo               string                          `json:"tipo"`
	Solicitante        string                          `json:"solicitante"`
	CostoUSD           decimal.Decimal                 `json:"costo_usd"`
	Aeropuertos        []TramiteAeropuertoInput        `json:"aeropuertos"`
	EquiposSeguridad   []TramiteEquipoSeguridadInput   `json:"equipos_seguridad"`
	ServiciosSeguridad []TramiteServicioSeguridadInput `json:"servicios_seguridad"`
	CategoriasPersonal []TramiteCategoriaPersonalInput `json:"categorias_personal"`
	TiposDocumento     []TramiteTipoDocumentoInput     `json:"tipos_documento"`
}

type UpdateTramite struct {
	Nombre      *string          `json:"nombre"`
	Descripcion *string          `json:"descripcion"`
	Tipo        *string          `json:"tipo"`
	Solicitante *string          `json:"solicitante"`
	CostoUSD    *decimal.Decimal `json:"costo_usd"`
	IsActive    *bool            `json:"is_active"`

	// Replace semantics, all five kinds: after the update the link tables
	// mirror these sets exactly. An empty or omitted set clears that kind;
	// there is no merge.
	Aeropuertos        []TramiteAeropuertoInput        `json:"aeropuertos"`
	EquiposSeguridad   []TramiteEquipoSeguridadInput   `json:"equipos_seguridad"`
	ServiciosSeguridad []TramiteServicioSeguridadInput `json:"servicios_seguridad"`
	CategoriasPersonal []TramiteCategoriaPersonalInput `json:"categorias_personal"`
	TiposDocumento     []TramiteTipoDocumentoInput     `json:"tipos_documento"`
}

// validateLinkIds checks one association kind in bulk: every referenced id
// must exist and appear at most once.
func validateLinkIds[M any](ctx context.Context, kind string, ids []int) error {

	if len(ids) == 0 {
		return nil
	}
	if len(utils.UniqueSlice(ids)) != len(ids) {
		return utils.NewValidationError("duplicate %s in request", kind)
	}
	if err := utils.ValidateResourcesId[M](ctx, ids); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return utils.NewValidationError("unknown %s", kind)
		}
		return err
	}
	return nil
}

func validateTramiteLinks(ctx context.Context,
	aeropuertos []TramiteAeropuertoInput,
	equipos []TramiteEquipoSeguridadInput,
	servicios []TramiteServicioSeguridadInput,
	categorias []TramiteCategoriaPersonalInput,
	tiposDocumento []TramiteTipoDocumentoInput) error {

	aeropuertoIds := make([]int, 0, len(aeropuertos))
	for _, input := range aeropuertos {
		aeropuertoIds = append(aeropuertoIds, input.AeropuertoId)
	}
	if err := validateLinkIds[Aeropuerto](ctx, "aeropuerto", aeropuertoIds); err != nil {
		return err
	}

	equipoIds := make([]int, 0, len(equipos))
	for _, input := range equipos {
		equipoIds = append(equipoIds, input.EquipoSeguridadId)
	}
	if err := validateLinkIds[EquipoSeguridad](ctx, "equipo de seguridad", equipoIds); err != nil {
		return err
	}

	servicioIds := make([]int, 0, len(servicios))
	for _, input := range servicios {
		servicioIds = append(servicioIds, input.ServicioSeguridadId)
	}
	if err := validateLinkIds[ServicioSeguridad](ctx, "servicio de seguridad", servicioIds); err != nil {
		return err
	}

	categoriaIds := make([]int, 0, len(categorias))
	for _, input := range categorias {
		categoriaIds = append(categoriaIds, input.CategoriaPersonalId)
	}
	if err := validateLinkIds[CategoriaPersonal](ctx, "categoria de personal", categoriaIds); err != nil {
		return err
	}

	tipoDocumentoIds := make([]int, 0, len(tiposDocumento))
	for _, input := range tiposDocumento {
		tipoDocumentoIds = append(tipoDocumentoIds, input.TipoDocumentoId)
	}
	if err := validateLinkIds[TipoDocumento](ctx, "tipo de documento", tipoDocumentoIds); err != nil {
		return err
	}

	return nil
}

func buildTramiteAeropuertos(tramiteId int, inputs []TramiteAeropuertoInput) []TramiteAeropuerto {
	links := make([]TramiteAeropuerto, 0, len(inputs))
	for _, input := range inputs {
		links = append(links, TramiteAeropuerto{TramiteId: tramiteId, AeropuertoId: input.AeropuertoId})
	}
	return links
}

func buildTramiteEquipos(tramiteId int, inputs []TramiteEquipoSeguridadInput) []TramiteEquipoSeguridad {
	links := make([]TramiteEquipoSeguridad, 0, len(inputs))
	for _, input := range inputs {
		links = append(links, TramiteEquipoSeguridad{
			TramiteId:         tramiteId,
			EquipoSeguridadId: input.EquipoSeguridadId,
			Descripcion:       input.Descripcion,
		})
	}
	return links
}

func buildTramiteServicios(tramiteId int, inputs []TramiteServicioSeguridadInput) []TramiteServicioSeguridad {
	links := make([]TramiteServicioSeguridad, 0, len(inputs))
	for _, input := range inputs {
		links = append(links, TramiteServicioSeguridad{
			TramiteId:           tramiteId,
			ServicioSeguridadId: input.ServicioSeguridadId,
			Nota:                input.Nota,
		})
	}
	return links
}

func buildTramiteCategorias(tramiteId int, inputs []TramiteCategoriaPersonalInput) []TramiteCategoriaPersonal {
	links := make([]TramiteCategoriaPersonal, 0, len(inputs))
	for _, input := range inputs {
		links = append(links, TramiteCategoriaPersonal{
			TramiteId:           tramiteId,
			CategoriaPersonalId: input.CategoriaPersonalId,
			Departamentos:       StringList(input.Departamentos),
		})
	}
	return links
}

func buildTramiteTiposDocumento(tramiteId int, inputs []TramiteTipoDocumentoInput) []TramiteTipoDocumento {
	links := make([]TramiteTipoDocumento, 0, len(inputs))
	for _, input := range inputs {
		obligatorio := input.Obligatorio
		if obligatorio == nil {
			obligatorio = utils.NewTrue()
		}
		links = append(links, TramiteTipoDocumento{
			TramiteId:       tramiteId,
			TipoDocumentoId: input.TipoDocumentoId,
			Obligatorio:     obligatorio,
			Descripcion:     input.Descripcion,
			Nota:            input.Nota,
			Departamentos:   StringList(input.Departamentos),
		})
	}
	return links
}

// CreateTramite inserts the procedure and all five association sets in one
// transaction.
func CreateTramite(ctx context.Context, input *NewTramite) (*Tramite, error) {

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Numero) != "" {
		if err := utils.ValidateUnique[Tramite](ctx, "numero", input.Numero, 0); err != nil {
			return nil, err
		}
	}
	if err := validateTramiteLinks(ctx,
		input.Aeropuertos, input.EquiposSeguridad, input.ServiciosSeguridad,
		input.CategoriasPersonal, input.TiposDocumento); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	numero := strings.TrimSpace(input.Numero)
	if numero == "" {
		var err error
		numero, err = nextNumero(tx.WithContext(ctx), NumeroModuloTramite)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	tramite := Tramite{
		Numero:      numero,
		Nombre:      input.Nombre,
		Descripcion: input.Descripcion,
		Tipo:        input.Tipo,
		Solicitante: input.Solicitante,
		CostoUSD:    input.CostoUSD,
		IsActive:    utils.NewTrue(),
	}
	if err := tx.WithContext(ctx).Omit(tramitePreloads...).Create(&tramite).Error; err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}

	if err := rebuildAllTramiteLinks(tx.WithContext(ctx), tramite.ID,
		buildTramiteAeropuertos(tramite.ID, input.Aeropuertos),
		buildTramiteEquipos(tramite.ID, input.EquiposSeguridad),
		buildTramiteServicios(tramite.ID, input.ServiciosSeguridad),
		buildTramiteCategorias(tramite.ID, input.CategoriasPersonal),
		buildTramiteTiposDocumento(tramite.ID, input.TiposDocumento)); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}

	if err := createHistorial(tx.WithContext(ctx), "CREATE", tramite.ID, "tramites", nil, &tramite,
		"Tramite "+tramite.Numero+" creado"); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	utils.RemoveRedisList[Tramite]()
	return GetTramite(ctx, tramite.ID)
}

// UpdateTramiteById patches the scalar fields and replaces all five
// association sets with the ones in the input. All of it commits or none of
// it does: a reader never sees a Tramite with half-rebuilt links.
func UpdateTramiteById(ctx context.Context, id int, input *UpdateTramite) (*Tramite, error) {

	tramite, err := utils.FetchSingleModel[Tramite](ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateTramiteLinks(ctx,
		input.Aeropuertos, input.EquiposSeguridad, input.ServiciosSeguridad,
		input.CategoriasPersonal, input.TiposDocumento); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Nombre != nil {
		updates["Nombre"] = *input.Nombre
	}
	if input.Descripcion != nil {
		updates["Descripcion"] = *input.Descripcion
	}
	if input.Tipo != nil {
		updates["Tipo"] = *input.Tipo
	}
	if input.Solicitante != nil {
		updates["Solicitante"] = *input.Solicitante
	}
	if input.CostoUSD != nil {
		updates["CostoUSD"] = *input.CostoUSD
	}
	if input.IsActive != nil {
		updates["IsActive"] = *input.IsActive
	}

	db := config.GetDB()
	tx := db.Begin()

	if len(updates) > 0 {
		if err := tx.WithContext(ctx).Model(&Tramite{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			tx.Rollback()
			return nil, utils.WrapStoreError(err)
		}
	}

	if err := rebuildAllTramiteLinks(tx.WithContext(ctx), id,
		buildTramiteAeropuertos(id, input.Aeropuertos),
		buildTramiteEquipos(id, input.EquiposSeguridad),
		buildTramiteServicios(id, input.ServiciosSeguridad),
		buildTramiteCategorias(id, input.CategoriasPersonal),
		buildTramiteTiposDocumento(id, input.TiposDocumento)); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}

	if err := createHistorial(tx.WithContext(ctx), "UPDATE", id, "tramites", tramite, input,
		"Tramite "+tramite.Numero+" actualizado"); err != nil {
		tx.Rollback()
		return nil, utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}

	utils.RemoveRedisBoth[Tramite](id)
	return GetTramite(ctx, id)
}

// rebuildAllTramiteLinks replaces every association kind at once; all five
// sets are authoritative on both create and update.
func rebuildAllTramiteLinks(txCtx *gorm.DB, tramiteId int,
	aeropuertos []TramiteAeropuerto,
	equipos []TramiteEquipoSeguridad,
	servicios []TramiteServicioSeguridad,
	categorias []TramiteCategoriaPersonal,
	tiposDocumento []TramiteTipoDocumento) error {

	if err := rebuildTramiteLinks(txCtx, tramiteId, aeropuertos); err != nil {
		return err
	}
	if err := rebuildTramiteLinks(txCtx, tramiteId, equipos); err != nil {
		return err
	}
	if err := rebuildTramiteLinks(txCtx, tramiteId, servicios); err != nil {
		return err
	}
	if err := rebuildTramiteLinks(txCtx, tramiteId, categorias); err != nil {
		return err
	}
	return rebuildTramiteLinks(txCtx, tramiteId, tiposDocumento)
}

func DeleteTramite(ctx context.Context, id int) error {

	tramite, err := utils.FetchSingleModel[Tramite](ctx, id)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.Begin()
	txCtx := tx.WithContext(ctx)

	// link rows first; sqlite does not always enforce the cascade
	if err := rebuildAllTramiteLinks(txCtx, id, nil, nil, nil, nil, nil); err != nil {
		tx.Rollback()
		return utils.WrapStoreError(err)
	}
	if err := txCtx.Delete(&Tramite{}, id).Error; err != nil {
		tx.Rollback()
		return utils.WrapStoreError(err)
	}
	if err := createHistorial(txCtx, "DELETE", id, "tramites", tramite, nil,
		"Tramite "+tramite.Numero+" eliminado"); err != nil {
		tx.Rollback()
		return utils.WrapStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return utils.WrapStoreError(err)
	}

	utils.RemoveRedisBoth[Tramite](id)
	return nil
}

func GetTramite(ctx context.Context, id int) (*Tramite, error) {
	return utils.FetchSingleModel[Tramite](ctx, id, tramitePreloads...)
}

type TramiteFiltro struct {
	IsActive *bool   `json:"is_active"`
	Tipo     *string `json:"tipo"`
	Buscar   *string `json:"buscar"` // numero/nombre/solicitante
}

func (f *TramiteFiltro) apply(dbCtx *gorm.DB) *gorm.DB {
	if f == nil {
		return dbCtx
	}
	if f.IsActive != nil {
		dbCtx = dbCtx.Where("is_active = ?", *f.IsActive)
	}
	if f.Tipo != nil && len(*f.Tipo) > 0 {
		dbCtx = dbCtx.Where("tipo = ?", *f.Tipo)
	}
	if f.Buscar != nil && len(*f.Buscar) > 0 {
		like := "%" + *f.Buscar + "%"
		dbCtx = dbCtx.Where("numero LIKE ? OR nombre LIKE ? OR solicitante LIKE ?", like, like, like)
	}
	return dbCtx
}

func ListTramites(ctx context.Context, filtro *TramiteFiltro) ([]*Tramite, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	for _, preload := range tramitePreloads {
		dbCtx = dbCtx.Preload(preload)
	}
	dbCtx = filtro.apply(dbCtx)

	var results []*Tramite
	if err := dbCtx.Order("id").Find(&results).Error; err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return results, nil
}

type TramitesConnection struct {
	Edges    []Edge[Tramite] `json:"edges"`
	PageInfo *PageInfo       `json:"pageInfo"`
}

// PaginateTramites pages newest-first on (created_at, id).
func PaginateTramites(ctx context.Context, limit int, after *string, filtro *TramiteFiltro) (*TramitesConnection, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Tramite{})
	for _, preload := range tramitePreloads {
		dbCtx = dbCtx.Preload(preload)
	}
	dbCtx = filtro.apply(dbCtx)

	edges, pageInfo, err := FetchPageCompositeCursor[Tramite](dbCtx, limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	return &TramitesConnection{Edges: edges, PageInfo: pageInfo}, nil
}
