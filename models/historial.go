package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Historial is the structured audit record written in the same transaction as
// every state-changing operation. The free-text observaciones log on the
// Acreditacion itself is the operator-facing trail; this table is the
// machine-facing one.
type Historial struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type" binding:"required"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Descripcion   string    `gorm:"type:text;not null" json:"descripcion"`
	ReferenceId   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	CorrelationId string    `gorm:"size:36" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (h Historial) GetId() int {
	return h.ID
}

func (h Historial) GetCursor() string {
	return h.CreatedAt.Format("2006-01-02 15:04:05.999999")
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func createHistorial(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	descripcion string) (err error) {

	var historial Historial

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	// actor identity is supplied by the caller (authenticated operator)
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok {
		return errors.New("user name is required")
	}

	historial.ActionType = actionType
	historial.Before = string(b)
	historial.After = string(a)
	historial.Descripcion = descripcion
	historial.ReferenceId = referenceId
	historial.ReferenceType = referenceType
	historial.UserId = userId
	historial.UserName = userName
	historial.CorrelationId = correlationIdFromContextOrNew(ctx)

	err = tx.Create(&historial).Error
	return err
}

func GetHistorial(ctx context.Context, id int) (*Historial, error) {
	return utils.FetchSingleModel[Historial](ctx, id)
}

func GetHistoriales(ctx context.Context, referenceId *int, referenceType *string, userId *int) ([]*Historial, error) {

	db := config.GetDB()
	var results []*Historial

	dbCtx := db.WithContext(ctx)
	if referenceId != nil && *referenceId > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", referenceId)
	}
	if referenceType != nil && len(*referenceType) > 0 {
		dbCtx = dbCtx.Where("reference_type = ?", referenceType)
	}
	if userId != nil && *userId > 0 {
		dbCtx = dbCtx.Where("user_id = ?", userId)
	}
	err := dbCtx.Order("created_at DESC").Find(&results).Error
	if err != nil {
		return nil, utils.WrapStoreError(err)
	}
	return results, nil
}

type HistorialesConnection struct {
	Edges    []*HistorialesEdge `json:"edges"`
	PageInfo *PageInfo          `json:"pageInfo"`
}

type HistorialesEdge Edge[Historial]

func PaginateHistoriales(ctx context.Context,
	limit int,
	after *string,
	referenceType *string,
	referenceId *int,
	actionType *string,
) (*HistorialesConnection, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&Historial{})
	if referenceType != nil && *referenceType != "" {
		dbCtx = dbCtx.Where("reference_type = ?", *referenceType)
	}
	if referenceId != nil && *referenceId > 0 {
		dbCtx = dbCtx.Where("reference_id = ?", *referenceId)
	}
	if actionType != nil && *actionType != "" {
		dbCtx = dbCtx.Where("action_type = ?", *actionType)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Historial](dbCtx, limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var connection HistorialesConnection
	connection.PageInfo = pageInfo
	for _, edge := range edges {
		historialesEdge := HistorialesEdge(edge)
		connection.Edges = append(connection.Edges, &historialesEdge)
	}

	return &connection, err
}
