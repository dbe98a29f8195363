package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHistorialesFilters(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)
	acreditacion := seedAcreditacion(t, ctx, aeropuerto.ID)

	referenceId := acreditacion.ID
	referenceType := "acreditaciones"
	results, err := GetHistoriales(ctx, &referenceId, &referenceType, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "CREATE", results[0].ActionType)
	assert.Equal(t, 7, results[0].UserId)
	assert.Equal(t, "inspector.perez", results[0].UserName)
}

func TestPaginateHistorialesFiltersByReferenceType(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)
	// two acreditacion records, one airport record in the trail
	seedAcreditacion(t, ctx, aeropuerto.ID)
	seedAcreditacion(t, ctx, aeropuerto.ID)

	referenceType := "aeropuertos"
	connection, err := PaginateHistoriales(ctx, 10, nil, &referenceType, nil, nil)
	require.NoError(t, err)
	require.Len(t, connection.Edges, 1)
	assert.Equal(t, "aeropuertos", connection.Edges[0].Node.ReferenceType)
	assert.Equal(t, aeropuerto.ID, connection.Edges[0].Node.ReferenceId)

	referenceType = "acreditaciones"
	connection, err = PaginateHistoriales(ctx, 10, nil, &referenceType, nil, nil)
	require.NoError(t, err)
	require.Len(t, connection.Edges, 2)
	for _, edge := range connection.Edges {
		assert.Equal(t, "acreditaciones", edge.Node.ReferenceType)
	}
}

func TestPaginateHistorialesPages(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)
	for i := 0; i < 4; i++ {
		seedAcreditacion(t, ctx, aeropuerto.ID)
	}

	referenceType := "acreditaciones"
	vistos := map[int]bool{}
	var after *string
	pages := 0
	for {
		connection, err := PaginateHistoriales(ctx, 3, after, &referenceType, nil, nil)
		require.NoError(t, err)
		pages++
		for _, edge := range connection.Edges {
			assert.Equal(t, "acreditaciones", edge.Node.ReferenceType)
			assert.False(t, vistos[edge.Node.ID], "id %d repeated across pages", edge.Node.ID)
			vistos[edge.Node.ID] = true
		}
		if connection.PageInfo.HasNextPage == nil || !*connection.PageInfo.HasNextPage {
			break
		}
		after = &connection.PageInfo.EndCursor
	}
	assert.Len(t, vistos, 4)
	assert.Equal(t, 2, pages)
}
