package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstadisticasReconcile(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuertoA := seedAeropuerto(t, ctx)
	aeropuertoB := seedAeropuerto(t, ctx)

	// two concluded (one approved, one rejected with warning)
	aprobada := seedAcreditacion(t, ctx, aeropuertoA.ID)
	_, err := ApproveAcreditacion(ctx, aprobada.ID, "supervisor.gomez")
	require.NoError(t, err)
	rechazada := seedAcreditacion(t, ctx, aeropuertoA.ID)
	_, err = RejectAcreditacion(ctx, rechazada.ID, "motivo", "supervisor.gomez")
	require.NoError(t, err)

	// one open overdue, one open in-time, one open with no due date
	_, err = CreateAcreditacion(ctx, &NewAcreditacion{
		Solicitante: "Aerodom S.A.", AeropuertoId: aeropuertoA.ID, FechaVencimiento: testFechaPasada(),
	})
	require.NoError(t, err)
	_, err = CreateAcreditacion(ctx, &NewAcreditacion{
		Solicitante: "Aerodom S.A.", AeropuertoId: aeropuertoB.ID, FechaVencimiento: testFechaFutura(),
	})
	require.NoError(t, err)
	_ = seedAcreditacion(t, ctx, aeropuertoB.ID)

	stats, err := GetEstadisticasAcreditaciones(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	// concluidas counts approvals only
	assert.Equal(t, 1, stats.Concluidas)
	assert.Equal(t, 1, stats.EnTiempo)
	assert.Equal(t, 1, stats.Atrasadas)
	// open records without a due date land in neither bucket
	assert.Equal(t, 1, stats.PorEstado[string(EstadoAcreditacionAprobado)])
	assert.Equal(t, 1, stats.PorEstado[string(EstadoAcreditacionRechazado)])
	assert.Equal(t, 1, stats.Discrepancias)

	// estado breakdown reconciles with the total
	suma := 0
	for _, cantidad := range stats.PorEstado {
		suma += cantidad
	}
	assert.Equal(t, stats.Total, suma)

	assert.GreaterOrEqual(t, stats.TiempoPromedioProceso, 0.0)

	require.Len(t, stats.PorAeropuerto, 2)
	porId := map[int]EstadisticaAeropuerto{}
	total := 0
	for _, fila := range stats.PorAeropuerto {
		porId[fila.AeropuertoId] = fila
		total += fila.Cantidad
	}
	assert.Equal(t, stats.Total, total)
	assert.Equal(t, 3, porId[aeropuertoA.ID].Cantidad)
	assert.Equal(t, 2, porId[aeropuertoB.ID].Cantidad)
	// 3/5 and 2/5, rounded per row
	assert.Equal(t, 60, porId[aeropuertoA.ID].Porcentaje)
	assert.Equal(t, 40, porId[aeropuertoB.ID].Porcentaje)
	assert.Equal(t, aeropuertoA.Codigo, porId[aeropuertoA.ID].Codigo)
}

func TestEstadisticasScopedToAeropuerto(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuertoA := seedAeropuerto(t, ctx)
	aeropuertoB := seedAeropuerto(t, ctx)

	enA := seedAcreditacion(t, ctx, aeropuertoA.ID)
	_, err := ApproveAcreditacion(ctx, enA.ID, "supervisor.gomez")
	require.NoError(t, err)
	_ = seedAcreditacion(t, ctx, aeropuertoB.ID)
	_ = seedAcreditacion(t, ctx, aeropuertoB.ID)

	stats, err := GetEstadisticasAcreditaciones(ctx, &EstadisticasFiltro{AeropuertoId: &aeropuertoA.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Concluidas)
	require.Len(t, stats.PorAeropuerto, 1)
	assert.Equal(t, aeropuertoA.ID, stats.PorAeropuerto[0].AeropuertoId)
	assert.Equal(t, 100, stats.PorAeropuerto[0].Porcentaje)
}

func TestEstadisticasEmpty(t *testing.T) {
	resetTables(t)
	ctx := testContext()

	stats, err := GetEstadisticasAcreditaciones(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.Concluidas)
	assert.Zero(t, stats.TiempoPromedioProceso)
	assert.Empty(t, stats.PorAeropuerto)
	assert.Empty(t, stats.PorEstado)
}
