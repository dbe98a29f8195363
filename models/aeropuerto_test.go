package models

import (
	"testing"

	"github.com/avsecdata/acreditaciones_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAeropuertoCrud(t *testing.T) {
	resetTables(t)
	ctx := testContext()

	aeropuerto, err := CreateAeropuerto(ctx, &NewAeropuerto{
		Codigo: "MDSD", Nombre: "Las Américas", Ciudad: "Santo Domingo",
	})
	require.NoError(t, err)
	assert.True(t, *aeropuerto.IsActive)

	var verr *utils.ValidationError
	_, err = CreateAeropuerto(ctx, &NewAeropuerto{Codigo: "MDSD", Nombre: "Duplicado"})
	require.ErrorAs(t, err, &verr)

	actualizado, err := UpdateAeropuerto(ctx, aeropuerto.ID, &NewAeropuerto{
		Codigo: "MDSD", Nombre: "Las Américas JFPG", Ciudad: "Santo Domingo",
	})
	require.NoError(t, err)
	assert.Equal(t, "Las Américas JFPG", actualizado.Nombre)

	inactivo, err := ToggleActiveAeropuerto(ctx, aeropuerto.ID, false)
	require.NoError(t, err)
	require.NotNil(t, inactivo)

	listados, err := ListAeropuertos(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, listados)

	_, err = DeleteAeropuerto(ctx, aeropuerto.ID)
	require.NoError(t, err)
	_, err = GetAeropuerto(ctx, aeropuerto.ID)
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestDeleteAeropuertoRefusedWhileReferenced(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)
	seedAcreditacion(t, ctx, aeropuerto.ID)

	var verr *utils.ValidationError
	_, err := DeleteAeropuerto(ctx, aeropuerto.ID)
	require.ErrorAs(t, err, &verr)
}
