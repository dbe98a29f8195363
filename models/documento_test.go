package models

import (
	"testing"
	"time"

	"github.com/avsecdata/acreditaciones_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentoUploadThenValidate(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)
	acreditacion := seedAcreditacion(t, ctx, aeropuerto.ID)

	documentos, err := GetDocumentos(ctx, acreditacion.ID)
	require.NoError(t, err)
	require.Len(t, documentos, 3)
	documento := documentos[0]

	// sign-off before upload is illegal
	var serr *utils.InvalidStateError
	_, err = ValidateDocumento(ctx, documento.ID, "inspector.perez")
	require.ErrorAs(t, err, &serr)

	subido, err := UploadDocumento(ctx, documento.ID)
	require.NoError(t, err)
	assert.True(t, *subido.Subido)
	require.NotNil(t, subido.FechaSubida)
	assert.False(t, *subido.Validado)

	validado, err := ValidateDocumento(ctx, documento.ID, "inspector.perez")
	require.NoError(t, err)
	assert.True(t, *validado.Validado)
	require.NotNil(t, validado.FechaValidacion)
	assert.Equal(t, "inspector.perez", validado.ValidadoPor)
}

func TestDocumentoIdempotentOperations(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)
	acreditacion := seedAcreditacion(t, ctx, aeropuerto.ID)

	documentos, err := GetDocumentos(ctx, acreditacion.ID)
	require.NoError(t, err)
	documento := documentos[0]

	primero, err := UploadDocumento(ctx, documento.ID)
	require.NoError(t, err)
	segundo, err := UploadDocumento(ctx, documento.ID)
	require.NoError(t, err)
	// repeated upload keeps the original timestamp
	require.NotNil(t, segundo.FechaSubida)
	assert.WithinDuration(t, *primero.FechaSubida, *segundo.FechaSubida, time.Second)

	_, err = ValidateDocumento(ctx, documento.ID, "inspector.perez")
	require.NoError(t, err)
	otraVez, err := ValidateDocumento(ctx, documento.ID, "otro.inspector")
	require.NoError(t, err)
	// repeated sign-off keeps the first inspector
	assert.Equal(t, "inspector.perez", otraVez.ValidadoPor)
}
