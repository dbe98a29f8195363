package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstadoForProgresoBoundaries(t *testing.T) {
	assert.Equal(t, EstadoAcreditacionPendiente, EstadoForProgreso(0))
	assert.Equal(t, EstadoAcreditacionPendiente, EstadoForProgreso(49))
	assert.Equal(t, EstadoAcreditacionEnProceso, EstadoForProgreso(50))
	assert.Equal(t, EstadoAcreditacionEnProceso, EstadoForProgreso(99))
	assert.Equal(t, EstadoAcreditacionValidacionFinal, EstadoForProgreso(100))
}

func TestEstadoAcreditacionParse(t *testing.T) {
	estado, err := ParseEstadoAcreditacion("APROBADO")
	require.NoError(t, err)
	assert.True(t, estado.IsTerminal())

	_, err = ParseEstadoAcreditacion("aprobado")
	require.Error(t, err)

	var decoded EstadoAcreditacion
	require.NoError(t, json.Unmarshal([]byte(`"EN_REVISION"`), &decoded))
	assert.Equal(t, EstadoAcreditacionEnRevision, decoded)
	require.Error(t, json.Unmarshal([]byte(`"INVENTADO"`), &decoded))
}
