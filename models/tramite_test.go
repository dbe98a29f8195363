package models

import (
	"context"
	"fmt"
	"testing"

	"github.com/avsecdata/acreditaciones_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var masterDataSeq int

func seedMasterData(t *testing.T, ctx context.Context) (equipos []*EquipoSeguridad, servicios []*ServicioSeguridad, categorias []*CategoriaPersonal, tipos []*TipoDocumento) {
	t.Helper()
	for i := 0; i < 2; i++ {
		masterDataSeq++
		equipo, err := CreateEquipoSeguridad(ctx, &NewMasterData{Nombre: fmt.Sprintf("Escáner %d", masterDataSeq)})
		require.NoError(t, err)
		equipos = append(equipos, equipo)

		servicio, err := CreateServicioSeguridad(ctx, &NewMasterData{Nombre: fmt.Sprintf("Patrullaje %d", masterDataSeq)})
		require.NoError(t, err)
		servicios = append(servicios, servicio)

		categoria, err := CreateCategoriaPersonal(ctx, &NewMasterData{Nombre: fmt.Sprintf("Operador %d", masterDataSeq)})
		require.NoError(t, err)
		categorias = append(categorias, categoria)

		tipo, err := CreateTipoDocumento(ctx, &NewMasterData{Nombre: fmt.Sprintf("Constancia %d", masterDataSeq)})
		require.NoError(t, err)
		tipos = append(tipos, tipo)
	}
	return
}

func TestCreateTramiteWithLinks(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)
	equipos, servicios, categorias, tipos := seedMasterData(t, ctx)

	tramite, err := CreateTramite(ctx, &NewTramite{
		Nombre:      "Acceso a zona estéril",
		Tipo:        "ACCESO",
		Solicitante: "Aerodom S.A.",
		CostoUSD:    decimal.NewFromInt(150),
		Aeropuertos: []TramiteAeropuertoInput{{AeropuertoId: aeropuerto.ID}},
		EquiposSeguridad: []TramiteEquipoSeguridadInput{
			{EquipoSeguridadId: equipos[0].ID, Descripcion: "arco detector"},
		},
		ServiciosSeguridad: []TramiteServicioSeguridadInput{
			{ServicioSeguridadId: servicios[0].ID, Nota: "turno nocturno"},
		},
		CategoriasPersonal: []TramiteCategoriaPersonalInput{
			{CategoriaPersonalId: categorias[0].ID, Departamentos: []string{"Rampa", "Carga"}},
		},
		TiposDocumento: []TramiteTipoDocumentoInput{
			{
				TipoDocumentoId: tipos[0].ID,
				Descripcion:     "carnet vigente con foto",
				Nota:            "vigente",
				Departamentos:   []string{"Seguridad", "Credenciales"},
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "TRM-000001", tramite.Numero)
	assert.True(t, *tramite.IsActive)
	assert.True(t, tramite.CostoUSD.Equal(decimal.NewFromInt(150)))

	require.Len(t, tramite.Aeropuertos, 1)
	require.Len(t, tramite.EquiposSeguridad, 1)
	assert.Equal(t, "arco detector", tramite.EquiposSeguridad[0].Descripcion)
	require.Len(t, tramite.ServiciosSeguridad, 1)
	require.Len(t, tramite.CategoriasPersonal, 1)
	assert.Equal(t, StringList{"Rampa", "Carga"}, tramite.CategoriasPersonal[0].Departamentos)
	require.Len(t, tramite.TiposDocumento, 1)
	// obligatorio defaults to true
	assert.True(t, *tramite.TiposDocumento[0].Obligatorio)
	assert.Equal(t, "carnet vigente con foto", tramite.TiposDocumento[0].Descripcion)
	assert.Equal(t, "vigente", tramite.TiposDocumento[0].Nota)
	assert.Equal(t, StringList{"Seguridad", "Credenciales"}, tramite.TiposDocumento[0].Departamentos)
}

func TestCreateTramiteValidation(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	equipos, _, _, _ := seedMasterData(t, ctx)

	var verr *utils.ValidationError
	_, err := CreateTramite(ctx, &NewTramite{})
	require.ErrorAs(t, err, &verr)

	// unknown link id
	_, err = CreateTramite(ctx, &NewTramite{
		Nombre:      "Permiso",
		Aeropuertos: []TramiteAeropuertoInput{{AeropuertoId: 9999}},
	})
	require.ErrorAs(t, err, &verr)

	// duplicate link id
	_, err = CreateTramite(ctx, &NewTramite{
		Nombre: "Permiso",
		EquiposSeguridad: []TramiteEquipoSeguridadInput{
			{EquipoSeguridadId: equipos[0].ID},
			{EquipoSeguridadId: equipos[0].ID},
		},
	})
	require.ErrorAs(t, err, &verr)

	// nothing half-created by the failed attempts
	tramites, err := ListTramites(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, tramites)
}

func TestUpdateTramiteRebuildsLinks(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuertoA := seedAeropuerto(t, ctx)
	aeropuertoB := seedAeropuerto(t, ctx)
	equipos, servicios, _, tipos := seedMasterData(t, ctx)

	tramite, err := CreateTramite(ctx, &NewTramite{
		Nombre:      "Acceso a plataforma",
		Aeropuertos: []TramiteAeropuertoInput{{AeropuertoId: aeropuertoA.ID}},
		EquiposSeguridad: []TramiteEquipoSeguridadInput{
			{EquipoSeguridadId: equipos[0].ID, Descripcion: "original"},
		},
		ServiciosSeguridad: []TramiteServicioSeguridadInput{
			{ServicioSeguridadId: servicios[0].ID},
		},
	})
	require.NoError(t, err)

	nombre := "Acceso a plataforma (rev. 2)"
	result, err := UpdateTramiteById(ctx, tramite.ID, &UpdateTramite{
		Nombre: &nombre,
		// replace airports wholesale
		Aeropuertos: []TramiteAeropuertoInput{
			{AeropuertoId: aeropuertoA.ID},
			{AeropuertoId: aeropuertoB.ID},
		},
		// swap the equipment set
		EquiposSeguridad: []TramiteEquipoSeguridadInput{
			{EquipoSeguridadId: equipos[1].ID, Descripcion: "reemplazo"},
		},
		// add a kind that had no rows before
		TiposDocumento: []TramiteTipoDocumentoInput{
			{TipoDocumentoId: tipos[0].ID, Obligatorio: utils.NewFalse()},
		},
		// ServiciosSeguridad omitted: replace semantics clear the kind
	})
	require.NoError(t, err)

	assert.Equal(t, nombre, result.Nombre)
	require.Len(t, result.Aeropuertos, 2)
	require.Len(t, result.EquiposSeguridad, 1)
	assert.Equal(t, equipos[1].ID, result.EquiposSeguridad[0].EquipoSeguridadId)
	assert.Equal(t, "reemplazo", result.EquiposSeguridad[0].Descripcion)
	assert.Empty(t, result.ServiciosSeguridad)
	require.Len(t, result.TiposDocumento, 1)
	assert.False(t, *result.TiposDocumento[0].Obligatorio)
	assert.Empty(t, result.CategoriasPersonal)
}

func TestUpdateTramiteClearsAirportsKeepsDocumentTypes(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuertoA := seedAeropuerto(t, ctx)
	aeropuertoB := seedAeropuerto(t, ctx)
	aeropuertoC := seedAeropuerto(t, ctx)
	_, _, _, tipos := seedMasterData(t, ctx)

	docLinks := []TramiteTipoDocumentoInput{
		{TipoDocumentoId: tipos[0].ID},
		{TipoDocumentoId: tipos[1].ID},
	}
	tramite, err := CreateTramite(ctx, &NewTramite{
		Nombre: "Permiso múltiple",
		Aeropuertos: []TramiteAeropuertoInput{
			{AeropuertoId: aeropuertoA.ID},
			{AeropuertoId: aeropuertoB.ID},
			{AeropuertoId: aeropuertoC.ID},
		},
		TiposDocumento: docLinks,
	})
	require.NoError(t, err)
	require.Len(t, tramite.Aeropuertos, 3)

	result, err := UpdateTramiteById(ctx, tramite.ID, &UpdateTramite{
		Aeropuertos:    []TramiteAeropuertoInput{},
		TiposDocumento: docLinks,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Aeropuertos)
	assert.Len(t, result.TiposDocumento, 2)
}

func TestUpdateTramiteRebuildIdempotent(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)

	tramite, err := CreateTramite(ctx, &NewTramite{
		Nombre:      "Permiso de obra",
		Aeropuertos: []TramiteAeropuertoInput{{AeropuertoId: aeropuerto.ID}},
	})
	require.NoError(t, err)

	links := []TramiteAeropuertoInput{{AeropuertoId: aeropuerto.ID}}
	for i := 0; i < 3; i++ {
		result, err := UpdateTramiteById(ctx, tramite.ID, &UpdateTramite{Aeropuertos: links})
		require.NoError(t, err)
		require.Len(t, result.Aeropuertos, 1)
	}
}

func TestUpdateTramiteAtomicOnBadLink(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)

	tramite, err := CreateTramite(ctx, &NewTramite{
		Nombre:      "Permiso de fotografía",
		Aeropuertos: []TramiteAeropuertoInput{{AeropuertoId: aeropuerto.ID}},
	})
	require.NoError(t, err)

	nombre := "no debe aplicarse"
	_, err = UpdateTramiteById(ctx, tramite.ID, &UpdateTramite{
		Nombre:      &nombre,
		Aeropuertos: []TramiteAeropuertoInput{{AeropuertoId: 9999}},
	})
	var verr *utils.ValidationError
	require.ErrorAs(t, err, &verr)

	// neither the scalar nor the links changed
	result, err := GetTramite(ctx, tramite.ID)
	require.NoError(t, err)
	assert.Equal(t, "Permiso de fotografía", result.Nombre)
	require.Len(t, result.Aeropuertos, 1)
	assert.Equal(t, aeropuerto.ID, result.Aeropuertos[0].AeropuertoId)
}

func TestDeleteTramiteRemovesLinks(t *testing.T) {
	resetTables(t)
	ctx := testContext()
	aeropuerto := seedAeropuerto(t, ctx)

	tramite, err := CreateTramite(ctx, &NewTramite{
		Nombre:      "Permiso temporal",
		Aeropuertos: []TramiteAeropuertoInput{{AeropuertoId: aeropuerto.ID}},
	})
	require.NoError(t, err)

	require.NoError(t, DeleteTramite(ctx, tramite.ID))

	_, err = GetTramite(ctx, tramite.ID)
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)

	huerfanos, err := utils.ResourceCountWhere[TramiteAeropuerto](ctx, "tramite_id = ?", tramite.ID)
	require.NoError(t, err)
	assert.Zero(t, huerfanos)
}

func TestListTramitesFiltro(t *testing.T) {
	resetTables(t)
	ctx := testContext()

	acceso, err := CreateTramite(ctx, &NewTramite{Nombre: "Acceso a torre", Tipo: "ACCESO"})
	require.NoError(t, err)
	_, err = CreateTramite(ctx, &NewTramite{Nombre: "Permiso de obra", Tipo: "OBRA"})
	require.NoError(t, err)

	inactivo := false
	_, err = UpdateTramiteById(ctx, acceso.ID, &UpdateTramite{IsActive: &inactivo})
	require.NoError(t, err)

	activo := true
	results, err := ListTramites(ctx, &TramiteFiltro{IsActive: &activo})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Permiso de obra", results[0].Nombre)

	tipo := "ACCESO"
	results, err = ListTramites(ctx, &TramiteFiltro{Tipo: &tipo})
	require.NoError(t, err)
	require.Len(t, results, 1)

	buscar := "torre"
	results, err = ListTramites(ctx, &TramiteFiltro{Buscar: &buscar})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, acceso.ID, results[0].ID)
}

func TestPaginateTramites(t *testing.T) {
	resetTables(t)
	ctx := testContext()

	for i := 1; i <= 5; i++ {
		_, err := CreateTramite(ctx, &NewTramite{Nombre: fmt.Sprintf("Tramite %d", i)})
		require.NoError(t, err)
	}

	vistos := map[int]bool{}
	var after *string
	pages := 0
	for {
		connection, err := PaginateTramites(ctx, 2, after, nil)
		require.NoError(t, err)
		pages++
		for _, edge := range connection.Edges {
			assert.False(t, vistos[edge.Node.ID], "id %d repeated across pages", edge.Node.ID)
			vistos[edge.Node.ID] = true
		}
		if connection.PageInfo.HasNextPage == nil || !*connection.PageInfo.HasNextPage {
			break
		}
		after = &connection.PageInfo.EndCursor
	}
	assert.Len(t, vistos, 5)
	assert.Equal(t, 3, pages)
}
