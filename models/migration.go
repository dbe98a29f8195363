package models

import (
	"github.com/avsecdata/acreditaciones_backend/config"
)

// MigrateTable creates/updates every table this module owns. Order matters:
// referenced tables before the tables that point at them.
func MigrateTable() error {

	db := config.GetDB()
	return db.AutoMigrate(
		&Aeropuerto{},
		&EquipoSeguridad{},
		&ServicioSeguridad{},
		&CategoriaPersonal{},
		&TipoDocumento{},
		&NumeroSeries{},
		&Acreditacion{},
		&Actividad{},
		&Documento{},
		&Tramite{},
		&TramiteAeropuerto{},
		&TramiteEquipoSeguridad{},
		&TramiteServicioSeguridad{},
		&TramiteCategoriaPersonal{},
		&TramiteTipoDocumento{},
		&Historial{},
	)
}
