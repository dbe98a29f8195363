package main

import (
	"context"
	"errors"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/models"
	"github.com/avsecdata/acreditaciones_backend/utils"
	log "github.com/sirupsen/logrus"
)

// national airport network
var aeropuertos = []models.NewAeropuerto{
	{Codigo: "MDSD", Nombre: "Aeropuerto Internacional Las Américas", Ciudad: "Santo Domingo"},
	{Codigo: "MDPC", Nombre: "Aeropuerto Internacional de Punta Cana", Ciudad: "Punta Cana"},
	{Codigo: "MDST", Nombre: "Aeropuerto Internacional del Cibao", Ciudad: "Santiago"},
	{Codigo: "MDPP", Nombre: "Aeropuerto Internacional Gregorio Luperón", Ciudad: "Puerto Plata"},
	{Codigo: "MDLR", Nombre: "Aeropuerto Internacional La Romana", Ciudad: "La Romana"},
	{Codigo: "MDJB", Nombre: "Aeropuerto Internacional La Isabela", Ciudad: "Santo Domingo"},
	{Codigo: "MDCY", Nombre: "Aeropuerto Internacional El Catey", Ciudad: "Samaná"},
	{Codigo: "MDBH", Nombre: "Aeropuerto Internacional María Montez", Ciudad: "Barahona"},
}

func main() {
	config.ConnectDatabaseWithRetry()

	ctx := utils.SetUserIdInContext(context.Background(), 1)
	ctx = utils.SetUserNameInContext(ctx, "seed")

	seeded := 0
	for _, input := range aeropuertos {
		input := input
		_, err := models.CreateAeropuerto(ctx, &input)
		if err != nil {
			var verr *utils.ValidationError
			if errors.As(err, &verr) {
				// already seeded
				log.WithField("codigo", input.Codigo).Debug("skipped")
				continue
			}
			log.WithError(err).WithField("codigo", input.Codigo).Fatal("seed failed")
		}
		seeded++
	}
	log.WithField("seeded", seeded).Info("aeropuertos seeded")
}
