package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/models"
	log "github.com/sirupsen/logrus"
)

// prints the dashboard snapshot as JSON, for cron-driven reporting
func main() {
	config.ConnectDatabaseWithRetry()

	stats, err := models.GetEstadisticasAcreditaciones(context.Background(), nil)
	if err != nil {
		log.WithError(err).Fatal("estadisticas failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		log.WithError(err).Fatal("encode failed")
	}
}
