package main

import (
	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/avsecdata/acreditaciones_backend/models"
	log "github.com/sirupsen/logrus"
)

func main() {
	config.ConnectDatabaseWithRetry()
	if err := models.MigrateTable(); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	log.Info("migration complete")
}
