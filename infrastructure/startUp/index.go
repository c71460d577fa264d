package startup

import (
	"liveguard.io/application/antispoof"
	antispoof_services "liveguard.io/infrastructure/antispoof"
	"liveguard.io/infrastructure/database"
	"liveguard.io/infrastructure/database/connection/datastore"
	"liveguard.io/infrastructure/logger"
)

// Used to start services such as loggers, databases, queues, etc.
func StartServices() {
	logger.InitializeLogger()
	database.SetUpDatabase()
	antispoof.InitialiseConfig()
	antispoof_services.InitialiseAntispoofServices()
}

// Used to clean up after services that have been shutdown.
func CleanUpServices() {
	datastore.CleanUp()
}
