package connection

import (
	"liveguard.io/infrastructure/database/connection/cache"
	"liveguard.io/infrastructure/database/connection/datastore"
)

func ConnectToDatabase() {
	datastore.ConnectToDatabase()
	cache.ConnectToCache()
}
