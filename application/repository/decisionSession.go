package repository

import (
	"sync"

	"liveguard.io/entities"
	"liveguard.io/infrastructure/database/connection/datastore"
	"liveguard.io/infrastructure/database/repository/mongo"
)

var decisionSessionOnce = sync.Once{}

var decisionSessionRepository mongo.MongoRepository[entities.DecisionSession]

func DecisionSessionRepo() *mongo.MongoRepository[entities.DecisionSession] {
	decisionSessionOnce.Do(func() {
		decisionSessionRepository = mongo.MongoRepository[entities.DecisionSession]{Model: datastore.DecisionSessionModel}
	})
	return &decisionSessionRepository
}
