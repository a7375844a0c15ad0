// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/bookcourier/internal/app/system/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Redis is nil unless redis_url is configured.
	Redis *redis.Client

	// CheckoutLimiter is nil when checkout_rate_limit is 0. Its cleanup
	// goroutine runs until Shutdown closes it.
	CheckoutLimiter *ratelimit.Limiter
}
