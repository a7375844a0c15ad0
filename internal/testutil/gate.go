package testutil

import (
	userstore "github.com/dalemusser/bookcourier/internal/app/store/users"
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NewGate returns an access gate that accepts an email as the bearer token
// and resolves roles from the users collection in db.
func NewGate(db *mongo.Database) *authz.Gate {
	return authz.NewGate(EmailVerifier{}, userstore.NewFetcher(db), zap.NewNop())
}
