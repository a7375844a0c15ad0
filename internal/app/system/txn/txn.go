// Package txn runs multi-step writes inside a MongoDB transaction when the
// deployment supports one, and falls back to sequential writes on a
// standalone server.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Codes returned by servers that cannot run multi-document transactions.
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (standalone server)
	51:  true, // legacy IllegalOperation
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the server cannot run a transaction
// (standalone mongod, old server, or an operation disallowed inside one).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if notSupportedCodes[ce.Code] {
			return true
		}
	}
	var se mongo.ServerError
	if errors.As(err, &se) {
		for code := range notSupportedCodes {
			if se.HasErrorCode(int(code)) {
				return true
			}
		}
	}

	msg := strings.ToLower(err.Error())
	hasTxn := strings.Contains(msg, "transaction")
	hasSession := strings.Contains(msg, "session")
	switch {
	case strings.Contains(msg, "illegal operation"):
		return true
	case hasTxn && strings.Contains(msg, "replica set"):
		return true
	case hasTxn && hasSession:
		return true
	case (hasTxn || hasSession) && strings.Contains(msg, "not supported"):
		return true
	}
	return false
}

// Run executes fn inside a transaction on client. If the deployment rejects
// transactions, fn is run again without one using the caller's ctx.
// fn must be safe to re-run: nothing it wrote inside the aborted transaction survives.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	if client == nil {
		return fn(ctx)
	}

	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions not supported, running without one", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}
