// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/bookcourier/internal/app/features/auditlog"
	booksfeature "github.com/dalemusser/bookcourier/internal/app/features/books"
	checkoutfeature "github.com/dalemusser/bookcourier/internal/app/features/checkout"
	errorsfeature "github.com/dalemusser/bookcourier/internal/app/features/errors"
	healthfeature "github.com/dalemusser/bookcourier/internal/app/features/health"
	homefeature "github.com/dalemusser/bookcourier/internal/app/features/home"
	librariansfeature "github.com/dalemusser/bookcourier/internal/app/features/librarians"
	ordersfeature "github.com/dalemusser/bookcourier/internal/app/features/orders"
	reviewsfeature "github.com/dalemusser/bookcourier/internal/app/features/reviews"
	usersfeature "github.com/dalemusser/bookcourier/internal/app/features/users"
	wishlistfeature "github.com/dalemusser/bookcourier/internal/app/features/wishlist"
	"github.com/dalemusser/bookcourier/internal/app/store/audit"
	orderstore "github.com/dalemusser/bookcourier/internal/app/store/orders"
	userstore "github.com/dalemusser/bookcourier/internal/app/store/users"
	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
	"github.com/dalemusser/bookcourier/internal/app/system/auth"
	"github.com/dalemusser/bookcourier/internal/app/system/authz"
	"github.com/dalemusser/bookcourier/internal/app/system/locker"
	"github.com/dalemusser/bookcourier/internal/app/system/payments"
	"github.com/dalemusser/bookcourier/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the collaborators shared by
// the features (identity verifier, role gate, payment provider, lock, rate
// limiter, audit logger) and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Upstream())
	defer cancel()

	verifier, err := auth.NewFirebaseVerifier(ctx, appCfg.FirebaseCredentialsPath, appCfg.FirebaseProjectID)
	if err != nil {
		logger.Error("identity verifier init failed", zap.Error(err))
		return nil, err
	}
	gate := authz.NewGate(verifier, userstore.NewFetcher(deps.MongoDatabase), logger)

	provider := payments.NewStripeProvider(payments.StripeConfig{
		SecretKey:  appCfg.StripeSecretKey,
		SuccessURL: appCfg.CheckoutSuccessURL,
		CancelURL:  appCfg.CheckoutCancelURL,
	})

	var lk locker.Locker
	if deps.Redis != nil {
		lk = locker.NewRedisLocker(deps.Redis, "bookcourier:lock:")
	} else {
		logger.Info("redis_url not set; payment confirmation lock is per-instance")
		lk = locker.NewLocalLocker()
	}

	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Admin:   appCfg.AuditLogAdmin,
		Payment: appCfg.AuditLogPayment,
	})

	errorsHandler := errorsfeature.NewHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(appCfg.CORSAllowedOrigins),
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Liveness banner and health check
	r.Get("/", homefeature.NewHandler(logger).ServeRoot)
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))

	// Catalog
	booksHandler := booksfeature.NewHandler(deps.MongoDatabase, auditLog, logger)
	r.Mount("/books", booksfeature.Routes(booksHandler, gate))
	r.Mount("/admin/books", booksfeature.AdminRoutes(booksHandler, gate))
	r.Mount("/librarian/books", booksfeature.LibrarianRoutes(booksHandler, gate))

	// Orders
	ordersHandler := ordersfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/orders", ordersfeature.Routes(ordersHandler, gate))
	r.Mount("/librarian/orders", ordersfeature.LibrarianRoutes(ordersHandler, gate))

	// Checkout: POST /checkout-session, PATCH /payment-success
	coord := checkoutfeature.NewCoordinator(orderstore.New(deps.MongoDatabase), provider, lk, appCfg.CheckoutCurrency, logger)
	checkoutHandler := checkoutfeature.NewHandler(coord, auditLog, logger)
	r.Mount("/", checkoutfeature.Routes(checkoutHandler, deps.CheckoutLimiter))

	// Librarian applications
	r.Mount("/librarians", librariansfeature.Routes(librariansfeature.NewHandler(deps.MongoDatabase, auditLog, logger), gate))

	// Users, wishlist, reviews
	r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(deps.MongoDatabase, auditLog, logger), gate))
	r.Mount("/wishlist", wishlistfeature.Routes(wishlistfeature.NewHandler(deps.MongoDatabase, logger), gate))
	r.Mount("/reviews", reviewsfeature.Routes(reviewsfeature.NewHandler(deps.MongoDatabase, logger), gate))

	// Audit trail (admin)
	r.Mount("/admin/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(deps.MongoDatabase, logger), gate))

	return r, nil
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("ip", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
