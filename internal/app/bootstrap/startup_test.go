package bootstrap

import (
	"testing"

	"github.com/dalemusser/bookcourier/internal/app/system/auditlog"
	"github.com/dalemusser/bookcourier/internal/domain/models"
	"github.com/dalemusser/bookcourier/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}

	if err := ensureAdmin(ctx, deps, "Admin@Test.com", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"email": "admin@test.com"}).Decode(&user)
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures := testutil.NewFixtures(t, db)
	existing := fixtures.CreateUser(ctx, "existing@test.com", models.RoleUser)

	deps := DBDeps{MongoDatabase: db}
	if err := ensureAdmin(ctx, deps, "existing@test.com", testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"email": "existing@test.com"}).Decode(&user); err != nil {
		t.Fatalf("failed to find user: %v", err)
	}
	if user.ID != existing.ID {
		t.Error("expected the existing record to be promoted, not replaced")
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", user.Role)
	}
	if user.Name != existing.Name {
		t.Errorf("expected name %q to be kept, got %q", existing.Name, user.Name)
	}
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	for i := 0; i < 3; i++ {
		if err := ensureAdmin(ctx, deps, "admin@test.com", testLogger()); err != nil {
			t.Fatalf("ensureAdmin call %d failed: %v", i, err)
		}
	}

	n, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": "admin@test.com"})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "book_courier_db",
		StripeSecretKey: "sk_test_123",
		AuditLogAdmin:   auditlog.All,
		AuditLogPayment: auditlog.DB,
	}
}

func TestValidateConfig(t *testing.T) {
	dev := &config.CoreConfig{Env: "dev"}
	prod := &config.CoreConfig{Env: "prod"}

	if err := ValidateConfig(dev, validAppConfig(), testLogger()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name string
		core *config.CoreConfig
		mod  func(*AppConfig)
	}{
		{"empty database", dev, func(c *AppConfig) { c.MongoDatabase = " " }},
		{"missing stripe key in prod", prod, func(c *AppConfig) { c.StripeSecretKey = "" }},
		{"negative rate limit", dev, func(c *AppConfig) { c.CheckoutRateLimit = -1 }},
		{"bad audit destination", dev, func(c *AppConfig) { c.AuditLogPayment = "sometimes" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mod(&cfg)
			if err := ValidateConfig(tt.core, cfg, testLogger()); err == nil {
				t.Error("expected error")
			}
		})
	}

	// A missing Stripe key is only a warning outside prod.
	cfg := validAppConfig()
	cfg.StripeSecretKey = ""
	if err := ValidateConfig(dev, cfg, testLogger()); err != nil {
		t.Errorf("expected dev config without stripe key to pass, got %v", err)
	}
}

func TestCORSOrigins(t *testing.T) {
	got := corsOrigins(" https://a.example.com , ,https://b.example.com")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("unexpected origins %v", got)
	}
	if got := corsOrigins(""); len(got) != 1 || got[0] != "*" {
		t.Errorf("expected wildcard default, got %v", got)
	}
}

func TestCheckoutLimiter_ClosedOnShutdown(t *testing.T) {
	if l := newCheckoutLimiter(AppConfig{CheckoutRateLimit: 0}); l != nil {
		t.Fatal("expected no limiter when the rate limit is 0")
	}

	l := newCheckoutLimiter(AppConfig{CheckoutRateLimit: 5})
	if l == nil {
		t.Fatal("expected a limiter")
	}
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := Shutdown(ctx, nil, AppConfig{}, DBDeps{CheckoutLimiter: l}, testLogger()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	select {
	case <-l.Done():
	default:
		t.Error("expected Shutdown to close the checkout limiter")
	}
}
