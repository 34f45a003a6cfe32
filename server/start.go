package server

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"github.com/lagat24/greentrace/auth"
	cachepackage "github.com/lagat24/greentrace/cache"
	"github.com/lagat24/greentrace/config"
	"github.com/lagat24/greentrace/database"
	"github.com/lagat24/greentrace/handlers"
	"github.com/lagat24/greentrace/store"
	"github.com/lagat24/greentrace/verify"
)

// newAuthChecker returns the bearer-token check for protected routes. The
// token is the stateless JWT minted at signup/login; the decoded user id is
// stashed in the auth claims for handlers to read.
func newAuthChecker(issuer *auth.TokenIssuer) func(r *http.Request) (bool, httpserver.RequestAuth) {
	return func(r *http.Request) (bool, httpserver.RequestAuth) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return false, httpserver.RequestAuth{}
		}

		userID, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return false, httpserver.RequestAuth{}
		}

		return true, httpserver.RequestAuth{
			Type:   "bearer",
			Client: "greentrace-web",
			Claims: map[string]interface{}{"user_id": userID},
		}
	}
}

func StartServer() {
	// Initialize logger
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})

	logger.Info("Starting GreenTrace API...")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", zap.Error(err))
		os.Exit(1)
	}

	// Initialize database
	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	// Initialize cache
	cache := cachepackage.InitializeCache(cfg)
	defer cache.Close()

	// Auth wiring: bcrypt hasher, JWT issuer, service
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, "greentrace", cfg.TokenTTL)
	authService := auth.NewService(store.NewUserStore(dbConn), hasher, issuer)

	// Verification engine; the model load settles in the background
	engine := verify.NewEngine(cfg.ModelPath, cfg.VerifyTimeout)

	treeStore := store.NewTreeStore(dbConn)
	authHandler := handlers.NewAuthHandler(authService, cfg.DevMode)
	treeHandler := handlers.NewTreeHandler(treeStore, engine, cache)
	leaderboardHandler := handlers.NewLeaderboardHandler(treeStore, cache)

	// Create HTTP server with authentication
	server := httpserver.New(cfg.Port, newAuthChecker(issuer))

	// Register routes
	server.Register(httpserver.Route{
		Name:     "Root",
		Method:   "GET",
		Path:     "/",
		AuthType: "none",
	}, httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true, "app": "GreenTrace API"}`))
	}))

	server.Register(httpserver.Route{
		Name:     "HealthCheck",
		Method:   "GET",
		Path:     "/health",
		AuthType: "none",
	}, httpserver.HandlerFunc(func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "greentrace-api"}`))
	}))

	server.Register(httpserver.Route{
		Name:     "Signup",
		Method:   "POST",
		Path:     "/auth/signup",
		AuthType: "none",
	}, httpserver.HandlerFunc(authHandler.Signup))

	server.Register(httpserver.Route{
		Name:     "Login",
		Method:   "POST",
		Path:     "/auth/login",
		AuthType: "none",
	}, httpserver.HandlerFunc(authHandler.Login))

	server.Register(httpserver.Route{
		Name:     "Leaderboard",
		Method:   "GET",
		Path:     "/leaderboard",
		AuthType: "none",
	}, httpserver.HandlerFunc(leaderboardHandler.Get))

	server.Register(httpserver.Route{
		Name:     "CreateTree",
		Method:   "POST",
		Path:     "/trees",
		AuthType: "bearer",
	}, httpserver.HandlerFunc(treeHandler.Create))

	server.Register(httpserver.Route{
		Name:     "MyTrees",
		Method:   "GET",
		Path:     "/trees/mine",
		AuthType: "bearer",
	}, httpserver.HandlerFunc(treeHandler.Mine))

	server.Register(httpserver.Route{
		Name:     "DeleteTree",
		Method:   "DELETE",
		Path:     "/trees/{id}",
		AuthType: "bearer",
	}, httpserver.HandlerFunc(treeHandler.Delete))

	logger.Info("GreenTrace API started", zap.String("port", cfg.Port))
	logger.Info("Health check: GET /health")
	logger.Info("API endpoints: /auth/signup /auth/login /leaderboard /trees")

	// Start server
	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}
