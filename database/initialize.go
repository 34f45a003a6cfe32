package database

import (
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"github.com/lagat24/greentrace/config"
)

// InitializeDatabase opens the SQLite database, caps the shared connection
// pool, and runs pending migrations. All request handlers share this pool;
// there is no request-level locking — uniqueness constraints in the schema
// are the correctness guarantee for concurrent signups.
func InitializeDatabase(cfg config.Config) *sqlx.DB {
	dbConfig := db.DatabaseConfig{
		DRIVER: "sqlite3",
		DB:     cfg.DBPath,
	}

	dbConn := db.GetDBConnection(dbConfig)
	dbConn.SetMaxOpenConns(cfg.DBMaxConns)

	err := migrations.Migrate(dbConn, cfg.MigrationsDir)
	if err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database initialized successfully")
	return dbConn
}
