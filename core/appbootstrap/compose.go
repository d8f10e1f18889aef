package appbootstrap

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"rightswatch/api"
	"rightswatch/config"
	"rightswatch/core/analytics"
	"rightswatch/core/monitoring"
	"rightswatch/core/rbac"
	"rightswatch/core/store"
	"rightswatch/core/store/mongostore"
	"rightswatch/core/uploads"
	"rightswatch/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	workers    []api.BackgroundWorker
	close      func(ctx context.Context) error
}

// composeRuntime opens the configured backend once and hands the same handle
// to every store.
func composeRuntime(ctx context.Context, cfg *config.AppConfig, logger *utils.Logger) (*runtimeComposition, error) {
	policy, err := rbac.NewPolicy(rbac.DefaultGrants())
	if err != nil {
		return nil, err
	}
	metrics := monitoring.NewMetrics()
	deps := api.ServerDeps{
		Uploads: uploads.NewStorage(cfg.Uploads.Dir, cfg.Uploads.MaxBytes),
		Policy:  policy,
		Metrics: metrics,
	}
	var closeFn func(ctx context.Context) error
	if cfg.IsMongo() {
		client, err := mongostore.Connect(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Printf("connected to mongo database %s", cfg.MongoDatabase)
		composeMongo(&deps, client, db)
		closeFn = client.Disconnect
	} else {
		db, err := store.NewDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := store.ApplyMigrations(ctx, db, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		composeSQL(&deps, db)
		closeFn = func(context.Context) error { return db.Close() }
	}

	digest := analytics.NewDigest(cfg.Analytics, deps.Analytics, metrics, logger)
	return &runtimeComposition{
		serverDeps: deps,
		workers:    []api.BackgroundWorker{digest},
		close:      closeFn,
	}, nil
}

func composeSQL(deps *api.ServerDeps, db *store.DB) {
	deps.Cases = store.NewCasesStore(db)
	deps.StatusHistory = store.NewStatusHistoryStore(db)
	deps.Reports = store.NewReportsStore(db)
	deps.Analytics = store.NewAnalyticsStore(db)
	deps.Individuals = store.NewIndividualsStore(db)
	deps.Health = db.PingContext
}

func composeMongo(deps *api.ServerDeps, client *mongo.Client, db *mongo.Database) {
	ledger := mongostore.NewStatusHistoryStore(db)
	deps.Cases = mongostore.NewCasesStore(db, ledger)
	deps.StatusHistory = ledger
	deps.Reports = mongostore.NewReportsStore(db)
	deps.Analytics = mongostore.NewAnalyticsStore(db)
	deps.Individuals = mongostore.NewIndividualsStore(db)
	deps.Health = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
}
