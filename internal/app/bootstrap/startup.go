// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/stratapage/internal/app/resources"
	draftstore "github.com/dalemusser/stratapage/internal/app/store/drafts"
	"github.com/dalemusser/stratapage/internal/app/system/tasks"
	"github.com/dalemusser/stratapage/internal/app/system/timeouts"
	"github.com/dalemusser/stratapage/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// draftSweepInterval is how often expired editor drafts are removed.
const draftSweepInterval = 15 * time.Minute

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{
		Short:  appCfg.DBShortTimeout,
		Medium: appCfg.DBMediumTimeout,
	})
	viewdata.Init(appCfg.SiteName, appCfg.FooterHTML)

	// Start background task runner
	startTaskRunner(deps.MongoDatabase, appCfg.DraftTTL, logger)

	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

// startTaskRunner initializes and starts the background task runner.
func startTaskRunner(db *mongo.Database, draftTTL time.Duration, logger *zap.Logger) {
	taskRunner = tasks.New(logger)
	taskRunner.Register(tasks.DraftCleanupJob(draftstore.New(db, draftTTL), draftSweepInterval, logger))
	taskRunner.Start()
}
