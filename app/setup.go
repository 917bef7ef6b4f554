package app

import (
	"fmt"
	"os"

	"github.com/derstakip/api/api"
	"github.com/derstakip/api/config"
	"github.com/derstakip/api/database"
	"github.com/derstakip/api/router"
	"github.com/derstakip/api/services/cron"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Seed demo data when configured
	if db, ok := store.GetDB().(*gorm.DB); ok {
		if err := database.NewSeeder(db).SeedAll(); err != nil {
			print("Warning: seeding failed: ", err.Error(), "\n")
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			cronManager = cron.NewCronManager(db)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (security middleware is attached inside)
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()
}
