package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"map-atlas/core/config"
	"map-atlas/core/database"
	"map-atlas/core/loader"
	"map-atlas/core/logger"
	"map-atlas/core/middleware/auth"
	"map-atlas/core/middleware/rayid"
	"map-atlas/core/storage"
	"map-atlas/core/store"

	"map-atlas/feature/atlas"
	"map-atlas/feature/export"
	"map-atlas/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "map-atlas/docs/swagger"
)

// @title Map Atlas API
// @version 1.0
// @description API for querying and rendering game map data.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the map atlas server",
	Long: `Builds the atlas from the configured game roots, then starts the HTTP
server and initializes all enabled features. With SERVER_WATCH set the atlas
is rebuilt whenever a watched content folder changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		// 3. Build the atlas. A failed first build still starts the server so
		// the content can be fixed and reloaded.
		svc := atlas.NewService(cfg.Game, store.New(store.DefaultHistory), logg)
		if _, err := svc.Load(ctx, nil); err != nil {
			logg.Error("Initial atlas build failed", zap.Error(err))
		}

		// 4. Connect to Database (Optional)
		var db *gorm.DB
		if conn, err := database.Connect(ctx, cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
			logg.Info("Connected to database", zap.String("name", cfg.Database.Name))
		}

		// 5. Initialize Storage (Optional)
		var client storage.Client
		if c, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage client failed", zap.Error(err))
		} else {
			client = c
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 6. Register Features
		mgr := loader.NewManager()
		mgr.Register(atlas.NewFeature(svc))
		mgr.Register(integrity.NewFeature(svc, logg))
		mgr.Register(export.NewFeature(export.NewService(svc, client, cfg.Storage, db, logg)))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the ray id
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 8. Watch content roots
		if cfg.Server.Watch {
			w, err := atlas.NewWatcher(svc, cfg.Server.Debounce(), logg)
			if err != nil {
				logg.Error("Failed to start watcher", zap.Error(err))
			} else {
				go func() {
					if err := w.Run(ctx); err != nil {
						logg.Error("Watcher stopped", zap.Error(err))
					}
				}()
			}
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		<-ctx.Done()
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
