package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prasetyowira/qrstudio/api"
	"github.com/prasetyowira/qrstudio/config"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/session"
	"github.com/prasetyowira/qrstudio/infrastructure/archive"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	"github.com/prasetyowira/qrstudio/infrastructure/db"
	appLogger "github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/prasetyowira/qrstudio/infrastructure/qrcode"
	"github.com/prasetyowira/qrstudio/infrastructure/raster"
	"github.com/spf13/cobra"
)

func main() {
	// Load configuration from environment variables
	cfg := config.LoadConfig()

	// Initialize logger based on environment
	isProduction := cfg.LogLevel == "INFO"
	appLogger.Initialize(isProduction)
	defer appLogger.Close()

	root := &cobra.Command{
		Use:           "qrstudio",
		Short:         "QR code generator with padded exports and bulk zip downloads",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	})
	root.AddCommand(newGenerateCommand(cfg))
	root.AddCommand(newBulkCommand(cfg))
	root.AddCommand(newPreviewCommand(cfg))

	if err := root.ExecuteContext(appLogger.NewRequestContext()); err != nil {
		appLogger.Error(err.Error(), appLogger.LoggerInfo{
			ContextFunction: constant.CtxCLI,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppOutput,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
		})
		fmt.Fprintln(os.Stderr, err)
		appLogger.Close()
		os.Exit(1)
	}
}

// newService wires the export pipeline. recorder may be nil.
func newService(cfg config.Config, glyphs export.GlyphCache, recorder export.Recorder) *export.Service {
	deps := export.Dependencies{
		Renderer:   qrcode.NewGenerator(),
		Rasterizer: raster.NewSVGRasterizer(),
		Compositor: raster.NewCompositor(cfg.JPEGQuality),
		Archiver:   archive.NewArchiver(),
		Recorder:   recorder,
		Cache:      glyphs,
	}
	return export.NewService(deps)
}

func runServe(cfg config.Config) error {
	appLogger.Info(constant.MsgApplicationStarting, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
		Data: map[string]interface{}{
			constant.DataPort:        cfg.Port,
			constant.DataDBPath:      cfg.DatabaseURL,
			constant.DataEnvironment: cfg.LogLevel,
		},
	})

	// Create SQLite job history
	repository, err := db.NewJobRepository(cfg.DatabaseURL)
	if err != nil {
		appLogger.Fatal(constant.MsgFailedToInitDB, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppDBInit,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
			Data: map[string]interface{}{
				constant.DataDBPath: cfg.DatabaseURL,
			},
		})
	}
	defer repository.Close()

	glyphCache := cache.NewNamespaceLRU(cfg.CacheSize)
	sessionCache := cache.NewNamespaceLRU(cfg.SessionCapacity)
	service := newService(cfg, glyphCache, repository)
	sessions := session.NewManager(sessionCache, cfg.Style)

	// Create API handler and router
	handler := api.NewHandler(service, sessions, repository, cfg.Style)
	handler.ReportCache(constant.CacheGlyphs, glyphCache)
	handler.ReportCache(constant.CacheSessions, sessionCache)
	router := api.NewRouter(handler, cfg.AuthUser, cfg.AuthPass)
	router.SetupRoutes()

	// Configure HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info(constant.MsgServerStarting, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Data: map[string]interface{}{
				constant.DataPort: cfg.Port,
			},
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(constant.MsgServerFailedToStart, appLogger.LoggerInfo{
				ContextFunction: constant.CtxMain,
				Error: &appLogger.CustomError{
					Code:    constant.ErrCodeAppServerStart,
					Message: err.Error(),
					Type:    constant.ErrTypeApp,
				},
				Data: map[string]interface{}{
					constant.DataPort: cfg.Port,
				},
			})
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	appLogger.Info(constant.MsgServerShuttingDown, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error(constant.MsgServerShutdownError, appLogger.LoggerInfo{
			ContextFunction: constant.CtxMain,
			Error: &appLogger.CustomError{
				Code:    constant.ErrCodeAppServerShutdown,
				Message: err.Error(),
				Type:    constant.ErrTypeApp,
			},
		})
	}

	appLogger.Info(constant.MsgServerStopped, appLogger.LoggerInfo{
		ContextFunction: constant.CtxMain,
	})
	return nil
}
