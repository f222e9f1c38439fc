package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"studio-backend/internal/common/config"
	"studio-backend/internal/common/middleware"
	"studio-backend/internal/editor/collab"
	"studio-backend/internal/editor/handlers"
	"studio-backend/internal/editor/repository"
	"studio-backend/internal/editor/service"
	"studio-backend/internal/editor/store"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Editor Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	db, err := repository.OpenSQLite(cfg.EditorDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), "migrations/001_init_projects.sql"); err != nil {
		log.Fatalf("init db: %v", err)
	}

	providers := collab.WebsocketProviderFactory(cfg.RelayURL)
	manager := service.NewEditorManager(store.LogNotifier{}, providers)
	projectHandler := handlers.NewProjectHandler(repo, manager)
	editorHandler := handlers.NewEditorHandler(repo, manager)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Editor Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", handlers.LivenessProbe)
	app.Get("/health/ready", handlers.ReadinessProbe)

	// ============================================================
	// Project Routes
	// ============================================================

	app.Post("/projects", projectHandler.Create)
	app.Get("/projects", projectHandler.List)
	app.Get("/projects/:id", projectHandler.Get)
	app.Put("/projects/:id", projectHandler.Save)
	app.Delete("/projects/:id", projectHandler.Delete)

	// ============================================================
	// Editor Session Routes
	// ============================================================

	app.Post("/projects/:id/open", editorHandler.Open)
	app.Get("/projects/:id/state", editorHandler.State)
	app.Post("/projects/:id/name", editorHandler.Rename)

	app.Post("/projects/:id/objects", editorHandler.AddObject)
	app.Patch("/projects/:id/objects/:objectId", editorHandler.UpdateObject)
	app.Delete("/projects/:id/objects/:objectId", editorHandler.DeleteObject)
	app.Post("/projects/:id/objects/:objectId/duplicate", editorHandler.DuplicateObject)

	app.Post("/projects/:id/selection", editorHandler.Select)
	app.Post("/projects/:id/tool", editorHandler.SetTool)

	app.Post("/projects/:id/objects/:objectId/copy", editorHandler.Copy)
	app.Post("/projects/:id/objects/:objectId/cut", editorHandler.Cut)
	app.Post("/projects/:id/paste", editorHandler.Paste)

	app.Post("/projects/:id/undo", editorHandler.Undo)
	app.Post("/projects/:id/redo", editorHandler.Redo)

	app.Post("/projects/:id/transform/start", editorHandler.StartTransform)
	app.Post("/projects/:id/transform/end", editorHandler.EndTransform)

	app.Post("/projects/:id/collab/start", editorHandler.StartCollaboration)
	app.Post("/projects/:id/collab/stop", editorHandler.StopCollaboration)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Editor Service on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Collaboration relay at %s", cfg.RelayURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
