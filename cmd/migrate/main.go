package main

import (
	"log"

	"shate-rag-be/internal/config"
	"shate-rag-be/internal/model"
	"shate-rag-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	withVectors := cfg.Retrieval.VectorBackend == "pgvector"
	log.Printf("Starting GORM Migration (pgvector: %t)...", withVectors)

	// 3. Extensions and AutoMigrate
	if err := database.Migrate(db, withVectors, &model.ChatLog{}, &model.CorpusEmbedding{}); err != nil {
		log.Fatalf("Error: Migration failed: %v", err)
	}

	// 4. Post-Migration: lookup index for the chat log listing
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_chat_logs_status_created ON chat_logs (status, created_at DESC);`).Error; err != nil {
		log.Printf("Warn: Failed to create chat log index: %v", err)
	}

	log.Println("Migration completed successfully!")
}
