package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"coffee-doctor-core/ai"
	"coffee-doctor-core/db"
	"coffee-doctor-core/kb"
	"coffee-doctor-core/server"
	"coffee-doctor-core/svc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on environment variables")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	knowledgeDir := os.Getenv("KNOWLEDGE_DIR")
	if knowledgeDir == "" {
		knowledgeDir = "kb/data"
	}
	store, err := kb.LoadDir(knowledgeDir)
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}

	kvStore, err := db.NewKeyValueStore(os.Getenv("KV_STORE_PATH"))
	if err != nil {
		log.Fatalf("Failed to initialize key-value store: %v", err)
	}

	dsvc := svc.NewDoctorService(kvStore, ai.NewAIHelper(apiKey), store)

	_, wg, _ := server.RunServer(dsvc, os.Getenv("PORT"))
	wg.Wait()
}
