package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"drift-notes/internal/auth"
	"drift-notes/internal/cache"
	"drift-notes/internal/db"
	"drift-notes/internal/handlers"
)

func main() {
	port := flag.Int("port", 5000, "Server port")
	dataDir := flag.String("data", "./data", "Data directory")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(*dataDir, "notes.db")
	database, err := db.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		secretBytes := make([]byte, 32)
		if _, err := rand.Read(secretBytes); err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(secretBytes)
		log.Printf("Generated JWT secret (set JWT_SECRET env var to persist sessions across restarts)")
	}

	c := cache.New()
	a := auth.New(jwtSecret)
	h := handlers.New(database, c, a)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Starting drift-notes server on %s", addr)

	if err := http.ListenAndServe(addr, handlers.Router(h, a)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
