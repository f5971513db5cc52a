package main

import (
	"context"
	"log"
	"os"

	"grnseeds/adapters/ledger"
	"grnseeds/internal"
)

// migrate creates or upgrades the run ledger schema ahead of a batch, e.g. on a
// shared postgres instance.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <sqlite3|postgres> <dsn>")
	}

	driver, dsn := os.Args[1], os.Args[2]
	log.Printf("Migrating %s run ledger", driver)

	repo, err := ledger.Open(context.Background(), driver, dsn, internal.NewDefaultLogger())
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	defer repo.Close()

	log.Printf("Run ledger schema is up to date")
}
