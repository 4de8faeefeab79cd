//cmd/seeder/main.go
package main

import (
    "fmt"
    "log"
    "os"

    _ "github.com/lib/pq"

    "github.com/unclebandit/outreach-backend/internal/config"
    "github.com/unclebandit/outreach-backend/internal/db"
    "github.com/unclebandit/outreach-backend/internal/observability"
)

func main() {
    cfg := config.Load()

    logger, err := observability.NewLogger(cfg.Logger)
    if err != nil {
        log.Fatalf("failed to build logger: %v", err)
    }
    defer logger.Sync()

    conn, err := db.Connect(cfg.DB, logger)
    if err != nil {
        log.Fatal(err)
    }
    defer conn.Close()

    if err := db.EnsureSchema(conn); err != nil {
        log.Fatal(err)
    }

    if err := db.SeedEmployees(conn, logger); err != nil {
        log.Fatal(err)
    }

    // Extra SQL seed files are optional and applied as-is.
    for _, file := range []string{"seed/employees.sql"} {
        content, err := os.ReadFile(file)
        if err != nil {
            if os.IsNotExist(err) {
                continue
            }
            log.Fatalf("failed to read %s: %v", file, err)
        }

        if _, err := conn.Exec(string(content)); err != nil {
            log.Fatalf("failed to execute %s: %v", file, err)
        }
        fmt.Printf("Seeded: %s\n", file)
    }

    fmt.Println("Database seeding completed successfully!")
}
