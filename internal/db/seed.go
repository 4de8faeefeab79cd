// internal/db/seed.go
package db

import (
    "database/sql"

    "go.uber.org/zap"

    "github.com/unclebandit/outreach-backend/internal/model"
)

// EmployeeSeedData is the demo recipient list loaded on first start.
var EmployeeSeedData = []model.Employee{
    {
        Email:   "nickcar712@gmail.com",
        Name:    "Nick Mecklenburg",
        Company: "Microsoft",
        Context: "Tech lead at CoreAI post-training, hill-climbing on benchmarks like browsecomp, swebench-verified, etc. Participant at Supabase Select Hackathon.",
    },
    {
        Email:   "cjache@berkeley.edu",
        Name:    "Cjache Kang",
        Company: "CloudCruise",
        Context: "Engineer #1 at CloudCruise, a YC company. Works on prompting and AI applications for browser automations.",
    },
}

// SeedEmployees inserts the demo employees when the table is empty.
func SeedEmployees(conn *sql.DB, log *zap.Logger) error {
    var count int
    if err := conn.QueryRow(`SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
        return err
    }
    if count > 0 {
        log.Info("Employees table already populated; skipping seed")
        return nil
    }

    for _, emp := range EmployeeSeedData {
        _, err := conn.Exec(
            `INSERT INTO employees (email, name, company, context) VALUES ($1, $2, $3, $4)
             ON CONFLICT (email) DO NOTHING`,
            emp.Email, emp.Name, emp.Company, emp.Context,
        )
        if err != nil {
            return err
        }
    }

    log.Info("Seeded employee records", zap.Int("count", len(EmployeeSeedData)))
    return nil
}
