package repository

import (
    "database/sql"

    "github.com/unclebandit/outreach-backend/internal/model"
)

// EmployeeRepositoryInterface defines methods used by services
type EmployeeRepositoryInterface interface {
    PickRandom(limit int) ([]model.Employee, error)
    ListByCampaign(campaignID int) ([]model.Employee, error)
    GetByID(id int) (*model.Employee, error)
}

// EmployeeRepository is the concrete implementation
type EmployeeRepository struct {
    DB *sql.DB
}

// PickRandom fetches up to limit employees in random order. Fewer rows than
// requested means the table is too small; the service decides what to do.
func (r *EmployeeRepository) PickRandom(limit int) ([]model.Employee, error) {
    query := `
        SELECT id, email, name, company, context
        FROM employees
        ORDER BY RANDOM()
        LIMIT $1
    `
    rows, err := r.DB.Query(query, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    return scanEmployees(rows)
}

// ListByCampaign fetches the employees assigned to a campaign
func (r *EmployeeRepository) ListByCampaign(campaignID int) ([]model.Employee, error) {
    query := `
        SELECT e.id, e.email, e.name, e.company, e.context
        FROM employees e
        JOIN campaign_members m ON m.employee_id = e.id
        WHERE m.campaign_id = $1
        ORDER BY e.id
    `
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    return scanEmployees(rows)
}

// GetByID fetches an employee by ID
func (r *EmployeeRepository) GetByID(id int) (*model.Employee, error) {
    query := `
        SELECT id, email, name, company, context
        FROM employees
        WHERE id = $1
    `
    var e model.Employee
    err := r.DB.QueryRow(query, id).Scan(&e.ID, &e.Email, &e.Name, &e.Company, &e.Context)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil // not found
        }
        return nil, err
    }
    return &e, nil
}

func scanEmployees(rows *sql.Rows) ([]model.Employee, error) {
    employees := []model.Employee{}
    for rows.Next() {
        var e model.Employee
        if err := rows.Scan(&e.ID, &e.Email, &e.Name, &e.Company, &e.Context); err != nil {
            return nil, err
        }
        employees = append(employees, e)
    }
    return employees, rows.Err()
}

var _ EmployeeRepositoryInterface = (*EmployeeRepository)(nil)
