// internal/model/employee.go
package model

type Employee struct {
    ID      int    `db:"id" json:"id"`
    Email   string `db:"email" json:"email"`
    Name    string `db:"name" json:"name"`
    Company string `db:"company" json:"company"`
    Context string `db:"context" json:"context"`
}
