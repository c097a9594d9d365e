package repo

import (
	"time"

	"github.com/google/uuid"
)

// Papéis aceitos no cadastro. A constraint fica na borda da aplicação;
// o banco guarda role_code como texto livre.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleHR       = "hr"
)

// ValidRole informa se o role_code pertence ao conjunto aceito.
func ValidRole(roleCode string) bool {
	switch roleCode {
	case RoleAdmin, RoleEmployee, RoleHR:
		return true
	}
	return false
}

// Usuario representa uma linha de app_user.
type Usuario struct {
	ID           uuid.UUID
	NomeCompleto string
	Email        string
	SenhaHash    *string
	RoleCode     string
	Ativo        bool
	DocumentoID  *string
	Telefone     *string
	CriadoEm     time.Time
	AtualizadoEm time.Time
}

// InsertUsuarioParams agrupa os campos necessários para o cadastro.
type InsertUsuarioParams struct {
	NomeCompleto string
	Email        string
	SenhaHash    string
	RoleCode     string
}
