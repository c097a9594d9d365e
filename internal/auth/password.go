package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes é o limite de entrada do bcrypt. Senhas maiores devem
// ser rejeitadas antes de chegar ao hasher.
const MaxPasswordBytes = 72

// ErrSenhaMuitoLonga é retornado quando a senha excede MaxPasswordBytes.
var ErrSenhaMuitoLonga = errors.New("senha excede 72 bytes")

// Hash gera um hash bcrypt (algoritmo, custo e salt ficam embutidos no
// próprio hash, então a verificação não depende de estado externo).
func Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrSenhaMuitoLonga
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compara a senha com o hash bcrypt armazenado.
func Verify(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
