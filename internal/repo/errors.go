package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrEmailDuplicado é retornado quando a constraint de unicidade de
	// e-mail é violada. A violação no banco é o sinal autoritativo; a
	// consulta prévia no serviço é só atalho.
	ErrEmailDuplicado = errors.New("email já cadastrado")
)
