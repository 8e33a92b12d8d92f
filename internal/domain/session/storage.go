package session

import "context"

// TokenKey es la única clave que se guarda en el storage durable.
const TokenKey = "token"

// TokenStorage es el slot durable del bearer token de un cliente
// (cookie de browser en el BFF, archivo en el CLI).
// Load devuelve "" si no hay token guardado.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// StorageFactory devuelve el storage de un cliente (scope = id de sesión del browser).
type StorageFactory func(scope string) TokenStorage
