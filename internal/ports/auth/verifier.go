package auth

import "context"

// Verifier verifica un token y devuelve la identidad del staff o error.
type Verifier interface {
	Verify(ctx context.Context, token string) (Staff, error)
}
