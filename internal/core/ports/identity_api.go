package ports

import (
	"context"

	"github.com/snapmatch/client-engine/internal/core/domain"
)

// IdentityAPI is the authentication surface of the backend consumed by the
// engine. Me resolves a bearer token to the server's canonical view of the
// principal; the returned Identity carries no token (refresh never mints
// one — callers keep the token they presented).
type IdentityAPI interface {
	Login(ctx context.Context, email, password string) (domain.Identity, error)
	Me(ctx context.Context, token string) (domain.Identity, error)
	Logout(ctx context.Context, token string) error
}
