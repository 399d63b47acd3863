package auth

import (
	"context"

	"github.com/Myrhythm0106/myrhythmapp-sub012/internal"
)

// Provider validates bearer tokens. Authentication itself lives in an
// external service; this subsystem only resolves a token to a user.
type Provider interface {
	ValidateTokenLocal(token string) (*internal.User, error)
	ValidateTokenRemote(ctx context.Context, token string) (*internal.User, error)
}
