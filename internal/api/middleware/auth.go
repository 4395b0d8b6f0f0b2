package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moitinho/rifa-api/internal/api/handler/v1/response"
	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/pkg/jwthelper"
)

const (
	identityKey = "identity"
)

type Authenticator struct {
	signingKey []byte
}

func NewAuthenticator(signingKey string) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
	}
}

// VerifyJWT rejects requests without a valid bearer token.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			response.RenderErr(ctx, response.ErrMissingToken())
			ctx.Abort()
			return
		}

		claims, err := jwthelper.ParseToken(a.signingKey, token)
		if err != nil {
			response.RenderErr(ctx, response.ErrInvalidToken())
			ctx.Abort()
			return
		}

		ctx.Set(identityKey, domain.Authenticated(claims.UserID))
		ctx.Next()
	}
}

// SoftAuth tags the request as authenticated when a valid token is present
// and silently degrades to anonymous otherwise. It never rejects.
func (a *Authenticator) SoftAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity := domain.Anonymous()

		if token := bearerToken(ctx); token != "" {
			if claims, err := jwthelper.ParseToken(a.signingKey, token); err == nil {
				identity = domain.Authenticated(claims.UserID)
			}
		}

		ctx.Set(identityKey, identity)
		ctx.Next()
	}
}

// GetIdentity returns the identity tag set by VerifyJWT or SoftAuth.
func GetIdentity(ctx *gin.Context) domain.Identity {
	value, ok := ctx.Get(identityKey)
	if !ok {
		return domain.Anonymous()
	}

	identity, ok := value.(domain.Identity)
	if !ok {
		return domain.Anonymous()
	}

	return identity
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return parts[1]
}
