package auth

import (
	"errors"
	"fmt"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/harborml/berth/pkg/domain"
)

var ErrInvalidToken error = errors.New("invalid token")

// Claims carried by berth access tokens.
//
// The subject is the owner id. The role claim is optional;
// tokens without it are plain users.
type UserClaims struct {
	jwt.RegisteredClaims

	// private claims
	Role string `json:"berth/role,omitempty"`
}

// VerifyToken verifies a JWS (JSON Web Signature) token and returns who it stands for.
//
// # Args
//
// - secret: shared HMAC secret the token should be signed with
//
// - token: JWT token string
//
// # Returns
//
// - UserContext: owner id (from the subject claim) and role
//
// - error: [ErrInvalidToken] when the token is malformed, signed with
// another algorithm or key, expired or otherwise unverifiable,
// or any other errors from [jwt.ParseWithClaims]
func VerifyToken(secret []byte, token string) (domain.UserContext, error) {
	claims := &UserClaims{}
	if _, err := jwt.ParseWithClaims(
		token, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return domain.UserContext{}, errors.Join(ErrInvalidToken, err)
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return domain.UserContext{}, errors.Join(ErrInvalidToken, err)
		}
		if errors.Is(err, jwt.ErrTokenUnverifiable) {
			return domain.UserContext{}, errors.Join(ErrInvalidToken, err)
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.UserContext{}, errors.Join(ErrInvalidToken, err)
		}
		return domain.UserContext{}, err
	}

	if claims.Subject == "" {
		return domain.UserContext{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	role := domain.RoleUser
	if claims.Role != "" {
		r, err := domain.AsRole(claims.Role)
		if err != nil {
			return domain.UserContext{}, errors.Join(ErrInvalidToken, err)
		}
		role = r
	}

	return domain.UserContext{OwnerId: claims.Subject, Role: role}, nil
}

// Authorize tells whether the requester may see or stop an instance of the owner.
//
// Owners reach their own instances, admins reach everyone's.
//
// # Returns
//
// - error: nil when allowed, ErrAccessDenied otherwise
func Authorize(requester domain.UserContext, ownerId string) error {
	if requester.Role.IsAdmin() {
		return nil
	}
	if requester.OwnerId == ownerId {
		return nil
	}
	return domain.ErrAccessDenied
}
