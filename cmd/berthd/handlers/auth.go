package handlers

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/harborml/berth/pkg/api/types/errors"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/auth"
)

// RequesterKey is the context key under which Identify stores the verified requester.
const RequesterKey = "berth/requester"

// Identify verifies the bearer token of each request and stores the
// requester in the request context, to be read back with Requester.
//
// Requests without a token, or with a token which does not verify,
// are rejected with 401.
func Identify(signKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return apierr.Unauthorized(
					`set your access token in the "Authorization: Bearer" header`, nil,
				)
			}

			requester, err := auth.VerifyToken(signKey, token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					return apierr.Unauthorized("get a new access token and retry", err)
				}
				return apierr.InternalServerError(err)
			}

			c.Set(RequesterKey, requester)
			return next(c)
		}
	}
}

// Requester returns the verified user of the request.
//
// It yields nothing unless the request has passed Identify.
func Requester(c echo.Context) (domain.UserContext, bool) {
	requester, ok := c.Get(RequesterKey).(domain.UserContext)
	return requester, ok
}
