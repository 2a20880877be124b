package handlers_test

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/harborml/berth/cmd/berthd/handlers"
	httptestutil "github.com/harborml/berth/internal/testutils/http"
	"github.com/harborml/berth/pkg/domain"
	"github.com/harborml/berth/pkg/domain/auth"
	"github.com/harborml/berth/pkg/utils/try"
)

func TestIdentify(t *testing.T) {
	signKey := []byte("test-sign-key-of-berth")

	sign := func(t *testing.T, key []byte, claims auth.UserClaims) string {
		t.Helper()
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		return try.To(tok.SignedString(key)).OrFatal(t)
	}

	t.Run("it passes a request with a valid token and exposes the requester", func(t *testing.T) {
		token := sign(t, signKey, auth.UserClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "ops-bravo",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "admin",
		})

		e := echo.New()
		c, _ := httptestutil.Get(
			e, "/api/instances/",
			httptestutil.WithHeader("Authorization", "Bearer "+token),
		)

		nextCalled := false
		var actual domain.UserContext
		next := func(c echo.Context) error {
			nextCalled = true
			requester, ok := handlers.Requester(c)
			if !ok {
				t.Error("requester is not stored in the context")
			}
			actual = requester
			return nil
		}

		if err := handlers.Identify(signKey)(next)(c); err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}
		if !nextCalled {
			t.Fatal("the next handler has not been called")
		}

		expected := domain.UserContext{OwnerId: "ops-bravo", Role: domain.RoleAdmin}
		if actual != expected {
			t.Errorf("unmatch requester: (actual, expected) = (%+v, %+v)", actual, expected)
		}
	})

	for name, testcase := range map[string]struct {
		authorization func(t *testing.T) string
	}{
		"it rejects a request without an Authorization header": {
			authorization: func(*testing.T) string { return "" },
		},
		"it rejects a non-bearer Authorization header": {
			authorization: func(*testing.T) string { return "Basic dXNlcjpwYXNz" },
		},
		"it rejects a garbage bearer token": {
			authorization: func(*testing.T) string { return "Bearer not.a.token" },
		},
		"it rejects a token signed with another key": {
			authorization: func(t *testing.T) string {
				return "Bearer " + sign(t, []byte("not-the-sign-key"), auth.UserClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "user-alpha",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				})
			},
		},
		"it rejects a token signed with a non-HMAC algorithm": {
			authorization: func(t *testing.T) string {
				key := try.To(rsa.GenerateKey(rand.Reader, 2048)).OrFatal(t)
				tok := jwt.NewWithClaims(jwt.SigningMethodRS256, auth.UserClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "user-alpha",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				})
				return "Bearer " + try.To(tok.SignedString(key)).OrFatal(t)
			},
		},
		"it rejects an expired token": {
			authorization: func(t *testing.T) string {
				return "Bearer " + sign(t, signKey, auth.UserClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "user-alpha",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
					},
				})
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			opts := []httptestutil.RequestOption{}
			if a := testcase.authorization(t); a != "" {
				opts = append(opts, httptestutil.WithHeader("Authorization", a))
			}

			e := echo.New()
			c, _ := httptestutil.Get(e, "/api/instances/", opts...)

			next := func(c echo.Context) error {
				t.Error("the next handler should not be called")
				return nil
			}

			err := handlers.Identify(signKey)(next)(c)
			if herr := new(echo.HTTPError); !errors.As(err, &herr) {
				t.Fatalf("unmatch: error type: %+v is not echo.HTTPError", err)
			} else if herr.Code != http.StatusUnauthorized {
				t.Fatalf("unmatch: status code: %d != %d", herr.Code, http.StatusUnauthorized)
			}
		})
	}
}
