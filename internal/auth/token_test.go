package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-portal/internal/domain"
	apperrors "github.com/spec-kit/complaint-portal/pkg/util/errorutil"
)

func TestTokenManagerVerify(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tm := NewTokenManager("secret", time.Hour)
	tm.now = func() time.Time { return now }

	issued, err := tm.GenerateToken("admin-1", domain.DomainICC)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt)

	t.Run("valid token yields identity", func(t *testing.T) {
		identity, err := tm.Verify(issued.Value)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", identity.AdminID)
		assert.Equal(t, domain.DomainICC, identity.Domain)
		assert.Equal(t, now, identity.IssuedAt)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		later := NewTokenManager("secret", time.Hour)
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err := later.Verify(issued.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign signature is rejected", func(t *testing.T) {
		other := NewTokenManager("other-secret", time.Hour)
		other.now = tm.now
		_, err := other.Verify(issued.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("malformed and empty tokens are rejected", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-jwt", strings.Repeat("a.", 3)} {
			_, err := tm.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
		}
	})

	t.Run("unknown domain claim is rejected", func(t *testing.T) {
		claims := &Claims{
			AdminID: "admin-1",
			Domain:  domain.Domain("hostel"),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tm.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token without expiry is rejected", func(t *testing.T) {
		claims := &Claims{AdminID: "admin-1", Domain: domain.DomainLab}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tm.Verify(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NotContains(t, hash, "hunter22")
	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.Error(t, ComparePassword(hash, "hunter23"))
}

func TestRequireBearer(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/", RequireBearer(), func(c *fiber.Ctx) error {
		session, ok := SessionFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(session.Token)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing", header: "", status: fiber.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: fiber.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", status: fiber.StatusUnauthorized},
		{name: "bearer", header: "bearer tok-123", status: fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
