package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wellamo/mobile-bff/internal/utils"
	"github.com/wellamo/mobile-bff/internal/woocommerce"
	"github.com/wellamo/mobile-bff/internal/wordpress"
)

const testSecret = "test-secret-key-with-enough-length!!"

type authFixture struct {
	svc        AuthService
	users      *fakeUserRepo
	tokens     *fakeTokenRepo
	identity   *fakeIdentity
	commerce   *fakeCommerce
	jwtManager *utils.JWTManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	identity := newFakeIdentity()
	commerce := newFakeCommerce()
	jwtManager := utils.NewJWTManager(testSecret, 15*time.Minute, 30*24*time.Hour)

	identity.allow("anna@example.com", "s3cret", &wordpress.Identity{
		ID:          "17",
		Email:       "Anna@Example.com",
		Name:        "Anna",
		DisplayName: "Anna K",
	})
	commerce.customers[42] = &woocommerce.Customer{ID: 42, Email: "anna@example.com"}

	return &authFixture{
		svc:        NewAuthService(users, tokens, identity, commerce, jwtManager, bcrypt.MinCost, zap.NewNop()),
		users:      users,
		tokens:     tokens,
		identity:   identity,
		commerce:   commerce,
		jwtManager: jwtManager,
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "device-1", "10.0.0.1")
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "anna@example.com", resp.User.Email, "email is normalized")

	// Access token carries the commerce customer id
	claims, err := f.jwtManager.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.WooCustomerID)

	// Only a hash of the refresh token is stored, and it verifies
	require.Len(t, f.tokens.tokens, 1)
	record := f.tokens.tokens[0]
	assert.NotEqual(t, resp.RefreshToken, record.TokenHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(record.TokenHash), tokenDigest(resp.RefreshToken)))
	require.NotNil(t, record.DeviceID)
	assert.Equal(t, "device-1", *record.DeviceID)
}

func TestAuthService_Login_Idempotent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "device-1", "10.0.0.1")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "anna@example.com", "s3cret", "device-2", "10.0.0.2")
	require.NoError(t, err)

	// One user, two live sessions
	require.Len(t, f.users.users, 1)
	assert.Len(t, f.tokens.tokens, 2)

	for _, user := range f.users.users {
		assert.Equal(t, 2, user.LoginCount)
		assert.Equal(t, "Anna", user.Name, "profile untouched on re-login")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), "anna@example.com", "wrong", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, f.tokens.tokens)
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), "", "s3cret", "", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = f.svc.Login(context.Background(), "anna@example.com", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAuthService_Login_IdentityDown(t *testing.T) {
	f := newAuthFixture(t)
	f.identity.err = context.DeadlineExceeded

	_, err := f.svc.Login(context.Background(), "anna@example.com", "s3cret", "", "")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestAuthService_Login_NoCommerceCustomer(t *testing.T) {
	f := newAuthFixture(t)
	f.identity.allow("ghost@example.com", "pw", &wordpress.Identity{ID: "99", Email: "ghost@example.com"})

	_, err := f.svc.Login(context.Background(), "ghost@example.com", "pw", "", "")
	assert.ErrorIs(t, err, ErrUpstreamInconsistency)
}

func TestAuthService_Login_DuplicateEmailPrecedence(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "", "")
	require.NoError(t, err)

	// A different WordPress account claiming the same email is refused even
	// though its wp id is new
	f.identity.allow("anna.alt", "pw2", &wordpress.Identity{ID: "18", Email: "anna@example.com"})
	_, err = f.svc.Login(ctx, "anna.alt", "pw2", "", "")
	assert.ErrorIs(t, err, ErrUpstreamInconsistency)
	assert.Len(t, f.users.users, 1)
}

func TestAuthService_Refresh_NotConsumed(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "", "")
	require.NoError(t, err)

	// The same refresh token works repeatedly; only access tokens are minted
	for i := 0; i < 3; i++ {
		resp, err := f.svc.Refresh(ctx, login.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
	}
	assert.Len(t, f.tokens.tokens, 1, "no rotation, no new records")

	claims, err := f.jwtManager.ValidateAccessToken(mustRefresh(t, f.svc, login.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", claims.Email)
	assert.Equal(t, int64(42), claims.WooCustomerID)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "", "")
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "", "")
	require.NoError(t, err)

	// Validly signed for the same subject but never persisted
	other, err := f.jwtManager.GenerateRefreshToken(f.tokens.tokens[0].UserID)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, other)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Logout_RevocationIsFinal(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "device-1", "")
	require.NoError(t, err)
	other, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "device-2", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))

	// The revoked session is gone for good
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The other device is untouched
	_, err = f.svc.Refresh(ctx, other.RefreshToken)
	assert.NoError(t, err)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, login.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, "completely-unknown-token"))
}

func TestAuthService_ValidateToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, "anna@example.com", "s3cret", "", "")
	require.NoError(t, err)

	claims, err := f.svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", claims.Email)

	_, err = f.svc.ValidateToken(login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token must not pass as access token")

	_, err = f.svc.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func mustRefresh(t *testing.T, svc AuthService, token string) string {
	t.Helper()
	resp, err := svc.Refresh(context.Background(), token)
	require.NoError(t, err)
	return resp.AccessToken
}
