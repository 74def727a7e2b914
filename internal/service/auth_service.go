package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/wellamo/mobile-bff/internal/domain"
	"github.com/wellamo/mobile-bff/internal/dto"
	"github.com/wellamo/mobile-bff/internal/repository"
	"github.com/wellamo/mobile-bff/internal/utils"
	"github.com/wellamo/mobile-bff/internal/wordpress"
)

// authService implements AuthService. Credential validation is delegated to
// WordPress; this service owns session issuance and revocation.
type authService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	identity   IdentityProvider
	commerce   CommerceAPI
	jwtManager *utils.JWTManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	identity IdentityProvider,
	commerce CommerceAPI,
	jwtManager *utils.JWTManager,
	bcryptCost int,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		identity:   identity,
		commerce:   commerce,
		jwtManager: jwtManager,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login validates credentials against WordPress, resolves the WooCommerce
// customer, mirrors the user locally and issues a token pair. The refresh
// token plaintext is returned exactly once; only its hash is persisted.
func (s *authService) Login(ctx context.Context, identifier, password, deviceID, ip string) (*dto.LoginResponse, error) {
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: identifier and password are required", ErrInvalidRequest)
	}

	identity, err := s.identity.Authenticate(ctx, identifier, password)
	if err != nil {
		if errors.Is(err, wordpress.ErrRejected) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	email := utils.SanitizeEmail(identity.Email)

	customer, err := s.commerce.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}
	if customer == nil {
		// A WordPress account without a store customer cannot use the app
		return nil, fmt.Errorf("%w: no commerce customer for account", ErrUpstreamInconsistency)
	}

	user, err := s.upsertUser(ctx, identity, email, ip)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	tokenHash, err := s.hashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	record := &domain.RefreshToken{
		UserID:        user.ID,
		TokenHash:     tokenHash,
		WooCustomerID: customer.ID,
		UserEmail:     user.Email,
		ExpiresAt:     time.Now().Add(s.jwtManager.GetRefreshTokenExpiry()),
	}
	if deviceID != "" {
		record.DeviceID = &deviceID
	}

	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID),
		zap.Int64("woo_customer_id", customer.ID))

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.jwtManager.GetAccessTokenExpiry(),
		User: dto.UserInfo{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			DisplayName: user.DisplayName,
		},
	}, nil
}

// upsertUser mirrors the WordPress identity into app_users. Known users only
// get their login recorded; profile fields are never overwritten.
func (s *authService) upsertUser(ctx context.Context, identity *wordpress.Identity, email, ip string) (*domain.AppUser, error) {
	user, err := s.userRepo.GetByWPUserID(ctx, identity.ID)
	if err == nil {
		if err := s.userRepo.RecordLogin(ctx, user.ID, ip); err != nil {
			// Login bookkeeping must not block the login itself
			s.logger.Warn("failed to record login", zap.String("user_id", user.ID), zap.Error(err))
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Email uniqueness takes precedence: an email already owned by a
	// different WordPress account rejects the new one.
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already linked to another account", ErrUpstreamInconsistency)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	now := time.Now()
	user = &domain.AppUser{
		WPUserID:    identity.ID,
		Email:       email,
		Name:        identity.Name,
		DisplayName: identity.DisplayName,
		LoginCount:  1,
		LastLoginAt: &now,
		Status:      domain.StatusActive,
	}
	if ip != "" {
		user.LastLoginIP = &ip
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: email already linked to another account", ErrUpstreamInconsistency)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("created app user",
		zap.String("user_id", user.ID),
		zap.String("wp_user_id", user.WPUserID))

	return user, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is not rotated and its expiry is not extended; other devices'
// sessions are untouched.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	tokens, err := s.tokenRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh tokens: %w", err)
	}

	record := s.matchToken(tokens, refreshToken)
	if record == nil {
		return nil, fmt.Errorf("%w: token revoked or unknown", ErrInvalidToken)
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(userID, record.UserEmail, record.WooCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.jwtManager.GetAccessTokenExpiry(),
	}, nil
}

// Logout revokes the session the presented refresh token belongs to. It
// succeeds even when no live session matches, so retries and stale clients
// never see an error and nothing is leaked about token validity.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokens, err := s.tokenRepo.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load refresh tokens: %w", err)
	}

	record := s.matchToken(tokens, refreshToken)
	if record == nil {
		return nil
	}

	if err := s.tokenRepo.Revoke(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Raced with another logout; same outcome
			return nil
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info("session revoked", zap.String("user_id", record.UserID))
	return nil
}

// ValidateToken verifies an access token and returns its claims
func (s *authService) ValidateToken(tokenString string) (*domain.AccessClaims, error) {
	claims, err := s.jwtManager.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	return claims, nil
}

// matchToken finds the stored record the plaintext verifies against, if any
func (s *authService) matchToken(tokens []*domain.RefreshToken, plaintext string) *domain.RefreshToken {
	digest := tokenDigest(plaintext)
	for _, token := range tokens {
		if bcrypt.CompareHashAndPassword([]byte(token.TokenHash), digest) == nil {
			return token
		}
	}
	return nil
}

// hashToken bcrypt-hashes a refresh token for storage. The plaintext is
// pre-digested with SHA-256 because bcrypt only reads the first 72 bytes and
// a signed token is far longer than that.
func (s *authService) hashToken(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(tokenDigest(plaintext), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func tokenDigest(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(hex.EncodeToString(sum[:]))
}
