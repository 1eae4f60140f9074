// Package services contains server-side business logic: account management,
// the profile workflow, and product listing.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lojabox/lojabox/internal/common"
	"github.com/lojabox/lojabox/internal/dbx"
	"github.com/lojabox/lojabox/internal/server/auth"
	"github.com/lojabox/lojabox/internal/server/config"
	"github.com/lojabox/lojabox/internal/server/models"
	"github.com/lojabox/lojabox/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService provides authentication-related operations:
// - Register: create accounts
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
// - Logout: revoke a refresh token
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new account for email. A duplicate email surfaces as
// common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Email: email, Name: name, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return u, nil
}

// Login verifies the password against the stored bcrypt hash and, on success,
// returns a new TokenPair. Unknown emails and wrong passwords are both
// reported as common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("error searching user: %v", err)
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, user, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the given refresh token. Access tokens are left to expire.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)
	if err := repo.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %v", err)
	}
	return nil
}

func (s *UserService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, user *models.User, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
