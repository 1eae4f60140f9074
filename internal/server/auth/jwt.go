// Package auth issues and verifies the HS256 access tokens that carry a
// user's session between the HTTP layer and the services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lojabox/lojabox/internal/common"
	"github.com/lojabox/lojabox/internal/server/models"
)

// Claims extends the registered JWT claims with the two session attributes
// the profile workflow needs: the user identifier and the account email.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
	Email  string
}

// GenerateToken mints a signed access token for the given user.
func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secretKey)
}

// SessionFromToken verifies tokenString and rebuilds the Session it carries.
// Expired or tampered tokens yield common.ErrInvalidToken.
func SessionFromToken(tokenString string, secretKey []byte) (*models.Session, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return &models.Session{UserID: claims.UserID, Email: claims.Email}, nil
}
