package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopstack/ecommerce-api/models"
)

// IssueToken signs a token bound to the given user. Claims mirror what the
// middleware later reads back out: user_id, username and role.
func IssueToken(secret string, user *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
