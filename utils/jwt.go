package utils

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var JWTSecret []byte

// InitJWTSecret loads the signing key from JWT_SECRET. A generated
// throwaway key is used when the variable is missing, which invalidates
// sessions on every restart, so production must set it.
func InitJWTSecret() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Println("JWT_SECRET not set, using an ephemeral key (sessions will not survive restarts)")
		secret = fmt.Sprintf("ephemeral-%d", time.Now().UnixNano())
	}
	JWTSecret = []byte(secret)
}

// GenerateToken issues a signed session token carrying the user id, role
// and (for operators) the gate it is restricted to.
func GenerateToken(userID, role, accessID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(12 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	if accessID != "" {
		claims["access_id"] = accessID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
