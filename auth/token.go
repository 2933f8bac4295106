package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenTTL = 24 * time.Hour

// Identity is the authenticated caller attached to each request.
type Identity struct {
	ID   string
	Name string
}

type Claims struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

var jwtSecret []byte

// Init sets the signing secret for the process. Call it once at startup
// with the secret from the loaded configuration.
func Init(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return errors.New("signing secret is empty")
	}
	jwtSecret = []byte(secret)
	return nil
}

func getJWTSecret() ([]byte, error) {
	if len(jwtSecret) == 0 {
		return nil, errors.New("signing secret is not configured")
	}
	return jwtSecret, nil
}

// GenerateToken signs a token carrying the user's id and display name,
// valid for one day.
func GenerateToken(ident Identity) (string, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		UserID: ident.ID,
		Name:   ident.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and verifies a token, returning the identity it carries.
func ValidateToken(tokenString string) (Identity, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return Identity{}, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid || claims.UserID == "" {
		return Identity{}, errors.New("invalid token")
	}

	return Identity{ID: claims.UserID, Name: claims.Name}, nil
}
