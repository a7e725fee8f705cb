package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("JWT secret is not set")
)

const DefaultTokenTTL = 24 * time.Hour

// TokenIssuer signs and checks guest player tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// NewGuest issues a token for a fresh player id.
func (i *TokenIssuer) NewGuest() (playerID, token string, err error) {
	playerID = uuid.NewString()
	token, err = i.Generate(playerID)
	return playerID, token, err
}

func (i *TokenIssuer) Generate(playerID string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"player_id": playerID,
		"exp":       now.Add(i.ttl).Unix(),
		"iat":       now.Unix(),
		"nbf":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse returns the player id of a valid token.
func (i *TokenIssuer) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))

	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	playerID, ok := claims["player_id"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	if _, err := uuid.Parse(playerID); err != nil {
		return "", ErrInvalidToken
	}

	return playerID, nil
}
