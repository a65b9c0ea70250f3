package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
}

// TokenService signs and verifies the JWT pair. Token payloads carry only
// the user id; the auth middleware resolves the full user on every request.
type TokenService struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (t TokenService) HashPassword(raw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(raw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (t TokenService) VerifyPassword(raw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(raw)) == nil
}

func (t TokenService) CreatePair(userID string) (TokenPair, error) {
	access, exp, err := t.createToken(userID, "access", t.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := t.createToken(userID, "refresh", t.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: exp}, nil
}

func (t TokenService) createToken(userID, typ string, ttl time.Duration) (string, int64, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"iss": t.Issuer,
		"sub": userID,
		"typ": typ,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	return signed, exp.Unix(), err
}

// Subject parses a signed token of the given type and returns the user id.
func (t TokenService) Subject(tokenStr, typ string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer), jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", ErrUnauthorized("Token is not valid")
	}
	if claims["typ"] != typ {
		return "", ErrUnauthorized("Token is not valid")
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		return "", ErrUnauthorized("Token is not valid")
	}
	return userID, nil
}
