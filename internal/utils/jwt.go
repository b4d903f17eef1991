package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel token errors
	"strconv"       // subject claim parsing
	"time"          // expiry arithmetic

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token verification errors.  ErrExpiredToken is distinguished from
// ErrInvalidToken so refresh handlers can report expiry precisely; both
// map to the same HTTP status.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Token is a signed HS256 JWT along with its expiry.  Access and refresh
// tokens share this shape but are signed with distinct secrets and TTLs.
type Token struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs a short-lived HS256 JWT for a user.
// The JWT carries standard claims: subject (sub), role, expiration (exp)
// and issued at (iat).
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (Token, error) {
	return sign(secret, userID, role, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs a long-lived HS256 JWT used to obtain
// new token pairs.  It must be signed with the refresh secret, never the
// access secret.  Only the SHA-256 hash of the serialized token is ever
// persisted; see HashRefreshRaw.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (Token, error) {
	return sign(secret, userID, "", time.Duration(ttlDays)*24*time.Hour)
}

func sign(secret string, userID uint64, role string, ttl time.Duration) (Token, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a signed token against a secret and
// returns the subject user id and expiry.  Expired tokens yield
// ErrExpiredToken; any other failure (bad signature, wrong algorithm,
// malformed claims) yields ErrInvalidToken.
func VerifyToken(secret, raw string) (uint64, time.Time, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, time.Time{}, ErrExpiredToken
		}
		return 0, time.Time{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return 0, time.Time{}, ErrInvalidToken
	}
	uid, ok := subjectID(claims)
	if !ok {
		return 0, time.Time{}, ErrInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, time.Time{}, ErrInvalidToken
	}
	return uid, exp.Time, nil
}

// subjectID extracts the numeric user id from the sub claim.  JWT numeric
// values decode as float64; numeric strings are also accepted.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
	switch v := claims["sub"].(type) {
	case float64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// HashRefreshRaw returns the SHA-256 hash of the serialized refresh token
// as a hex string.  Storing only the hash prevents attackers from using
// stolen database rows to refresh sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
