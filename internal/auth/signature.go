package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureClaims is the payload the session engine expects in a join signature.
type SignatureClaims struct {
	AppKey   string `json:"app_key"`
	Topic    string `json:"tpc"`
	RoleType int    `json:"role_type"`
	jwt.RegisteredClaims
}

var (
	ErrMissingKey   = errors.New("sdk key and secret are required")
	ErrTopicInvalid = errors.New("signature topic does not match")
)

type Signer struct {
	key    string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(key, secret string, ttl time.Duration) (*Signer, error) {
	if key == "" || secret == "" {
		return nil, ErrMissingKey
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Signer{key: key, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign issues an HS256 token for topic. iat is backdated 30s to absorb clock skew.
func (s *Signer) Sign(topic string, role int) (string, error) {
	iat := s.now().Add(-30 * time.Second)
	claims := SignatureClaims{
		AppKey:   s.key,
		Topic:    topic,
		RoleType: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	return signed, nil
}

// Verify parses a token signed by this signer and checks it targets topic.
func (s *Signer) Verify(tokenString, topic string) (*SignatureClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SignatureClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SignatureClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Topic != topic {
		return nil, ErrTopicInvalid
	}
	return claims, nil
}
