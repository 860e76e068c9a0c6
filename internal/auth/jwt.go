// Package auth выдаёт и проверяет токены операторов, управляющих забегом.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength минимальная длина секрета подписи
const MinSecretLength = 32

var (
	// ErrInvalidToken возвращается для подделанных, просроченных и битых токенов
	ErrInvalidToken = errors.New("auth: недействительный токен")
	// ErrWeakSecret секрет короче MinSecretLength
	ErrWeakSecret = errors.New("auth: секрет короче 32 байт")
)

// Claims утверждения токена оператора
type Claims struct {
	Operator string `json:"operator"`
	CanReset bool   `json:"can_reset"` // Разрешён рестарт забега
	jwt.RegisteredClaims
}

// TokenManager подписывает и проверяет токены HS256
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenManager создаёт менеджер токенов. Пустой secret заменяется случайным:
// такие токены перестают действовать после перезапуска сервера.
func NewTokenManager(secret string, ttl time.Duration, issuer string) (*TokenManager, error) {
	var key []byte
	if secret == "" {
		key = make([]byte, MinSecretLength)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("генерация секрета: %w", err)
		}
	} else {
		key = []byte(secret)
	}
	if len(key) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &TokenManager{secret: key, ttl: ttl, issuer: issuer, now: time.Now}, nil
}

// Generate создаёт токен для оператора
func (m *TokenManager) Generate(operator string, canReset bool) (string, error) {
	now := m.now()
	claims := &Claims{
		Operator: operator,
		CanReset: canReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   operator,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate проверяет подпись, срок действия и издателя токена
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Fingerprint возвращает короткий отпечаток секрета подписи. По нему сверяют,
// что сервер и event-cli используют один секрет; сам секрет не раскрывается.
func (m *TokenManager) Fingerprint() string {
	sum := sha256.Sum256(m.secret)
	return hex.EncodeToString(sum[:4])
}

// GenerateSecureSecret возвращает случайный секрет в base64
func GenerateSecureSecret() (string, error) {
	b := make([]byte, MinSecretLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
