package passhash

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken токен не прошёл проверку подписи, срока или издателя.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig настройки выпуска и проверки токенов
type JWTConfig struct {
	SecretKey         string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// DefaultJWTConfig возвращает конфигурацию по умолчанию.
// Секрет обязан быть переопределён через auth.jwt_secret.
func DefaultJWTConfig() *JWTConfig {
	return &JWTConfig{
		SecretKey:         "change-me-in-production",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "techsel-auth",
	}
}

// Claims полезная нагрузка токена планировщика
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager выпускает и проверяет HS256-токены.
type JWTManager struct {
	config *JWTConfig
}

func NewJWTManager(config *JWTConfig) *JWTManager {
	if config == nil {
		config = DefaultJWTConfig()
	}
	return &JWTManager{config: config}
}

// GenerateAccessToken выпускает токен для пользователя планировщика.
func (m *JWTManager) GenerateAccessToken(userID, username, role string) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTokenExpiry)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken проверяет подпись, срок действия и издателя.
// Допустим только HS256: смена алгоритма в заголовке отвергается парсером.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(m.config.SecretKey), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
