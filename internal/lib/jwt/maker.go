// Package jwt реализует выпуск и проверку JWT токенов доступа.
//
// В токен кладётся только идентификатор пользователя (sub), роли
// резолвятся из хранилища при каждом запросе.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для выпуска и разбора JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя.
	GenerateToken(userID int64) (string, error)
	// ParseToken проверяет подпись и срок действия токена.
	ParseToken(tokenStr string) (*CustomClaims, error)
	// TTL возвращает время жизни выпускаемых токенов.
	TTL() time.Duration
}

// MakerImpl реализует Maker на HS256 с общим секретом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// TTL возвращает время жизни токена.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
