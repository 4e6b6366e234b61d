package security

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// maxHashMemory ограничивает параметр m хеша из конфигурации (КиБ), чтобы
// испорченное значение ADMIN_PASSWORD_HASH не приводило к исчерпанию памяти.
const maxHashMemory = 1 << 20

var ErrEmptyPassword = errors.New("empty operator password")

// ArgonHasher хеширует и проверяет пароль оператора пункта печати (Argon2id).
// Хеш хранится в переменной ADMIN_PASSWORD_HASH в формате
// $argon2id$v=19$m=...,t=...,p=...$<соль>$<хеш>.
type ArgonHasher struct {
	cfg *HashConfig
}

type HashConfig struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

type operatorHash struct {
	cfg  HashConfig
	salt []byte
	key  []byte
}

func NewArgonHasher(cfg *HashConfig) *ArgonHasher {
	return &ArgonHasher{cfg: cfg}
}

func DefaultHashConfig() *HashConfig {
	return &HashConfig{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
	}
}

// Hash возвращает хеш пароля оператора для ADMIN_PASSWORD_HASH.
func (h *ArgonHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt, err := RandomBytes(16)
	if err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Threads, h.cfg.KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.cfg.Memory,
		h.cfg.Time,
		h.cfg.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Compare проверяет пароль оператора по хешу из конфигурации. Хеш другого алгоритма,
// версии или с недопустимыми параметрами считается несовпадающим.
func (h *ArgonHasher) Compare(password, hash string) bool {
	oh, err := parseOperatorHash(hash)
	if err != nil {
		return false
	}

	key := argon2.IDKey([]byte(password), oh.salt, oh.cfg.Time, oh.cfg.Memory, oh.cfg.Threads, uint32(len(oh.key)))

	return subtle.ConstantTimeCompare(oh.key, key) == 1
}

func parseOperatorHash(hash string) (operatorHash, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return operatorHash{}, errors.New("not an argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return operatorHash{}, fmt.Errorf("unsupported argon2 version %q", parts[2])
	}

	oh := operatorHash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &oh.cfg.Memory, &oh.cfg.Time, &oh.cfg.Threads); err != nil {
		return operatorHash{}, err
	}

	if oh.cfg.Memory == 0 || oh.cfg.Memory > maxHashMemory || oh.cfg.Time == 0 || oh.cfg.Threads == 0 {
		return operatorHash{}, fmt.Errorf("invalid argon2 parameters %q", parts[3])
	}

	var err error
	if oh.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return operatorHash{}, err
	}

	if oh.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return operatorHash{}, err
	}

	if len(oh.key) == 0 {
		return operatorHash{}, errors.New("empty argon2 key")
	}

	return oh, nil
}
