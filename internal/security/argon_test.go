package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgonHasher_Hash(t *testing.T) {
	hasher := NewArgonHasher(DefaultHashConfig())

	first, err := hasher.Hash("operator-secret")
	require.NoError(t, err, "создание хеша пароля оператора")
	assert.True(t, strings.HasPrefix(first, "$argon2id$v=19$m=65536,t=1,p=4$"), "формат ADMIN_PASSWORD_HASH")

	second, err := hasher.Hash("operator-secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "каждый хеш получает свою соль")

	_, err = hasher.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword, "пустой пароль оператора")
}

func TestArgonHasher_Compare(t *testing.T) {
	hasher := NewArgonHasher(DefaultHashConfig())
	hash, err := hasher.Hash("operator-secret")
	require.NoError(t, err)
	parts := strings.Split(hash, "$")

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{
			name:     "верный пароль оператора",
			password: "operator-secret",
			hash:     hash,
			want:     true,
		},
		{
			name:     "неверный пароль",
			password: "operator-secreT",
			hash:     hash,
		},
		{
			name:     "хеш не задан",
			password: "operator-secret",
		},
		{
			name:     "другой алгоритм",
			password: "operator-secret",
			hash:     strings.Replace(hash, "argon2id", "argon2i", 1),
		},
		{
			name:     "другая версия",
			password: "operator-secret",
			hash:     strings.Replace(hash, "v=19", "v=16", 1),
		},
		{
			name:     "недопустимый объем памяти",
			password: "operator-secret",
			hash:     strings.Replace(hash, "m=65536", "m=4294967295", 1),
		},
		{
			name:     "поврежденная соль",
			password: "operator-secret",
			hash:     strings.Join([]string{"", parts[1], parts[2], parts[3], "!!", parts[5]}, "$"),
		},
		{
			name:     "усеченный хеш",
			password: "operator-secret",
			hash:     strings.Join(parts[:5], "$"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.Compare(tt.password, tt.hash))
		})
	}
}
