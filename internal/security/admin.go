package security

import "crypto/subtle"

// AdminAuthenticator проверяет учетные данные администратора пункта печати.
type AdminAuthenticator struct {
	login        string
	passwordHash string
	comparer     PasswordComparer
}

type PasswordComparer interface {
	Compare(password, hash string) bool
}

func NewAdminAuthenticator(login, passwordHash string, c PasswordComparer) *AdminAuthenticator {
	return &AdminAuthenticator{
		login:        login,
		passwordHash: passwordHash,
		comparer:     c,
	}
}

// Authenticate возвращает true, если логин совпадает с настроенным и пароль
// соответствует хэшу. Без настроенного хэша доступ запрещен.
func (a *AdminAuthenticator) Authenticate(login, password string) bool {
	if a.passwordHash == "" {
		return false
	}

	loginOK := subtle.ConstantTimeCompare([]byte(login), []byte(a.login)) == 1
	passwordOK := a.comparer.Compare(password, a.passwordHash)

	return loginOK && passwordOK
}
