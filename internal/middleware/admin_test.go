package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Authenticate(login, password string) bool {
	args := m.Called(login, password)

	return args.Bool(0)
}

func TestAdminAuth(t *testing.T) {
	var (
		r             = chi.NewRouter()
		path          = "/"
		authenticator = &AuthenticatorMock{}
	)

	authenticator.On("Authenticate", "admin", "secret").Return(true).Once()
	authenticator.On("Authenticate", "admin", "wrong").Return(false).Once()
	r.Use(AdminAuth(authenticator))
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ts := httptest.NewServer(r)
	defer ts.Close()

	tests := []struct {
		name           string
		login          string
		password       string
		withAuth       bool
		wantStatusCode int
	}{
		{
			name:           "успешная проверка учетных данных",
			login:          "admin",
			password:       "secret",
			withAuth:       true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "неверный пароль",
			login:          "admin",
			password:       "wrong",
			withAuth:       true,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "нет заголовка Authorization",
			wantStatusCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
			require.NoError(t, err)
			if tt.withAuth {
				req.SetBasicAuth(tt.login, tt.password)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
			assert.Equal(t, tt.wantStatusCode, resp.StatusCode)
			if tt.wantStatusCode == http.StatusUnauthorized {
				assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
			}
		})
	}
	authenticator.AssertExpectations(t)
}
