package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// WebhookSigner проверяет подпись уведомлений платежного шлюза: base64 от
// HMAC-SHA256 по конкатенации метки времени и тела запроса.
type WebhookSigner struct {
	key string
}

func NewWebhookSigner(key string) *WebhookSigner {
	return &WebhookSigner{key: key}
}

func (s *WebhookSigner) Sign(timestamp string, body []byte) string {
	return base64.StdEncoding.EncodeToString(s.signHMAC(timestamp, body))
}

// Verify побайтно сравнивает переданную подпись с вычисленной. Пустая подпись
// или метка времени считаются неверными.
func (s *WebhookSigner) Verify(body []byte, timestamp, signature string) bool {
	if timestamp == "" || signature == "" {
		return false
	}

	return hmac.Equal([]byte(s.Sign(timestamp, body)), []byte(signature))
}

func (s *WebhookSigner) signHMAC(timestamp string, body []byte) []byte {
	h := hmac.New(sha256.New, []byte(s.key))
	h.Write([]byte(timestamp))
	h.Write(body)

	return h.Sum(nil)
}
