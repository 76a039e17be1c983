package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Signer produces the X-Signature header for keyword tool requests
type Signer struct {
	secret []byte
}

// NewSigner creates a signer for the given secret key
func NewSigner(secretKey string) *Signer {
	return &Signer{secret: []byte(secretKey)}
}

// Sign returns base64(HMAC-SHA256(secret, "timestamp.method.uri"))
func (s *Signer) Sign(timestamp, method, uri string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(fmt.Sprintf("%s.%s.%s", timestamp, method, uri)))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
