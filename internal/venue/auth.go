package venue

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Auth signs venue REST and private-WS requests with HMAC-SHA256, the BiFu
// shape named in the external-interfaces contract: headers
// Decode-MM-Auth-Access-Key / -Timestamp / -Signature, where the signature
// is hex(HMAC-SHA256(secret, message)).
type Auth struct {
	apiKey    string
	apiSecret string
}

// NewAuth builds a signer from an API key/secret pair.
func NewAuth(apiKey, apiSecret string) *Auth {
	return &Auth{apiKey: apiKey, apiSecret: apiSecret}
}

// buildHMAC computes hex(HMAC-SHA256(secret, message)).
func (a *Auth) buildHMAC(message string) string {
	mac := hmac.New(sha256.New, []byte(a.apiSecret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// WSHeaders returns the signed headers for opening the private WS
// connection at path (e.g. "/api/v1/private/ws"). Message format:
// "<path>|<timestamp_ms>".
func (a *Auth) WSHeaders(path string) map[string]string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	message := path + "|" + ts
	return map[string]string{
		"Decode-MM-Auth-Access-Key": a.apiKey,
		"Decode-MM-Auth-Timestamp":  ts,
		"Decode-MM-Auth-Signature":  a.buildHMAC(message),
	}
}

// RESTHeaders returns signed headers for a REST request. Message format:
// "<method><path><timestamp_ms>[<body>]", hex-encoded per the BiFu
// convention.
func (a *Auth) RESTHeaders(method, path, body string) map[string]string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	message := method + path + ts
	if body != "" {
		message += body
	}
	return map[string]string{
		"Decode-MM-Auth-Access-Key": a.apiKey,
		"Decode-MM-Auth-Timestamp":  ts,
		"Decode-MM-Auth-Signature":  a.buildHMAC(message),
	}
}

// Pong builds the keepalive reply to an inbound {"type":"ping"} message:
// {"type":"pong","time":"<now_s>"}.
func Pong() map[string]string {
	return map[string]string{
		"type": "pong",
		"time": fmt.Sprintf("%d", time.Now().Unix()),
	}
}
