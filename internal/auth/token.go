// Package auth implements the bearer-credential contract: tokens are issued
// by the auth provider and validated here without a network round trip.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBadToken   = errors.New("bad token")
	ErrBadSig     = errors.New("invalid signature")
	ErrExpired    = errors.New("expired")
	ErrBadPayload = errors.New("bad payload")
)

// Verifier validates a bearer credential and returns the subject it was
// issued to.
type Verifier interface {
	Verify(token string) (uuid.UUID, error)
}

// Bearer issues and validates HMAC-signed bearer tokens of the form
// base64(userID|expiryUnix) + "." + base64(signature).
type Bearer struct {
	Secret []byte
}

// Sign: use URL-safe base64 WITH padding (clearer in logs and headers)
func (b Bearer) Sign(userID uuid.UUID, exp time.Time) string {
	msg := userID.String() + "|" + strconv.FormatInt(exp.Unix(), 10)
	mac := hmac.New(sha256.New, b.Secret)
	mac.Write([]byte(msg))
	sig := base64.URLEncoding.EncodeToString(mac.Sum(nil))
	payload := base64.URLEncoding.EncodeToString([]byte(msg))
	return payload + "." + sig
}

// Issue signs a token for userID valid for ttl.
func (b Bearer) Issue(userID uuid.UUID, ttl time.Duration) string {
	return b.Sign(userID, time.Now().Add(ttl))
}

// decodeURLB64 tries raw (no padding) then padded
func decodeURLB64(s string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// Verify checks signature and expiry and returns the token's subject.
func (b Bearer) Verify(token string) (uuid.UUID, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return uuid.Nil, ErrBadToken
	}
	payload, sig := parts[0], parts[1]

	raw, err := decodeURLB64(payload)
	if err != nil {
		return uuid.Nil, ErrBadToken
	}

	mac := hmac.New(sha256.New, b.Secret)
	mac.Write(raw)
	expectedRaw := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	expectedPad := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(sig), []byte(expectedRaw)) && !hmac.Equal([]byte(sig), []byte(expectedPad)) {
		return uuid.Nil, ErrBadSig
	}

	fields := strings.SplitN(string(raw), "|", 2)
	if len(fields) != 2 {
		return uuid.Nil, ErrBadPayload
	}
	userID, err := uuid.Parse(strings.TrimSpace(fields[0]))
	if err != nil {
		return uuid.Nil, ErrBadPayload
	}
	ts, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return uuid.Nil, ErrBadPayload
	}
	if time.Now().After(time.Unix(ts, 0)) {
		return uuid.Nil, ErrExpired
	}
	return userID, nil
}
