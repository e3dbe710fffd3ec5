// Package signer produces the time-boxed HMAC tokens the booking API requires.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Header names carrying the token.
const (
	HeaderTimestamp = "x-timestamp"
	HeaderSignature = "x-signature"
)

// multipartDescriptor stands in for multipart payloads; their bytes are not signed.
const multipartDescriptor = "multipart/form-data"

// ErrMissingSecret is returned when no signing secret is configured.
var ErrMissingSecret = errors.New("signing secret is not set")

// Body is the part of a request payload covered by the signature.
// A nil Body means the request has none.
type Body interface {
	descriptor() string
}

// Text is a string payload, signed verbatim.
type Text string

func (t Text) descriptor() string { return string(t) }

// Multipart marks a multipart/form-data payload.
type Multipart struct{}

func (Multipart) descriptor() string { return multipartDescriptor }

// Signature is the token attached to one request.
type Signature struct {
	Timestamp string
	Value     string
}

// Signer signs requests with a shared secret.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// New creates a Signer. An empty secret is a configuration error.
func New(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Sign returns a fresh token for rawURL and body.
func (s *Signer) Sign(rawURL string, body Body) (Signature, error) {
	return s.SignAt(s.now(), rawURL, body)
}

// SignAt returns the token for rawURL and body as of at.
func (s *Signer) SignAt(at time.Time, rawURL string, body Body) (Signature, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Signature{}, fmt.Errorf("parse url: %w", err)
	}

	ts := strconv.FormatInt(at.Unix(), 10)
	var desc string
	if body != nil {
		desc = body.descriptor()
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(ts + "|" + u.EscapedPath() + "|" + desc))

	return Signature{
		Timestamp: ts,
		Value:     base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	}, nil
}

// Apply signs req and sets the token headers on it.
func (s *Signer) Apply(req *http.Request, body Body) error {
	sig, err := s.Sign(req.URL.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set(HeaderTimestamp, sig.Timestamp)
	req.Header.Set(HeaderSignature, sig.Value)
	return nil
}
