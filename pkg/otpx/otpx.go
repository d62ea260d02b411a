// Package otpx wraps RFC 6238 TOTP handling: secret generation, code
// validation, provisioning URIs and the QR code image an authenticator app
// scans.
package otpx

import (
	"bytes"
	"encoding/base32"
	"errors"
	"fmt"
	"image/png"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	Period     = 30
	Skew       = 1
	SecretSize = 20 // bytes, 32 base32 characters
)

var ErrInvalidSecret = errors.New("otpx: invalid secret")

// GenerateSecret returns a fresh base32 secret (no padding) suitable for
// storing on the account.
func GenerateSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      Period,
		SecretSize:  SecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otpx: generate secret: %w", err)
	}
	return key.Secret(), nil
}

// Validate reports whether code is valid for secret at t, accepting one step
// of drift either side.
func Validate(secret, code string, t time.Time) bool {
	code = strings.TrimSpace(code)
	if secret == "" || len(code) != otp.DigitsSix.Length() {
		return false
	}

	ok, err := totp.ValidateCustom(code, secret, t.UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

// ProvisioningURI builds the otpauth:// URI for an existing secret.
func ProvisioningURI(secret, account, issuer string) (string, error) {
	key, err := keyFor(secret, account, issuer)
	if err != nil {
		return "", err
	}
	return key.URL(), nil
}

// QRCodePNG renders the provisioning URI of secret as a size x size PNG.
func QRCodePNG(secret, account, issuer string, size int) ([]byte, error) {
	key, err := keyFor(secret, account, issuer)
	if err != nil {
		return nil, err
	}

	img, err := key.Image(size, size)
	if err != nil {
		return nil, fmt.Errorf("otpx: render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("otpx: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// keyFor rebuilds an otp.Key around a stored base32 secret.
func keyFor(secret, account, issuer string) (*otp.Key, error) {
	if account == "" {
		return nil, ErrInvalidSecret
	}

	raw, err := decodeSecret(secret)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      Period,
		Secret:      raw,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("otpx: build key: %w", err)
	}
	return key, nil
}

func decodeSecret(secret string) ([]byte, error) {
	secret = strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "="))
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	return raw, nil
}
