// Package receipt builds the token printed as a QR code on a booking
// receipt.  The token is the base64url JSON of the booking summary, so a
// scanner at the door can read it without a database round trip.
package receipt

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/skip2/go-qrcode"

	"github.com/shyam-539/GoTicket-server/internal/apperr"
)

// Token is the booking summary carried by a receipt.
type Token struct {
	Reference string    `json:"ref"`
	UserID    uint64    `json:"uid"`
	ShowID    uint64    `json:"show"`
	TheaterID uint64    `json:"theater"`
	Seats     []string  `json:"seats"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"cur"`
	ShowTime  time.Time `json:"at"`
	IssuedAt  time.Time `json:"iat"`
}

// Encode serialises t.
func Encode(t Token) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parses a token produced by Encode.
func Decode(s string) (Token, error) {
	var t Token
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return t, apperr.Wrap(err, apperr.Validation, "malformed receipt token")
	}
	if err := json.Unmarshal(b, &t); err != nil {
		return t, apperr.Wrap(err, apperr.Validation, "malformed receipt token")
	}
	return t, nil
}

// QRCode renders token as a PNG of size x size pixels.
func QRCode(token string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(token, qrcode.Medium, size)
	return png, errors.WithStack(err)
}
