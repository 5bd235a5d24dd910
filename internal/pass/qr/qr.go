// Package qr produces the opaque pass payload embedded in visitor QR codes.
// The payload is a stable string; turning it into a scannable image is an
// external, replaceable concern behind the Encoder interface.
package qr

import (
	"encoding/base64"
	"fmt"

	id "gatepass/pkg/domain"
)

// Payload deterministically serializes the pass attributes: same inputs yield
// the same payload. Renewal changes the duration and therefore the payload.
func Payload(visitorName, visitorPhone string, residentID id.ResidentID, durationMinutes int) string {
	return fmt.Sprintf("Name: %s | Phone: %s | Resident: %s | Duration: %d minutes",
		visitorName, visitorPhone, residentID.String(), durationMinutes)
}

// Encoder renders a payload into whatever the client displays. The core never
// depends on the image format.
type Encoder interface {
	Encode(payload string) (string, error)
}

// Base64Encoder is the default encoder: clients with a QR renderer decode the
// payload themselves.
type Base64Encoder struct{}

func (Base64Encoder) Encode(payload string) (string, error) {
	return base64.StdEncoding.EncodeToString([]byte(payload)), nil
}
