package extra

import "github.com/nordframe/frontauth/internal/protector"

// Protect encodes the bag and seals it with p, yielding the URL-safe token
// placed in the WFA2D authentication property.
func Protect(b *Bag, p *protector.Protector) (string, error) {
	raw, err := b.Encode()
	if err != nil {
		return "", err
	}
	return p.Protect(raw)
}

// Unprotect opens a token produced by Protect. A protector.ErrDecode (bad
// MAC, unknown key id, or malformed ciphertext) is surfaced unchanged so
// callers treat it as an absent bag rather than an authentication failure.
func Unprotect(token string, p *protector.Protector) (*Bag, error) {
	raw, err := p.Unprotect(token)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}
