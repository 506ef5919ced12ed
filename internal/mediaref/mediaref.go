// Package mediaref hides media identifiers from casual inspection.
//
// The scrambling is a repeating-key XOR followed by base64. It is reversible by
// anyone holding the key and is not meant to resist a determined attacker.
package mediaref

import (
	"encoding/base64"
	"errors"
	"regexp"
)

// IDLength is the length of a media id on the source platform.
const IDLength = 11

var (
	// ErrEmptyKey is returned when an Obfuscator is built without a key.
	ErrEmptyKey = errors.New("mediaref: empty key")
	// ErrInvalid is returned for anything that does not decode to a media id.
	ErrInvalid = errors.New("mediaref: invalid reference")
)

var (
	idPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	urlPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)
)

// Obfuscator scrambles media ids with a deployment key.
type Obfuscator struct {
	key []byte
}

func NewObfuscator(key string) (*Obfuscator, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &Obfuscator{key: []byte(key)}, nil
}

// Encode scrambles raw into a URL-safe token.
func (o *Obfuscator) Encode(raw string) string {
	return base64.RawURLEncoding.EncodeToString(o.xor([]byte(raw)))
}

// Decode reverses Encode and only accepts results shaped like a media id.
func (o *Obfuscator) Decode(encoded string) (string, error) {
	if encoded == "" {
		return "", ErrInvalid
	}
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalid
	}
	id := string(o.xor(data))
	if !ValidID(id) {
		return "", ErrInvalid
	}
	return id, nil
}

func (o *Obfuscator) xor(in []byte) []byte {
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ o.key[i%len(o.key)]
	}
	return out
}

// ValidID reports whether id looks like a media id.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// ExtractID pulls the media id out of the common source URL shapes.
func ExtractID(rawURL string) (string, bool) {
	m := urlPattern.FindStringSubmatch(rawURL)
	if len(m) < 3 || !ValidID(m[2]) {
		return "", false
	}
	return m[2], true
}
