// Package simcrypto implements the simulated, non-cryptographic
// encrypt/decrypt rule KMS, SSM SecureString, and Secrets Manager all
// share (spec.md §4.4): "encrypt returns base64 of <keyId>|<plaintext>;
// decrypt parses it and returns the embedded plaintext." No real
// cryptography is performed; this is documented, not hidden.
package simcrypto

import (
	"encoding/base64"
	"strings"

	"github.com/nimbusemu/nimbus/internal/apperr"
)

// Encrypt renders the simulated ciphertext blob for keyID/plaintext.
func Encrypt(keyID string, plaintext []byte) string {
	raw := keyID + "|" + string(plaintext)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// Decrypt recovers (keyID, plaintext) from a blob produced by Encrypt.
func Decrypt(blob string) (keyID string, plaintext []byte, err error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", nil, apperr.New(apperr.InvalidArgument, "malformed ciphertext blob")
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return "", nil, apperr.New(apperr.InvalidArgument, "malformed ciphertext blob")
	}
	return parts[0], []byte(parts[1]), nil
}
