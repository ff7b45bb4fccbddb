package field

import "io"

// Encryptor protects export payloads at rest. Field exports carry collector
// names, so delivery can optionally encrypt before handing bytes to a sink.
type Encryptor interface {
	// Setup generates and stores a key pair, protecting the private key
	// with the passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Decrypt reads ciphertext from r and writes plaintext to w, unlocking
	// the private key with the passphrase.
	Decrypt(passphrase string, r io.Reader, w io.Writer) error

	// IsConfigured reports whether a key pair is present.
	IsConfigured() bool
}
