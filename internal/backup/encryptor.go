package backup

import "io"

// Encryptor encrypts and decrypts snapshot exports with a user-supplied
// passphrase. Implementations are stateless; the passphrase is provided per
// call and never stored.
type Encryptor interface {
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(passphrase string, r io.Reader, w io.Writer) error

	// Decrypt reads ciphertext from r and writes plaintext to w. A wrong
	// passphrase or malformed ciphertext returns an error.
	Decrypt(passphrase string, r io.Reader, w io.Writer) error
}
