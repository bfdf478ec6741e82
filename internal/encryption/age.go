package encryption

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"

	"rollbook/internal/backup"
)

// ageHeader is the first line of every age v1 file.
const ageHeader = "age-encryption.org/v1"

// AgeEncryptor implements backup.Encryptor using filippo.io/age with
// scrypt-based passphrase encryption. No key material is kept on disk; the
// passphrase alone unlocks an export.
type AgeEncryptor struct{}

var _ backup.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates a new AgeEncryptor.
func NewAgeEncryptor() *AgeEncryptor {
	return &AgeEncryptor{}
}

// Encrypt reads plaintext from r and writes age-encrypted ciphertext to w.
func (e *AgeEncryptor) Encrypt(passphrase string, r io.Reader, w io.Writer) error {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return nil
}

// Decrypt reads age-encrypted ciphertext from r and writes plaintext to w.
func (e *AgeEncryptor) Decrypt(passphrase string, r io.Reader, w io.Writer) error {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}

	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("reading decrypted data: %w", err)
	}

	return nil
}

// IsEncrypted reports whether data starts with the age file header. Plain
// JSON exports never do, so this distinguishes the two import paths.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(ageHeader))
}
