package encryption

import (
	"bytes"
	"fmt"
	"io"

	"rollbook/internal/backup"
)

// testHeader is prepended to data by TestEncryptor to make encrypted output
// clearly different from plaintext while remaining deterministic and reversible.
var testHeader = []byte("RBENC\x00\x00\x00")

// TestEncryptor is a simple, deterministic encryptor for testing. It prepends
// a fixed 8-byte header followed by the passphrase length and passphrase, so
// decryption with the wrong passphrase fails the same way the real encryptor
// does, without any crypto.
type TestEncryptor struct{}

var _ backup.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a new TestEncryptor.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Encrypt(passphrase string, r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%04d%s", len(passphrase), passphrase); err != nil {
		return fmt.Errorf("writing passphrase tag: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Decrypt(passphrase string, r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}

	tag := make([]byte, 4+len(passphrase))
	if _, err := io.ReadFull(r, tag); err != nil {
		return fmt.Errorf("reading passphrase tag: %w", err)
	}
	want := fmt.Sprintf("%04d%s", len(passphrase), passphrase)
	if string(tag) != want {
		return fmt.Errorf("incorrect passphrase")
	}

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
