package encryption

import (
	"bytes"
	"strings"
	"testing"
)

func TestAgeEncryptorRoundTrip(t *testing.T) {
	enc := NewAgeEncryptor()
	plaintext := `{"students":[],"timestamp":"2024-01-15T10:30:00Z"}`

	var ciphertext bytes.Buffer
	if err := enc.Encrypt("correct horse", strings.NewReader(plaintext), &ciphertext); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	if !IsEncrypted(ciphertext.Bytes()) {
		t.Error("ciphertext does not carry the age header")
	}
	if bytes.Contains(ciphertext.Bytes(), []byte("students")) {
		t.Error("ciphertext contains plaintext")
	}

	var decrypted bytes.Buffer
	if err := enc.Decrypt("correct horse", bytes.NewReader(ciphertext.Bytes()), &decrypted); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if decrypted.String() != plaintext {
		t.Errorf("round trip = %q, want %q", decrypted.String(), plaintext)
	}
}

func TestAgeEncryptorWrongPassphrase(t *testing.T) {
	enc := NewAgeEncryptor()

	var ciphertext bytes.Buffer
	if err := enc.Encrypt("right", strings.NewReader("payload"), &ciphertext); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	var out bytes.Buffer
	if err := enc.Decrypt("wrong", bytes.NewReader(ciphertext.Bytes()), &out); err == nil {
		t.Error("Decrypt succeeded with the wrong passphrase")
	}
}

func TestIsEncrypted(t *testing.T) {
	if IsEncrypted([]byte(`{"students":[]}`)) {
		t.Error("plain JSON detected as encrypted")
	}
	if !IsEncrypted([]byte("age-encryption.org/v1\n-> scrypt")) {
		t.Error("age header not detected")
	}
	if IsEncrypted(nil) {
		t.Error("empty input detected as encrypted")
	}
}
