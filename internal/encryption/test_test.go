package encryption

import (
	"bytes"
	"strings"
	"testing"

	"rollbook/internal/config"
)

func TestTestEncryptorRoundTrip(t *testing.T) {
	enc := NewTestEncryptor()

	var ciphertext bytes.Buffer
	if err := enc.Encrypt("pw", strings.NewReader("payload"), &ciphertext); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !bytes.HasPrefix(ciphertext.Bytes(), testHeader) {
		t.Error("ciphertext missing test header")
	}

	var out bytes.Buffer
	if err := enc.Decrypt("pw", bytes.NewReader(ciphertext.Bytes()), &out); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if out.String() != "payload" {
		t.Errorf("round trip = %q, want payload", out.String())
	}
}

func TestTestEncryptorWrongPassphrase(t *testing.T) {
	enc := NewTestEncryptor()

	var ciphertext bytes.Buffer
	if err := enc.Encrypt("right", strings.NewReader("payload"), &ciphertext); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	var out bytes.Buffer
	if err := enc.Decrypt("wrong", bytes.NewReader(ciphertext.Bytes()), &out); err == nil {
		t.Error("Decrypt succeeded with the wrong passphrase")
	}
}

func TestTestEncryptorRejectsPlaintext(t *testing.T) {
	enc := NewTestEncryptor()

	var out bytes.Buffer
	if err := enc.Decrypt("pw", strings.NewReader("just some plaintext"), &out); err == nil {
		t.Error("Decrypt accepted input without the test header")
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		wantErr bool
	}{
		{name: "age", typ: "age"},
		{name: "default", typ: ""},
		{name: "test", typ: "test"},
		{name: "unknown", typ: "rot13", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: tt.typ})
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if enc == nil {
				t.Error("got nil encryptor")
			}
		})
	}
}
