package config

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ssh"
)

func testSigner(t *testing.T) ssh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("failed to create signer: %v", err)
	}
	return signer
}

func TestDeriveAESKeyFromSSHIsDeterministic(t *testing.T) {
	signer := testSigner(t)

	key1, err := DeriveAESKeyFromSSH(signer)
	if err != nil {
		t.Fatalf("DeriveAESKeyFromSSH() error = %v", err)
	}
	key2, err := DeriveAESKeyFromSSH(signer)
	if err != nil {
		t.Fatalf("DeriveAESKeyFromSSH() error = %v", err)
	}

	if len(key1) != 32 {
		t.Errorf("key length = %d, want 32", len(key1))
	}
	// ed25519 signatures are deterministic, so the derived key must be too
	if !bytes.Equal(key1, key2) {
		t.Error("derived keys differ across calls for the same signer")
	}
}

func TestAESGCMRoundTrip(t *testing.T) {
	signer := testSigner(t)
	key, err := DeriveAESKeyFromSSH(signer)
	if err != nil {
		t.Fatalf("DeriveAESKeyFromSSH() error = %v", err)
	}

	plaintext := []byte(`{"openai":"sk-test-123"}`)

	ciphertext, err := encryptAESGCM(plaintext, key)
	if err != nil {
		t.Fatalf("encryptAESGCM() error = %v", err)
	}
	if bytes.Contains(ciphertext, []byte("sk-test-123")) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := decryptAESGCM(ciphertext, key)
	if err != nil {
		t.Fatalf("decryptAESGCM() error = %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("decrypted = %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	key1, err := DeriveAESKeyFromSSH(testSigner(t))
	if err != nil {
		t.Fatalf("DeriveAESKeyFromSSH() error = %v", err)
	}
	key2, err := DeriveAESKeyFromSSH(testSigner(t))
	if err != nil {
		t.Fatalf("DeriveAESKeyFromSSH() error = %v", err)
	}

	ciphertext, err := encryptAESGCM([]byte("secret"), key1)
	if err != nil {
		t.Fatalf("encryptAESGCM() error = %v", err)
	}

	if _, err := decryptAESGCM(ciphertext, key2); err == nil {
		t.Fatal("decryptAESGCM() with wrong key should fail")
	}
}

func TestDecryptTruncatedCiphertext(t *testing.T) {
	key, err := DeriveAESKeyFromSSH(testSigner(t))
	if err != nil {
		t.Fatalf("DeriveAESKeyFromSSH() error = %v", err)
	}

	if _, err := decryptAESGCM([]byte("short"), key); err == nil {
		t.Fatal("decryptAESGCM() on truncated input should fail")
	}
}
