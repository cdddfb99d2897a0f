package config_test

import (
	"testing"

	"github.com/grivax/grivax-api/internal/config"
)

const testKey = "01234567890123456789012345678901"

func TestNewCipher(t *testing.T) {
	t.Run("ShortKey", func(t *testing.T) {
		if _, err := config.NewCipher("short-key"); err != config.ErrInvalidCryptoKey {
			t.Errorf("expected ErrInvalidCryptoKey, got %v", err)
		}
	})

	t.Run("ValidKey", func(t *testing.T) {
		if _, err := config.NewCipher(testKey); err != nil {
			t.Fatalf("NewCipher failed: %v", err)
		}
	})
}

func TestEncryptDecrypt(t *testing.T) {
	c, err := config.NewCipher(testKey)
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}

	t.Run("SimpleText", func(t *testing.T) {
		plaintext := "google:3f9a1c"

		ciphertext, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		decrypted, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if decrypted != plaintext {
			t.Errorf("decrypted text %q does not match original %q", decrypted, plaintext)
		}

		ciphertext2, _ := c.Encrypt(plaintext)
		if ciphertext == ciphertext2 {
			t.Errorf("two encryptions of the same text produced the same ciphertext")
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		ciphertext, err := c.Encrypt("")
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		decrypted, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt failed: %v", err)
		}
		if decrypted != "" {
			t.Errorf("expected empty text, got %q", decrypted)
		}
	})

	t.Run("TamperedText", func(t *testing.T) {
		ciphertext, err := c.Encrypt("state")
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		tampered := []byte(ciphertext)
		mid := len(tampered) / 2
		if tampered[mid] == 'A' {
			tampered[mid] = 'B'
		} else {
			tampered[mid] = 'A'
		}
		if _, err := c.Decrypt(string(tampered)); err == nil {
			t.Errorf("Decrypt accepted a tampered ciphertext")
		}
	})

	t.Run("ShortText", func(t *testing.T) {
		if _, err := c.Decrypt("AAAA"); err != config.ErrCiphertextShort {
			t.Errorf("expected ErrCiphertextShort, got %v", err)
		}
	})
}
