package amora

import (
	"bytes"
	"math/big"
	"testing"
)

func TestPrivacy(t *testing.T) {
	viewingPriv := big.NewInt(0xCAFEBABE)

	t.Run("EncryptDecryptRoundTrip", func(t *testing.T) {
		plaintext := []byte("pay invoice #42")

		payload, err := EncryptMemo(viewingPriv, plaintext)
		if err != nil {
			t.Fatalf("EncryptMemo failed: %v", err)
		}

		decrypted, err := DecryptMemo(viewingPriv, payload)
		if err != nil {
			t.Fatalf("DecryptMemo failed: %v", err)
		}
		if !bytes.Equal(decrypted, plaintext) {
			t.Error("decrypted memo should match the original plaintext")
		}
	})

	t.Run("WrongKeyFailsToDecrypt", func(t *testing.T) {
		payload, err := EncryptMemo(viewingPriv, []byte("secret"))
		if err != nil {
			t.Fatalf("EncryptMemo failed: %v", err)
		}
		if _, err := DecryptMemo(big.NewInt(1), payload); err == nil {
			t.Error("decryption with the wrong key should fail")
		}
	})

	t.Run("PrivacyLevelGates", func(t *testing.T) {
		if ShouldEncrypt(PrivacyTransparent) {
			t.Error("transparent level should not encrypt")
		}
		if !ShouldEncrypt(PrivacyShielded) {
			t.Error("shielded level should encrypt")
		}
		if !ShouldEncrypt(PrivacyCompliant) {
			t.Error("compliant level should encrypt")
		}
		if ShouldIncludeViewingKey(PrivacyShielded) {
			t.Error("shielded level should not disclose the viewing key")
		}
		if !ShouldIncludeViewingKey(PrivacyCompliant) {
			t.Error("compliant level should disclose the viewing key")
		}
	})
}
