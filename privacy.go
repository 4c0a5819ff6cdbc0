package amora

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// memoEncryptionKey derives a 32-byte symmetric key from the
// recipient's viewing private key, domain-separated so it can never
// collide with the key's use as an ECDH scalar elsewhere in the
// protocol.
func memoEncryptionKey(viewingPriv Felt) []byte {
	h := sha256.Sum256([]byte(fmt.Sprintf("AMORA-MEMO-KEY-v1:%s", FeltToHex(viewingPriv))))
	return h[:]
}

// EncryptMemo encrypts memo plaintext for the holder of viewingPriv,
// using XChaCha20-Poly1305 (§3 supplemented feature: viewing-key-based
// selective disclosure, teacher's privacy.go).
func EncryptMemo(viewingPriv Felt, plaintext []byte) (*EncryptedPayload, error) {
	key := memoEncryptionKey(viewingPriv)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, wrapf(ErrChainError, "creating cipher: %v", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, wrapf(ErrChainError, "generating nonce: %v", err)
	}

	ciphertext := aead.Seal(nil, nonce, plaintext, nil)
	return &EncryptedPayload{Ciphertext: ciphertext, Nonce: nonce}, nil
}

// DecryptMemo decrypts a payload produced by EncryptMemo using the
// same viewing private key.
func DecryptMemo(viewingPriv Felt, payload *EncryptedPayload) ([]byte, error) {
	key := memoEncryptionKey(viewingPriv)

	if len(payload.Nonce) != chacha20poly1305.NonceSizeX {
		return nil, wrapf(ErrInvalidFormat, "invalid nonce length")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, wrapf(ErrChainError, "creating cipher: %v", err)
	}

	plaintext, err := aead.Open(nil, payload.Nonce, payload.Ciphertext, nil)
	if err != nil {
		return nil, wrapf(ErrInvalidFormat, "decryption failed: %v", err)
	}
	return plaintext, nil
}

// ShouldEncrypt reports whether a privacy level calls for memo
// encryption.
func ShouldEncrypt(level PrivacyLevel) bool {
	return level == PrivacyShielded || level == PrivacyCompliant
}

// ShouldIncludeViewingKey reports whether a privacy level calls for
// disclosing the viewing key (e.g. to an auditor) alongside the memo.
func ShouldIncludeViewingKey(level PrivacyLevel) bool {
	return level == PrivacyCompliant
}
