package amora

import (
	"math/big"
	"testing"
)

var testClassHash = big.NewInt(0xC1A55)

func TestStealth(t *testing.T) {
	t.Run("GenerateStealthKeysAreIndependent", func(t *testing.T) {
		keys, err := GenerateStealthKeys(nil)
		if err != nil {
			t.Fatalf("GenerateStealthKeys failed: %v", err)
		}
		if keys.Spending.Private.Cmp(keys.Viewing.Private) == 0 {
			t.Error("spending and viewing private keys should be independent")
		}
		meta := keys.ToMetaAddress("starknet")
		if meta.SpendingKey.Cmp(keys.Spending.Public) != 0 {
			t.Error("meta-address spending key mismatch")
		}
		if meta.ViewingKey.Cmp(keys.Viewing.Public) != 0 {
			t.Error("meta-address viewing key mismatch")
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		keys, err := GenerateStealthKeys(nil)
		if err != nil {
			t.Fatalf("GenerateStealthKeys failed: %v", err)
		}
		meta := keys.ToMetaAddress("starknet")

		stealth, err := GenerateStealthAddress(meta, testClassHash, nil)
		if err != nil {
			t.Fatalf("GenerateStealthAddress failed: %v", err)
		}

		ann := Announcement{
			StealthAddress:     stealth.StealthAddress,
			EphemeralPublicKey: stealth.EphemeralPublicKey,
			ViewTag:            stealth.ViewTag,
		}

		sharedSecret, stealthPub, isMatch, err := matchAnnouncement(ann, keys.Viewing.Private, keys.Spending.Public, testClassHash)
		if err != nil {
			t.Fatalf("matchAnnouncement failed: %v", err)
		}
		if !isMatch {
			t.Fatal("expected own announcement to match")
		}
		if stealthPub.Cmp(stealth.StealthPublicKey) != 0 {
			t.Error("recovered stealth public key mismatch")
		}

		stealthPriv := DeriveStealthPrivateKey(keys.Spending.Private, sharedSecret)
		derivedPub, err := DerivePub(stealthPriv)
		if err != nil {
			t.Fatalf("DerivePub failed: %v", err)
		}
		if derivedPub.Cmp(stealth.StealthPublicKey) != 0 {
			t.Error("stealth private key does not derive the expected stealth public key")
		}
	})

	t.Run("Unlinkability", func(t *testing.T) {
		keys, err := GenerateStealthKeys(nil)
		if err != nil {
			t.Fatalf("GenerateStealthKeys failed: %v", err)
		}
		meta := keys.ToMetaAddress("starknet")

		s1, err := GenerateStealthAddress(meta, testClassHash, nil)
		if err != nil {
			t.Fatalf("GenerateStealthAddress failed: %v", err)
		}
		s2, err := GenerateStealthAddress(meta, testClassHash, nil)
		if err != nil {
			t.Fatalf("GenerateStealthAddress failed: %v", err)
		}
		if s1.StealthAddress.Cmp(s2.StealthAddress) == 0 {
			t.Error("successive stealth addresses should be distinct")
		}
		if s1.EphemeralPublicKey.Cmp(s2.EphemeralPublicKey) == 0 {
			t.Error("successive ephemeral keys should be distinct")
		}
	})

	t.Run("WrongRecipientNoMatch", func(t *testing.T) {
		keysA, err := GenerateStealthKeys(nil)
		if err != nil {
			t.Fatalf("GenerateStealthKeys failed: %v", err)
		}
		keysB, err := GenerateStealthKeys(nil)
		if err != nil {
			t.Fatalf("GenerateStealthKeys failed: %v", err)
		}

		stealth, err := GenerateStealthAddress(keysB.ToMetaAddress("starknet"), testClassHash, nil)
		if err != nil {
			t.Fatalf("GenerateStealthAddress failed: %v", err)
		}
		ann := Announcement{
			StealthAddress:     stealth.StealthAddress,
			EphemeralPublicKey: stealth.EphemeralPublicKey,
			ViewTag:            stealth.ViewTag,
		}

		_, _, isMatch, err := matchAnnouncement(ann, keysA.Viewing.Private, keysA.Spending.Public, testClassHash)
		if err != nil {
			t.Fatalf("matchAnnouncement failed: %v", err)
		}
		if isMatch {
			t.Error("announcement for keysB should not match keysA")
		}
	})
}
