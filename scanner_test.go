package amora

import (
	"testing"
)

func makeAnnouncementFor(t *testing.T, meta MetaAddress) Announcement {
	t.Helper()
	stealth, err := GenerateStealthAddress(meta, testClassHash, nil)
	if err != nil {
		t.Fatalf("GenerateStealthAddress failed: %v", err)
	}
	return Announcement{
		StealthAddress:     stealth.StealthAddress,
		EphemeralPublicKey: stealth.EphemeralPublicKey,
		ViewTag:            stealth.ViewTag,
	}
}

func TestScanAnnouncements(t *testing.T) {
	keysA, _ := GenerateStealthKeys(nil)
	keysB, _ := GenerateStealthKeys(nil)
	keysC, _ := GenerateStealthKeys(nil)

	var all []Announcement
	for i := 0; i < 5; i++ {
		all = append(all, makeAnnouncementFor(t, keysA.ToMetaAddress("starknet")))
	}
	for i := 0; i < 5; i++ {
		all = append(all, makeAnnouncementFor(t, keysB.ToMetaAddress("starknet")))
	}
	for i := 0; i < 5; i++ {
		all = append(all, makeAnnouncementFor(t, keysC.ToMetaAddress("starknet")))
	}

	t.Run("MatchesOnlyOwnAnnouncements", func(t *testing.T) {
		results, err := ScanAnnouncements(all, keysA.Viewing.Private, keysA.Spending.Public, keysA.Spending.Private, testClassHash)
		if err != nil {
			t.Fatalf("ScanAnnouncements failed: %v", err)
		}
		if len(results) != 5 {
			t.Fatalf("expected 5 matches, got %d", len(results))
		}
		for _, r := range results {
			derived, err := DerivePub(r.StealthPrivateKey)
			if err != nil {
				t.Fatalf("DerivePub failed: %v", err)
			}
			if derived.Cmp(r.StealthPublicKey) != 0 {
				t.Error("derived stealth pub doesn't match recorded stealth pub")
			}
			reconstructed := ContractAddress(r.StealthPublicKey, testClassHash, r.StealthPublicKey)
			if Canonicalize(FeltToHex(reconstructed)) != Canonicalize(FeltToHex(r.Announcement.StealthAddress)) {
				t.Error("reconstructed address doesn't match announcement")
			}
		}
	})

	t.Run("WrongRecipientReturnsEmpty", func(t *testing.T) {
		keysD, _ := GenerateStealthKeys(nil)
		onlyB := []Announcement{makeAnnouncementFor(t, keysB.ToMetaAddress("starknet"))}
		results, err := ScanAnnouncements(onlyB, keysD.Viewing.Private, keysD.Spending.Public, keysD.Spending.Private, testClassHash)
		if err != nil {
			t.Fatalf("ScanAnnouncements failed: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no matches, got %d", len(results))
		}
	})

	t.Run("WatchOnlyMatchesSameSetAsFullScan", func(t *testing.T) {
		export := ExportViewingKey("starknet", keysA)
		watchResults, err := ScanWithViewingKey(all, export, testClassHash)
		if err != nil {
			t.Fatalf("ScanWithViewingKey failed: %v", err)
		}
		fullResults, err := ScanAnnouncements(all, keysA.Viewing.Private, keysA.Spending.Public, keysA.Spending.Private, testClassHash)
		if err != nil {
			t.Fatalf("ScanAnnouncements failed: %v", err)
		}
		if len(watchResults) != len(fullResults) {
			t.Fatalf("watch-only found %d, full scan found %d", len(watchResults), len(fullResults))
		}
		for i := range watchResults {
			if watchResults[i].StealthPublicKey.Cmp(fullResults[i].StealthPublicKey) != 0 {
				t.Error("watch-only and full scan disagree on stealth public key")
			}
		}
	})
}

func TestViewTagEffectiveness(t *testing.T) {
	recipient, _ := GenerateStealthKeys(nil)
	other, _ := GenerateStealthKeys(nil)

	const trials = 10000
	tagHits := 0
	for i := 0; i < trials; i++ {
		ann := makeAnnouncementFor(t, other.ToMetaAddress("starknet"))
		sharedSecret, err := ComputeSharedSecret(recipient.Viewing.Private, ann.EphemeralPublicKey)
		if err != nil {
			t.Fatalf("ComputeSharedSecret failed: %v", err)
		}
		if ViewTag(sharedSecret) == ann.ViewTag {
			tagHits++

			stealthPub, err := stealthPublicKeyFrom(recipient.Spending.Public, sharedSecret)
			if err != nil {
				t.Fatalf("stealthPublicKeyFrom failed: %v", err)
			}
			reconstructed := ContractAddress(stealthPub, testClassHash, stealthPub)
			if Canonicalize(FeltToHex(reconstructed)) == Canonicalize(FeltToHex(ann.StealthAddress)) {
				t.Fatal("tag hit for a foreign announcement also passed address reconstruction")
			}
		}
	}

	frac := float64(tagHits) / float64(trials)
	want := 1.0 / 256.0
	if frac < want*0.6 || frac > want*1.8 {
		t.Errorf("view tag hit rate %.5f far from expected %.5f", frac, want)
	}
}
