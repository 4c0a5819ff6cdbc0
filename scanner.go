package amora

// ScanAnnouncements is the full scan (§4.4): returns a StealthPayment
// for every announcement whose view tag and reconstructed address
// match, preserving input order. viewingPriv, spendingPub and
// spendingPriv are the recipient's viewing private key, spending public
// key, and spending private key; spendingPriv is what lets this variant
// derive a spending key per match (ScanWithViewingKey omits it).
func ScanAnnouncements(anns []Announcement, viewingPriv, spendingPub, spendingPriv, classHash Felt) ([]StealthPayment, error) {
	var out []StealthPayment
	for _, ann := range anns {
		sharedSecret, stealthPub, isMatch, err := matchAnnouncement(ann, viewingPriv, spendingPub, classHash)
		if err != nil {
			return nil, err
		}
		if !isMatch {
			continue
		}
		stealthPriv := DeriveStealthPrivateKey(spendingPriv, sharedSecret)
		out = append(out, StealthPayment{
			Announcement:      ann,
			SharedSecret:      sharedSecret,
			StealthPublicKey:  stealthPub,
			StealthPrivateKey: stealthPriv,
		})
	}
	return out, nil
}

// ScanWithViewingKey is the watch-only scan (§4.4): identical pipeline
// but omits spending-key derivation, so it can run with only a
// ViewingKeyExport.
func ScanWithViewingKey(anns []Announcement, export ViewingKeyExport, classHash Felt) ([]WatchOnlyMatch, error) {
	var out []WatchOnlyMatch
	for _, ann := range anns {
		sharedSecret, stealthPub, isMatch, err := matchAnnouncement(ann, export.ViewingPrivateKey, export.SpendingPublicKey, classHash)
		if err != nil {
			return nil, err
		}
		if !isMatch {
			continue
		}
		out = append(out, WatchOnlyMatch{
			Announcement:     ann,
			SharedSecret:     sharedSecret,
			StealthPublicKey: stealthPub,
		})
	}
	return out, nil
}
