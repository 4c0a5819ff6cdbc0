package amora

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
)

// GenerateStealthKeys generates a fresh StealthKeys pair: independent
// spending and viewing keypairs (§3). r may be nil to use crypto/rand.
func GenerateStealthKeys(r RandReader) (StealthKeys, error) {
	spendPriv, err := RandomScalar(r)
	if err != nil {
		return StealthKeys{}, wrapf(ErrChainError, "generating spending key")
	}
	spendPub, err := DerivePub(spendPriv)
	if err != nil {
		return StealthKeys{}, err
	}

	viewPriv, err := RandomScalar(r)
	if err != nil {
		return StealthKeys{}, wrapf(ErrChainError, "generating viewing key")
	}
	viewPub, err := DerivePub(viewPriv)
	if err != nil {
		return StealthKeys{}, err
	}

	return StealthKeys{
		Spending: KeyPair{Private: spendPriv, Public: spendPub},
		Viewing:  KeyPair{Private: viewPriv, Public: viewPub},
	}, nil
}

// ToMetaAddress derives the publishable MetaAddress from a StealthKeys
// pair (§3: "Derived from StealthKeys (public part)").
func (k StealthKeys) ToMetaAddress(chain ChainID) MetaAddress {
	return MetaAddress{
		Chain:       chain,
		SpendingKey: k.Spending.Public,
		ViewingKey:  k.Viewing.Public,
	}
}

// ComputeSharedSecret computes x(scalar * point), the ECDH primitive
// both GenerateStealthAddress (sender side, r against K_view) and the
// scanner (recipient side, k_view against R) use (§4.3, invariant 2).
func ComputeSharedSecret(scalar Felt, pointX Felt) (Felt, error) {
	p, err := Recover(pointX)
	if err != nil {
		return nil, err
	}
	shared, err := MulPoint(scalar, p)
	if err != nil {
		return nil, err
	}
	return shared.X, nil
}

// stealthPublicKeyFrom computes x(Recover(K_spend) + H(s)*G), the
// stealth public key derivation shared by both sender and recipient
// (§4.3 step 4, and the match pipeline's step 3).
func stealthPublicKeyFrom(spendingPub, sharedSecret Felt) (Felt, error) {
	spendPoint, err := Recover(spendingPub)
	if err != nil {
		return nil, err
	}
	hashScalar := PoseidonHash([]Felt{sharedSecret})
	hashPoint, err := MulBase(hashScalar)
	if err != nil {
		return nil, err
	}
	stealthPoint := AddPoints(spendPoint, hashPoint)
	return stealthPoint.X, nil
}

// GenerateStealthAddress is the sender-side derivation (§4.3 "Key
// derivation (sender side)"): fresh ephemeral keypair, ECDH against the
// recipient's viewing key, view tag, stealth public key, and the
// deployment address for classHash.
//
// The stealth public key doubles as the deployment salt, which is
// load-bearing for unlinkability (§9): never cache or reuse the
// ephemeral key returned here.
func GenerateStealthAddress(meta MetaAddress, classHash Felt, r RandReader) (*StealthAddress, error) {
	ephemeralPriv, err := RandomScalar(r)
	if err != nil {
		return nil, wrapf(ErrChainError, "generating ephemeral key")
	}
	ephemeralPub, err := DerivePub(ephemeralPriv)
	if err != nil {
		return nil, err
	}

	sharedSecret, err := ComputeSharedSecret(ephemeralPriv, meta.ViewingKey)
	if err != nil {
		return nil, err
	}
	viewTag := ViewTag(sharedSecret)

	stealthPub, err := stealthPublicKeyFrom(meta.SpendingKey, sharedSecret)
	if err != nil {
		return nil, err
	}

	stealthAddr := ContractAddress(stealthPub, classHash, stealthPub)

	return &StealthAddress{
		StealthAddress:     stealthAddr,
		StealthPublicKey:   stealthPub,
		EphemeralPublicKey: ephemeralPub,
		ViewTag:            viewTag,
	}, nil
}

// matchAnnouncement runs the recipient-side match pipeline (§4.3 "Match
// + spending-key derivation", §4.7 state machine) for one announcement
// using only the viewing key and spending public key — the shared core
// of the full scan and the watch-only scan (scanner.go).
func matchAnnouncement(ann Announcement, viewingPriv, spendingPub, classHash Felt) (sharedSecret, stealthPub Felt, isMatch bool, err error) {
	sharedSecret, err = ComputeSharedSecret(viewingPriv, ann.EphemeralPublicKey)
	if err != nil {
		return nil, nil, false, err
	}
	if ViewTag(sharedSecret) != ann.ViewTag {
		return nil, nil, false, nil
	}

	stealthPub, err = stealthPublicKeyFrom(spendingPub, sharedSecret)
	if err != nil {
		return nil, nil, false, err
	}
	stealthAddr := ContractAddress(stealthPub, classHash, stealthPub)
	if Canonicalize(FeltToHex(stealthAddr)) != Canonicalize(FeltToHex(ann.StealthAddress)) {
		return nil, nil, false, nil
	}
	return sharedSecret, stealthPub, true, nil
}

// DeriveStealthPrivateKey computes p = (k_spend + H(s)) mod N (§4.3
// step 6): the spending key for a matched stealth address.
func DeriveStealthPrivateKey(spendingPriv, sharedSecret Felt) Felt {
	hashFelt := PoseidonHash([]Felt{sharedSecret})

	var spendScalar, hashScalar fr.Element
	spendScalar.SetBigInt(spendingPriv)
	hashScalar.SetBigInt(hashFelt)

	var sum fr.Element
	sum.Add(&spendScalar, &hashScalar)

	var out big.Int
	sum.BigInt(&out)
	return &out
}
