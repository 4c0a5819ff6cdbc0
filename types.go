// Package amora implements the Amora stealth-address payment protocol:
// non-interactive, unlinkable one-time Starknet addresses derived from a
// recipient's long-lived meta-address, plus the scanning pipeline a
// recipient runs to discover and spend incoming payments.
package amora

import "math/big"

// Felt is a STARK field element: an unsigned integer strictly less than
// the field prime P (see Curve constants in curve.go). All public keys,
// hashes, and wire-level scalars are felts.
type Felt = *big.Int

// HexString is a hex string with a 0x prefix (e.g. "0x1234abcd").
type HexString = string

// ChainID identifies the target chain a meta-address or announcement
// belongs to (e.g. "starknet", "starknet-sepolia").
type ChainID = string

// KeyPair is a private/public key pair over the STARK curve. Public is
// always x(Private*G) for the even-y point (see NormalizeParity).
type KeyPair struct {
	Private Felt
	Public  Felt
}

// StealthKeys is the pair of independent keypairs a recipient generates
// once: Spending authorizes transfers from stealth addresses, Viewing
// only detects them.
type StealthKeys struct {
	Spending KeyPair
	Viewing  KeyPair
}

// MetaAddress is a recipient's long-lived, publishable pair of public
// keys.
type MetaAddress struct {
	Chain       ChainID
	SpendingKey Felt
	ViewingKey  Felt
}

// StealthAddress is the sender-side output of stealth address
// generation: everything the sender publishes in an announcement.
type StealthAddress struct {
	StealthAddress     Felt
	StealthPublicKey   Felt
	EphemeralPublicKey Felt
	ViewTag            uint8
}

// Announcement is an on-chain event record (§6.2) as consumed by the
// scanner. Metadata is an opaque felt sequence by convention encoding
// [token_address, amount_low, amount_high, ...memo_felts].
type Announcement struct {
	StealthAddress     Felt
	CallerAddress      Felt
	EphemeralPublicKey Felt
	ViewTag            uint8
	Metadata           []Felt
	BlockNumber        *uint64
	TxHash             HexString
}

// StealthPayment is a full-scan match: everything needed to spend from
// the stealth address.
type StealthPayment struct {
	Announcement      Announcement
	SharedSecret      Felt
	StealthPublicKey  Felt
	StealthPrivateKey Felt
}

// WatchOnlyMatch is a watch-only-scan match: detection without the
// ability to derive the spending key.
type WatchOnlyMatch struct {
	Announcement     Announcement
	SharedSecret     Felt
	StealthPublicKey Felt
}

// ViewingKeyExport is a watch-only capability: enough to scan for
// payments without being able to spend them.
type ViewingKeyExport struct {
	Chain             ChainID
	ViewingPrivateKey Felt
	SpendingPublicKey Felt
}

// PrivacyLevel gates whether memo payloads are encrypted and whether a
// viewing key is attached for auditors (SPEC_FULL.md §3).
type PrivacyLevel string

const (
	// PrivacyTransparent - memo felts carried in the clear.
	PrivacyTransparent PrivacyLevel = "transparent"
	// PrivacyShielded - memo felts encrypted with the recipient's viewing key.
	PrivacyShielded PrivacyLevel = "shielded"
	// PrivacyCompliant - encrypted, plus the viewing key is disclosed to auditors.
	PrivacyCompliant PrivacyLevel = "compliant"
)

// Generators exposes the curve's G and the commitment scheme's
// independent generator H, for ZK proof integration by callers.
type Generators struct {
	Gx, Gy Felt
	Hx, Hy Felt
}

// Call is a neutral, typed on-chain call record. The abstract
// ChainClient interface (client.go) consumes these; the core never
// builds ABI-encoded calldata itself beyond this felt-sequence shape.
type Call struct {
	Target   Felt
	Selector string
	Calldata []Felt
}

// EncryptedPayload is ciphertext plus the nonce needed to decrypt it
// (privacy.go).
type EncryptedPayload struct {
	Ciphertext []byte
	Nonce      []byte
}

// PedersenCommitment is a Pedersen commitment to a value together with
// its blinding factor (commitment.go). Commitment is a point (x, y);
// Blinding is a scalar.
type PedersenCommitment struct {
	CommitmentX Felt
	CommitmentY Felt
	Blinding    Felt
}
