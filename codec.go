package amora

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	metaAddressPrefix = "st"
	viewingKeyPrefix  = "vk"
	paymentLinkScheme = "amora"
	paymentLinkHost   = "pay"
	memoChunkBytes    = 31
)

// knownChains lists the chain tags the textual codecs accept (§4.5:
// "a known chain tag").
var knownChains = map[ChainID]bool{
	"starknet":         true,
	"starknet-sepolia": true,
}

// EncodeMetaAddress renders a MetaAddress as "st:<chain>:<hex>:<hex>"
// (§4.5, §6.3).
func EncodeMetaAddress(m MetaAddress) (string, error) {
	if !knownChains[m.Chain] {
		return "", wrapf(ErrInvalidFormat, "unknown chain tag %q", m.Chain)
	}
	return fmt.Sprintf("%s:%s:%s:%s", metaAddressPrefix, m.Chain, FeltToHex(m.SpendingKey), FeltToHex(m.ViewingKey)), nil
}

// DecodeMetaAddress parses a meta-address string produced by
// EncodeMetaAddress. Requires exactly 4 colon-separated parts, the "st"
// prefix, a known chain tag, and both hex values within [0, 2^252).
func DecodeMetaAddress(s string) (MetaAddress, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return MetaAddress{}, wrapf(ErrInvalidFormat, "meta-address %q: expected 4 parts", s)
	}
	if parts[0] != metaAddressPrefix {
		return MetaAddress{}, wrapf(ErrInvalidFormat, "meta-address %q: wrong prefix", s)
	}
	if !knownChains[parts[1]] {
		return MetaAddress{}, wrapf(ErrInvalidFormat, "meta-address %q: unknown chain tag %q", s, parts[1])
	}
	spend, err := HexToFelt(parts[2])
	if err != nil {
		return MetaAddress{}, wrapf(ErrInvalidFormat, "meta-address %q: spending key: %v", s, err)
	}
	view, err := HexToFelt(parts[3])
	if err != nil {
		return MetaAddress{}, wrapf(ErrInvalidFormat, "meta-address %q: viewing key: %v", s, err)
	}
	return MetaAddress{Chain: parts[1], SpendingKey: spend, ViewingKey: view}, nil
}

// EncodeViewingKeyExport renders a ViewingKeyExport as
// "vk:<chain>:<hex_priv>:<hex_pub>" (§4.5, §6.3).
func EncodeViewingKeyExport(v ViewingKeyExport) (string, error) {
	if !knownChains[v.Chain] {
		return "", wrapf(ErrInvalidFormat, "unknown chain tag %q", v.Chain)
	}
	if v.ViewingPrivateKey == nil || v.ViewingPrivateKey.Sign() <= 0 {
		return "", wrapf(ErrOutOfRange, "viewing private key must be > 0")
	}
	if v.SpendingPublicKey == nil || v.SpendingPublicKey.Sign() <= 0 {
		return "", wrapf(ErrOutOfRange, "spending public key must be > 0")
	}
	return fmt.Sprintf("%s:%s:%s:%s", viewingKeyPrefix, v.Chain, FeltToHex(v.ViewingPrivateKey), FeltToHex(v.SpendingPublicKey)), nil
}

// DecodeViewingKeyExport parses a viewing-key string produced by
// EncodeViewingKeyExport. Both hex values must be > 0.
func DecodeViewingKeyExport(s string) (ViewingKeyExport, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return ViewingKeyExport{}, wrapf(ErrInvalidFormat, "viewing-key %q: expected 4 parts", s)
	}
	if parts[0] != viewingKeyPrefix {
		return ViewingKeyExport{}, wrapf(ErrInvalidFormat, "viewing-key %q: wrong prefix", s)
	}
	if !knownChains[parts[1]] {
		return ViewingKeyExport{}, wrapf(ErrInvalidFormat, "viewing-key %q: unknown chain tag %q", s, parts[1])
	}
	priv, err := HexToFelt(parts[2])
	if err != nil {
		return ViewingKeyExport{}, wrapf(ErrInvalidFormat, "viewing-key %q: private key: %v", s, err)
	}
	if priv.Sign() <= 0 {
		return ViewingKeyExport{}, wrapf(ErrOutOfRange, "viewing-key %q: private key must be > 0", s)
	}
	pub, err := HexToFelt(parts[3])
	if err != nil {
		return ViewingKeyExport{}, wrapf(ErrInvalidFormat, "viewing-key %q: public key: %v", s, err)
	}
	if pub.Sign() <= 0 {
		return ViewingKeyExport{}, wrapf(ErrOutOfRange, "viewing-key %q: public key must be > 0", s)
	}
	return ViewingKeyExport{Chain: parts[1], ViewingPrivateKey: priv, SpendingPublicKey: pub}, nil
}

// ExportViewingKey builds a ViewingKeyExport from a recipient's
// StealthKeys (§8 S6: export_viewing_key).
func ExportViewingKey(chain ChainID, keys StealthKeys) ViewingKeyExport {
	return ViewingKeyExport{
		Chain:             chain,
		ViewingPrivateKey: keys.Viewing.Private,
		SpendingPublicKey: keys.Spending.Public,
	}
}

// PaymentLink is the parsed form of an "amora://pay" URI (§4.5, §6.3).
type PaymentLink struct {
	Meta   MetaAddress
	Token  Felt
	Amount *string
	Memo   *string
}

// EncodePaymentLink renders a PaymentLink as an "amora://pay" URI.
func EncodePaymentLink(link PaymentLink) (string, error) {
	metaStr, err := EncodeMetaAddress(link.Meta)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("meta", metaStr)
	if link.Token != nil {
		q.Set("token", FeltToHex(link.Token))
	}
	if link.Amount != nil {
		q.Set("amount", *link.Amount)
	}
	if link.Memo != nil {
		q.Set("memo", *link.Memo)
	}

	u := url.URL{
		Scheme:   paymentLinkScheme,
		Host:     paymentLinkHost,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

// DecodePaymentLink parses an "amora://pay" URI produced by
// EncodePaymentLink. Validates scheme/host/meta=; other fields optional.
func DecodePaymentLink(s string) (PaymentLink, error) {
	u, err := url.Parse(s)
	if err != nil {
		return PaymentLink{}, wrapf(ErrInvalidFormat, "payment link %q: %v", s, err)
	}
	if u.Scheme != paymentLinkScheme || u.Host != paymentLinkHost {
		return PaymentLink{}, wrapf(ErrInvalidFormat, "payment link %q: wrong scheme/host", s)
	}

	q := u.Query()
	metaStr := q.Get("meta")
	if metaStr == "" {
		return PaymentLink{}, wrapf(ErrInvalidFormat, "payment link %q: missing meta", s)
	}
	meta, err := DecodeMetaAddress(metaStr)
	if err != nil {
		return PaymentLink{}, err
	}

	link := PaymentLink{Meta: meta}
	if tok := q.Get("token"); tok != "" {
		feltTok, err := HexToFelt(tok)
		if err != nil {
			return PaymentLink{}, wrapf(ErrInvalidFormat, "payment link %q: token: %v", s, err)
		}
		link.Token = feltTok
	}
	if amt := q.Get("amount"); amt != "" {
		amtCopy := amt
		link.Amount = &amtCopy
	}
	if memo := q.Get("memo"); memo != "" {
		memoCopy := memo
		link.Memo = &memoCopy
	}
	return link, nil
}

// EncodeMemo packs a UTF-8 string into a sequence of felts (§4.5). The
// first felt is the byte length; remaining felts each pack up to 31
// bytes big-endian, most-significant byte first. Empty string encodes
// as a single felt 0.
func EncodeMemo(s string) []Felt {
	data := []byte(s)
	out := make([]Felt, 0, 1+(len(data)+memoChunkBytes-1)/memoChunkBytes)
	out = append(out, newFelt(int64(len(data))))
	for i := 0; i < len(data); i += memoChunkBytes {
		end := min(i+memoChunkBytes, len(data))
		out = append(out, feltFromBigEndian(data[i:end]))
	}
	return out
}

// DecodeMemo reverses EncodeMemo. Fails with ErrInvalidFormat on an
// empty felt sequence or a length prefix longer than the supplied chunks
// can cover; chunks beyond the declared length are ignored.
func DecodeMemo(felts []Felt) (string, error) {
	if len(felts) == 0 {
		return "", wrapf(ErrInvalidFormat, "empty memo felt sequence")
	}
	if felts[0] == nil || felts[0].Sign() < 0 || !felts[0].IsInt64() {
		return "", wrapf(ErrInvalidFormat, "invalid memo length prefix")
	}
	length := felts[0].Int64()
	if length > int64(len(felts)-1)*memoChunkBytes {
		return "", wrapf(ErrInvalidFormat, "memo felt sequence too short for declared length %d", length)
	}

	out := make([]byte, 0, length)
	for _, chunk := range felts[1:] {
		remaining := length - int64(len(out))
		if remaining <= 0 {
			break
		}
		chunkBytes := bigEndianFromFelt(chunk)
		take := int64(len(chunkBytes))
		if take > remaining {
			take = remaining
		}
		out = append(out, chunkBytes[:take]...)
	}
	if int64(len(out)) != length {
		return "", wrapf(ErrInvalidFormat, "memo felt sequence too short for declared length %d", length)
	}
	return string(out), nil
}

func newFelt(v int64) Felt {
	return big.NewInt(v)
}

// feltFromBigEndian packs up to 31 bytes into a felt, most-significant
// byte first, zero-padding the chunk on the right to 31 bytes before
// conversion so a short final chunk still occupies its high-order position.
func feltFromBigEndian(chunk []byte) Felt {
	padded := make([]byte, memoChunkBytes)
	copy(padded, chunk)
	return new(big.Int).SetBytes(padded)
}

// bigEndianFromFelt is the inverse of feltFromBigEndian: it always
// returns memoChunkBytes bytes, most-significant byte first.
func bigEndianFromFelt(f Felt) []byte {
	out := make([]byte, memoChunkBytes)
	if f == nil {
		return out
	}
	b := f.Bytes()
	copy(out[memoChunkBytes-len(b):], b)
	return out
}

// Canonicalize normalizes a hex felt string for equality comparison
// (§4.5): lower-case, strip "0x", strip leading zero nibbles, prepend
// "0x". "0x0" canonicalizes to itself.
func Canonicalize(hex HexString) HexString {
	trimmed := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hex)), "0x")
	trimmed = strings.TrimLeft(trimmed, "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return "0x" + trimmed
}

// CanonicalizeCrossChainAddress renders an EIP-55 checksummed hex
// address for display when a chain_tag names a non-Starknet settlement
// leg. Not load-bearing for any core invariant (SPEC_FULL.md §3).
func CanonicalizeCrossChainAddress(addr []byte) (string, error) {
	if len(addr) != 20 {
		return "", wrapf(ErrInvalidFormat, "cross-chain address must be 20 bytes, got %d", len(addr))
	}
	hexAddr := fmt.Sprintf("%040x", addr)
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(hexAddr))
	hashBytes := hash.Sum(nil)

	out := make([]byte, len(hexAddr))
	for i, c := range []byte(hexAddr) {
		if c >= '0' && c <= '9' {
			out[i] = c
			continue
		}
		hashByte := hashBytes[i/2]
		var nibble byte
		if i%2 == 0 {
			nibble = hashByte >> 4
		} else {
			nibble = hashByte & 0x0f
		}
		if nibble >= 8 {
			out[i] = c - 32 // upper-case
		} else {
			out[i] = c
		}
	}
	return "0x" + string(out), nil
}
