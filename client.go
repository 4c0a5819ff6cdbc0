package amora

import (
	"context"
	"math/big"
)

// Selector names for the on-chain ABI this client targets (§6.1). These
// are plain function names, not Starknet selector hashes: computing the
// selector hash is the abstract ChainClient's job, not the core's.
const (
	selectorRegisterKeys   = "register_keys"
	selectorGetMetaAddress = "get_meta_address"
	selectorIsRegistered   = "is_registered"
	selectorAnnounce       = "announce"
	selectorTransfer       = "transfer"
	selectorBalanceOf      = "balanceOf"
	selectorIsDeployed     = "is_deployed"
)

// uint128Mod is 2^128, the modulus the chain's u256 convention splits
// an amount into (low, high) halves on.
var uint128Mod = new(big.Int).Lsh(big.NewInt(1), 128)

// RawEvent is one on-chain event record as returned by
// ChainClient.GetEvents (§6.2): keyed fields plus an ordered data array.
type RawEvent struct {
	Keys        []Felt
	Data        []Felt
	BlockNumber uint64
	TxHash      HexString
}

// ChainClient is the abstract chain collaborator the Client binds to
// (§1, §4.6). The core never dials a network itself; it only consumes
// these three operations.
type ChainClient interface {
	Call(ctx context.Context, target Felt, selector string, calldata []Felt) ([]Felt, error)
	GetEvents(ctx context.Context, address Felt, fromBlock, toBlock uint64) ([]RawEvent, error)
	Execute(ctx context.Context, account Felt, calls []Call) (HexString, error)
}

// ClientConfig is the Client's enumerated configuration (§9: "duck-typed
// config object -> enumerated configuration"). No inheritance, no
// dynamic extension.
type ClientConfig struct {
	ChainClient             ChainClient
	RegistryAddress         Felt
	StealthAccountClassHash Felt
	// OnSkippedEvent, if set, is called with the index and reason for
	// every malformed announcement event FetchAnnouncements skips
	// (§4.8 observability callback).
	OnSkippedEvent func(index int, err error)
}

// Client is the thin orchestrator binding the core cryptographic
// functions to an abstract chain client (§4.6).
type Client struct {
	cfg ClientConfig
}

// NewClient constructs a Client from a literal ClientConfig.
func NewClient(cfg ClientConfig) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) wrapChainErr(err error) error {
	if err == nil {
		return nil
	}
	return wrapf(ErrChainError, "%v", err)
}

// Register submits register_keys(K_spend, K_view) to the registry
// (§4.6, §6.1).
func (c *Client) Register(ctx context.Context, account Felt, keys StealthKeys) error {
	call := Call{
		Target:   c.cfg.RegistryAddress,
		Selector: selectorRegisterKeys,
		Calldata: []Felt{keys.Spending.Public, keys.Viewing.Public},
	}
	_, err := c.cfg.ChainClient.Execute(ctx, account, []Call{call})
	return c.wrapChainErr(err)
}

// GetMetaAddress calls get_meta_address(addr) and returns nil if either
// key reads back as zero (§4.6, §4.8: "not registered" is not an
// error).
func (c *Client) GetMetaAddress(ctx context.Context, addr Felt, chain ChainID) (*MetaAddress, error) {
	result, err := c.cfg.ChainClient.Call(ctx, c.cfg.RegistryAddress, selectorGetMetaAddress, []Felt{addr})
	if err != nil {
		return nil, c.wrapChainErr(err)
	}
	if len(result) != 2 {
		return nil, wrapf(ErrChainError, "get_meta_address: expected 2 return values, got %d", len(result))
	}
	spend, view := result[0], result[1]
	if spend == nil || view == nil || spend.Sign() == 0 || view.Sign() == 0 {
		return nil, nil
	}
	return &MetaAddress{Chain: chain, SpendingKey: spend, ViewingKey: view}, nil
}

// IsRegistered calls is_registered(addr).
func (c *Client) IsRegistered(ctx context.Context, addr Felt) (bool, error) {
	result, err := c.cfg.ChainClient.Call(ctx, c.cfg.RegistryAddress, selectorIsRegistered, []Felt{addr})
	if err != nil {
		return false, c.wrapChainErr(err)
	}
	if len(result) != 1 || result[0] == nil {
		return false, wrapf(ErrChainError, "is_registered: malformed return value")
	}
	return result[0].Sign() != 0, nil
}

// GenerateStealthAddress delegates to the pure §4.3 derivation, using
// the configured stealth account class hash.
func (c *Client) GenerateStealthAddress(meta MetaAddress, r RandReader) (*StealthAddress, error) {
	return GenerateStealthAddress(meta, c.cfg.StealthAccountClassHash, r)
}

// splitU256 splits a non-negative amount into (low, high) 128-bit
// halves per the chain's u256 convention.
func splitU256(amount *big.Int) (low, high Felt) {
	lo := new(big.Int).Mod(amount, uint128Mod)
	hi := new(big.Int).Rsh(amount, 128)
	return lo, hi
}

// BuildSendCalls produces the token transfer(recipient, amount) call
// and the registry announce(...) call for one stealth payment (§4.6).
// Default metadata is [token_address, amount_low, amount_high,
// ...extraMetadata].
func (c *Client) BuildSendCalls(token Felt, amount *big.Int, stealth *StealthAddress, extraMetadata []Felt) ([2]Call, error) {
	if amount == nil || amount.Sign() < 0 {
		return [2]Call{}, wrapf(ErrOutOfRange, "amount must be non-negative")
	}
	low, high := splitU256(amount)

	transferCall := Call{
		Target:   token,
		Selector: selectorTransfer,
		Calldata: []Felt{stealth.StealthAddress, low, high},
	}

	metadata := make([]Felt, 0, 2+len(extraMetadata))
	metadata = append(metadata, token, low, high)
	metadata = append(metadata, extraMetadata...)

	announceCall := Call{
		Target:   c.cfg.RegistryAddress,
		Selector: selectorAnnounce,
		Calldata: append([]Felt{stealth.StealthAddress, stealth.EphemeralPublicKey, big.NewInt(int64(stealth.ViewTag))}, metadata...),
	}

	return [2]Call{transferCall, announceCall}, nil
}

// SendPayment is one leg of a BatchSend multicall.
type SendPayment struct {
	Token         Felt
	Amount        *big.Int
	Stealth       *StealthAddress
	ExtraMetadata []Felt
}

// BatchSend concatenates per-payment calls into a single multicall
// (§4.6).
func (c *Client) BatchSend(payments []SendPayment) ([]Call, error) {
	calls := make([]Call, 0, 2*len(payments))
	for i, p := range payments {
		pair, err := c.BuildSendCalls(p.Token, p.Amount, p.Stealth, p.ExtraMetadata)
		if err != nil {
			return nil, wrapf(ErrInvalidFormat, "batch send payment %d: %v", i, err)
		}
		calls = append(calls, pair[0], pair[1])
	}
	return calls, nil
}

// parseAnnouncementEvent parses one event's data record
// [stealth_address, caller_address, ephemeral_pub, view_tag,
// metadata_len, metadata...] (§6.2). A metadata_len that would read
// past the data array is rejected as malformed (SPEC_FULL.md §5
// decision 3), rather than silently truncated.
func parseAnnouncementEvent(ev RawEvent) (Announcement, error) {
	if len(ev.Data) < 4 {
		return Announcement{}, wrapf(ErrInvalidFormat, "announcement event: fewer than 4 data fields")
	}
	stealthAddr, caller, ephemeralPub, viewTagFelt := ev.Data[0], ev.Data[1], ev.Data[2], ev.Data[3]
	if stealthAddr == nil || stealthAddr.Sign() == 0 || ephemeralPub == nil || ephemeralPub.Sign() == 0 {
		return Announcement{}, wrapf(ErrInvalidFormat, "announcement event: zero stealth address or ephemeral key")
	}
	if viewTagFelt == nil || viewTagFelt.Sign() < 0 || viewTagFelt.Cmp(big.NewInt(255)) > 0 {
		return Announcement{}, wrapf(ErrInvalidFormat, "announcement event: view tag out of range")
	}

	var metadata []Felt
	if len(ev.Data) >= 5 {
		metadataLenFelt := ev.Data[4]
		if metadataLenFelt == nil || !metadataLenFelt.IsInt64() {
			return Announcement{}, wrapf(ErrInvalidFormat, "announcement event: invalid metadata_len")
		}
		metadataLen := metadataLenFelt.Int64()
		if metadataLen < 0 || int64(len(ev.Data)-5) < metadataLen {
			return Announcement{}, wrapf(ErrInvalidFormat, "announcement event: metadata_len exceeds data array")
		}
		metadata = ev.Data[5 : 5+metadataLen]
	}

	blockNumber := ev.BlockNumber
	return Announcement{
		StealthAddress:     stealthAddr,
		CallerAddress:      caller,
		EphemeralPublicKey: ephemeralPub,
		ViewTag:            uint8(viewTagFelt.Uint64()),
		Metadata:           metadata,
		BlockNumber:        &blockNumber,
		TxHash:             ev.TxHash,
	}, nil
}

// FetchAnnouncements fetches the registry's events for
// [fromBlock, toBlock] with a single GetEvents call and parses each into
// an Announcement, skipping malformed entries and reporting them to the
// optional OnSkippedEvent callback (§4.6, §4.8).
func (c *Client) FetchAnnouncements(ctx context.Context, fromBlock, toBlock uint64) ([]Announcement, error) {
	events, err := c.cfg.ChainClient.GetEvents(ctx, c.cfg.RegistryAddress, fromBlock, toBlock)
	if err != nil {
		return nil, c.wrapChainErr(err)
	}

	out := make([]Announcement, 0, len(events))
	for i, ev := range events {
		ann, err := parseAnnouncementEvent(ev)
		if err != nil {
			if c.cfg.OnSkippedEvent != nil {
				c.cfg.OnSkippedEvent(i, err)
			}
			continue
		}
		out = append(out, ann)
	}
	return out, nil
}

// Scan composes FetchAnnouncements with the full scanner (§4.4, §4.6).
func (c *Client) Scan(ctx context.Context, keys StealthKeys, fromBlock, toBlock uint64) ([]StealthPayment, error) {
	anns, err := c.FetchAnnouncements(ctx, fromBlock, toBlock)
	if err != nil {
		return nil, err
	}
	return ScanAnnouncements(anns, keys.Viewing.Private, keys.Spending.Public, keys.Spending.Private, c.cfg.StealthAccountClassHash)
}

// ScanWatchOnly composes FetchAnnouncements with the watch-only scanner
// (§4.4, §4.6, §8 S6).
func (c *Client) ScanWatchOnly(ctx context.Context, export ViewingKeyExport, fromBlock, toBlock uint64) ([]WatchOnlyMatch, error) {
	anns, err := c.FetchAnnouncements(ctx, fromBlock, toBlock)
	if err != nil {
		return nil, err
	}
	return ScanWithViewingKey(anns, export, c.cfg.StealthAccountClassHash)
}

// WithdrawAll is the amount sentinel for DeployAndWithdraw meaning
// "withdraw the full token balance" (§4.6).
var WithdrawAll *big.Int = nil

// DeployAndWithdraw computes the stealth address owned by stealthPriv,
// triggers counterfactual deployment if it isn't deployed yet, then
// executes a transfer of amount (or the full balance, if amount is
// WithdrawAll/nil) to destination (§4.6).
func (c *Client) DeployAndWithdraw(ctx context.Context, stealthPriv, destination, token Felt, amount *big.Int) error {
	if c.cfg.StealthAccountClassHash == nil {
		return wrapf(ErrNotImplemented, "no stealth account class hash configured")
	}

	stealthPub, err := DerivePub(stealthPriv)
	if err != nil {
		return err
	}
	stealthAddr := ContractAddress(stealthPub, c.cfg.StealthAccountClassHash, stealthPub)

	if _, err := c.cfg.ChainClient.Call(ctx, stealthAddr, selectorIsDeployed, nil); err != nil {
		deployCall := Call{
			Target:   stealthAddr,
			Selector: "__deploy__",
			Calldata: []Felt{c.cfg.StealthAccountClassHash, stealthPub, stealthPub},
		}
		if _, err := c.cfg.ChainClient.Execute(ctx, stealthAddr, []Call{deployCall}); err != nil {
			return c.wrapChainErr(err)
		}
	}

	withdrawAmount := amount
	if withdrawAmount == nil {
		balance, err := c.cfg.ChainClient.Call(ctx, token, selectorBalanceOf, []Felt{stealthAddr})
		if err != nil {
			return c.wrapChainErr(err)
		}
		if len(balance) != 1 || balance[0] == nil {
			return wrapf(ErrChainError, "balanceOf: malformed return value")
		}
		withdrawAmount = balance[0]
	}

	low, high := splitU256(withdrawAmount)
	transferCall := Call{
		Target:   token,
		Selector: selectorTransfer,
		Calldata: []Felt{destination, low, high},
	}
	_, err = c.cfg.ChainClient.Execute(ctx, stealthAddr, []Call{transferCall})
	return c.wrapChainErr(err)
}
