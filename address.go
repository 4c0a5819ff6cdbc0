package amora

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"
)

// contractAddressPrefix is "STARKNET_CONTRACT_ADDRESS" packed as a felt,
// the tag Starknet's own deployer uses when computing a counterfactual
// contract address (§4.3, §6.4).
var contractAddressPrefix = asciiToFelt("STARKNET_CONTRACT_ADDRESS")

func asciiToFelt(s string) Felt {
	result := big.NewInt(0)
	for _, c := range s {
		result.Lsh(result, 8)
		result.Or(result, big.NewInt(int64(c)))
	}
	return result
}

// pedersenHashOnElements computes the chained Pedersen hash
// h(h(...h(h(0, a0), a1)...), len), matching Starknet's standard
// hash-on-elements convention. Grounded on privy-sdk-go's
// computeHashOnElements (other_examples).
func pedersenHashOnElements(elements []Felt) Felt {
	elems := make([]*fp.Element, len(elements)+1)
	for i, e := range elements {
		var el fp.Element
		el.SetBigInt(e)
		elems[i] = &el
	}
	var lenEl fp.Element
	lenEl.SetUint64(uint64(len(elements)))
	elems[len(elements)] = &lenEl

	hash := pedersenhash.PedersenArray(elems...)
	var result big.Int
	hash.BigInt(&result)
	return &result
}

// ContractAddress computes the deployment address for a stealth account
// (§4.3, §6.4): a chained Pedersen hash of the tag
// "STARKNET_CONTRACT_ADDRESS", deployer=0 (counterfactual), salt,
// classHash, and pedersen_of(constructor_calldata=[pubkey]).
func ContractAddress(pubkey, classHash, salt Felt) Felt {
	constructorCalldataHash := pedersenHashOnElements([]Felt{pubkey})
	deployer := big.NewInt(0)
	return pedersenHashOnElements([]Felt{
		contractAddressPrefix,
		deployer,
		salt,
		classHash,
		constructorCalldataHash,
	})
}
