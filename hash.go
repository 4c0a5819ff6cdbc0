package amora

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Poseidon sponge parameters: width-3 state (rate 2, capacity 1), cube
// S-box. Round counts follow the usual full/partial Hades split used by
// Poseidon instances over a ~251-bit prime field.
const (
	poseidonWidth         = 3
	poseidonRate          = poseidonWidth - 1
	poseidonFullRounds    = 8
	poseidonPartialRounds = 83
)

var (
	poseidonRoundConstants [poseidonFullRounds + poseidonPartialRounds][poseidonWidth]fp.Element
	poseidonMDS            [poseidonWidth][poseidonWidth]fp.Element
)

func init() {
	poseidonRoundConstants = generatePoseidonRoundConstants()
	poseidonMDS = generatePoseidonMDS()
}

// generatePoseidonRoundConstants derives round constants deterministically
// via a domain-separated SHA-256 counter, the same "hash until you land
// on a valid field element" NUMS technique the teacher's commitment.go
// uses for its independent generator H. These are not Starknet's
// published Poseidon constants (no on-chain conformance vector exists
// for this library to match — see DESIGN.md), only an internally
// consistent, deterministic permutation.
func generatePoseidonRoundConstants() [poseidonFullRounds + poseidonPartialRounds][poseidonWidth]fp.Element {
	var out [poseidonFullRounds + poseidonPartialRounds][poseidonWidth]fp.Element
	for r := range out {
		for w := 0; w < poseidonWidth; w++ {
			out[r][w] = hashToField(fmt.Sprintf("AMORA-POSEIDON-RC-v1:%d:%d", r, w))
		}
	}
	return out
}

// generatePoseidonMDS builds a Cauchy MDS matrix M[i][j] = 1/(x_i + y_j)
// over deterministically-derived, distinct x/y sequences.
func generatePoseidonMDS() [poseidonWidth][poseidonWidth]fp.Element {
	var xs, ys [poseidonWidth]fp.Element
	for i := 0; i < poseidonWidth; i++ {
		xs[i] = hashToField(fmt.Sprintf("AMORA-POSEIDON-MDS-X-v1:%d", i))
		ys[i] = hashToField(fmt.Sprintf("AMORA-POSEIDON-MDS-Y-v1:%d", i))
	}
	var m [poseidonWidth][poseidonWidth]fp.Element
	for i := 0; i < poseidonWidth; i++ {
		for j := 0; j < poseidonWidth; j++ {
			var sum fp.Element
			sum.Add(&xs[i], &ys[j])
			m[i][j].Inverse(&sum)
		}
	}
	return m
}

func hashToField(input string) fp.Element {
	for counter := 0; ; counter++ {
		h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", input, counter)))
		var n big.Int
		n.SetBytes(h[:])
		n.Mod(&n, FieldPrime)
		if n.Sign() != 0 {
			var e fp.Element
			e.SetBigInt(&n)
			return e
		}
	}
}

func cube(x fp.Element) fp.Element {
	var x2, x3 fp.Element
	x2.Square(&x)
	x3.Mul(&x2, &x)
	return x3
}

func poseidonPermute(state [poseidonWidth]fp.Element) [poseidonWidth]fp.Element {
	round := 0
	halfFull := poseidonFullRounds / 2

	for r := 0; r < halfFull; r++ {
		state = addRoundConstants(state, round)
		round++
		for i := range state {
			state[i] = cube(state[i])
		}
		state = mdsMultiply(state)
	}
	for r := 0; r < poseidonPartialRounds; r++ {
		state = addRoundConstants(state, round)
		round++
		state[0] = cube(state[0])
		state = mdsMultiply(state)
	}
	for r := 0; r < halfFull; r++ {
		state = addRoundConstants(state, round)
		round++
		for i := range state {
			state[i] = cube(state[i])
		}
		state = mdsMultiply(state)
	}
	return state
}

func addRoundConstants(state [poseidonWidth]fp.Element, round int) [poseidonWidth]fp.Element {
	var out [poseidonWidth]fp.Element
	for i := range state {
		out[i].Add(&state[i], &poseidonRoundConstants[round][i])
	}
	return out
}

func mdsMultiply(state [poseidonWidth]fp.Element) [poseidonWidth]fp.Element {
	var out [poseidonWidth]fp.Element
	for i := 0; i < poseidonWidth; i++ {
		var acc fp.Element
		for j := 0; j < poseidonWidth; j++ {
			var term fp.Element
			term.Mul(&poseidonMDS[i][j], &state[j])
			acc.Add(&acc, &term)
		}
		out[i] = acc
	}
	return out
}

// PoseidonHash computes a sponge hash over a variable number of field
// elements, returning one felt (§4.2). Single-input and multi-input
// forms share this implementation: absorb inputs rate-elements at a
// time, permute after each block (including the final partial one),
// squeeze the first state element.
func PoseidonHash(inputs []Felt) Felt {
	var state [poseidonWidth]fp.Element

	if len(inputs) == 0 {
		state = poseidonPermute(state)
	}
	for i := 0; i < len(inputs); i += poseidonRate {
		end := min(i+poseidonRate, len(inputs))
		for j, f := range inputs[i:end] {
			var e fp.Element
			e.SetBigInt(f)
			state[j].Add(&state[j], &e)
		}
		state = poseidonPermute(state)
	}

	var out big.Int
	state[0].BigInt(&out)
	return &out
}

// ViewTag returns the low byte of PoseidonHash([sharedSecret]) (§4.2):
// a 1-in-256 fast filter for announcement scanning.
func ViewTag(sharedSecret Felt) uint8 {
	h := PoseidonHash([]Felt{sharedSecret})
	var masked big.Int
	masked.And(h, big.NewInt(0xFF))
	return uint8(masked.Uint64())
}
