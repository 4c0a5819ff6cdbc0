package amora

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
)

// hDomain domain-separates the independent generator H from the base
// generator G.
const hDomain = "AMORA-PEDERSEN-GENERATOR-H-v1"

var generatorH starkcurve.G1Affine

func init() {
	generatorH = generateH()
}

// generateH derives the independent generator H via the same NUMS
// ("hash until a valid curve point turns up") technique the teacher's
// commitment.go uses, re-run over STARK-curve felts via Recover.
func generateH() starkcurve.G1Affine {
	for counter := 0; counter < 1000; counter++ {
		h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", hDomain, counter)))
		var x big.Int
		x.SetBytes(h[:])
		x.Mod(&x, FieldPrime)
		if x.Sign() == 0 {
			continue
		}
		p, err := Recover(&x)
		if err == nil {
			return affineFromPoint(p)
		}
	}
	panic("amora: failed to derive generator H")
}

// Commit creates a Pedersen commitment to a value: C = v*G + r*H, with
// a freshly drawn blinding factor r.
func Commit(value uint64, r RandReader) (PedersenCommitment, error) {
	blinding, err := RandomScalar(r)
	if err != nil {
		return PedersenCommitment{}, wrapf(ErrChainError, "generating blinding factor")
	}
	return CommitWithBlinding(value, blinding)
}

// CommitWithBlinding creates a Pedersen commitment with a caller-chosen
// blinding factor.
func CommitWithBlinding(value uint64, blinding Felt) (PedersenCommitment, error) {
	if err := checkScalar(blinding); err != nil {
		return PedersenCommitment{}, wrapf(ErrOutOfRange, "blinding: %v", err)
	}

	var vScalar fr.Element
	vScalar.SetUint64(value)
	var vBig big.Int
	vScalar.BigInt(&vBig)

	rH, err := MulPoint(blinding, pointFromAffine(&generatorH))
	if err != nil {
		return PedersenCommitment{}, err
	}

	if vBig.Sign() == 0 {
		return PedersenCommitment{CommitmentX: rH.X, CommitmentY: rH.Y, Blinding: blinding}, nil
	}

	vG, err := MulBase(&vBig)
	if err != nil {
		return PedersenCommitment{}, err
	}
	c := AddPoints(vG, rH)
	return PedersenCommitment{CommitmentX: c.X, CommitmentY: c.Y, Blinding: blinding}, nil
}

// VerifyOpening verifies that a commitment opens to a specific value.
func VerifyOpening(c PedersenCommitment, value uint64) (bool, error) {
	expected, err := CommitWithBlinding(value, c.Blinding)
	if err != nil {
		return false, err
	}
	return expected.CommitmentX.Cmp(c.CommitmentX) == 0 && expected.CommitmentY.Cmp(c.CommitmentY) == 0, nil
}

// AddCommitments adds two commitments homomorphically:
// (v1*G + r1*H) + (v2*G + r2*H) = (v1+v2)*G + (r1+r2)*H.
func AddCommitments(c1, c2 PedersenCommitment) (PedersenCommitment, error) {
	sum := AddPoints(Point{X: c1.CommitmentX, Y: c1.CommitmentY}, Point{X: c2.CommitmentX, Y: c2.CommitmentY})
	blinding := AddBlindings(c1.Blinding, c2.Blinding)
	return PedersenCommitment{CommitmentX: sum.X, CommitmentY: sum.Y, Blinding: blinding}, nil
}

// SubtractCommitments subtracts two commitments homomorphically.
func SubtractCommitments(c1, c2 PedersenCommitment) (PedersenCommitment, error) {
	negY := new(big.Int).Sub(FieldPrime, c2.CommitmentY)
	diff := AddPoints(Point{X: c1.CommitmentX, Y: c1.CommitmentY}, Point{X: c2.CommitmentX, Y: negY})
	blinding := SubtractBlindings(c1.Blinding, c2.Blinding)
	return PedersenCommitment{CommitmentX: diff.X, CommitmentY: diff.Y, Blinding: blinding}, nil
}

// AddBlindings adds two blinding factors mod the curve order.
func AddBlindings(b1, b2 Felt) Felt {
	var s1, s2, sum fr.Element
	s1.SetBigInt(b1)
	s2.SetBigInt(b2)
	sum.Add(&s1, &s2)
	var out big.Int
	sum.BigInt(&out)
	return &out
}

// SubtractBlindings subtracts two blinding factors mod the curve order.
func SubtractBlindings(b1, b2 Felt) Felt {
	var s1, s2, diff fr.Element
	s1.SetBigInt(b1)
	s2.SetBigInt(b2)
	diff.Sub(&s1, &s2)
	var out big.Int
	diff.BigInt(&out)
	return &out
}

// GetGenerators returns G and H for ZK proof integration by callers.
func GetGenerators() Generators {
	g := generatorAffine()
	var gx, gy big.Int
	g.X.BigInt(&gx)
	g.Y.BigInt(&gy)
	var hx, hy big.Int
	generatorH.X.BigInt(&hx)
	generatorH.Y.BigInt(&hy)
	return Generators{Gx: &gx, Gy: &gy, Hx: &hx, Hy: &hy}
}
