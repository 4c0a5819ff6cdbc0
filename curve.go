package amora

import (
	"crypto/rand"
	"io"
	"math/big"

	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
)

// Curve constants (§3, §4.1, §9: "Global curve constants ... Process-wide
// immutable, initialised at load; no mutation possible"). These are the
// public STARK-curve parameters Starknet's own account contracts use,
// so a stealth address computed here agrees bit-for-bit with what an
// on-chain verifier would compute from the same inputs.
var (
	// FieldPrime is P = 2^251 + 17*2^192 + 1.
	FieldPrime = mustBigInt("3618502788666131213697322783095070105623107215331596699973092056135872020481")
	// CurveOrder is N, the order of the STARK curve's base point.
	CurveOrder = mustBigInt("3618502788666131213697322783095070105526743751716087489154079457884512865583")
	// CurveA is the Weierstrass 'a' coefficient (y^2 = x^3 + a*x + b).
	CurveA = big.NewInt(1)
	// CurveB is the Weierstrass 'b' coefficient.
	CurveB = mustBigInt("3141592653589793238462643383279502884197169399375105820974944592307816406665")
)

func mustBigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("amora: bad curve constant " + s)
	}
	return n
}

// Point is an affine STARK-curve point.
type Point struct {
	X, Y Felt
}

// RandReader is the injectable CSPRNG capability (§5, §9 "Randomness").
// A nil RandReader falls back to crypto/rand.Reader; tests substitute a
// deterministic io.Reader (e.g. a seeded math/rand.Rand wrapped as a
// reader) to get reproducible keys.
type RandReader = io.Reader

func orDefaultRand(r RandReader) io.Reader {
	if r == nil {
		return rand.Reader
	}
	return r
}

// generatorAffine returns the STARK curve's base point G.
func generatorAffine() starkcurve.G1Affine {
	return starkcurve.Generator()
}

func pointFromAffine(p *starkcurve.G1Affine) Point {
	var x, y big.Int
	p.X.BigInt(&x)
	p.Y.BigInt(&y)
	return Point{X: &x, Y: &y}
}

func affineFromPoint(p Point) starkcurve.G1Affine {
	var out starkcurve.G1Affine
	out.X.SetBigInt(p.X)
	out.Y.SetBigInt(p.Y)
	return out
}

func checkScalar(k Felt) error {
	if k == nil {
		return wrapf(ErrOutOfRange, "nil scalar")
	}
	if k.Sign() <= 0 || k.Cmp(CurveOrder) >= 0 {
		return wrapf(ErrOutOfRange, "scalar %s not in [1, N-1]", k.String())
	}
	return nil
}

// RandomScalar uniformly samples a scalar in [1, N-1] and normalizes its
// parity (§4.1). Pass a nil RandReader to use the platform CSPRNG.
func RandomScalar(r RandReader) (Felt, error) {
	reader := orDefaultRand(r)
	for {
		k, err := rand.Int(reader, CurveOrder)
		if err != nil {
			return nil, wrapf(ErrChainError, "drawing random scalar")
		}
		if k.Sign() == 0 {
			continue
		}
		return NormalizeParity(k)
	}
}

// MulBase computes k*G.
func MulBase(k Felt) (Point, error) {
	if err := checkScalar(k); err != nil {
		return Point{}, err
	}
	g := generatorAffine()
	var jac starkcurve.G1Jac
	jac.ScalarMultiplication(&g, k)
	var out starkcurve.G1Affine
	out.FromJacobian(&jac)
	return pointFromAffine(&out), nil
}

// MulPoint computes k*P.
func MulPoint(k Felt, p Point) (Point, error) {
	if err := checkScalar(k); err != nil {
		return Point{}, err
	}
	aff := affineFromPoint(p)
	var jac starkcurve.G1Jac
	jac.ScalarMultiplication(&aff, k)
	var out starkcurve.G1Affine
	out.FromJacobian(&jac)
	return pointFromAffine(&out), nil
}

// AddPoints computes P + Q.
func AddPoints(p, q Point) Point {
	pa := affineFromPoint(p)
	qa := affineFromPoint(q)
	var pj, qj starkcurve.G1Jac
	pj.FromAffine(&pa)
	qj.FromAffine(&qa)
	pj.AddAssign(&qj)
	var out starkcurve.G1Affine
	out.FromJacobian(&pj)
	return pointFromAffine(&out)
}

// Recover computes y^2 = x^3 + a*x + b over the STARK field and returns
// the point with the even-y root (§4.1). Fails with ErrNotOnCurve if x
// is not a quadratic residue, ErrZeroPoint if x is zero or nil.
func Recover(x Felt) (Point, error) {
	if x == nil || x.Sign() == 0 {
		return Point{}, ErrZeroPoint
	}
	if x.Sign() < 0 || x.Cmp(FieldPrime) >= 0 {
		return Point{}, wrapf(ErrOutOfRange, "felt %s", x.String())
	}

	var xe, a, b, x2, x3, ax, rhs fp.Element
	xe.SetBigInt(x)
	a.SetBigInt(CurveA)
	b.SetBigInt(CurveB)
	x2.Square(&xe)
	x3.Mul(&x2, &xe)
	ax.Mul(&a, &xe)
	rhs.Add(&x3, &ax)
	rhs.Add(&rhs, &b)

	var y fp.Element
	if y.Sqrt(&rhs) == nil {
		return Point{}, ErrNotOnCurve
	}

	var yBig big.Int
	y.BigInt(&yBig)
	if yBig.Bit(0) == 1 {
		var neg fp.Element
		neg.Neg(&y)
		neg.BigInt(&yBig)
	}

	return Point{X: new(big.Int).Set(x), Y: &yBig}, nil
}

// DerivePub returns x(k*G).
func DerivePub(k Felt) (Felt, error) {
	p, err := MulBase(k)
	if err != nil {
		return nil, err
	}
	return p.X, nil
}

// NormalizeParity returns k if y(k*G) is even, else N-k (§3). The
// returned scalar always produces an even-y point from MulBase.
func NormalizeParity(k Felt) (Felt, error) {
	if err := checkScalar(k); err != nil {
		return nil, err
	}
	p, err := MulBase(k)
	if err != nil {
		return nil, err
	}
	if p.Y.Bit(0) == 1 {
		return new(big.Int).Sub(CurveOrder, k), nil
	}
	return new(big.Int).Set(k), nil
}
