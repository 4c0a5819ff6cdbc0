package amora

import (
	"math/big"
	"testing"
)

func TestCurve(t *testing.T) {
	t.Run("RandomScalarInRange", func(t *testing.T) {
		k, err := RandomScalar(nil)
		if err != nil {
			t.Fatalf("RandomScalar failed: %v", err)
		}
		if k.Sign() <= 0 || k.Cmp(CurveOrder) >= 0 {
			t.Errorf("scalar %s not in [1, N-1]", k)
		}
	})

	t.Run("NormalizeParityIdempotent", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			k, err := RandomScalar(nil)
			if err != nil {
				t.Fatalf("RandomScalar failed: %v", err)
			}
			once, err := NormalizeParity(k)
			if err != nil {
				t.Fatalf("NormalizeParity failed: %v", err)
			}
			twice, err := NormalizeParity(once)
			if err != nil {
				t.Fatalf("NormalizeParity failed: %v", err)
			}
			if once.Cmp(twice) != 0 {
				t.Errorf("normalize not idempotent: once=%s twice=%s", once, twice)
			}

			p, err := MulBase(once)
			if err != nil {
				t.Fatalf("MulBase failed: %v", err)
			}
			if p.Y.Bit(0) != 0 {
				t.Error("normalized key should yield even-y point")
			}
		}
	})

	t.Run("RecoverRoundTrip", func(t *testing.T) {
		k, err := RandomScalar(nil)
		if err != nil {
			t.Fatalf("RandomScalar failed: %v", err)
		}
		p, err := MulBase(k)
		if err != nil {
			t.Fatalf("MulBase failed: %v", err)
		}
		recovered, err := Recover(p.X)
		if err != nil {
			t.Fatalf("Recover failed: %v", err)
		}
		if recovered.X.Cmp(p.X) != 0 || recovered.Y.Cmp(p.Y) != 0 {
			t.Error("Recover should reproduce the original even-y point")
		}
	})

	t.Run("RecoverRejectsZero", func(t *testing.T) {
		if _, err := Recover(big.NewInt(0)); err == nil {
			t.Error("Recover(0) should fail")
		}
	})

	t.Run("ECDHSymmetry", func(t *testing.T) {
		ka, err := RandomScalar(nil)
		if err != nil {
			t.Fatalf("RandomScalar failed: %v", err)
		}
		kb, err := RandomScalar(nil)
		if err != nil {
			t.Fatalf("RandomScalar failed: %v", err)
		}
		Ka, err := DerivePub(ka)
		if err != nil {
			t.Fatalf("DerivePub failed: %v", err)
		}
		Kb, err := DerivePub(kb)
		if err != nil {
			t.Fatalf("DerivePub failed: %v", err)
		}

		sAB, err := ComputeSharedSecret(ka, Kb)
		if err != nil {
			t.Fatalf("ComputeSharedSecret failed: %v", err)
		}
		sBA, err := ComputeSharedSecret(kb, Ka)
		if err != nil {
			t.Fatalf("ComputeSharedSecret failed: %v", err)
		}
		if sAB.Cmp(sBA) != 0 {
			t.Errorf("ECDH not symmetric: %s != %s", sAB, sBA)
		}
	})

	t.Run("DerivePubOfOne", func(t *testing.T) {
		// Literal numeric vector (spec.md §8): derive_pub(1) equals x(G).
		pub, err := DerivePub(big.NewInt(1))
		if err != nil {
			t.Fatalf("DerivePub failed: %v", err)
		}
		g := generatorAffine()
		var gx big.Int
		g.X.BigInt(&gx)
		if pub.Cmp(&gx) != 0 {
			t.Error("derive_pub(1) should equal x(G)")
		}
	})
}
