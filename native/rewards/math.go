package rewards

import "math/big"

// All ratios use 1e18-scaled fixed point ("wad") with truncating integer
// division, so reward amounts are reproducible bit-for-bit.
var (
	wad      = big.NewInt(1_000_000_000_000_000_000)
	bpsDenom = big.NewInt(10_000)
)

const (
	secondsPerYear uint64 = 365 * 24 * 60 * 60
	secondsPerDay  uint64 = 24 * 60 * 60
)

func copyBigInt(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

func wadMul(a, b *big.Int) *big.Int {
	if a == nil || b == nil {
		return big.NewInt(0)
	}
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, wad)
}

func wadDiv(a, b *big.Int) *big.Int {
	if a == nil || b == nil || b.Sign() == 0 {
		return big.NewInt(0)
	}
	scaled := new(big.Int).Mul(a, wad)
	return scaled.Quo(scaled, b)
}

// wadSqrt returns the wad-scaled square root of a wad-scaled value.
func wadSqrt(x *big.Int) *big.Int {
	if x == nil || x.Sign() <= 0 {
		return big.NewInt(0)
	}
	scaled := new(big.Int).Mul(x, wad)
	return scaled.Sqrt(scaled)
}

// wadPow raises a wad-scaled base to a wad-scaled exponent. The integer part
// of the exponent is applied by squaring; the fractional part by square-root
// bit expansion. Exact for integer exponents, which keeps the inflation decay
// halving points exact.
func wadPow(base, exponent *big.Int) *big.Int {
	if base == nil || base.Sign() <= 0 {
		return big.NewInt(0)
	}
	if exponent == nil || exponent.Sign() <= 0 {
		return new(big.Int).Set(wad)
	}

	intPart := new(big.Int).Quo(exponent, wad)
	fracPart := new(big.Int).Rem(exponent, wad)

	result := new(big.Int).Set(wad)
	square := new(big.Int).Set(base)
	for n := new(big.Int).Set(intPart); n.Sign() > 0; n.Rsh(n, 1) {
		if n.Bit(0) == 1 {
			result = wadMul(result, square)
		}
		square = wadMul(square, square)
	}

	if fracPart.Sign() > 0 {
		term := new(big.Int).Set(base)
		frac := new(big.Int).Set(fracPart)
		acc := new(big.Int).Set(wad)
		for i := 0; i < 96 && frac.Sign() > 0; i++ {
			term = wadSqrt(term)
			if term.Sign() == 0 {
				break
			}
			frac.Lsh(frac, 1)
			if frac.Cmp(wad) >= 0 {
				acc = wadMul(acc, term)
				frac.Sub(frac, wad)
			}
		}
		result = wadMul(result, acc)
	}
	return result
}

func minBigInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
