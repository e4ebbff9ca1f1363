package holo

import "math/big"

// fieldOrder is 2^521 - 1 (a Mersenne prime). 521 bits leaves room to carry
// 512 bits of shard data per element with every evaluation still inside the
// field.
var fieldOrder *big.Int

const (
	// elementSize is how many data bytes one field element carries.
	elementSize = 64
	// evalSize is the fixed encoding width of one field element on the wire.
	evalSize = 66
)

func init() {
	fieldOrder = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 521), big.NewInt(1))
}

// lagrangeEval evaluates, at x, the unique polynomial of degree len(xs)-1
// passing through the points (xs[i], ys[i]) over the field.
func lagrangeEval(xs []int64, ys []*big.Int, x int64) *big.Int {
	sum := new(big.Int)
	num := new(big.Int)
	den := new(big.Int)
	term := new(big.Int)

	for i := range xs {
		num.SetInt64(1)
		den.SetInt64(1)
		for j := range xs {
			if j == i {
				continue
			}
			term.SetInt64(x - xs[j])
			num.Mul(num, term)
			term.SetInt64(xs[i] - xs[j])
			den.Mul(den, term)
		}
		num.Mod(num, fieldOrder)
		den.Mod(den, fieldOrder)
		den.ModInverse(den, fieldOrder)

		term.Mul(ys[i], num)
		term.Mod(term, fieldOrder)
		term.Mul(term, den)
		term.Mod(term, fieldOrder)
		sum.Add(sum, term)
	}
	return sum.Mod(sum, fieldOrder)
}
