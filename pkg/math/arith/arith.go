package arith

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/params"
)

// IsValidNatModN checks that ints are all in the range [1,…,N-1] and are co-prime to N.
func IsValidNatModN(N *saferith.Modulus, ints ...*saferith.Nat) bool {
	if N == nil {
		return false
	}
	for _, i := range ints {
		if i == nil {
			return false
		}
		if _, _, lt := i.CmpMod(N); lt != 1 {
			return false
		}
		if i.IsUnit(N) != 1 {
			return false
		}
	}
	return true
}

// IsInIntervalL returns true if n ∈ ]-2ˡ, …, 2ˡ[.
func IsInIntervalL(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.TrueLen() <= params.L
}

// IsInIntervalLPrime returns true if n ∈ ]-2ˡ', …, 2ˡ'[.
func IsInIntervalLPrime(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.TrueLen() <= params.LPrime
}

// IsInIntervalLEps returns true if n ∈ [-2ˡ⁺ᵉ, …, 2ˡ⁺ᵉ].
func IsInIntervalLEps(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.TrueLen() <= params.LPlusEpsilon
}

// IsInIntervalLPrimeEps returns true if n ∈ [-2ˡ'⁺ᵉ, …, 2ˡ'⁺ᵉ].
func IsInIntervalLPrimeEps(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.TrueLen() <= params.LPrimePlusEpsilon
}

// IsInIntervalLEpsPlus1RootN returns true if n ∈ [-2¹⁺ˡ⁺ᵉ√N, …, 2¹⁺ˡ⁺ᵉ√N], for a Paillier modulus N.
func IsInIntervalLEpsPlus1RootN(n *saferith.Int) bool {
	if n == nil {
		return false
	}
	return n.TrueLen() <= 1+params.LPlusEpsilon+(params.BitsIntModN/2)
}

// Jacobi returns the Jacobi symbol (x/n), for an odd n.
func Jacobi(x *saferith.Nat, n *saferith.Modulus) int {
	return big.Jacobi(x.Big(), n.Big())
}

// IsProbablyPrime reports whether n passes a Baillie-PSW test plus 20 Miller-Rabin rounds.
func IsProbablyPrime(n *saferith.Nat) bool {
	return n.Big().ProbablyPrime(20)
}
