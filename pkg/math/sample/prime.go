package sample

import (
	"fmt"
	"io"
	"math"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/pool"
)

// oddPrimes returns all the odd prime numbers < below, using the sieve of Eratosthenes.
func oddPrimes(below uint32) []uint32 {
	composite := make([]bool, below)
	for p := 2; p*p < len(composite); p++ {
		if composite[p] {
			continue
		}
		for i := p * p; i < len(composite); i += p {
			composite[i] = true
		}
	}
	// there are roughly N / log N primes below N
	nF := float64(below)
	out := make([]uint32, 0, int(nF/math.Log(nF)))
	for p := uint32(3); p < below; p++ {
		if !composite[p] {
			out = append(out, p)
		}
	}
	return out
}

const (
	// sieveSize is the number of candidates examined after each random starting point.
	sieveSize = 1 << 18
	// primeBound is the upper bound on the primes used for sieving.
	primeBound = 1 << 20
	// blumPrimalityIterations is the number of Miller-Rabin rounds applied to (p-1)/2.
	blumPrimalityIterations = 20
	// maxPrimeIterations bounds the number of sieve windows scanned for one key.
	//
	// A window holds a safe prime of the right size with constant probability, so
	// this is only reached when the randomness source is broken.
	maxPrimeIterations = 100_000
)

// ErrMaxPrimeIterations is returned when no safe prime was found within maxPrimeIterations windows.
var ErrMaxPrimeIterations = fmt.Errorf("sample: failed to generate prime after %d iterations", maxPrimeIterations)

var (
	sievePrimes     []uint32
	initSievePrimes sync.Once
)

// sieves are large, so they are recycled between attempts.
var sievePool = sync.Pool{
	New: func() interface{} {
		sieve := make([]bool, sieveSize)
		return &sieve
	},
}

// trySafePrime looks for a safe prime p = 3 mod 4 of the given size in a window following
// a random starting point. It returns nil when the window contains none, and an error
// only when rand fails.
func trySafePrime(rand io.Reader, bits int) (*saferith.Nat, error) {
	initSievePrimes.Do(func() {
		sievePrimes = oddPrimes(primeBound)
	})

	buf := make([]byte, (bits+7)/8)
	if err := readBits(rand, buf); err != nil {
		return nil, err
	}
	// p and (p - 1) / 2 can only both be prime if p = 3 mod 4
	buf[len(buf)-1] |= 3
	// setting the top two bits makes the product of two such primes exactly twice as long
	buf[0] |= 0xC0
	base := new(big.Int).SetBytes(buf)

	// candidate[i] describes base + i
	candidatePtr := sievePool.Get().(*[]bool)
	candidate := *candidatePtr
	defer sievePool.Put(candidatePtr)
	for i := range candidate {
		candidate[i] = i%4 == 0
	}

	remainder := new(big.Int)
	for _, prime := range sievePrimes {
		// x = 0 mod r means x is not prime, x = 1 mod r means (x - 1) / 2 is not prime.
		remainder.SetUint64(uint64(prime))
		r := int(remainder.Mod(base, remainder).Uint64())
		step := int(prime)
		first := step - r
		if r == 0 {
			first = 0
		}
		for i := first; i+1 < len(candidate); i += step {
			candidate[i] = false
			candidate[i+1] = false
		}
	}

	p := new(big.Int)
	q := new(big.Int)
	for delta := range candidate {
		if !candidate[delta] {
			continue
		}
		p.SetUint64(uint64(delta))
		p.Add(p, base)
		if p.BitLen() > bits {
			return nil, nil
		}
		// p is odd, so this is (p - 1) / 2
		q.Rsh(p, 1)
		// q is the more likely one to fail
		if !q.ProbablyPrime(blumPrimalityIterations) {
			continue
		}
		// a single round suffices once q is known to be prime
		if !p.ProbablyPrime(0) {
			continue
		}
		return new(saferith.Nat).SetBig(p, bits), nil
	}
	return nil, nil
}

// BlumPrime returns a safe prime p of size params.BitsBlumPrime.
//
// This means that q := (p - 1) / 2 is also a prime number,
// which implies that p = 3 mod 4.
func BlumPrime(rand io.Reader) (*saferith.Nat, error) {
	for i := 0; i < maxPrimeIterations; i++ {
		p, err := trySafePrime(rand, params.BitsBlumPrime)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, ErrMaxPrimeIterations
}

// Paillier generates the two primes of a Paillier key pair in parallel.
// p, q are safe primes ((p - 1) / 2 is also prime), and Blum primes (p = 3 mod 4).
//
// The windows scanned by all workers share a single maxPrimeIterations budget.
func Paillier(rand io.Reader, pl *pool.Pool) (p, q *saferith.Nat, err error) {
	reader := pool.NewLockedReader(rand)
	var attempts int64
	results, err := pl.Search(2, func() (interface{}, error) {
		if atomic.AddInt64(&attempts, 1) > maxPrimeIterations {
			return nil, ErrMaxPrimeIterations
		}
		prime, err := trySafePrime(reader, params.BitsBlumPrime)
		// a typed nil would count as a result
		if err != nil || prime == nil {
			return nil, err
		}
		return prime, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return results[0].(*saferith.Nat), results[1].(*saferith.Nat), nil
}
