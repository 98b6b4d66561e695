package test

import (
	"crypto/rand"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/google/uuid"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
	"github.com/taurusgroup/paillier-zk/pkg/paillier"
	"github.com/taurusgroup/paillier-zk/pkg/pedersen"
	"github.com/taurusgroup/paillier-zk/pkg/pool"
)

// ZKFixtures are the keys shared by the proof tests of a package.
//
// Generating safe primes is slow, so they are created once per test binary.
type ZKFixtures struct {
	// Prover owns the Paillier key under which statements are encrypted.
	Prover *paillier.SecretKey
	// Verifier owns a second Paillier key, used by affine proofs, and the ring-Pedersen parameters.
	Verifier *paillier.SecretKey
	// Aux are ring-Pedersen parameters over the verifier's modulus.
	Aux *pedersen.Parameters
	// Lambda is the secret such that Aux.S = Aux.Tˡ.
	Lambda *saferith.Nat
}

var (
	zkFixtures     *ZKFixtures
	zkFixturesOnce sync.Once
)

// ZK returns the package-wide fixtures, generating them on first use.
func ZK() *ZKFixtures {
	zkFixturesOnce.Do(func() {
		pl := pool.NewPool(0)
		defer pl.TearDown()

		prover, err := paillier.NewSecretKey(rand.Reader, pl)
		if err != nil {
			panic(err)
		}
		verifier, err := paillier.NewSecretKey(rand.Reader, pl)
		if err != nil {
			panic(err)
		}
		aux, lambda, err := verifier.GeneratePedersen(rand.Reader)
		if err != nil {
			panic(err)
		}
		zkFixtures = &ZKFixtures{
			Prover:   prover,
			Verifier: verifier,
			Aux:      aux,
			Lambda:   lambda,
		}
	})
	return zkFixtures
}

// SessionHash returns a transcript bound to a fresh random session identifier.
func SessionHash() *hash.Hash {
	id := uuid.New()
	return hash.NewWithContext(id[:])
}
