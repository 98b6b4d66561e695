package zk

import (
	"bytes"

	"github.com/taurusgroup/paillier-zk/internal/cbor"
	"github.com/taurusgroup/paillier-zk/internal/params"
	"github.com/taurusgroup/paillier-zk/pkg/hash"
)

// Config is the parameter set that provers and verifiers must agree on.
type Config struct {
	// L bounds plaintexts: |x| < 2ˡ.
	L int
	// LPrime bounds the additive term of an affine operation: |y| < 2ˡ'.
	LPrime int
	// Epsilon is the statistical slack added to every masking range.
	Epsilon int
	// ModIterations is the number of fourth-root challenges in a modulus proof.
	ModIterations int
	// PrmIterations is the number of binary challenges in a ring-Pedersen proof.
	PrmIterations int
	// BitsPaillier is the bit length of every Paillier modulus.
	BitsPaillier int
}

// Current returns the parameter set this module is compiled with.
func Current() Config {
	return Config{
		L:             params.L,
		LPrime:        params.LPrime,
		Epsilon:       params.Epsilon,
		ModIterations: params.ModIterations,
		PrmIterations: params.PrmIterations,
		BitsPaillier:  params.BitsPaillier,
	}
}

// Fingerprint returns a 32 byte digest identifying the parameter set.
func (c Config) Fingerprint() []byte {
	data, err := cbor.Marshal(c)
	if err != nil {
		panic(err)
	}
	h := hash.New(hash.BytesWithDomain{
		TheDomain: "Config",
		Bytes:     data,
	})
	return h.Sum()[:32]
}

// Matches reports whether fingerprint identifies c.
func (c Config) Matches(fingerprint []byte) bool {
	return bytes.Equal(c.Fingerprint(), fingerprint)
}
