// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package algorithm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned by Parse for a name outside the registry.
var ErrUnknown = errors.New("unknown algorithm")

// ErrInvalidVolume is returned for a volume below one.
var ErrInvalidVolume = errors.New("invalid volume")

const (
	// DefaultVolume is the number of operations per run when the
	// caller does not choose one.
	DefaultVolume = 1000

	// DefaultSeed seeds the workload's random stream.
	DefaultSeed = 42
)

// Algorithm identifies one registered workload.
type Algorithm int

const (
	MLKEM1024 Algorithm = iota
	MLDSA87
	XChaCha20Poly1305
	AESGCM
	RSAPSS
	X25519
	Age
	algorithmCount
)

// ChallengeType classifies what an algorithm is exercised for.
type ChallengeType string

const (
	KeyEncapsulation ChallengeType = "Key Encapsulation"
	DigitalSignature ChallengeType = "Digital Signature"
	Cipher           ChallengeType = "Cipher"
	KeyExchange      ChallengeType = "Key Exchange"
)

type entry struct {
	name      string
	aliases   []string
	challenge ChallengeType
	operation operation
}

// operation performs one complete round trip. It receives the run's
// random stream.
type operation func(state *runState) error

var registry = [algorithmCount]entry{
	MLKEM1024:         {name: "MLKEM_1024", aliases: []string{"KEM"}, challenge: KeyEncapsulation, operation: mlkemOperation},
	MLDSA87:           {name: "MLDSA_87", aliases: []string{"DSS"}, challenge: DigitalSignature, operation: mldsaOperation},
	XChaCha20Poly1305: {name: "XChaCha20_Poly1305", aliases: []string{"XCHACHA"}, challenge: Cipher, operation: xchachaOperation},
	AESGCM:            {name: "AES_GCM", aliases: []string{"AES"}, challenge: Cipher, operation: aesGCMOperation},
	RSAPSS:            {name: "RSA_PSS", aliases: []string{"RSA"}, challenge: DigitalSignature, operation: rsaPSSOperation},
	X25519:            {name: "X25519", aliases: []string{"DH", "ECDH"}, challenge: KeyExchange, operation: x25519Operation},
	Age:               {name: "Age", aliases: []string{"AGE_X25519"}, challenge: Cipher, operation: ageOperation},
}

// All returns every registered algorithm in registry order.
func All() []Algorithm {
	all := make([]Algorithm, algorithmCount)
	for i := range all {
		all[i] = Algorithm(i)
	}
	return all
}

// Names returns the canonical names in registry order.
func Names() []string {
	names := make([]string, algorithmCount)
	for i, entry := range registry {
		names[i] = entry.name
	}
	return names
}

// Parse resolves a canonical name or alias, ignoring case.
func Parse(name string) (Algorithm, error) {
	for i, entry := range registry {
		if strings.EqualFold(name, entry.name) {
			return Algorithm(i), nil
		}
		for _, alias := range entry.aliases {
			if strings.EqualFold(name, alias) {
				return Algorithm(i), nil
			}
		}
	}
	return 0, fmt.Errorf("%w %q; valid algorithms: %s", ErrUnknown, name, strings.Join(Names(), ", "))
}

func (a Algorithm) valid() bool { return a >= 0 && a < algorithmCount }

// String returns the canonical name.
func (a Algorithm) String() string {
	if !a.valid() {
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
	return registry[a].name
}

// ChallengeType returns what the algorithm is exercised for.
func (a Algorithm) ChallengeType() ChallengeType {
	if !a.valid() {
		return ""
	}
	return registry[a].challenge
}

// MarshalText encodes the canonical name.
func (a Algorithm) MarshalText() ([]byte, error) {
	if !a.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknown, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText accepts anything Parse does.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Outcome is the result a workload returns.
type Outcome struct {
	Algorithm  Algorithm `json:"algorithm"`
	Operations int       `json:"operations_completed"`
	Volume     int       `json:"volume"`
	Seed       uint64    `json:"seed"`
}

// Workload is a ready-to-profile run of one algorithm.
type Workload func(ctx context.Context) (any, error)

// ValidateVolume rejects volumes below one.
func ValidateVolume(volume int) error {
	if volume <= 0 {
		return fmt.Errorf("%w: volume must be greater than 0, got %d", ErrInvalidVolume, volume)
	}
	return nil
}

// NewWorkload returns a workload performing volume operations of a.
// The workload checks ctx between operations and stops early with
// ctx's error when it is cancelled.
func NewWorkload(a Algorithm, volume int, seed uint64) (Workload, error) {
	if !a.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknown, int(a))
	}
	if err := ValidateVolume(volume); err != nil {
		return nil, err
	}
	operation := registry[a].operation
	return func(ctx context.Context) (any, error) {
		state := newRunState(seed)
		for completed := range volume {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := operation(state); err != nil {
				return nil, fmt.Errorf("%s operation %d: %w", a, completed+1, err)
			}
		}
		return Outcome{Algorithm: a, Operations: volume, Volume: volume, Seed: seed}, nil
	}, nil
}
