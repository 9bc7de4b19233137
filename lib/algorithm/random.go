// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package algorithm

import (
	"encoding/binary"
	"math/rand/v2"
)

// message is the plaintext every workload signs or encrypts.
var message = []byte("Hello World!")

// runState carries the seeded stream across a run's operations.
type runState struct {
	random *rand.ChaCha8

	// Cached per run, as a long-lived key would be.
	symmetricKey []byte
}

func newRunState(seed uint64) *runState {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return &runState{random: rand.NewChaCha8(key)}
}

// bytes returns n bytes from the stream.
func (s *runState) bytes(n int) []byte {
	buffer := make([]byte, n)
	s.random.Read(buffer)
	return buffer
}

// key returns the run's 32-byte symmetric key, drawing it on first use.
func (s *runState) key() []byte {
	if s.symmetricKey == nil {
		s.symmetricKey = s.bytes(32)
	}
	return s.symmetricKey
}
