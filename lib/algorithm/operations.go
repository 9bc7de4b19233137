// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package algorithm

import (
	"bytes"
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/cloudflare/circl/kem/mlkem/mlkem1024"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

var (
	errSharedSecretMismatch = errors.New("shared secrets differ")
	errSignatureRejected    = errors.New("signature did not verify")
	errPlaintextMismatch    = errors.New("decrypted plaintext differs")
)

const rsaKeyBits = 2048

// mlkemOperation: keygen, encapsulate, decapsulate, compare secrets.
func mlkemOperation(state *runState) error {
	scheme := mlkem1024.Scheme()
	publicKey, privateKey := scheme.DeriveKeyPair(state.bytes(scheme.SeedSize()))
	ciphertext, sharedSecret, err := scheme.EncapsulateDeterministically(publicKey, state.bytes(scheme.EncapsulationSeedSize()))
	if err != nil {
		return fmt.Errorf("encapsulate: %w", err)
	}
	decapsulated, err := scheme.Decapsulate(privateKey, ciphertext)
	if err != nil {
		return fmt.Errorf("decapsulate: %w", err)
	}
	if !bytes.Equal(sharedSecret, decapsulated) {
		return errSharedSecretMismatch
	}
	return nil
}

// mldsaOperation: keygen, sign, verify.
func mldsaOperation(state *runState) error {
	scheme := mldsa87.Scheme()
	publicKey, privateKey := scheme.DeriveKey(state.bytes(scheme.SeedSize()))
	signature := scheme.Sign(privateKey, message, nil)
	if !scheme.Verify(publicKey, message, signature, nil) {
		return errSignatureRejected
	}
	return nil
}

// xchachaOperation: seal and open under the run key with a fresh
// 24-byte nonce.
func xchachaOperation(state *runState) error {
	aead, err := chacha20poly1305.NewX(state.key())
	if err != nil {
		return err
	}
	return sealOpen(aead, state.bytes(aead.NonceSize()))
}

// aesGCMOperation: AES-256-GCM seal and open under the run key.
func aesGCMOperation(state *runState) error {
	block, err := aes.NewCipher(state.key())
	if err != nil {
		return err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}
	return sealOpen(aead, state.bytes(aead.NonceSize()))
}

func sealOpen(aead cipher.AEAD, nonce []byte) error {
	ciphertext := aead.Seal(nil, nonce, message, nil)
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	if !bytes.Equal(plaintext, message) {
		return errPlaintextMismatch
	}
	return nil
}

// rsaPSSOperation: 2048-bit keygen, PSS/SHA-256 sign, verify.
func rsaPSSOperation(*runState) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	digest := sha256.Sum256(message)
	options := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto, Hash: crypto.SHA256}
	signature, err := rsa.SignPSS(rand.Reader, privateKey, crypto.SHA256, digest[:], options)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}
	if err := rsa.VerifyPSS(&privateKey.PublicKey, crypto.SHA256, digest[:], signature, options); err != nil {
		return fmt.Errorf("%w: %v", errSignatureRejected, err)
	}
	return nil
}

// x25519Operation: two ephemeral key pairs, both sides derive the
// shared secret and expand it with HKDF-SHA256.
func x25519Operation(state *runState) error {
	alicePrivate, bobPrivate := state.bytes(curve25519.ScalarSize), state.bytes(curve25519.ScalarSize)
	alicePublic, err := curve25519.X25519(alicePrivate, curve25519.Basepoint)
	if err != nil {
		return err
	}
	bobPublic, err := curve25519.X25519(bobPrivate, curve25519.Basepoint)
	if err != nil {
		return err
	}
	aliceShared, err := curve25519.X25519(alicePrivate, bobPublic)
	if err != nil {
		return err
	}
	bobShared, err := curve25519.X25519(bobPrivate, alicePublic)
	if err != nil {
		return err
	}

	aliceKey, err := deriveKey(aliceShared)
	if err != nil {
		return err
	}
	bobKey, err := deriveKey(bobShared)
	if err != nil {
		return err
	}
	if !bytes.Equal(aliceKey, bobKey) {
		return errSharedSecretMismatch
	}
	return nil
}

func deriveKey(shared []byte) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, shared, nil, []byte("handshake data")), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// ageOperation: X25519 identity, encrypt to its recipient, decrypt.
func ageOperation(*runState) error {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generate identity: %w", err)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, identity.Recipient())
	if err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	if _, err := writer.Write(message); err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("encrypt: %w", err)
	}

	reader, err := age.Decrypt(&ciphertext, identity)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	if !bytes.Equal(plaintext, message) {
		return errPlaintextMismatch
	}
	return nil
}
