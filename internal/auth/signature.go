package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
)

// loginChallenge is the fixed message wallets sign to prove ownership.
const loginChallenge = "hello world"

// VerifyWalletSignature checks an ed25519 signature over the login challenge.
// The wallet address is the hex-encoded public key with a 0x prefix.
func VerifyWalletSignature(wallet, signature string) error {
	keyBytes, err := decodeHex(wallet)
	if err != nil {
		return fmt.Errorf("decode wallet address: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return fmt.Errorf("wallet address must encode a %d-byte public key, got %d bytes", ed25519.PublicKeySize, len(keyBytes))
	}

	sigBytes, err := decodeHex(signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return fmt.Errorf("signature must be %d bytes, got %d", ed25519.SignatureSize, len(sigBytes))
	}

	if !ed25519.Verify(ed25519.PublicKey(keyBytes), []byte(loginChallenge), sigBytes) {
		return fmt.Errorf("signature does not match wallet")
	}
	return nil
}

// SignLoginChallenge produces a signature accepted by VerifyWalletSignature.
// Used by tests and client tooling.
func SignLoginChallenge(key ed25519.PrivateKey) string {
	return "0x" + hex.EncodeToString(ed25519.Sign(key, []byte(loginChallenge)))
}

// WalletAddress derives the wallet address for a public key.
func WalletAddress(key ed25519.PublicKey) string {
	return "0x" + hex.EncodeToString(key)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	return hex.DecodeString(s)
}
