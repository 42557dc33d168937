package client

import (
	"crypto/ed25519"
	"errors"
	"strconv"

	"github.com/web4asset/w4t/origin"
	"github.com/web4asset/w4t/types"
)

var ErrUnsupportedKey = errors.New("crypto: unsupported private key length")

// NormalizeKey accepts a 32 byte seed or a 64 byte ed25519 private key
func NormalizeKey(privKey []byte) (ed25519.PrivateKey, error) {
	switch len(privKey) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(privKey), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(privKey), nil
	default:
		return nil, ErrUnsupportedKey
	}
}

// SignMint builds and signs a mint call from the account owning privKey
func SignMint(privKey []byte, target types.AccountID, amount, nonce uint64) (origin.SignedCall, error) {
	key, err := NormalizeKey(privKey)
	if err != nil {
		return origin.SignedCall{}, err
	}
	caller := types.AccountIDFromPublicKey(key.Public().(ed25519.PublicKey))
	return origin.Sign(origin.Call{Caller: caller, Target: target, Amount: amount, Nonce: nonce}, key), nil
}

func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}
