// Package origin turns signed calls into verified caller identities. A signed
// Origin can only be obtained from Verify, so holding one proves the host
// checked the caller's signature.
package origin

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/web4asset/w4t/types"
)

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrMalformedCaller  = errors.New("malformed caller")
)

// limits to prevent DoS via oversized inputs
const maxSignatureBase58Len = 128

// Origin is the identity a call was issued by. The zero value is anonymous.
type Origin struct {
	caller types.AccountID
	signed bool
}

// None returns the anonymous origin
func None() Origin {
	return Origin{}
}

func (o Origin) IsSigned() bool {
	return o.signed
}

// Caller returns the verified caller, ok is false for anonymous origins
func (o Origin) Caller() (types.AccountID, bool) {
	return o.caller, o.signed
}

func (o Origin) String() string {
	if !o.signed {
		return "none"
	}
	return "signed(" + string(o.caller) + ")"
}

// Call is a mint request as issued by a client
type Call struct {
	Caller types.AccountID `json:"caller"`
	Target types.AccountID `json:"target"`
	Amount uint64          `json:"amount"`
	Nonce  uint64          `json:"nonce"`
}

// Serialize returns the canonical bytes that get signed
func (c Call) Serialize() []byte {
	return []byte("mint|" + string(c.Caller) + "|" + string(c.Target) + "|" +
		strconv.FormatUint(c.Amount, 10) + "|" + strconv.FormatUint(c.Nonce, 10))
}

type SignedCall struct {
	Call      Call   `json:"call"`
	Signature string `json:"signature"` // base58
}

// Sign signs c with priv. The caller field is not checked against priv here;
// Verify rejects the result if they don't match.
func Sign(c Call, priv ed25519.PrivateKey) SignedCall {
	sig := ed25519.Sign(priv, c.Serialize())
	return SignedCall{Call: c, Signature: base58.Encode(sig)}
}

// Verify checks the signature of sc against the public key encoded in its
// caller id and returns the signed origin
func Verify(sc SignedCall) (Origin, error) {
	if sc.Signature == "" {
		return Origin{}, ErrMissingSignature
	}
	if len(sc.Signature) > maxSignatureBase58Len {
		return Origin{}, fmt.Errorf("%w: signature too large", ErrInvalidSignature)
	}

	pub, err := sc.Call.Caller.PublicKey()
	if err != nil {
		return Origin{}, fmt.Errorf("%w: %v", ErrMalformedCaller, err)
	}

	sig, err := base58.Decode(sc.Signature)
	if err != nil {
		return Origin{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(pub, sc.Call.Serialize(), sig) {
		return Origin{}, ErrInvalidSignature
	}

	return Origin{caller: sc.Call.Caller, signed: true}, nil
}
