package eip712

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"ensgrants/contexts/identity-access/signature-service/domain/entities"
	domainerrors "ensgrants/contexts/identity-access/signature-service/domain/errors"
	"ensgrants/contexts/identity-access/signature-service/ports"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const signatureLength = 65

// Recoverer implements ports.TypedDataRecoverer with go-ethereum's EIP-712
// encoder and secp256k1 public key recovery.
type Recoverer struct{}

func (Recoverer) Recover(_ context.Context, data entities.TypedData, signature string) (entities.Address, error) {
	sig, err := decodeSignature(signature)
	if err != nil {
		return "", err
	}
	hash, err := Hash(data)
	if err != nil {
		return "", err
	}
	publicKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrInvalidSignature, err)
	}
	return entities.Address(strings.ToLower(crypto.PubkeyToAddress(*publicKey).Hex())), nil
}

// Hash returns the EIP-712 digest keccak256("\x19\x01" || domainSeparator || hashStruct(message)).
func Hash(data entities.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(toAPITypedData(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrMalformedMessage, err)
	}
	return hash, nil
}

// Sign produces a wallet-style signature (V in {27, 28}) over data.
func Sign(data entities.TypedData, key *ecdsa.PrivateKey) (string, error) {
	hash, err := Hash(data)
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", err
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// AddressOf returns the lower-case address controlled by key.
func AddressOf(key *ecdsa.PrivateKey) entities.Address {
	return entities.Address(strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex()))
}

func decodeSignature(signature string) ([]byte, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidSignature, err)
	}
	if len(raw) != signatureLength {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", domainerrors.ErrInvalidSignature, signatureLength, len(raw))
	}
	sig := make([]byte, signatureLength)
	copy(sig, raw)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	if sig[64] > 1 {
		return nil, fmt.Errorf("%w: recovery id %d", domainerrors.ErrInvalidSignature, raw[64])
	}
	return sig, nil
}

func toAPITypedData(data entities.TypedData) apitypes.TypedData {
	fields := make([]apitypes.Type, 0, len(data.Schema.Fields))
	for _, field := range data.Schema.Fields {
		fields = append(fields, apitypes.Type{Name: field.Name, Type: field.Type})
	}
	message := make(apitypes.TypedDataMessage, len(data.Message))
	for key, value := range data.Message {
		message[key] = value
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			data.Schema.PrimaryType: fields,
		},
		PrimaryType: data.Schema.PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:    data.Domain.Name,
			Version: data.Domain.Version,
			ChainId: (*math.HexOrDecimal256)(big.NewInt(data.Domain.ChainID)),
		},
		Message: message,
	}
}

var _ ports.TypedDataRecoverer = Recoverer{}
