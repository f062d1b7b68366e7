package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignPersonal signs data with the EIP-191 personal message prefix and returns
// the 65 byte signature with v in {27, 28}.
func SignPersonal(privatekey string, data []byte) ([]byte, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privatekey, "0x"))
	if err != nil {
		return nil, err
	}

	sig, err := crypto.Sign(accounts.TextHash(data), privateKey)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27

	return sig, nil
}

// RecoverPersonal returns the address that produced a SignPersonal signature over data.
func RecoverPersonal(sig []byte, data []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(sig))
	}
	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	publicKey, err := crypto.SigToPub(accounts.TextHash(data), normalized)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*publicKey), nil
}

// Verify reports whether sig over data was produced by addr.
func Verify(addr string, sig []byte, data []byte) (bool, error) {
	if !common.IsHexAddress(addr) {
		return false, fmt.Errorf("invalid address: %s", addr)
	}
	recovered, err := RecoverPersonal(sig, data)
	if err != nil {
		return false, err
	}
	return recovered == common.HexToAddress(addr), nil
}

// ToPublic converts private key to public key
func ToPublic(priv string) (string, *ecdsa.PublicKey, error) {
	priv = strings.TrimPrefix(strings.TrimSpace(priv), "0x")
	if priv == "" {
		return "", nil, fmt.Errorf("invalid private key")
	}

	privateKeyBytes, err := hex.DecodeString(priv)
	if err != nil {
		return "", nil, err
	}

	privateKey, err := crypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return "", nil, err
	}

	publicKey := privateKey.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return "", nil, fmt.Errorf("cannot assert type: publicKey is not of type *ecdsa.PublicKey")
	}

	publicKeyBytes := crypto.FromECDSAPub(publicKeyECDSA)
	publicK := hexutil.Encode(publicKeyBytes)[4:]
	return publicK, publicKeyECDSA, nil
}

// ToAddress derives the checksummed account address of a hex private key.
func ToAddress(priv string) (string, error) {
	_, publicKeyECDSA, err := ToPublic(priv)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(*publicKeyECDSA).Hex(), nil
}
