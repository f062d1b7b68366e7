package wallet

import (
	"context"
	"fmt"
	"strings"
)

// AccountSigner signs with a key held in the LocalWallet.
type AccountSigner struct {
	address string
	wallet  *LocalWallet
}

func (s *AccountSigner) Address(ctx context.Context) (string, error) {
	return s.address, nil
}

func (s *AccountSigner) SignPersonal(ctx context.Context, data []byte) ([]byte, error) {
	return s.wallet.signPersonal(s.address, data)
}

// KeySigner signs with a raw hex private key, e.g. one read from PRIVATE_KEY.
type KeySigner struct {
	privateKey string
	address    string
}

func NewKeySigner(privateKey string) (*KeySigner, error) {
	privateKey = strings.TrimPrefix(strings.TrimSpace(privateKey), "0x")
	address, err := ToAddress(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &KeySigner{privateKey: privateKey, address: address}, nil
}

func (s *KeySigner) Address(ctx context.Context) (string, error) {
	return s.address, nil
}

func (s *KeySigner) SignPersonal(ctx context.Context, data []byte) ([]byte, error) {
	return SignPersonal(s.privateKey, data)
}
