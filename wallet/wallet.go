package wallet

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/filswan/go-swan-lib/logs"
	"github.com/lagrangedao/go-compute-client/wallet/tablewriter"
	"golang.org/x/xerrors"
)

const (
	WalletRepo  = "keystore"
	KNamePrefix = "wallet-"
)

var (
	ErrKeyInfoNotFound = fmt.Errorf("key info not found")
	ErrKeyExists       = fmt.Errorf("key already exists")
)

func SetupWallet(repoPath string) (*LocalWallet, error) {
	kstore, err := OpenOrInitKeystore(filepath.Join(repoPath, WalletRepo))
	if err != nil {
		return nil, err
	}

	return NewWallet(kstore)
}

type LocalWallet struct {
	keys     map[string]*KeyInfo
	keystore KeyStore

	lk sync.Mutex
}

func NewWallet(keystore KeyStore) (*LocalWallet, error) {
	w := &LocalWallet{
		keys:     make(map[string]*KeyInfo),
		keystore: keystore,
	}
	return w, nil
}

func (w *LocalWallet) Close() error {
	if c, ok := w.keystore.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WalletSign personal-signs msg with the key of addr and returns it hex encoded.
func (w *LocalWallet) WalletSign(ctx context.Context, addr string, msg []byte) (string, error) {
	sig, err := w.signPersonal(addr, msg)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

func (w *LocalWallet) WalletVerify(ctx context.Context, addr string, sigByte []byte, data []byte) (bool, error) {
	return Verify(addr, sigByte, data)
}

func (w *LocalWallet) signPersonal(addr string, data []byte) ([]byte, error) {
	ki, err := w.findKey(addr)
	if err != nil {
		return nil, err
	}
	if ki == nil {
		return nil, xerrors.Errorf("signing using private key '%s': %w", addr, ErrKeyInfoNotFound)
	}
	return SignPersonal(ki.PrivateKey, data)
}

func (w *LocalWallet) findKey(addr string) (*KeyInfo, error) {
	w.lk.Lock()
	defer w.lk.Unlock()

	addr = normalizeAddress(addr)
	k, ok := w.keys[addr]
	if ok {
		return k, nil
	}
	if w.keystore == nil {
		logs.GetLogger().Warn("findKey didn't find the key in in-memory wallet")
		return nil, nil
	}

	ki, err := w.keystore.Get(addr)
	if err != nil {
		if xerrors.Is(err, ErrKeyInfoNotFound) {
			return nil, nil
		}
		return nil, xerrors.Errorf("getting from keystore: %w", err)
	}

	w.keys[addr] = &ki
	return &ki, nil
}

func (w *LocalWallet) WalletExport(ctx context.Context, addr string) (*KeyInfo, error) {
	k, err := w.findKey(addr)
	if err != nil {
		return nil, xerrors.Errorf("failed to find key to export: %w", err)
	}
	if k == nil {
		return nil, xerrors.Errorf("private key not found for %s", addr)
	}

	return k, nil
}

func (w *LocalWallet) WalletImport(ctx context.Context, ki *KeyInfo) (string, error) {
	if ki == nil || len(strings.TrimSpace(ki.PrivateKey)) == 0 {
		return "", fmt.Errorf("not found private key")
	}
	ki.PrivateKey = strings.TrimPrefix(strings.TrimSpace(ki.PrivateKey), "0x")

	address, err := ToAddress(ki.PrivateKey)
	if err != nil {
		return "", err
	}

	existing, err := w.findKey(address)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", xerrors.Errorf("importing %s: %w", address, ErrKeyExists)
	}

	w.lk.Lock()
	defer w.lk.Unlock()
	if err := w.keystore.Put(address, *ki); err != nil {
		return "", xerrors.Errorf("saving to keystore: %w", err)
	}
	w.keys[address] = ki
	return address, nil
}

func (w *LocalWallet) WalletNew(ctx context.Context) (string, error) {
	w.lk.Lock()
	defer w.lk.Unlock()

	privateK, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}

	privateKey := hexutil.Encode(crypto.FromECDSA(privateK))[2:]
	address := crypto.PubkeyToAddress(privateK.PublicKey).Hex()

	keyInfo := KeyInfo{PrivateKey: privateKey}
	if err := w.keystore.Put(address, keyInfo); err != nil {
		return "", xerrors.Errorf("saving to keystore: %w", err)
	}
	w.keys[address] = &keyInfo

	return address, nil
}

func (w *LocalWallet) WalletDelete(ctx context.Context, addr string) error {
	k, err := w.findKey(addr)
	if err != nil {
		return xerrors.Errorf("failed to delete key %s : %w", addr, err)
	}
	if k == nil {
		return nil // already not there
	}

	w.lk.Lock()
	defer w.lk.Unlock()

	addr = normalizeAddress(addr)
	if err := w.keystore.Delete(addr); err != nil {
		return xerrors.Errorf("failed to delete key %s: %w", addr, err)
	}
	delete(w.keys, addr)

	return nil
}

// WalletList prints the stored addresses with their balance and nonce on the
// chain behind rpcUrl. An empty rpcUrl lists the addresses only.
func (w *LocalWallet) WalletList(ctx context.Context, rpcUrl string, out io.Writer) error {
	addressList, err := w.AddressList(ctx)
	if err != nil {
		return err
	}

	addressKey := "Address"
	balanceKey := "Balance"
	nonceKey := "Nonce"
	errorKey := "Error"

	var client *ethclient.Client
	if rpcUrl != "" {
		client, err = ethclient.DialContext(ctx, rpcUrl)
		if err != nil {
			return err
		}
		defer client.Close()
	}

	tw := tablewriter.New(
		tablewriter.Col(addressKey),
		tablewriter.Col(balanceKey),
		tablewriter.Col(nonceKey),
		tablewriter.NewLineCol(errorKey))

	for _, addr := range addressList {
		row := map[string]interface{}{
			addressKey: addr,
		}
		if client != nil {
			var errmsg string
			balance, err := Balance(ctx, client, addr)
			if err != nil {
				errmsg = err.Error()
			}
			nonce, err := client.PendingNonceAt(ctx, common.HexToAddress(addr))
			if err != nil {
				errmsg = err.Error()
			}
			row[balanceKey] = balance
			row[nonceKey] = nonce
			row[errorKey] = errmsg
		}
		tw.Write(row)
	}
	return tw.Flush(out)
}

func (w *LocalWallet) AddressList(ctx context.Context) ([]string, error) {
	addressList, err := w.keystore.Addresses()
	if err != nil {
		return nil, xerrors.Errorf("listing keystore: %w", err)
	}
	return addressList, nil
}

// Signer returns the compute request signer backed by the stored key of addr.
func (w *LocalWallet) Signer(ctx context.Context, addr string) (*AccountSigner, error) {
	ki, err := w.findKey(addr)
	if err != nil {
		return nil, err
	}
	if ki == nil {
		return nil, xerrors.Errorf("the address: %s, private key %w", addr, ErrKeyInfoNotFound)
	}
	return &AccountSigner{address: normalizeAddress(addr), wallet: w}, nil
}

// Balance returns the account balance in ether.
func Balance(ctx context.Context, client *ethclient.Client, addr string) (string, error) {
	balance, err := client.BalanceAt(ctx, common.HexToAddress(addr), nil)
	if err != nil {
		return "", err
	}
	return weiToEther(balance), nil
}

func weiToEther(wei *big.Int) string {
	if wei.Sign() == 0 {
		return "0.0"
	}
	fbalance := new(big.Float).SetInt(wei)
	etherQuotient := new(big.Float).Quo(fbalance, new(big.Float).SetInt(big.NewInt(1e18)))
	return etherQuotient.Text('f', 5)
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if common.IsHexAddress(addr) {
		return common.HexToAddress(addr).Hex()
	}
	return addr
}
