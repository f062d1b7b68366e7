package wallet

import (
	"bytes"
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

const (
	testKey     = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testAddress = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func TestToAddress(t *testing.T) {
	addr, err := ToAddress(testKey)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	addr, err = ToAddress("0x" + testKey)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	_, err = ToAddress("")
	assert.Error(t, err)
	_, err = ToAddress("zz")
	assert.Error(t, err)
}

func TestSignPersonal(t *testing.T) {
	data := []byte("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23did:op:11")
	sig, err := SignPersonal(testKey, data)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	recovered, err := RecoverPersonal(sig, data)
	require.NoError(t, err)
	assert.Equal(t, testAddress, recovered.Hex())

	ok, err := Verify(testAddress, sig, data)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(testAddress, sig, []byte("tampered"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Verify("not-an-address", sig, data)
	assert.Error(t, err)

	_, err = RecoverPersonal(sig[:64], data)
	assert.Error(t, err)
}

func TestKeySigner(t *testing.T) {
	signer, err := NewKeySigner(" 0x" + testKey + "\n")
	require.NoError(t, err)

	addr, err := signer.Address(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	sig, err := signer.SignPersonal(context.Background(), []byte("hello"))
	require.NoError(t, err)
	ok, err := Verify(addr, sig, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = NewKeySigner("nope")
	assert.Error(t, err)
}

func TestLocalWallet(t *testing.T) {
	ctx := context.Background()
	w, err := SetupWallet(t.TempDir())
	require.NoError(t, err)
	defer w.Close()

	imported, err := w.WalletImport(ctx, &KeyInfo{PrivateKey: "0x" + testKey})
	require.NoError(t, err)
	assert.Equal(t, testAddress, imported)

	_, err = w.WalletImport(ctx, &KeyInfo{PrivateKey: testKey})
	assert.True(t, xerrors.Is(err, ErrKeyExists))

	created, err := w.WalletNew(ctx)
	require.NoError(t, err)

	list, err := w.AddressList(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{testAddress, created}, list)

	ki, err := w.WalletExport(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, testKey, ki.PrivateKey)

	sig, err := w.WalletSign(ctx, testAddress, []byte("hello"))
	require.NoError(t, err)
	sigBytes, err := hexutil.Decode(sig)
	require.NoError(t, err)
	ok, err := w.WalletVerify(ctx, testAddress, sigBytes, []byte("hello"))
	require.NoError(t, err)
	assert.True(t, ok)

	signer, err := w.Signer(ctx, "0x2c7536e3605d9c16a7a3d7b1898e529396a65c23")
	require.NoError(t, err)
	addr, err := signer.Address(ctx)
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)
	signed, err := signer.SignPersonal(ctx, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, sigBytes, signed)

	require.NoError(t, w.WalletDelete(ctx, created))
	_, err = w.Signer(ctx, created)
	assert.True(t, xerrors.Is(err, ErrKeyInfoNotFound))
	require.NoError(t, w.WalletDelete(ctx, created))

	var out bytes.Buffer
	require.NoError(t, w.WalletList(ctx, "", &out))
	assert.Contains(t, out.String(), testAddress)
	assert.NotContains(t, out.String(), created)
}

func TestWalletPersists(t *testing.T) {
	ctx := context.Background()
	repo := t.TempDir()

	w, err := SetupWallet(repo)
	require.NoError(t, err)
	_, err = w.WalletImport(ctx, &KeyInfo{PrivateKey: testKey})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	w, err = SetupWallet(repo)
	require.NoError(t, err)
	defer w.Close()
	ki, err := w.WalletExport(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, testKey, ki.PrivateKey)
}
