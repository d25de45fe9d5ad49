package accounts

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/0xPolygon/cdk-txrelay/config/types"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func newHexKey(t *testing.T) (string, common.Address) {
	t.Helper()
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hex.EncodeToString(crypto.FromECDSA(pk)), crypto.PubkeyToAddress(pk.PublicKey)
}

func TestLoad(t *testing.T) {
	hexA, addrA := newHexKey(t)
	hexB, addrB := newHexKey(t)

	dir := t.TempDir()
	ks := keystore.NewKeyStore(dir, keystore.LightScryptN, keystore.LightScryptP)
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	ksAcc, err := ks.ImportECDSA(pk, "pass")
	require.NoError(t, err)

	r, err := Load(Config{Signers: []SignerConfig{
		{PrivateKey: hexB, Balance: "1000"},
		{Keystore: types.KeystoreFileConfig{Path: ksAcc.URL.Path, Password: "pass"}},
		{PrivateKey: "0x" + hexA, Balance: "0x10"},
	}})
	require.NoError(t, err)
	require.Equal(t, []common.Address{addrB, ksAcc.Address, addrA}, r.Addresses())
	require.Equal(t, 3, r.Len())

	accs := r.Accounts()
	require.Equal(t, big.NewInt(1000), accs[0].Balance)
	require.Nil(t, accs[1].Balance)
	require.Equal(t, big.NewInt(16), accs[2].Balance)

	key, ok := r.KeyFor(ksAcc.Address)
	require.True(t, ok)
	require.Equal(t, ksAcc.Address, crypto.PubkeyToAddress(key.PublicKey))

	_, ok = r.KeyFor(common.HexToAddress("0x1234"))
	require.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	hexA, _ := newHexKey(t)

	tests := []struct {
		name      string
		signer    SignerConfig
		expectErr error
	}{
		{
			name:      "no key material",
			signer:    SignerConfig{Balance: "1"},
			expectErr: ErrNoKeyMaterial,
		},
		{
			name:      "negative balance",
			signer:    SignerConfig{PrivateKey: hexA, Balance: "-1"},
			expectErr: ErrInvalidBalance,
		},
		{
			name:      "garbage balance",
			signer:    SignerConfig{PrivateKey: hexA, Balance: "lots"},
			expectErr: ErrInvalidBalance,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(Config{Signers: []SignerConfig{tt.signer}})
			require.ErrorIs(t, err, tt.expectErr)
		})
	}

	_, err := Load(Config{Signers: []SignerConfig{{PrivateKey: "zz"}}})
	require.Error(t, err)
}

func TestRegistryDuplicatesAndNil(t *testing.T) {
	pk, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(pk.PublicKey)

	r := NewRegistry(&Account{Address: addr, Key: pk}, &Account{Address: addr, Key: pk})
	require.Equal(t, 1, r.Len())

	var empty *Registry
	require.Empty(t, empty.Addresses())
	require.Zero(t, empty.Len())
	_, ok := empty.KeyFor(addr)
	require.False(t, ok)
}
