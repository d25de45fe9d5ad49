package accounts

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	cdkcommon "github.com/0xPolygon/cdk-txrelay/common"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrNoKeyMaterial is returned when a signer has neither a keystore nor a private key
	ErrNoKeyMaterial = errors.New("signer has no key material")
	// ErrInvalidBalance is returned when the configured balance is not a non-negative integer
	ErrInvalidBalance = errors.New("invalid balance")
)

// Account is a signer account the relay can sign for
type Account struct {
	Address common.Address
	Key     *ecdsa.PrivateKey
	// Balance is the dev funding target, nil when not configured
	Balance *big.Int
}

// Registry is the ordered, immutable set of signer accounts.
// A nil Registry behaves as an empty one.
type Registry struct {
	accounts []*Account
	byAddr   map[common.Address]*Account
}

// NewRegistry builds a registry keeping the given order. When an address is
// repeated only the first occurrence is kept.
func NewRegistry(accs ...*Account) *Registry {
	r := &Registry{
		accounts: make([]*Account, 0, len(accs)),
		byAddr:   make(map[common.Address]*Account, len(accs)),
	}
	for _, a := range accs {
		if _, ok := r.byAddr[a.Address]; ok {
			continue
		}
		r.accounts = append(r.accounts, a)
		r.byAddr[a.Address] = a
	}
	return r
}

// Load reads the key material of every configured signer
func Load(cfg Config) (*Registry, error) {
	accs := make([]*Account, 0, len(cfg.Signers))
	for i, s := range cfg.Signers {
		acc, err := loadSigner(s)
		if err != nil {
			return nil, fmt.Errorf("error loading signer %d: %w", i, err)
		}
		accs = append(accs, acc)
	}
	return NewRegistry(accs...), nil
}

func loadSigner(cfg SignerConfig) (*Account, error) {
	var (
		key *ecdsa.PrivateKey
		err error
	)
	switch {
	case cfg.PrivateKey != "":
		key, err = cdkcommon.NewKeyFromHex(cfg.PrivateKey)
	case cfg.Keystore.Path != "":
		key, err = cdkcommon.NewKeyFromKeystore(cfg.Keystore)
	default:
		return nil, ErrNoKeyMaterial
	}
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrNoKeyMaterial
	}

	acc := &Account{
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Key:     key,
	}
	if cfg.Balance != "" {
		balance, ok := new(big.Int).SetString(cfg.Balance, 0)
		if !ok || balance.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidBalance, cfg.Balance)
		}
		acc.Balance = balance
	}
	return acc, nil
}

// Addresses returns the account addresses in registry order
func (r *Registry) Addresses() []common.Address {
	if r == nil {
		return nil
	}
	addrs := make([]common.Address, len(r.accounts))
	for i, a := range r.accounts {
		addrs[i] = a.Address
	}
	return addrs
}

// Accounts returns the accounts in registry order
func (r *Registry) Accounts() []*Account {
	if r == nil {
		return nil
	}
	accs := make([]*Account, len(r.accounts))
	copy(accs, r.accounts)
	return accs
}

// KeyFor returns the private key of addr
func (r *Registry) KeyFor(addr common.Address) (*ecdsa.PrivateKey, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.byAddr[addr]
	if !ok {
		return nil, false
	}
	return a.Key, true
}

// Len is the number of accounts
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.accounts)
}
