package accounts

import "github.com/0xPolygon/cdk-txrelay/config/types"

// SignerConfig is the key material of one signer account.
// Exactly one of Keystore or PrivateKey must be set.
type SignerConfig struct {
	// Keystore is the encrypted keystore file holding the key
	Keystore types.KeystoreFileConfig `mapstructure:"Keystore"`
	// PrivateKey is the hex encoded private key, only meant for development
	PrivateKey string `mapstructure:"PrivateKey"`
	// Balance is the minimum balance (wei, decimal or 0x hex) the account is funded to in dev mode
	Balance string `mapstructure:"Balance"`
}

// Config is the list of signer accounts managed by the relay, in the order they are exposed
type Config struct {
	Signers []SignerConfig `mapstructure:"Signers"`
}
