package relay

import "github.com/0xPolygon/cdk-txrelay/config/types"

// Config is the configuration of the relay behaviour
type Config struct {
	// IsDev enables development only features, like funding the signer accounts on start
	IsDev bool `mapstructure:"IsDev"`
	// ServePendingNonce answers eth_getTransactionCount at the pending tag taking into
	// account the nonces handed out locally and not yet seen by the endpoint
	ServePendingNonce bool `mapstructure:"ServePendingNonce"`
	// FundingPollInterval is how often the funding receipts are polled
	FundingPollInterval types.Duration `mapstructure:"FundingPollInterval"`
}
