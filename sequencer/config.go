package sequencer

// Config is the configuration of the nonce sequencer
type Config struct {
	// BlockTag is the block tag used to query the transaction count of an address
	BlockTag string `jsonschema:"enum=pending, enum=latest" mapstructure:"BlockTag"`
}
