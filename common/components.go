package common

const (
	// RELAY name to identify the relay component (facade, sequencer and transport)
	RELAY = "relay"
	// PROXY name to identify the HTTP JSON-RPC front door (implies relay)
	PROXY = "proxy"
	// RPC name to identify the relay admin rpc component (implies relay)
	RPC = "rpc"
	// JOURNAL name to identify the relayed transactions journal
	JOURNAL = "journal"
)
