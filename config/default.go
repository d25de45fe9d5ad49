package config

// DefaultVars are the vars referenced by DefaultValues. Each one can be
// overridden in a config file or with the env var TXRELAY_<VAR>.
const DefaultVars = `
EndpointURL = "http://localhost:8545"
IsDev = false
`

// DefaultValues is the config every loaded file is merged over
const DefaultValues = `
[Log]
Environment = "development" # "production" or "development"
Level = "info"
Outputs = ["stderr"]

[Transport]
Type = "direct"
URL = "{{EndpointURL}}"
Origin = ""
DialTimeout = "10s"
RequestTimeout = "30s"

[Accounts]
Signers = []

[Sequencer]
BlockTag = "pending"

[Relay]
IsDev = {{IsDev}}
ServePendingNonce = false
FundingPollInterval = "1s"

[Journal]
DBPath = ""

[Proxy]
Enabled = true
Host = "0.0.0.0"
Port = 8547
ReadTimeout = "30s"
WriteTimeout = "30s"
MaxBatchSize = 100
AllowedOrigins = []
DebugMode = false

[RPC]
Host = "0.0.0.0"
Port = 5576
ReadTimeout = "2s"
WriteTimeout = "2s"
MaxRequestsPerIPAndSecond = 10
`
