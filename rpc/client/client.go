package client

import (
	"encoding/json"
	"fmt"

	"github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/0xPolygon/cdk-txrelay/journal"
	"github.com/0xPolygon/cdk-txrelay/rpc/types"
	"github.com/ethereum/go-ethereum/common"
)

var jSONRPCCall = rpc.JSONRPCCall

// Client wraps the endpoints of the relay namespace
type Client struct {
	url string
}

// NewClient returns a client ready to be used
func NewClient(url string) *Client {
	return &Client{
		url: url,
	}
}

// Accounts returns the addresses the relay signs for
func (c *Client) Accounts() ([]common.Address, error) {
	var result []common.Address
	return result, c.call(&result, "relay_accounts")
}

// PendingNonce returns the local sequencing state of addr
func (c *Client) PendingNonce(addr common.Address) (*types.PendingNonce, error) {
	result := &types.PendingNonce{}
	if err := c.call(result, "relay_pendingNonce", addr); err != nil {
		return nil, err
	}
	return result, nil
}

// RelayedTx returns the journal record of hash
func (c *Client) RelayedTx(hash common.Hash) (*journal.RelayedTx, error) {
	result := &journal.RelayedTx{}
	if err := c.call(result, "relay_relayedTx", hash); err != nil {
		return nil, err
	}
	return result, nil
}

// RelayedTxsBySender returns the latest journal records of sender
func (c *Client) RelayedTxsBySender(sender common.Address, limit uint64) ([]journal.RelayedTx, error) {
	var result []journal.RelayedTx
	return result, c.call(&result, "relay_relayedTxsBySender", sender, limit)
}

func (c *Client) call(result interface{}, method string, params ...interface{}) error {
	response, err := jSONRPCCall(c.url, method, params...)
	if err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("error in the response calling %s: %v", method, response.Error)
	}
	return json.Unmarshal(response.Result, result)
}
