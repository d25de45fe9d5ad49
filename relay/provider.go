package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/0xPolygon/cdk-txrelay/accounts"
	"github.com/0xPolygon/cdk-txrelay/funding"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/0xPolygon/cdk-txrelay/sequencer"
	"github.com/0xPolygon/cdk-txrelay/transport"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNotStarted is returned by calls issued on a provider that is not started
var ErrNotStarted = errors.New("relay provider not started")

// Provider owns the transport, the sequencer and the facade built on them
type Provider struct {
	logger       *log.Logger
	cfg          Config
	transportCfg transport.Config
	sequencerCfg sequencer.Config
	registry     *accounts.Registry
	journal      Journaler

	newTransport func(ctx context.Context, cfg transport.Config) (transport.Transport, error)

	mu        sync.RWMutex
	transport transport.Transport
	sequencer *sequencer.Sequencer
	facade    *Facade
}

// NewProvider creates a stopped provider. jr may be nil.
func NewProvider(
	logger *log.Logger,
	cfg Config,
	transportCfg transport.Config,
	sequencerCfg sequencer.Config,
	registry *accounts.Registry,
	jr Journaler,
) *Provider {
	return &Provider{
		logger:       logger,
		cfg:          cfg,
		transportCfg: transportCfg,
		sequencerCfg: sequencerCfg,
		registry:     registry,
		journal:      jr,
		newTransport: transport.New,
	}
}

// Start connects to the endpoint and starts sequencing. Starting a started
// provider is a no-op.
func (p *Provider) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.transport != nil {
		return nil
	}

	tr, err := p.newTransport(ctx, p.transportCfg)
	if err != nil {
		return err
	}
	if es, ok := tr.(transport.EventSource); ok {
		es.On(transport.EventError, func(err error) {
			p.logger.Errorf("transport error: %v", err)
		})
		es.On(transport.EventEnd, func(err error) {
			if err != nil {
				p.logger.Errorf("transport connection ended: %v", err)
				return
			}
			p.logger.Warn("transport connection ended")
		})
	}

	seq := sequencer.New(p.logger.WithFields("component", "sequencer"), NewTransportNonceReader(tr), p.sequencerCfg)
	seq.Start(ctx)

	p.transport = tr
	p.sequencer = seq
	p.facade = NewFacade(p.logger, p.cfg, tr, p.registry, seq, p.journal)
	p.logger.Infof("relay started, transport %s %s, %d signer accounts",
		p.transportCfg.Type, p.transportCfg.URL, p.registry.Len())
	return nil
}

// Stop detaches the transport listeners, drops pending responses, closes the
// transport and stops the sequencer. It is safe to call it several times, or
// before Start.
func (p *Provider) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.transport == nil {
		return
	}
	if es, ok := p.transport.(transport.EventSource); ok {
		es.RemoveAllListeners(transport.EventError, transport.EventEnd)
	}
	if pr, ok := p.transport.(transport.PendingResetter); ok {
		pr.ResetPending()
	}
	if err := p.transport.Close(); err != nil {
		p.logger.Warnf("error closing transport: %v", err)
	}
	p.sequencer.Stop()

	p.transport = nil
	p.sequencer = nil
	p.facade = nil
	p.logger.Info("relay stopped")
}

// Call forwards the call to the facade
func (p *Provider) Call(ctx context.Context, method string, params ...json.RawMessage) (json.RawMessage, error) {
	p.mu.RLock()
	f := p.facade
	p.mu.RUnlock()
	if f == nil {
		return nil, ErrNotStarted
	}
	return f.Call(ctx, method, params...)
}

// Sequencer returns the running sequencer, nil when stopped
func (p *Provider) Sequencer() NonceSequencer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.sequencer == nil {
		return nil
	}
	return p.sequencer
}

// Accounts returns the signer addresses in registry order
func (p *Provider) Accounts() []common.Address {
	return p.registry.Addresses()
}

// PendingNonce returns the next nonce the sequencer would hand out to addr from its own state
func (p *Provider) PendingNonce(ctx context.Context, addr common.Address) (uint64, bool, error) {
	seq := p.Sequencer()
	if seq == nil {
		return 0, false, ErrNotStarted
	}
	return seq.Pending(ctx, addr)
}

// FundAccounts tops up the signer accounts up to their configured balance.
// It only runs in development mode.
func (p *Provider) FundAccounts(ctx context.Context) error {
	if !p.cfg.IsDev {
		p.logger.Debug("not in development mode, skipping account funding")
		return nil
	}
	p.mu.RLock()
	tr := p.transport
	p.mu.RUnlock()
	if tr == nil {
		return ErrNotStarted
	}
	f := funding.New(p.logger.WithFields("component", "funding"), tr, p.registry, p.cfg.FundingPollInterval.Duration)
	return f.Fund(ctx)
}
