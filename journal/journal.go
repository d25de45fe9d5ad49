package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/cdk-txrelay/db"
	"github.com/0xPolygon/cdk-txrelay/journal/migrations"
	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
)

const defaultLimit = 100

// Status is the outcome of relaying a transaction
type Status string

const (
	// StatusForwarded means the endpoint accepted the rewritten transaction
	StatusForwarded Status = "forwarded"
	// StatusFailed means the endpoint rejected the rewritten transaction
	StatusFailed Status = "failed"
)

// RelayedTx is the record of a transaction rewritten and forwarded by the relay
type RelayedTx struct {
	ID            int64          `meddler:"id,pk" json:"id"`
	OriginalHash  common.Hash    `meddler:"original_hash,hash" json:"originalHash"`
	ForwardedHash common.Hash    `meddler:"forwarded_hash,hash" json:"forwardedHash"`
	Sender        common.Address `meddler:"sender,address" json:"sender"`
	OriginalNonce uint64         `meddler:"original_nonce" json:"originalNonce"`
	AssignedNonce uint64         `meddler:"assigned_nonce" json:"assignedNonce"`
	Value         *big.Int       `meddler:"value,bigint" json:"value"`
	Status        Status         `meddler:"status" json:"status"`
	Error         string         `meddler:"error" json:"error,omitempty"`
	CreatedAt     int64          `meddler:"created_at" json:"createdAt"`
}

// Storage persists the relayed transactions in SQLite
type Storage struct {
	db     *sql.DB
	logger *log.Logger
}

// New runs the migrations and opens the journal at dbPath
func New(logger *log.Logger, dbPath string) (*Storage, error) {
	if err := migrations.RunMigrations(dbPath); err != nil {
		return nil, err
	}
	db, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &Storage{
		db:     db,
		logger: logger,
	}, nil
}

// Save stores rec, filling its ID
func (s *Storage) Save(ctx context.Context, rec *RelayedTx) error {
	if rec.Value == nil {
		rec.Value = big.NewInt(0)
	}
	tx, err := db.NewTx(ctx, s.db)
	if err != nil {
		return err
	}
	shouldRollback := true
	defer func() {
		if shouldRollback {
			if errRllbck := tx.Rollback(); errRllbck != nil {
				s.logger.Errorf("error while rolling back tx %v", errRllbck)
			}
		}
	}()

	if err := meddler.Insert(tx, "relayed_tx", rec); err != nil {
		return fmt.Errorf("error inserting relayed tx %s: %w", rec.ForwardedHash.Hex(), err)
	}
	tx.AddCommitCallback(func() {
		s.logger.Debugf("journaled tx %s (sender %s nonce %d -> %d, %s)",
			rec.ForwardedHash.Hex(), rec.Sender.Hex(), rec.OriginalNonce, rec.AssignedNonce, rec.Status)
	})
	if err := tx.Commit(); err != nil {
		return err
	}
	shouldRollback = false
	return nil
}

// GetByHash returns the latest record whose original or forwarded hash is hash
func (s *Storage) GetByHash(ctx context.Context, hash common.Hash) (*RelayedTx, error) {
	rec := &RelayedTx{}
	err := meddler.QueryRow(s.db, rec, `
		SELECT * FROM relayed_tx
		WHERE forwarded_hash = $1 OR original_hash = $1
		ORDER BY id DESC LIMIT 1;
	`, hash.Hex())
	if err != nil {
		return nil, db.ReturnErrNotFound(err)
	}
	return rec, nil
}

// GetBySender returns the most recent records of sender, newest first.
// A zero limit means the default limit.
func (s *Storage) GetBySender(ctx context.Context, sender common.Address, limit uint64) ([]RelayedTx, error) {
	if limit == 0 {
		limit = defaultLimit
	}
	var recs []*RelayedTx
	err := meddler.QueryAll(s.db, &recs, `
		SELECT * FROM relayed_tx
		WHERE sender = $1
		ORDER BY id DESC LIMIT $2;
	`, sender.Hex(), limit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []RelayedTx{}, nil
		}
		return nil, err
	}
	return db.SlicePtrsToSlice(recs).([]RelayedTx), nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}
