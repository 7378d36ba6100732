// Package wallet owns the connected-account lifecycle. The session is
// the single writer of signing state; every other package only reads
// the capability it exposes.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"petadopt/internal/chain"
)

// State is the session lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Errored
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrDeclined is returned when the approval hook rejects a transaction.
var ErrDeclined = errors.New("transaction declined by user")

// Config holds the session's connection settings.
type Config struct {
	RPCURL         string
	FallbackRPCURL string
	ChainID        uint64
	KeystorePath   string
	Passphrase     string
	PrivateKey     string // raw hex key; takes precedence over the keystore file
}

// Session manages the wallet connection and signing capability.
type Session struct {
	cfg    Config
	logger *zap.Logger

	// Approve, when set, is consulted before signing. Returning false
	// cancels the transaction without treating it as a failure.
	Approve func(tx *types.Transaction) bool

	mu      sync.Mutex
	state   State
	lastErr error
	client  *chain.Client
	chainID *big.Int
	keys    map[common.Address]*ecdsa.PrivateKey
	active  common.Address
}

// NewSession builds a disconnected session.
func NewSession(cfg Config, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		cfg:    cfg,
		logger: logger,
		state:  Disconnected,
	}
}

// Connect loads the signing keys, dials the RPC endpoint, and verifies
// the node serves the required chain. When the primary endpoint serves a
// different chain a configured fallback endpoint is tried before giving
// up. A failed connect leaves the session in Errored; Connect may be
// called again to retry.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Connected {
		return nil
	}
	s.state = Connecting
	s.lastErr = nil

	keys, active, err := s.loadKeys()
	if err != nil {
		return s.fail(fmt.Errorf("load signing key: %w", err))
	}

	client, chainID, err := s.dialVerified(ctx, s.cfg.RPCURL)
	if err != nil && s.cfg.FallbackRPCURL != "" {
		s.logger.Warn("primary endpoint unusable, trying fallback",
			zap.String("fallback", s.cfg.FallbackRPCURL),
			zap.Error(err),
		)
		client, chainID, err = s.dialVerified(ctx, s.cfg.FallbackRPCURL)
	}
	if err != nil {
		return s.fail(err)
	}

	s.client = client
	s.chainID = chainID
	s.keys = keys
	s.active = active
	s.state = Connected
	s.logger.Info("wallet connected",
		zap.String("account", active.Hex()),
		zap.Uint64("chain_id", chainID.Uint64()),
	)
	return nil
}

// Disconnect tears the session down from any state: the account, the
// provider handle, and the signing keys are all cleared.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectLocked()
}

func (s *Session) disconnectLocked() {
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
	s.keys = nil
	s.active = common.Address{}
	s.chainID = nil
	s.lastErr = nil
	s.state = Disconnected
}

// AccountsChanged reacts to the key set changing underneath the session.
// An empty list behaves exactly like Disconnect; otherwise the first
// known account becomes active without dropping the connection.
func (s *Session) AccountsChanged(accounts []common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(accounts) == 0 {
		s.disconnectLocked()
		return nil
	}
	if s.state != Connected {
		return fmt.Errorf("session is %s", s.state)
	}

	for _, account := range accounts {
		if _, ok := s.keys[account]; ok {
			if account != s.active {
				s.logger.Info("active account changed",
					zap.String("from", s.active.Hex()),
					zap.String("to", account.Hex()),
				)
			}
			s.active = account
			return nil
		}
	}
	return fmt.Errorf("no signing key for any of the reported accounts")
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the failure that moved the session into Errored, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Client returns the connected chain client, or nil when disconnected.
func (s *Session) Client() *chain.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Account returns the active account while connected.
func (s *Session) Account() (common.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connected {
		return common.Address{}, false
	}
	return s.active, true
}

// SignTx signs a transaction with the active account's key.
func (s *Session) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	s.mu.Lock()
	if s.state != Connected {
		s.mu.Unlock()
		return nil, fmt.Errorf("session is %s", s.state)
	}
	key := s.keys[s.active]
	approve := s.Approve
	s.mu.Unlock()

	if key == nil {
		return nil, fmt.Errorf("no signing key for active account")
	}
	if approve != nil && !approve(tx) {
		return nil, ErrDeclined
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
}

func (s *Session) fail(err error) error {
	s.state = Errored
	s.lastErr = err
	return err
}

func (s *Session) loadKeys() (map[common.Address]*ecdsa.PrivateKey, common.Address, error) {
	if s.cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(trimHexPrefix(s.cfg.PrivateKey))
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("parse private key: %w", err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		return map[common.Address]*ecdsa.PrivateKey{addr: key}, addr, nil
	}

	if s.cfg.KeystorePath == "" {
		return nil, common.Address{}, fmt.Errorf("no keystore path or private key configured")
	}
	raw, err := os.ReadFile(s.cfg.KeystorePath)
	if err != nil {
		return nil, common.Address{}, err
	}
	key, err := keystore.DecryptKey(raw, s.cfg.Passphrase)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("decrypt keystore: %w", err)
	}
	return map[common.Address]*ecdsa.PrivateKey{key.Address: key.PrivateKey}, key.Address, nil
}

func (s *Session) dialVerified(ctx context.Context, rpcURL string) (*chain.Client, *big.Int, error) {
	if rpcURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}
	client, err := chain.NewClient(ctx, rpcURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("query chain id: %w", err)
	}
	if s.cfg.ChainID != 0 && chainID.Uint64() != s.cfg.ChainID {
		client.Close()
		return nil, nil, fmt.Errorf("endpoint serves chain %d, need chain %d", chainID.Uint64(), s.cfg.ChainID)
	}
	return client, chainID, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
