package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

func newKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

// connectedSession builds a session already in the Connected state, with
// the given keys loaded. No RPC client is attached; the lifecycle logic
// under test never touches it.
func connectedSession(t *testing.T, keys map[common.Address]*ecdsa.PrivateKey, active common.Address) *Session {
	t.Helper()
	s := NewSession(Config{}, nil)
	s.state = Connected
	s.keys = keys
	s.active = active
	return s
}

func TestAccountsChangedEmptyDisconnects(t *testing.T) {
	key, addr := newKey(t)
	s := connectedSession(t, map[common.Address]*ecdsa.PrivateKey{addr: key}, addr)

	if err := s.AccountsChanged(nil); err != nil {
		t.Fatalf("accounts changed: %v", err)
	}
	if s.State() != Disconnected {
		t.Fatalf("state = %s, want disconnected", s.State())
	}
	if _, ok := s.Account(); ok {
		t.Fatalf("account still exposed after disconnect")
	}
	if s.keys != nil {
		t.Fatalf("keys retained after disconnect")
	}
}

func TestAccountsChangedSwitchesActive(t *testing.T) {
	keyA, addrA := newKey(t)
	keyB, addrB := newKey(t)
	s := connectedSession(t, map[common.Address]*ecdsa.PrivateKey{
		addrA: keyA,
		addrB: keyB,
	}, addrA)

	if err := s.AccountsChanged([]common.Address{addrB}); err != nil {
		t.Fatalf("accounts changed: %v", err)
	}
	active, ok := s.Account()
	if !ok || active != addrB {
		t.Fatalf("active = %s, want %s", active.Hex(), addrB.Hex())
	}
	if s.State() != Connected {
		t.Fatalf("switch dropped the connection")
	}
}

func TestAccountsChangedUnknownAccount(t *testing.T) {
	key, addr := newKey(t)
	s := connectedSession(t, map[common.Address]*ecdsa.PrivateKey{addr: key}, addr)

	_, stranger := newKey(t)
	if err := s.AccountsChanged([]common.Address{stranger}); err == nil {
		t.Fatalf("expected error for unknown account")
	}
	if active, _ := s.Account(); active != addr {
		t.Fatalf("active account changed to unknown key")
	}
}

func TestAccountsChangedWhileDisconnected(t *testing.T) {
	s := NewSession(Config{}, nil)
	_, addr := newKey(t)
	if err := s.AccountsChanged([]common.Address{addr}); err == nil {
		t.Fatalf("expected error while disconnected")
	}
}

func TestSignTx(t *testing.T) {
	key, addr := newKey(t)
	s := connectedSession(t, map[common.Address]*ecdsa.PrivateKey{addr: key}, addr)

	chainID := big.NewInt(11155111)
	tx := types.NewTx(&types.LegacyTx{Nonce: 0, Gas: 21000, GasPrice: big.NewInt(1)})

	signed, err := s.SignTx(tx, chainID)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	if err != nil {
		t.Fatalf("recover sender: %v", err)
	}
	if sender != addr {
		t.Fatalf("sender = %s, want %s", sender.Hex(), addr.Hex())
	}
}

func TestSignTxDeclined(t *testing.T) {
	key, addr := newKey(t)
	s := connectedSession(t, map[common.Address]*ecdsa.PrivateKey{addr: key}, addr)
	s.Approve = func(*types.Transaction) bool { return false }

	tx := types.NewTx(&types.LegacyTx{Nonce: 0, Gas: 21000, GasPrice: big.NewInt(1)})
	if _, err := s.SignTx(tx, big.NewInt(1)); !errors.Is(err, ErrDeclined) {
		t.Fatalf("got %v, want ErrDeclined", err)
	}
}

func TestSignTxDisconnected(t *testing.T) {
	s := NewSession(Config{}, nil)
	tx := types.NewTx(&types.LegacyTx{Nonce: 0, Gas: 21000, GasPrice: big.NewInt(1)})
	if _, err := s.SignTx(tx, big.NewInt(1)); err == nil {
		t.Fatalf("expected error while disconnected")
	}
}

func TestConnectWithoutKeyMaterial(t *testing.T) {
	s := NewSession(Config{RPCURL: "http://127.0.0.1:0"}, nil)
	if err := s.Connect(context.Background()); err == nil {
		t.Fatalf("expected connect failure")
	}
	if s.State() != Errored {
		t.Fatalf("state = %s, want errored", s.State())
	}
	if s.Err() == nil {
		t.Fatalf("failure cause not recorded")
	}

	// A failed connect is retryable; disconnect resets cleanly.
	s.Disconnect()
	if s.State() != Disconnected {
		t.Fatalf("state = %s after disconnect", s.State())
	}
}

func TestLoadKeysFromHex(t *testing.T) {
	key, addr := newKey(t)
	raw := "0x" + common.Bytes2Hex(crypto.FromECDSA(key))

	s := NewSession(Config{PrivateKey: raw}, nil)
	keys, active, err := s.loadKeys()
	if err != nil {
		t.Fatalf("load keys: %v", err)
	}
	if active != addr {
		t.Fatalf("active = %s, want %s", active.Hex(), addr.Hex())
	}
	if keys[addr] == nil {
		t.Fatalf("key not registered under its address")
	}
}

func TestTrimHexPrefix(t *testing.T) {
	cases := map[string]string{
		"0xabc": "abc",
		"0Xabc": "abc",
		"abc":   "abc",
		"":      "",
	}
	for in, want := range cases {
		if got := trimHexPrefix(in); got != want {
			t.Fatalf("trimHexPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
