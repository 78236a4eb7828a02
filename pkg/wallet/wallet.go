// Package wallet is the client-side persistence layer (spec §6: "Persisted
// state"): a local embedded key-value store holding vapor-address records
// and the synced transfer log, the two tables pkg/sync and cmd/vapor-wallet
// read from and write to.
package wallet

import (
	"encoding/binary"
	"math/big"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/cockroachdb/errors"

	"github.com/vaporlabs/vapor-tokens/chain/tokenhook"
)

// table key prefixes, mirroring the two logical tables of §6: vapor-addresses
// keyed by the 32-byte vapor address, transfers keyed by u64 slot.
const (
	addressPrefix  = 'a'
	transferPrefix = 't'
)

// VaporAddressRecord is a client-side-only record (spec §3): the triple
// (vapor_addr, recipient, secret).
type VaporAddressRecord struct {
	VaporAddr [32]byte
	Recipient [32]byte
	Secret    *big.Int
}

// Wallet wraps a badger database with the two tables this system persists.
type Wallet struct {
	db *badger.DB
}

// Open opens (creating if absent) the badger database at path.
func Open(path string) (*Wallet, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrap(err, "wallet: open database")
	}
	return &Wallet{db: db}, nil
}

// Close releases the underlying database handle.
func (w *Wallet) Close() error {
	return w.db.Close()
}

func addressKey(addr [32]byte) []byte {
	key := make([]byte, 1+32)
	key[0] = addressPrefix
	copy(key[1:], addr[:])
	return key
}

func transferKey(slot uint64) []byte {
	key := make([]byte, 1+8)
	key[0] = transferPrefix
	binary.BigEndian.PutUint64(key[1:], slot)
	return key
}

// encodeAddressRecord is the deterministic compact binary format for a
// VaporAddressRecord: addr(32) || recipient(32) || secret_len(2, BE) ||
// secret_bytes(big-endian).
func encodeAddressRecord(rec VaporAddressRecord) []byte {
	secretBytes := rec.Secret.Bytes()
	out := make([]byte, 0, 32+32+2+len(secretBytes))
	out = append(out, rec.VaporAddr[:]...)
	out = append(out, rec.Recipient[:]...)
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(secretBytes)))
	out = append(out, lenBuf[:]...)
	out = append(out, secretBytes...)
	return out
}

func decodeAddressRecord(data []byte) (VaporAddressRecord, error) {
	var rec VaporAddressRecord
	if len(data) < 32+32+2 {
		return rec, errors.New("wallet: truncated vapor address record")
	}
	copy(rec.VaporAddr[:], data[0:32])
	copy(rec.Recipient[:], data[32:64])
	secretLen := binary.BigEndian.Uint16(data[64:66])
	if len(data) < 66+int(secretLen) {
		return rec, errors.New("wallet: truncated vapor address record secret")
	}
	rec.Secret = new(big.Int).SetBytes(data[66 : 66+int(secretLen)])
	return rec, nil
}

// PutVaporAddress stores rec, keyed by its vapor address.
func (w *Wallet) PutVaporAddress(rec VaporAddressRecord) error {
	return w.db.Update(func(txn *badger.Txn) error {
		return txn.Set(addressKey(rec.VaporAddr), encodeAddressRecord(rec))
	})
}

// GetVaporAddress looks up the record stored at addr.
func (w *Wallet) GetVaporAddress(addr [32]byte) (VaporAddressRecord, error) {
	var rec VaporAddressRecord
	err := w.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(addressKey(addr))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			decoded, err := decodeAddressRecord(val)
			if err != nil {
				return err
			}
			rec = decoded
			return nil
		})
	})
	if err != nil {
		return VaporAddressRecord{}, errors.Wrap(err, "wallet: get vapor address")
	}
	return rec, nil
}

// ListVaporAddresses returns every stored vapor-address record, in
// undefined order.
func (w *Wallet) ListVaporAddresses() ([]VaporAddressRecord, error) {
	var out []VaporAddressRecord
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{addressPrefix}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				rec, err := decodeAddressRecord(val)
				if err != nil {
					return err
				}
				out = append(out, rec)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "wallet: list vapor addresses")
	}
	return out, nil
}

// TransferRecord is one row of the transfers table, keyed by slot.
type TransferRecord struct {
	Slot   uint64
	To     [32]byte
	Amount uint64
}

func encodeTransferRecord(event tokenhook.Transfer) []byte {
	out := make([]byte, 32+8)
	copy(out[0:32], event.To[:])
	binary.BigEndian.PutUint64(out[32:40], event.Amount)
	return out
}

func decodeTransferRecord(slot uint64, data []byte) (TransferRecord, error) {
	if len(data) < 40 {
		return TransferRecord{}, errors.New("wallet: truncated transfer record")
	}
	rec := TransferRecord{Slot: slot}
	copy(rec.To[:], data[0:32])
	rec.Amount = binary.BigEndian.Uint64(data[32:40])
	return rec, nil
}

// InsertTransfer implements pkg/sync.Store: it inserts event at slot and
// reports whether a row already existed there, so the sync scan knows when
// it has reached previously-indexed history.
func (w *Wallet) InsertTransfer(slot uint64, event tokenhook.Transfer) (bool, error) {
	existed := false
	err := w.db.Update(func(txn *badger.Txn) error {
		key := transferKey(slot)
		if _, err := txn.Get(key); err == nil {
			existed = true
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, encodeTransferRecord(event))
	})
	if err != nil {
		return false, errors.Wrap(err, "wallet: insert transfer")
	}
	return existed, nil
}

// ListTransfers returns every stored transfer, ordered by ascending slot
// (the key encoding is big-endian, so badger's lexicographic iteration
// order equals numeric slot order).
func (w *Wallet) ListTransfers() ([]TransferRecord, error) {
	var out []TransferRecord
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{transferPrefix}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			key := item.Key()
			slot := binary.BigEndian.Uint64(key[1:])
			if err := item.Value(func(val []byte) error {
				rec, err := decodeTransferRecord(slot, val)
				if err != nil {
					return err
				}
				out = append(out, rec)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "wallet: list transfers")
	}
	return out, nil
}
