// Package sync implements component C7's event-sync half: paginating the
// mint account's confirmed transaction history, decoding transfer-hook
// events from transaction logs, and inserting them into the local index
// (spec §4.7).
package sync

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"github.com/vaporlabs/vapor-tokens/chain/tokenhook"
)

// RequestTimeout is the fixed RPC client timeout (spec §5: "RPC client
// uses a 30-second request timeout").
const RequestTimeout = 30 * time.Second

// pageSize is the page size used for signature pagination; a page shorter
// than this signals the end of history (spec §4.7).
const pageSize = 1000

// logDataPrefix is the host log-line prefix carrying base64-encoded event
// payloads (spec §6: `Program data: `).
const logDataPrefix = "Program data: "

// SignatureInfo is one entry of a confirmed-signatures page.
type SignatureInfo struct {
	Signature string
	Failed    bool
}

// Transaction is the minimal confirmed-transaction shape sync needs: the
// slot it landed in and its log lines.
type Transaction struct {
	Slot        uint64
	LogMessages []string
}

// Client abstracts the host RPC surface sync depends on (spec §1: the host
// runtime is an external collaborator). A real implementation wraps a JSON-
// RPC client; tests supply an in-memory fake.
type Client interface {
	// GetSignaturesForAddress returns up to pageSize signatures for
	// address, newest first, starting strictly before the signature
	// `before` (empty string means start from the newest).
	GetSignaturesForAddress(ctx context.Context, address string, before string, limit int) ([]SignatureInfo, error)
	// GetTransaction fetches the confirmed transaction for signature.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)
}

// Store abstracts the local transfers table (pkg/wallet). InsertTransfer
// returns existed=true if a row was already present at slot, signalling
// the scan has reached previously-indexed history (spec §4.7).
type Store interface {
	InsertTransfer(slot uint64, event tokenhook.Transfer) (existed bool, err error)
}

// Sync scans mint's transaction history newest-to-oldest, decoding
// transfer-hook events whose logs mention hookProgramID, until it hits
// already-known history or runs out of pages.
func Sync(ctx context.Context, client Client, store Store, mint string, hookProgramID string) error {
	var before string

	log.With().Str("component", "sync").Logger().Info().Str("mint", mint).Msg("starting sync")

	for {
		pageCtx, pageCancel := context.WithTimeout(ctx, RequestTimeout)
		page, err := client.GetSignaturesForAddress(pageCtx, mint, before, pageSize)
		pageCancel()
		if err != nil {
			return errors.Wrap(err, "sync: fetch signature page")
		}
		if len(page) == 0 {
			return nil
		}

		for _, info := range page {
			if info.Failed {
				continue
			}

			txCtx, txCancel := context.WithTimeout(ctx, RequestTimeout)
			tx, err := client.GetTransaction(txCtx, info.Signature)
			txCancel()
			if err != nil {
				return errors.Wrapf(err, "sync: fetch transaction %s", info.Signature)
			}
			if tx == nil {
				continue
			}

			if !ranHook(tx.LogMessages, hookProgramID) {
				continue
			}

			done, err := processLogs(store, tx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}

		before = page[len(page)-1].Signature
		if len(page) < pageSize {
			return nil
		}
	}
}

func ranHook(logs []string, hookProgramID string) bool {
	for _, l := range logs {
		if strings.Contains(l, hookProgramID) {
			return true
		}
	}
	return false
}

// processLogs decodes every "Program data: " line in tx's logs into a
// transfer event and inserts it at tx.Slot. It returns done=true the
// moment an insert collides with an existing row (scan has reached
// previously-indexed history).
func processLogs(store Store, tx *Transaction) (bool, error) {
	for _, line := range tx.LogMessages {
		data, ok := strings.CutPrefix(line, logDataPrefix)
		if !ok {
			continue
		}

		event, err := decodeTransferEvent(data)
		if err != nil {
			return false, errors.Wrap(err, "sync: decode transfer event")
		}
		if event == nil {
			continue
		}

		existed, err := store.InsertTransfer(tx.Slot, *event)
		if err != nil {
			return false, errors.Wrap(err, "sync: insert transfer")
		}
		if existed {
			log.With().Str("component", "sync").Logger().Debug().
				Uint64("slot", tx.Slot).Msg("existing spend found, scan complete")
			return true, nil
		}
	}
	return false, nil
}

// decodeTransferEvent decodes one base64 log payload into a Transfer
// event: an 8-byte discriminator, then `to: 32B || amount: u64 LE` (spec
// §6). Payloads too short to contain a full event are ignored (nil, nil).
// The discriminator bytes are skipped, not checked, so any payload of at
// least 48 bytes decodes as a Transfer.
func decodeTransferEvent(b64 string) (*tokenhook.Transfer, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	const discriminatorLen = 8
	const bodyLen = 32 + 8
	if len(raw) < discriminatorLen+bodyLen {
		return nil, nil
	}

	body := raw[discriminatorLen:]
	var event tokenhook.Transfer
	copy(event.To[:], body[:32])
	event.Amount = binary.LittleEndian.Uint64(body[32:40])
	return &event, nil
}
