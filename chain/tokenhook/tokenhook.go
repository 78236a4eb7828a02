// Package tokenhook simulates the transfer-hook instruction (component C4,
// spec §4.4): the callback the host token program invokes on every transfer,
// which appends a leaf to the mint's Merkle accumulator and emits the event
// the off-chain sync pipeline replays.
package tokenhook

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vaporlabs/vapor-tokens/pkg/accumulator"
)

// ErrIsNotCurrentlyTransferring mirrors the host error code returned when
// the hook is invoked outside an in-progress token transfer (spec §7):
// calling the hook directly, rather than via the token program's CPI, must
// be rejected so an adversary cannot pollute the tree with fabricated
// leaves.
var ErrIsNotCurrentlyTransferring = errors.New("tokenhook: source account is not currently transferring")

// Transfer is the event emitted on every successful hook invocation (spec
// §6: "Program data: " log line), replayed by pkg/sync to reconstruct the
// leaf sequence off-chain.
type Transfer struct {
	To     [32]byte
	Amount uint64
}

// SourceAccount models the single field the hook actually inspects: the
// token-2022 TransferHookAccount extension's in-progress flag.
type SourceAccount struct {
	Transferring bool
}

// Execute runs the hook body: checks the transferring flag, computes the
// transfer leaf, appends it to tree, and returns the emitted event. tree is
// the mint's accumulator, loaded by the caller from the tree-account PDA
// ["merkle_tree", mint].
func Execute(source SourceAccount, tree *accumulator.Tree, destinationOwner [32]byte, amount uint64) (Transfer, error) {
	if !source.Transferring {
		return Transfer{}, ErrIsNotCurrentlyTransferring
	}

	leaf := accumulator.Leaf(destinationOwner, amount)
	if _, err := tree.Append(leaf); err != nil {
		return Transfer{}, err
	}

	event := Transfer{To: destinationOwner, Amount: amount}
	log.With().Str("component", "tokenhook").Logger().Debug().
		Hex("to", event.To[:]).Uint64("amount", event.Amount).Msg("appended transfer leaf")

	return event, nil
}
