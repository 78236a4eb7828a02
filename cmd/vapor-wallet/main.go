// Command vapor-wallet is the CLI client (spec §6 "CLI surface"):
// gen-address, list, condense. The host blockchain runtime and the prover
// container are external collaborators (spec §1); this command wires up the
// local pieces (pkg/wallet, pkg/edwards, pkg/localtree, pkg/witness,
// pkg/prover) and clearly marks the RPC/submission boundary it cannot
// exercise standalone.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vaporlabs/vapor-tokens/config"
	"github.com/vaporlabs/vapor-tokens/pkg/accumulator"
	"github.com/vaporlabs/vapor-tokens/pkg/edwards"
	"github.com/vaporlabs/vapor-tokens/pkg/localtree"
	"github.com/vaporlabs/vapor-tokens/pkg/prover"
	"github.com/vaporlabs/vapor-tokens/pkg/sync"
	"github.com/vaporlabs/vapor-tokens/pkg/wallet"
	"github.com/vaporlabs/vapor-tokens/pkg/witness"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	rpcURL := envOr("SOL_RPC", "https://api.devnet.solana.com")
	mint := envOr("MINT", "")
	walletPath := envOr("WALLET_PATH", "wallet.db")
	hookProgramID := envOr("HOOK_PROGRAM_ID", "4pY5QvuVwh2Ktd6LAiAGhuhFvVFqx6GCioh6iThmLT8y")

	w, err := wallet.Open(walletPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open wallet database")
	}
	defer w.Close()

	switch os.Args[1] {
	case "gen-address":
		fs := flag.NewFlagSet("gen-address", flag.ExitOnError)
		fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			log.Fatal().Msg("usage: vapor-wallet gen-address <recipient_base58>")
		}
		if err := genAddress(w, fs.Arg(0)); err != nil {
			log.Fatal().Err(err).Msg("gen-address failed")
		}

	case "list":
		if err := runSync(w, rpcURL, mint, hookProgramID); err != nil {
			log.Error().Err(err).Msg("sync failed, showing local state only")
		}
		if err := list(w); err != nil {
			log.Fatal().Err(err).Msg("list failed")
		}

	case "condense":
		fs := flag.NewFlagSet("condense", flag.ExitOnError)
		keypair := fs.String("keypair", "~/.config/solana/id.json", "path to the fee-payer keypair")
		fs.Parse(os.Args[2:])
		if fs.NArg() != 1 {
			log.Fatal().Msg("usage: vapor-wallet condense <vapor_addr_base58> [--keypair <path>]")
		}
		if err := runSync(w, rpcURL, mint, hookProgramID); err != nil {
			log.Error().Err(err).Msg("sync failed, condensing against local state only")
		}
		if err := condense(w, fs.Arg(0), *keypair); err != nil {
			log.Fatal().Err(err).Msg("condense failed")
		}

	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vapor-wallet <gen-address|list|condense> [args]")
	fmt.Fprintln(os.Stderr, "env: SOL_RPC, MINT, WALLET_PATH, VAPOR_PROVER_IMAGE")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func genAddress(w *wallet.Wallet, recipientBase58 string) error {
	recipientBytes, err := base58.Decode(recipientBase58)
	if err != nil {
		return fmt.Errorf("decode recipient: %w", err)
	}
	if len(recipientBytes) != 32 {
		return fmt.Errorf("recipient must decode to 32 bytes, got %d", len(recipientBytes))
	}
	var recipient [32]byte
	copy(recipient[:], recipientBytes)

	addr, secret, err := edwards.Generate(recipient, rand.Reader)
	if err != nil {
		return fmt.Errorf("generate vapor address: %w", err)
	}

	rec := wallet.VaporAddressRecord{VaporAddr: addr, Recipient: recipient, Secret: secret}
	if err := w.PutVaporAddress(rec); err != nil {
		return fmt.Errorf("store vapor address: %w", err)
	}

	fmt.Println(base58.Encode(addr[:]))
	return nil
}

// runSync is the one place this CLI touches the host RPC boundary (spec §1:
// "out of scope... external collaborators"). Without a concrete
// sync.Client wired to a live RPC endpoint it always reports an error; the
// caller falls back to whatever the local wallet database already has.
func runSync(w *wallet.Wallet, rpcURL, mint, hookProgramID string) error {
	if mint == "" {
		return fmt.Errorf("MINT is not set")
	}
	var client sync.Client
	if client == nil {
		return fmt.Errorf("no RPC client configured for %s: host runtime integration is out of scope for this build", rpcURL)
	}
	return sync.Sync(context.Background(), client, w, mint, hookProgramID)
}

func list(w *wallet.Wallet) error {
	addresses, err := w.ListVaporAddresses()
	if err != nil {
		return err
	}
	transfers, err := w.ListTransfers()
	if err != nil {
		return err
	}

	fmt.Printf("%d vapor address(es):\n", len(addresses))
	for _, rec := range addresses {
		fmt.Printf("  %s -> recipient %s\n", base58.Encode(rec.VaporAddr[:]), base58.Encode(rec.Recipient[:]))
	}

	fmt.Printf("%d recorded transfer(s):\n", len(transfers))
	for _, t := range transfers {
		fmt.Printf("  slot %d: to=%s amount=%d\n", t.Slot, base58.Encode(t.To[:]), t.Amount)
	}
	return nil
}

// condense rebuilds a fresh inclusion proof for the chosen vapor address's
// largest deposit, assembles the witness, and drives the external
// prover. Submitting the resulting proof on-chain is, like runSync, a host
// RPC boundary this build does not wire up.
func condense(w *wallet.Wallet, vaporAddrBase58 string, keypairPath string) error {
	addrBytes, err := base58.Decode(vaporAddrBase58)
	if err != nil {
		return fmt.Errorf("decode vapor address: %w", err)
	}
	var addr [32]byte
	copy(addr[:], addrBytes)

	rec, err := w.GetVaporAddress(addr)
	if err != nil {
		return fmt.Errorf("vapor address not found in wallet: %w", err)
	}

	transfers, err := w.ListTransfers()
	if err != nil {
		return err
	}

	// Replay the full local transfer log in slot order, capturing a
	// changelog-patchable proof for the deposit with the largest amount
	// that targets this vapor address (spec §8 scenario 4: a later,
	// larger deposit subsumes earlier ones under the monotone counter).
	tree := localtree.New()
	var (
		found         bool
		chosenProof   [config.TreeHeight]*big.Int
		chosenCL      int
		chosenIndex   int
		chosenAmount  uint64
	)

	for i, t := range transfers {
		leaf := accumulator.Leaf(t.To, t.Amount)
		proof, cl, err := tree.AppendWithProof(leaf)
		if err != nil {
			return fmt.Errorf("replay transfer log: %w", err)
		}
		if t.To == addr && (!found || t.Amount > chosenAmount) {
			found = true
			chosenProof = proof
			chosenCL = cl
			chosenIndex = i
			chosenAmount = t.Amount
		}
	}
	if !found {
		return fmt.Errorf("no recorded deposit to vapor address %s", vaporAddrBase58)
	}

	if _, err := tree.UpdateProofFromChangelog(chosenCL, uint64(chosenIndex), &chosenProof); err != nil {
		return fmt.Errorf("bring proof up to date: %w", err)
	}
	if !localtree.VerifyProof(accumulator.Leaf(addr, chosenAmount), chosenProof, uint64(chosenIndex), tree.Root) {
		return fmt.Errorf("rebuilt inclusion proof does not reconstruct the current root")
	}

	indices := localtree.ProofIndices(uint64(chosenIndex))
	w2 := witness.Build(rec.Recipient, chosenAmount, tree.Root, rec.VaporAddr, chosenProof, indices, rec.Secret)

	p := &prover.SubprocessProver{CircuitsDir: "circuits/condense"}
	if _, _, err := p.Prove(context.Background(), w2); err != nil {
		log.Warn().Err(err).Msg("prover unavailable in this environment")
	}

	return fmt.Errorf("proof submission to the host runtime is out of scope for this build (keypair %s)", keypairPath)
}
