// Command vapor-setup runs the trusted setup for the condense circuit:
// a single-party dev setup by default, or a multi-party Powers-of-Tau +
// circuit-specific ceremony when invoked with the `ceremony` subcommand.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/vaporlabs/vapor-tokens/circuits/condense"
	"github.com/vaporlabs/vapor-tokens/pkg/setup"
)

const circuitName = "condense"
const outputDir = "."

func circuitSkeleton() *condense.Circuit {
	return &condense.Circuit{}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "ceremony" {
		if err := setup.DevSetup(circuitSkeleton(), outputDir, circuitName); err != nil {
			log.Fatal(err)
		}
		return
	}

	if len(os.Args) < 3 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[2] {
	case "p1-init":
		err = setup.CeremonyP1Init(circuitSkeleton())
	case "p1-contribute":
		err = setup.CeremonyP1Contribute()
	case "p1-verify":
		if len(os.Args) < 4 {
			log.Fatal("usage: vapor-setup ceremony p1-verify BEACON_HEX")
		}
		err = setup.CeremonyP1Verify(circuitSkeleton(), os.Args[3])
	case "p2-init":
		err = setup.CeremonyP2Init(circuitSkeleton())
	case "p2-contribute":
		err = setup.CeremonyP2Contribute()
	case "p2-verify":
		if len(os.Args) < 4 {
			log.Fatal("usage: vapor-setup ceremony p2-verify BEACON_HEX")
		}
		err = setup.CeremonyP2Verify(circuitSkeleton(), os.Args[3], outputDir, circuitName)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func printUsage() {
	fmt.Println(`Usage:
  vapor-setup                             Dev mode (single-party setup, insecure)

  vapor-setup ceremony p1-init            Initialize Phase 1 (Powers of Tau)
  vapor-setup ceremony p1-contribute      Add a Phase 1 contribution
  vapor-setup ceremony p1-verify HEX      Verify Phase 1 & seal with random beacon

  vapor-setup ceremony p2-init            Initialize Phase 2 (circuit-specific)
  vapor-setup ceremony p2-contribute      Add a Phase 2 contribution
  vapor-setup ceremony p2-verify HEX      Verify Phase 2, seal & export keys

Ceremony workflow:
  1. p1-init          Coordinator creates the initial Phase 1 state
  2. p1-contribute    Each participant contributes (repeat N times)
  3. p1-verify        Coordinator verifies all & seals with a public beacon
  4. p2-init          Coordinator initializes Phase 2 with the circuit
  5. p2-contribute    Each participant contributes (repeat M times)
  6. p2-verify        Coordinator verifies all, seals, and exports final keys

Security: 1-of-N honest -- if any single contributor is honest, the setup is secure.
Beacon: use a public randomness source evaluated AFTER the last contribution.`)
}
