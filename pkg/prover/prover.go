// Package prover implements component C8: driving the external prover with
// an assembled witness, and the on-chain-side verifier abstraction (spec §9:
// "Replace any concrete SDK coupling with an interface").
package prover

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vaporlabs/vapor-tokens/pkg/witness"
)

// Prover is the off-chain side of spec §9's abstraction:
// prove(witness_toml) -> (proof_bytes, public_witness_bytes).
type Prover interface {
	Prove(ctx context.Context, w witness.CondenserWitness) (proofBytes, publicWitnessBytes []byte, err error)
}

// Verifier is the on-chain side of the same abstraction:
// verify(proof_bytes, public_inputs) -> Result.
type Verifier interface {
	Verify(proofBytes, publicWitnessBytes []byte) error
}

const (
	defaultProverImage = "vapor-prover:latest"
	proverImageEnv      = "VAPOR_PROVER_IMAGE"

	// defaultTimeout resolves spec §9's open question on prover subprocess
	// timeouts: a 2-minute context deadline around the subprocess wait,
	// the same idiom pkg/sync applies to its own 30s RPC client timeout.
	defaultTimeout = 2 * time.Minute
)

var (
	proofMarker   = []byte("---PROOF---\n")
	witnessMarker = []byte("\n---WITNESS---\n")
)

// ErrMissingMarker is returned when the prover's stdout does not contain
// both delimiter markers, or either segment is empty.
var ErrMissingMarker = errors.New("prover: missing proof or witness marker in prover output")

// SubprocessProver drives an external prover container: writes the witness
// TOML to stdin, reads proof/public-witness bytes from stdout, delimited by
// literal markers. Ported from the external prover CLI's docker-invocation
// driver.
type SubprocessProver struct {
	// CircuitsDir is bind-mounted into the container at
	// /circuits/condense.
	CircuitsDir string
	// Image overrides VAPOR_PROVER_IMAGE / the default image, mostly for
	// tests.
	Image string
	// Timeout overrides defaultTimeout; zero means defaultTimeout.
	Timeout time.Duration
}

var _ Prover = (*SubprocessProver)(nil)

// Prove spawns `docker run --rm -i -v <CircuitsDir>:/circuits/condense
// <image>`, feeds it the witness TOML, and parses the proof/witness byte
// streams from its stdout.
func (p *SubprocessProver) Prove(ctx context.Context, w witness.CondenserWitness) ([]byte, []byte, error) {
	toml, err := w.ToTOML()
	if err != nil {
		return nil, nil, errors.Wrap(err, "prover: serialize witness")
	}

	timeout := p.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	image := p.Image
	if image == "" {
		image = os.Getenv(proverImageEnv)
	}
	if image == "" {
		image = defaultProverImage
	}

	volume := fmt.Sprintf("%s:/circuits/condense", p.CircuitsDir)
	cmd := exec.CommandContext(ctx, "docker", "run", "--rm", "-i", "-v", volume, image)
	cmd.Stdin = bytes.NewReader(toml)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.Output()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "prover: run %s", image)
	}

	return parseProverOutput(stdout)
}

func parseProverOutput(stdout []byte) ([]byte, []byte, error) {
	proofStart := bytes.Index(stdout, proofMarker)
	if proofStart < 0 {
		return nil, nil, ErrMissingMarker
	}
	proofStart += len(proofMarker)

	witnessMarkerPos := bytes.Index(stdout[proofStart:], witnessMarker)
	if witnessMarkerPos < 0 {
		return nil, nil, ErrMissingMarker
	}
	witnessMarkerPos += proofStart

	proofBytes := stdout[proofStart:witnessMarkerPos]
	witnessStart := witnessMarkerPos + len(witnessMarker)
	witnessBytes := stdout[witnessStart:]

	if len(proofBytes) == 0 || len(witnessBytes) == 0 {
		return nil, nil, ErrMissingMarker
	}

	return append([]byte(nil), proofBytes...), append([]byte(nil), witnessBytes...), nil
}
