package prover

import (
	"testing"
)

func TestParseProverOutputHappyPath(t *testing.T) {
	stdout := append([]byte{}, proofMarker...)
	stdout = append(stdout, []byte("deadbeef")...)
	stdout = append(stdout, witnessMarker...)
	stdout = append(stdout, []byte("cafebabe")...)

	proofBytes, witnessBytes, err := parseProverOutput(stdout)
	if err != nil {
		t.Fatalf("parseProverOutput: %v", err)
	}
	if string(proofBytes) != "deadbeef" {
		t.Fatalf("proof bytes = %q", proofBytes)
	}
	if string(witnessBytes) != "cafebabe" {
		t.Fatalf("witness bytes = %q", witnessBytes)
	}
}

func TestParseProverOutputMissingProofMarker(t *testing.T) {
	stdout := []byte("no markers here")
	if _, _, err := parseProverOutput(stdout); err != ErrMissingMarker {
		t.Fatalf("expected ErrMissingMarker, got %v", err)
	}
}

func TestParseProverOutputMissingWitnessMarker(t *testing.T) {
	stdout := append([]byte{}, proofMarker...)
	stdout = append(stdout, []byte("deadbeef")...)
	if _, _, err := parseProverOutput(stdout); err != ErrMissingMarker {
		t.Fatalf("expected ErrMissingMarker, got %v", err)
	}
}

func TestParseProverOutputEmptySegment(t *testing.T) {
	stdout := append([]byte{}, proofMarker...)
	stdout = append(stdout, witnessMarker...)
	stdout = append(stdout, []byte("cafebabe")...)
	if _, _, err := parseProverOutput(stdout); err != ErrMissingMarker {
		t.Fatalf("expected ErrMissingMarker for empty proof segment, got %v", err)
	}
}
