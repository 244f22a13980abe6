// internal/services/outcome.go
package services

type OutcomeKind string

const (
	// Chain transaction confirmed and recorded locally.
	OutcomeCommitted OutcomeKind = "committed"
	// Chain transaction confirmed but the local record could not be written.
	// The transaction hash is the only trace of it.
	OutcomeChainSucceededRecordFailed OutcomeKind = "chain_succeeded_record_failed"
	// Nothing happened on-chain and nothing was written.
	OutcomeAborted OutcomeKind = "aborted"
)

// Outcome is the result every reconciliation workflow reports.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	TxHash string      `json:"tx_hash,omitempty"`
	Reason string      `json:"reason,omitempty"`
}

func committed(txHash string) Outcome {
	return Outcome{Kind: OutcomeCommitted, TxHash: txHash}
}

func recordFailed(txHash string, err error) Outcome {
	return Outcome{Kind: OutcomeChainSucceededRecordFailed, TxHash: txHash, Reason: err.Error()}
}

func aborted(err error) Outcome {
	return Outcome{Kind: OutcomeAborted, Reason: err.Error()}
}
