package core

// TxState tracks a pending token transfer through confirmation.
type TxState int

const (
	TxIdle TxState = iota
	TxSending
	TxAwaitingConfirmation
	TxConfirmed
	TxFailed
)

func (s TxState) String() string {
	switch s {
	case TxIdle:
		return "Idle"
	case TxSending:
		return "Sending"
	case TxAwaitingConfirmation:
		return "AwaitingConfirmation"
	case TxConfirmed:
		return "Confirmed"
	case TxFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// PendingTransaction is a submitted on-chain transfer awaiting confirmation
// together with the campaign payload it funds.
type PendingTransaction struct {
	Hash  string
	Draft CampaignDraft
	State TxState
}
