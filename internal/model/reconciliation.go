package model

import "time"

// ConfirmationSource 哪一條路徑觸發了付款確認
type ConfirmationSource string

const (
	SourceWebhook  ConfirmationSource = "webhook"
	SourceFinalize ConfirmationSource = "finalize"
	SourceRetry    ConfirmationSource = "retry"
)

type IssueReason string

const (
	// money captured but the table was confirmed for someone else in the meantime
	IssueReasonTableConflict IssueReason = "table_conflict"
	IssueReasonBadMetadata   IssueReason = "invalid_metadata"
	IssueReasonWriteFailed   IssueReason = "write_failed"
	IssueReasonEventMissing  IssueReason = "event_missing"
)

// Permanent issues will not heal by retrying the same write.
func (r IssueReason) Permanent() bool {
	return r != IssueReasonWriteFailed
}

// ReconciliationIssue records a payment that succeeded at the provider but has
// no matching local record yet.
type ReconciliationIssue struct {
	PaymentIntentID string             `json:"payment_intent_id" db:"payment_intent_id"`
	Source          ConfirmationSource `json:"source" db:"source"`
	Reason          IssueReason        `json:"reason" db:"reason"`
	Detail          string             `json:"detail" db:"detail"`
	Attempts        int                `json:"attempts" db:"attempts"`
	Resolved        bool               `json:"resolved" db:"resolved"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`
}
