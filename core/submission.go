package core

// SubmissionStatus is the moderation state of a submitted proof.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "Pending"
	SubmissionApproved SubmissionStatus = "Approved"
	SubmissionRejected SubmissionStatus = "Rejected"
)

// ProofType discriminates what kind of artifact backs a submission.
type ProofType string

const (
	ProofText  ProofType = "Text"
	ProofImage ProofType = "Image"
	ProofVideo ProofType = "Video"
)

// Submission is a shiller's proof of completed work awaiting moderation.
type Submission struct {
	ID          int64            `json:"id"`
	Status      SubmissionStatus `json:"status"`
	User        *User            `json:"user,omitempty"`
	Link        string           `json:"link"`
	ProofType   ProofType        `json:"proofType"`
	ProofText   string           `json:"proofText,omitempty"`
	ProofImage  string           `json:"proofImage,omitempty"`
	ProofVideo  string           `json:"proofVideo,omitempty"`
	Multiplier  int              `json:"multiplier,omitempty"`
	Feedback    string           `json:"feedback,omitempty"`
	Campaign    string           `json:"campaign,omitempty"`
	DaoName     string           `json:"daoName,omitempty"`
	Description string           `json:"description,omitempty"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

// SubmissionDraft is the payload for submitting proof against a task. File
// proofs travel as multipart parts next to these fields.
type SubmissionDraft struct {
	TaskID    int64     `json:"taskId"`
	Link      string    `json:"link"`
	ProofType ProofType `json:"proofType"`
	ProofText string    `json:"proofText,omitempty"`
}

// Grade is a moderator's verdict on a submission.
type Grade struct {
	Status   SubmissionStatus `json:"status"`
	Feedback string           `json:"feedback,omitempty"`
}

// SubmissionsOverview aggregates moderation counters.
type SubmissionsOverview struct {
	PendingSubmissions  int `json:"pendingSubmissions"`
	ApprovedSubmissions int `json:"approvedSubmissions"`
	RejectedSubmissions int `json:"rejectedSubmissions"`
}
