package api

import "time"

// User is the operator account snapshot returned at login. The client
// never mutates it independently.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	Email        string `json:"email"`
}

// AuthResponse is the credential payload returned by /auth/login and
// /auth/signup.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// LoginRequest carries operator credentials for /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest carries the fields for creating a company account.
type SignupRequest struct {
	Name         string `json:"name" validate:"required"`
	BusinessName string `json:"businessName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
}

// ApprovalStatus is the decision state of an approval item.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// WorkflowRule describes the rule whose confidence threshold routed an
// AI action into the approval queue.
type WorkflowRule struct {
	IntentName    string  `json:"intentName"`
	MinConfidence float64 `json:"minConfidence"`
}

// ProposedAction is the incoming message and the reply the AI wants to
// send for it.
type ProposedAction struct {
	OriginalText string `json:"original_text"`
	ReplyText    string `json:"reply_text"`
}

// ApprovalItem is an AI-proposed action awaiting a human decision. The
// backend owns it; the client holds a read replica.
type ApprovalItem struct {
	ID             string         `json:"id"`
	WorkflowRule   WorkflowRule   `json:"workflowRule"`
	ProposedAction ProposedAction `json:"proposedAction"`
	Status         ApprovalStatus `json:"status"`
}

// DashboardStats is a point-in-time snapshot of engagement metrics.
type DashboardStats struct {
	TotalInteractions int     `json:"totalInteractions"`
	ActiveSessions    int     `json:"activeSessions"`
	PendingApprovals  int     `json:"pendingApprovals"`
	SystemHealth      float64 `json:"systemHealth"`
}

// EngagementEvent is one entry of the append-only engagement feed,
// delivered newest first by the backend.
type EngagementEvent struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Intent    string    `json:"intent"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// BusinessProfile is the editable knowledge document driving the AI.
type BusinessProfile struct {
	KnowledgeBase  string `json:"knowledgeBase"`
	AIInstructions string `json:"aiInstructions"`
}

// ProfileUpdate is a partial update for /businesses/profile. Nil fields
// are left untouched by the backend.
type ProfileUpdate struct {
	KnowledgeBase  *string `json:"knowledgeBase,omitempty"`
	AIInstructions *string `json:"aiInstructions,omitempty"`
}

// SimulateRequest feeds a synthetic inbound message into the agent.
type SimulateRequest struct {
	From string `json:"from" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// SimulationResult is the agent's analysis of a simulated message.
type SimulationResult struct {
	Analysis struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	} `json:"analysis"`
	NeedsApproval bool `json:"needsApproval"`
}
