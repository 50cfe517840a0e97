package stubserver

import (
	"time"

	"github.com/google/uuid"

	"github.com/osaleh/aidesk/internal/api"
)

// DemoEmail and DemoPassword are the credentials created by Seed.
const (
	DemoEmail    = "admin@dev.com"
	DemoPassword = "password123"
)

// Seed populates the stub with a demo account, a couple of pending
// approvals and some engagement history, so `aidesk dev-server` is
// usable immediately.
func (s *Server) Seed() error {
	user, err := s.CreateAccount("Demo Operator", "Acme Trading Co", DemoEmail, DemoPassword)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[user.Email].profile = api.BusinessProfile{
		KnowledgeBase:  "Acme Trading Co sells industrial supplies. Opening hours 9am-6pm Mon-Sat.",
		AIInstructions: "Be concise and friendly. Never promise delivery dates without an order number.",
	}

	s.approvals = append(s.approvals,
		&api.ApprovalItem{
			ID:           uuid.NewString(),
			WorkflowRule: api.WorkflowRule{IntentName: "complaint", MinConfidence: 0.75},
			ProposedAction: api.ProposedAction{
				OriginalText: "My order arrived broken, I want a refund now.",
				ReplyText:    "I'm very sorry to hear that. I've escalated this to our team and we will make it right.",
			},
			Status: api.ApprovalPending,
		},
		&api.ApprovalItem{
			ID:           uuid.NewString(),
			WorkflowRule: api.WorkflowRule{IntentName: "human_handoff", MinConfidence: 0.8},
			ProposedAction: api.ProposedAction{
				OriginalText: "Can I speak to someone about a bulk order?",
				ReplyText:    "Of course, let me connect you with a member of our team right away.",
			},
			Status: api.ApprovalPending,
		},
	)

	now := time.Now().UTC()
	seedEvents := []api.EngagementEvent{
		{Content: "Hello, are you open today?", Intent: "greeting", Status: "HANDLED"},
		{Content: "How much is the 20L compressor?", Intent: "pricing_inquiry", Status: "HANDLED"},
		{Content: "Where is my order #4411?", Intent: "order_status", Status: "HANDLED"},
		{Content: "My order arrived broken, I want a refund now.", Intent: "complaint", Status: "PENDING"},
	}
	for i, ev := range seedEvents {
		ev.ID = uuid.NewString()
		ev.CreatedAt = now.Add(-time.Duration(len(seedEvents)-i) * 7 * time.Minute)
		s.events = append(s.events, ev)
	}
	return nil
}
