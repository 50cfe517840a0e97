package stubserver

import "strings"

// intentRule maps trigger keywords to an intent. Intents marked
// sensitive route the proposed reply into the approval queue instead of
// auto-sending.
type intentRule struct {
	intent     string
	confidence float64
	sensitive  bool
	keywords   []string
}

var intentRules = []intentRule{
	{intent: "greeting", confidence: 0.97, keywords: []string{"hello", "hi", "hey", "good morning", "good evening"}},
	{intent: "pricing_inquiry", confidence: 0.91, keywords: []string{"price", "cost", "how much", "quote"}},
	{intent: "order_status", confidence: 0.89, keywords: []string{"order", "delivery", "shipped", "tracking"}},
	{intent: "complaint", confidence: 0.84, sensitive: true, keywords: []string{"complaint", "refund", "broken", "angry", "terrible", "cancel"}},
	{intent: "human_handoff", confidence: 0.88, sensitive: true, keywords: []string{"agent", "human", "speak to someone", "representative"}},
}

// classifyIntent is a deliberately small keyword matcher standing in
// for the real AI decision engine.
func classifyIntent(text string) (intent string, confidence float64, needsApproval bool) {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent, rule.confidence, rule.sensitive
			}
		}
	}
	return "general_inquiry", 0.62, false
}

func proposedReply(intent string) string {
	switch intent {
	case "complaint":
		return "I'm very sorry to hear that. I've escalated this to our team and we will make it right."
	case "human_handoff":
		return "Of course, let me connect you with a member of our team right away."
	default:
		return "Thanks for reaching out! A member of our team will follow up shortly."
	}
}
