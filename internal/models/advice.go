package models

// Conflict groups subscriptions that overlap in what they provide
type Conflict struct {
	Group  string   `json:"group"`
	Items  []string `json:"items"`
	Reason string   `json:"reason"`
}

// Advice is a single cost-saving recommendation
type Advice struct {
	Title          string  `json:"title"`
	Detail         string  `json:"detail"`
	SavingPerMonth float64 `json:"savingPerMonth,omitempty"`
}

// AgentResult is the optimization agent's full answer. MonthlyBefore/After
// are expressed in the dominant currency's monthly-equivalent units and are
// derived from Subscription.MonthlyCost, never recomputed independently.
type AgentResult struct {
	Conflicts      []Conflict `json:"conflicts"`
	Advice         []Advice   `json:"advice"`
	MonthlyBefore  float64    `json:"monthlyBefore"`
	MonthlyAfter   float64    `json:"monthlyAfter"`
	SavingPerMonth float64    `json:"savingPerMonth"`
}

// Categories a subscription can be classified into
var Categories = []string{
	"Entertainment",
	"Productivity",
	"Education",
	"Utilities",
	"Finance",
	"Health",
	"Gaming",
	"Cloud",
	"Other",
}

// CategorizeResult is the classifier's answer for one subscription
type CategorizeResult struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// ChatMessage is one turn of the advisor chat
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatReply wraps the assistant's answer
type ChatReply struct {
	Reply string `json:"reply"`
}
