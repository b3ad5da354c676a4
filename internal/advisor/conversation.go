// internal/advisor/conversation.go
package advisor

// Turn is one completed question/answer exchange, with the course codes the
// answer was verified to cite.
type Turn struct {
	Question string
	Answer   string
	Cited    []string
}

// Conversation holds per-session dialogue state with a fixed capacity.
// When the cap is exceeded the oldest turn is evicted first; recency of
// dialogue is the only signal that matters. A Conversation belongs to exactly
// one session and is never shared.
type Conversation struct {
	turns []Turn
	cap   int
}

// NewConversation creates a conversation bounded to maxTurns.
func NewConversation(maxTurns int) *Conversation {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &Conversation{cap: maxTurns}
}

// Append records a completed turn, evicting the oldest turn when full.
func (c *Conversation) Append(question, answer string, cited []string) {
	c.turns = append(c.turns, Turn{Question: question, Answer: answer, Cited: cited})
	if len(c.turns) > c.cap {
		c.turns = c.turns[len(c.turns)-c.cap:]
	}
}

// Recent returns up to maxTurns of the latest turns, oldest first.
func (c *Conversation) Recent(maxTurns int) []Turn {
	if maxTurns <= 0 || len(c.turns) == 0 {
		return nil
	}
	if maxTurns > len(c.turns) {
		maxTurns = len(c.turns)
	}
	return c.turns[len(c.turns)-maxTurns:]
}

// Len returns the number of stored turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}
