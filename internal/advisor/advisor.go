// internal/advisor/advisor.go
// Package advisor combines retrieval, context assembly, conversation state,
// and grounded generation into the question-answering surface consumed by
// the CLI and the chat session.
package advisor

import (
	"context"
	"fmt"

	"github.com/jclermont/advisor/internal/appconfig"
	"github.com/jclermont/advisor/internal/embed"
	"github.com/jclermont/advisor/internal/llm"
	"github.com/jclermont/advisor/internal/logging"
	"github.com/jclermont/advisor/internal/retriever"
	"github.com/jclermont/advisor/internal/vecindex"
)

// Generator produces an answer from a chat message sequence.
// Satisfied by llm.Client.
type Generator interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// Result is the outcome of one question. When generation fails, Sources and
// RetrievedCount are still populated so a caller can report what was found.
type Result struct {
	Answer         string
	Sources        []string
	RetrievedCount int
	Cited          []string
	// Context is the assembled context block, carried for debug logging.
	Context string
}

// Advisor is the dependency-injected query pipeline. Construct it once at
// process start and share it across sessions; the underlying index is
// read-only, so concurrent Ask calls need no locking. Conversation state is
// the caller's, scoped per session.
type Advisor struct {
	retriever *retriever.Retriever
	generator Generator
	k         int
}

// New wires an Advisor from its components. k is the retrieval count applied
// to every question.
func New(r *retriever.Retriever, g Generator, k int) (*Advisor, error) {
	if r == nil {
		return nil, fmt.Errorf("retriever is nil")
	}
	if g == nil {
		return nil, fmt.Errorf("generator is nil")
	}
	if k <= 0 {
		return nil, fmt.Errorf("retrieval count must be greater than zero")
	}
	return &Advisor{retriever: r, generator: g, k: k}, nil
}

// FromConfig loads the persisted index and wires the full pipeline. A missing
// or corrupt index fails here, before any remote call is made.
func FromConfig(cfg *appconfig.Config) (*Advisor, error) {
	index, err := vecindex.Load(cfg.IndexDirPath())
	if err != nil {
		return nil, err
	}
	embedder, err := embed.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	generator, err := llm.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return New(retriever.New(embedder, index, cfg.OverFetch()), generator, cfg.RetrieveCount())
}

// Ask retrieves relevant courses, builds the grounded prompt with the
// session's recent turns, and generates an answer. On success the completed
// turn is appended to conv (which may be nil for one-shot questions). A
// generation failure still returns the retrieved sources alongside the error.
func (a *Advisor) Ask(ctx context.Context, question string, filters retriever.Filters, conv *Conversation) (Result, error) {
	return a.AskWithK(ctx, question, filters, a.k, conv)
}

// AskWithK is Ask with an explicit retrieval count, overriding the default.
func (a *Advisor) AskWithK(ctx context.Context, question string, filters retriever.Filters, k int, conv *Conversation) (Result, error) {
	if k <= 0 {
		k = a.k
	}
	hits, err := a.retriever.Search(ctx, question, filters, k)
	if err != nil {
		return Result{}, err
	}

	sources := make([]string, len(hits))
	for i, hit := range hits {
		sources[i] = hit.Record.Code
	}
	contextBlock := BuildContext(hits)

	var turns []Turn
	if conv != nil {
		turns = conv.Recent(conv.cap)
	}

	answer, err := a.generator.Complete(ctx, buildMessages(contextBlock, turns, question))
	if err != nil {
		return Result{
			Sources:        sources,
			RetrievedCount: len(sources),
			Context:        contextBlock,
		}, err
	}

	cited, invented := VerifyCitations(answer, sources)
	if len(invented) > 0 {
		logging.LogEvent("answer cites %d course(s) not in the retrieved set: %v", len(invented), invented)
	}

	if conv != nil {
		conv.Append(question, answer, cited)
	}

	return Result{
		Answer:         answer,
		Sources:        sources,
		RetrievedCount: len(sources),
		Cited:          cited,
		Context:        contextBlock,
	}, nil
}
