package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"

	"influencer-scout-be/pkg/llm"
	"influencer-scout-be/pkg/store"
)

const defaultPersona = `You are a friendly assistant qualifying influencer-marketing leads. Your job is to understand what kind of social-media creators the user is looking for: niche, platform, location, audience age range, follower size and budget. Ask one focused follow-up question per reply, keep replies short, and never invent creators. When the user indicates they are done, give a brief recap of their requirements.`

const (
	greetingReply         = "Hi! I can help you find social-media creators for your campaign. Tell me what kind of influencers you are looking for."
	invalidInputReply     = "Please type a message so I can help you."
	completionFailedReply = "Sorry, I ran into a problem generating a reply (%v). Please try again."

	// Marker the consuming surface keys on to offer the "run processing"
	// call to action.
	ProcessReadyMarker = "[PROCESS_READY]"
)

// Config tunes a Machine. MaxHistoryTurns bounds what is forwarded to the
// model per call; the retained history is never trimmed.
type Config struct {
	Phrases         PhraseSet
	Persona         string
	MaxHistoryTurns int
}

func DefaultConfig() Config {
	return Config{
		Phrases:         DefaultPhrases(),
		Persona:         defaultPersona,
		MaxHistoryTurns: 20,
	}
}

// TurnResult is what one handled turn produced.
type TurnResult struct {
	Reply     string
	Reset     bool   // greeting wiped the history this turn
	Concluded bool   // closing phrase ended qualification this turn
	Summary   string // set only when Concluded
	Err       error  // completion failure contained this turn, if any
}

// Machine owns turn-by-turn dialogue behavior for a session: greet,
// qualify, conclude, or answer grounded. It mutates only the session it is
// handed and always returns a user-visible reply.
type Machine struct {
	llmProvider llm.LLMProvider
	cfg         Config
	logger      *log.Logger
}

func NewMachine(llmProvider llm.LLMProvider, cfg Config, logger *log.Logger) *Machine {
	if cfg.Persona == "" {
		cfg.Persona = defaultPersona
	}
	if len(cfg.Phrases.Greetings) == 0 {
		cfg.Phrases = DefaultPhrases()
	}
	return &Machine{
		llmProvider: llmProvider,
		cfg:         cfg,
		logger:      logger,
	}
}

// HandleTurn processes one user message against the session. The
// per-session lock is held for the full turn so concurrent requests cannot
// interleave on the history.
func (m *Machine) HandleTurn(ctx context.Context, sess *store.Session, message string) *TurnResult {
	sess.Lock()
	defer sess.Unlock()

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return &TurnResult{Reply: invalidInputReply}
	}

	// A greeting always resets, whatever mode the session was in.
	if m.cfg.Phrases.IsGreeting(trimmed) {
		sess.Reset()
		sess.Append(llm.RoleAssistant, greetingReply)
		return &TurnResult{Reply: greetingReply, Reset: true}
	}

	if sess.Mode == store.ModeGrounded {
		return m.answerGrounded(ctx, sess, trimmed)
	}

	if sess.Mode == "" {
		sess.Mode = store.ModeQualifying
	}

	// A closing phrase concludes only once there is something to summarize.
	if m.cfg.Phrases.IsClosing(trimmed) && len(sess.UserTurns()) > 0 {
		return m.conclude(ctx, sess, trimmed)
	}

	return m.qualify(ctx, sess, trimmed)
}

// Summary renders the user-authored side of the conversation, in order,
// joined by single spaces. Closing phrases are not requirements and are
// skipped, which keeps the rendering stable when recomputed later.
func (m *Machine) Summary(sess *store.Session) string {
	var parts []string
	for _, turn := range sess.UserTurns() {
		if m.cfg.Phrases.IsClosing(turn) {
			continue
		}
		parts = append(parts, turn)
	}
	return strings.Join(parts, " ")
}

func (m *Machine) qualify(ctx context.Context, sess *store.Session, message string) *TurnResult {
	reply, err := m.complete(ctx, sess, message)
	if err != nil {
		// The failed call's would-be turns are never appended.
		m.logger.Printf("[DIALOGUE] Completion failed for session %s: %v", sess.ID, err)
		return &TurnResult{Reply: fmt.Sprintf(completionFailedReply, err), Err: err}
	}

	sess.Append(llm.RoleUser, message)
	sess.Append(llm.RoleAssistant, reply)
	return &TurnResult{Reply: reply}
}

func (m *Machine) conclude(ctx context.Context, sess *store.Session, message string) *TurnResult {
	summary := m.Summary(sess)

	reply, err := m.complete(ctx, sess, message)
	if err != nil {
		m.logger.Printf("[DIALOGUE] Completion failed at conclusion for session %s: %v", sess.ID, err)
		return &TurnResult{Reply: fmt.Sprintf(completionFailedReply, err), Err: err}
	}

	sess.Append(llm.RoleUser, message)
	sess.Append(llm.RoleAssistant, reply)

	full := fmt.Sprintf("%s\n\nHere is a summary of your requirements:\n%s\n\n%s",
		reply, summary, ProcessReadyMarker)

	return &TurnResult{Reply: full, Concluded: true, Summary: summary}
}

// complete sends persona + bounded history + the pending message. The
// pending message is not yet part of the session, so a failure leaves the
// history untouched.
func (m *Machine) complete(ctx context.Context, sess *store.Session, message string) (string, error) {
	history := sess.BoundedHistory(m.cfg.MaxHistoryTurns)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: m.cfg.Persona})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	return m.llmProvider.Chat(ctx, messages)
}

// answerGrounded answers from the stored grounding context alone. No
// running history is forwarded: one system message carrying the dataset,
// one user question.
func (m *Machine) answerGrounded(ctx context.Context, sess *store.Session, question string) *TurnResult {
	system := fmt.Sprintf(`Answer the user's question using ONLY the creator dataset below. If the dataset does not contain the answer, say so. Do not use outside knowledge.

DATASET:
%s`, sess.GroundingContext)

	reply, err := m.llmProvider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: question},
	})
	if err != nil {
		m.logger.Printf("[DIALOGUE] Grounded completion failed for session %s: %v", sess.ID, err)
		return &TurnResult{Reply: fmt.Sprintf(completionFailedReply, err), Err: err}
	}

	sess.Append(llm.RoleUser, question)
	sess.Append(llm.RoleAssistant, reply)
	return &TurnResult{Reply: reply}
}
