package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"grocerbot/internal/cart"
	"grocerbot/internal/catalog"
	"grocerbot/internal/intent"
	"grocerbot/internal/llm"
	"grocerbot/internal/metrics"
	"grocerbot/internal/session"
)

// Stage is a step of the per-request reply pipeline.
type Stage string

const (
	StageReceived    Stage = "RECEIVED"
	StageClassified  Stage = "CLASSIFIED"
	StageCartMutated Stage = "CART_MUTATED"
	StageSkipped     Stage = "SKIPPED"
	StageContext     Stage = "CONTEXT_BUILT"
	StageModel       Stage = "MODEL_INVOKED"
	StageCleaned     Stage = "CLEANED"
	StagePersisted   Stage = "PERSISTED"
	StageResponded   Stage = "RESPONDED"
	StageFailed      Stage = "ERROR"
)

const ApologyReply = "Sorry, I couldn't generate a response right now."

var ErrEmptyPrompt = errors.New("user_prompt required")

// StageError reports the stage at which a reply failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", strings.ToLower(string(e.Stage)), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Persister commits a session once the reply is final.
type Persister interface {
	Save(ctx context.Context, s *session.Session) error
}

type Reply struct {
	Text       string
	CartUpdate string
	Intent     intent.Intent
	Stages     []Stage
}

type Service struct {
	catalog   *catalog.Catalog
	extractor *intent.Extractor
	engine    *cart.Engine
	persister Persister
	logger    *log.Logger

	model   llm.Client
	params  llm.Params
	timeout time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(
	cat *catalog.Catalog,
	extractor *intent.Extractor,
	engine *cart.Engine,
	persister Persister,
	logger *log.Logger,
) *Service {
	return &Service{
		catalog:   cat,
		extractor: extractor,
		engine:    engine,
		persister: persister,
		logger:    logger,
		params:    llm.DefaultParams(),
		timeout:   30 * time.Second,
		now:       time.Now,
	}
}

// WithModel enables model-backed replies. A nil client keeps the offline
// replies.
func (s *Service) WithModel(client llm.Client, params llm.Params, timeout time.Duration) *Service {
	s.model = client
	s.params = params
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

func (s *Service) WithMetrics(m *metrics.Metrics) *Service {
	s.metrics = m
	return s
}

// Respond runs one chat turn against sess. On error the session may hold
// uncommitted changes and must not be saved by the caller.
func (s *Service) Respond(ctx context.Context, sess *session.Session, prompt string) (*Reply, error) {
	reply := &Reply{Stages: []Stage{StageReceived}}
	step := func(st Stage) { reply.Stages = append(reply.Stages, st) }

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &StageError{Stage: StageReceived, Err: ErrEmptyPrompt}
	}
	sess.AppendTurn(session.RoleUser, prompt, s.now())

	in := s.extractor.Classify(prompt)
	reply.Intent = in
	step(StageClassified)
	s.logger.Debug("classified", "session", sess.ID, "cart_query", in.IsCartQuery,
		"order", in.WantsToOrder, "item", in.Item, "qty", in.Quantity, "rule", in.Rule)

	var text string
	if in.IsCartQuery {
		step(StageSkipped)
		text = CartListing(sess.Cart)
		s.metrics.ObserveModelCall(metrics.ModelSkipped, 0)
	} else {
		if fragment, ok := s.addFromIntent(sess, in); ok {
			reply.CartUpdate = fragment
			step(StageCartMutated)
		} else {
			step(StageSkipped)
		}

		ctxText := BuildContext(sess)
		step(StageContext)

		raw := s.generate(ctx, sess, prompt, ctxText, in, reply.CartUpdate)
		step(StageModel)

		text = Clean(raw)
		step(StageCleaned)

		if reply.CartUpdate != "" {
			text = reply.CartUpdate + "\n\n" + text
		}
	}

	sess.AppendTurn(session.RoleAssistant, text, s.now())
	sess.TruncateHistory(session.MaxStoredTurns)

	if s.persister != nil {
		if err := s.persister.Save(ctx, sess); err != nil {
			return nil, &StageError{Stage: StagePersisted, Err: err}
		}
	}
	step(StagePersisted)

	reply.Text = text
	step(StageResponded)
	return reply, nil
}

func (s *Service) addFromIntent(sess *session.Session, in intent.Intent) (string, bool) {
	if !in.WantsToOrder || !in.HasItem() {
		return "", false
	}
	if in.Quantity < 1 {
		s.logger.Debug("order intent skipped, quantity out of range", "session", sess.ID, "item", in.Item)
		return "", false
	}

	res, err := sess.ApplyCart(s.engine, cart.ActionAdd, in.Item, in.Quantity)
	s.metrics.CartOperation(string(cart.ActionAdd), err)
	if err != nil {
		s.logger.Debug("order intent not applied", "session", sess.ID, "item", in.Item, "err", err)
		return "", false
	}

	sess.RecordOrderItem(res.Item.Name, in.Quantity, s.now())
	s.logger.Info("cart updated from chat", "session", sess.ID, "item", res.Item.Name, "qty", in.Quantity)
	return fmt.Sprintf("Added %dkg of %s to your shopping cart.", in.Quantity, res.Item.Name), true
}

func (s *Service) generate(ctx context.Context, sess *session.Session, prompt, ctxText string, in intent.Intent, cartUpdate string) string {
	if s.model == nil {
		s.metrics.ObserveModelCall(metrics.ModelOffline, 0)
		return s.offlineReply(prompt, in, cartUpdate)
	}

	prices, err := s.catalog.Indented()
	if err != nil {
		s.logger.Error("render catalog for prompt", "err", err)
		return ApologyReply
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.model.Generate(callCtx, buildPrompt(prices, ctxText, prompt), s.params)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveModelCall(metrics.ModelError, elapsed)
		s.logger.Warn("model call failed", "session", sess.ID, "elapsed", elapsed, "err", err)
		return ApologyReply
	}

	s.metrics.ObserveModelCall(metrics.ModelOK, elapsed)
	return out
}

// offlineReply answers without a model.
func (s *Service) offlineReply(prompt string, in intent.Intent, cartUpdate string) string {
	if in.IsPriceQuestion {
		if !in.HasItem() {
			return "Which item would you like the price for?"
		}
		m, ok := s.catalog.Lookup(in.Item)
		if !ok {
			return fmt.Sprintf("Sorry, I don't have a price for %s.", in.Item)
		}
		return fmt.Sprintf("%s costs Rs%s per kg. Would you like to add it to the cart?", capitalize(m.Name), money(m.Price))
	}
	if cartUpdate != "" {
		return "I've updated your cart."
	}
	return "I heard: " + prompt
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
