package chat

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/workforce-tools/tasq/config"
	"github.com/workforce-tools/tasq/internal/cache"
	"github.com/workforce-tools/tasq/internal/charts"
	"github.com/workforce-tools/tasq/internal/conversation"
	"github.com/workforce-tools/tasq/internal/insights"
	"github.com/workforce-tools/tasq/internal/nlq"
	"github.com/workforce-tools/tasq/internal/query"
	"github.com/workforce-tools/tasq/internal/registry"
)

// QueryExecutor runs validated SQL and reports the outcome as a result set.
type QueryExecutor interface {
	Execute(ctx context.Context, sqlText string) *query.ResultSet
}

// Response is one complete answer to a chat message.
type Response struct {
	SessionID string            `json:"session_id"`
	Message   string            `json:"message"`
	Category  string            `json:"category"`
	Insight   *insights.Insight `json:"insight,omitempty"`
	Chart     *charts.Spec      `json:"chart,omitempty"`
	Result    *query.ResultSet  `json:"result,omitempty"`
	FollowUps []string          `json:"follow_ups,omitempty"`
}

// Service is the conversational pipeline: context enhancement, resolution,
// execution, analysis, chart projection and composition, in that order.
type Service struct {
	store        *conversation.Store
	resolver     *conversation.Resolver
	interpreter  *nlq.Interpreter
	executor     QueryExecutor
	engine       *insights.Engine
	projector    *charts.Projector
	cache        *cache.ResultCache
	contextTurns int
	logger       *log.Logger
}

func NewService(cfg config.ConversationConfig, store *conversation.Store, interp *nlq.Interpreter, exec QueryExecutor, engine *insights.Engine, projector *charts.Projector, resultCache *cache.ResultCache) *Service {
	store.OnEvict(ObserveEvictions)
	return &Service{
		store:        store,
		resolver:     conversation.NewResolver(store),
		interpreter:  interp,
		executor:     exec,
		engine:       engine,
		projector:    projector,
		cache:        resultCache,
		contextTurns: cfg.ContextTurns,
		logger:       log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
}

// HandleTurn processes one user message end to end. An empty sessionID starts
// a new session. Errors inside the pipeline surface as conversational
// responses, not Go errors; the only hard failure is context cancellation.
func (s *Service) HandleTurn(ctx context.Context, sessionID, utterance string) *Response {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	s.store.Append(sessionID, conversation.Turn{
		ID:        uuid.NewString(),
		Role:      conversation.RoleUser,
		Text:      utterance,
		Timestamp: time.Now(),
	})

	enhanced := s.resolver.Enhance(utterance, sessionID)
	if enhanced != utterance {
		s.logger.Printf("session %s: enhanced %q -> %q", sessionID, utterance, enhanced)
	}

	contextText := s.store.ContextText(sessionID, s.contextTurns)
	sqlText, category := s.interpreter.Resolve(ctx, enhanced, contextText)

	if category == registry.CategoryUnknown {
		return s.respondHelp(sessionID, enhanced, sqlText)
	}

	rs := s.cache.Get(ctx, sqlText)
	if rs != nil {
		cacheHitsTotal.Inc()
	} else {
		rs = s.executor.Execute(ctx, sqlText)
		s.cache.Put(ctx, sqlText, rs)
	}

	insight := s.engine.Analyze(category, rs)
	chart := s.projector.Project(category, rs)
	message := composeMessage(rs, insight, chart)

	if !rs.Success {
		turnsTotal.WithLabelValues(category, "error").Inc()
		s.store.Append(sessionID, conversation.Turn{
			ID:        uuid.NewString(),
			Role:      conversation.RoleError,
			Text:      rs.ErrorMessage,
			Prompt:    enhanced,
			Query:     sqlText,
			Timestamp: time.Now(),
		})
	} else {
		turnsTotal.WithLabelValues(category, "ok").Inc()
		s.store.Append(sessionID, conversation.Turn{
			ID:        uuid.NewString(),
			Role:      conversation.RoleAssistant,
			Text:      message,
			Prompt:    enhanced,
			Query:     sqlText,
			RowCount:  rs.RowCount,
			Insight:   insight,
			Timestamp: time.Now(),
		})
	}

	return &Response{
		SessionID: sessionID,
		Message:   message,
		Category:  category,
		Insight:   insight,
		Chart:     chart,
		Result:    rs,
		FollowUps: followUps(category, insight),
	}
}

// respondHelp renders the help text as a synthetic result. Nothing touches
// the database on this path.
func (s *Service) respondHelp(sessionID, prompt, helpText string) *Response {
	turnsTotal.WithLabelValues(registry.CategoryUnknown, "ok").Inc()
	s.store.Append(sessionID, conversation.Turn{
		ID:        uuid.NewString(),
		Role:      conversation.RoleAssistant,
		Text:      helpText,
		Prompt:    prompt,
		Timestamp: time.Now(),
	})
	return &Response{
		SessionID: sessionID,
		Message:   helpText,
		Category:  registry.CategoryUnknown,
		Result: &query.ResultSet{
			Columns:  []string{"message"},
			Rows:     [][]interface{}{{helpText}},
			RowCount: 1,
			Success:  true,
		},
		FollowUps: followUps(registry.CategoryUnknown, nil),
	}
}

// History returns the retained turns for a session, oldest first.
func (s *Service) History(sessionID string) []conversation.Turn {
	return s.store.History(sessionID)
}

// ClearSession forgets a session's context.
func (s *Service) ClearSession(sessionID string) {
	s.store.Clear(sessionID)
}
