package conversation

import (
	"log"
	"regexp"
	"strings"
)

// Referential cues that signal a follow-up on an earlier answer.
var contextualPhrases = []string{
	"more about", "details on", "tell me more", "show more",
	"what about", "how about", "and the", "for that",
}

var (
	pronounPattern  = regexp.MustCompile(`\b(that|those|this|these|it|them|its|their)\b`)
	tenantPattern   = regexp.MustCompile(`(?i)(Tenant_\w+|tenant\s+\w+)`)
	locationPattern = regexp.MustCompile(`(?i)(Location_\w+|location\s+\w+)`)
	tenantToken     = regexp.MustCompile(`(?i)Tenant_\w+`)
	locationToken   = regexp.MustCompile(`(?i)Location_\w+`)
	entityToken     = regexp.MustCompile(`^(?:Tenant|Location)_\w+$`)
)

// Exception kinds recognised for "those exceptions" style references.
var exceptionTypes = []string{"LATE_IN", "EARLY_OUT", "MISSED_PUNCH", "OVERTIME", "ABSENCE"}

// Resolver rewrites an utterance so the interpreter sees a self-contained
// phrase. Best-effort only: when no entity can be recovered the utterance
// passes through unchanged, never an error.
type Resolver struct {
	store  *Store
	logger *log.Logger
}

// NewResolver builds a resolver over the given session store.
func NewResolver(store *Store) *Resolver {
	return &Resolver{
		store:  store,
		logger: log.New(log.Writer(), "[CTX] ", log.LstdFlags),
	}
}

// Enhance applies two rewrite rules in order, first match wins: contextual
// phrase expansion, then pronoun substitution. An empty history short-circuits.
func (r *Resolver) Enhance(utterance, sessionID string) string {
	history := r.store.History(sessionID)
	if len(history) == 0 {
		return utterance
	}

	lower := strings.ToLower(utterance)
	if containsContextualPhrase(lower) {
		if enhanced := r.expandFromHistory(utterance, history); enhanced != utterance {
			r.logger.Printf("expanded %q -> %q", utterance, enhanced)
			return enhanced
		}
		return utterance
	}
	if pronounPattern.MatchString(lower) {
		if resolved := r.substitutePronouns(utterance, history); resolved != utterance {
			r.logger.Printf("resolved %q -> %q", utterance, resolved)
			return resolved
		}
	}
	return utterance
}

func containsContextualPhrase(lower string) bool {
	for _, phrase := range contextualPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// expandFromHistory appends "for <entity>" where the entity comes from the
// most recent turn that produced rows: its prompting text first, then the
// insight's top value when the text carries no name (e.g. the entity only
// appeared in the result).
func (r *Resolver) expandFromHistory(utterance string, history []Turn) string {
	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != RoleAssistant || turn.RowCount == 0 {
			continue
		}

		for _, pat := range []*regexp.Regexp{tenantPattern, locationPattern} {
			if m := pat.FindString(turn.Prompt); m != "" {
				return appendEntity(utterance, m)
			}
		}
		if turn.Insight != nil && turn.Insight.Highlights != nil {
			if top := turn.Insight.Highlights.TopValue; entityToken.MatchString(top) {
				return appendEntity(utterance, top)
			}
		}
		break
	}
	return utterance
}

// appendEntity is idempotent: an utterance already naming the entity is
// returned unchanged, so re-resolving an expanded utterance is a no-op.
func appendEntity(utterance, entity string) string {
	if strings.Contains(strings.ToLower(utterance), strings.ToLower(entity)) {
		return utterance
	}
	return utterance + " for " + entity
}

// substitutePronouns replaces pronoun phrases keyed by their implied category
// with the matching entity from the most recent productive turn.
func (r *Resolver) substitutePronouns(utterance string, history []Turn) string {
	lower := strings.ToLower(utterance)

	for i := len(history) - 1; i >= 0; i-- {
		turn := history[i]
		if turn.Role != RoleAssistant || turn.RowCount == 0 {
			continue
		}
		prevLower := strings.ToLower(turn.Prompt)

		if start, length := pronounNoun(lower, "tenant"); length > 0 && strings.Contains(prevLower, "tenant") {
			if entity := turnEntity(turn, tenantToken, "Tenant_"); entity != "" {
				return utterance[:start] + entity + utterance[start+length:]
			}
		}
		if start, length := pronounNoun(lower, "location"); length > 0 && strings.Contains(prevLower, "location") {
			if entity := turnEntity(turn, locationToken, "Location_"); entity != "" {
				return utterance[:start] + entity + utterance[start+length:]
			}
		}
		if start, length := pronounNoun(lower, "exceptions"); length > 0 && strings.Contains(prevLower, "exception") {
			for _, et := range exceptionTypes {
				if strings.Contains(strings.ToUpper(turn.Prompt), et) {
					return utterance[:start] + et + " exceptions" + utterance[start+length:]
				}
			}
		}
		break
	}
	return utterance
}

// turnEntity pulls a concrete entity name out of a prior turn, preferring its
// prompting text, falling back to the insight's top value.
func turnEntity(turn Turn, token *regexp.Regexp, prefix string) string {
	if m := token.FindString(turn.Prompt); m != "" {
		return m
	}
	if turn.Insight != nil && turn.Insight.Highlights != nil && strings.HasPrefix(turn.Insight.Highlights.TopValue, prefix) {
		return turn.Insight.Highlights.TopValue
	}
	return ""
}

// pronounNoun locates the "<pronoun> <noun>" phrase in the lowercased
// utterance and returns its offset and length, or a zero length when absent.
func pronounNoun(lower, noun string) (int, int) {
	for _, p := range []string{"that", "those", "this", "these"} {
		phrase := p + " " + noun
		if i := strings.Index(lower, phrase); i >= 0 {
			return i, len(phrase)
		}
	}
	return 0, 0
}
