package nlq

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/workforce-tools/tasq/internal/query"
	"github.com/workforce-tools/tasq/internal/registry"
	"github.com/workforce-tools/tasq/provider"
)

// Interpreter turns an (already context-resolved) utterance into a SQL string
// plus a category tag. Registry phrases win; an optional model resolver covers
// the rest; anything else degrades to the help text under category "unknown".
type Interpreter struct {
	registry *registry.Registry
	resolver provider.Resolver
	logger   *log.Logger
}

// New builds an interpreter. resolver may be nil; that is a valid runtime
// state, not an error, and simply disables the freeform path.
func New(reg *registry.Registry, resolver provider.Resolver) *Interpreter {
	return &Interpreter{
		registry: reg,
		resolver: resolver,
		logger:   log.New(log.Writer(), "[NLQ] ", log.LstdFlags),
	}
}

// Resolve maps the utterance to a query and category. For category "unknown"
// the returned string is the literal help text, not SQL; the pipeline renders
// it as a synthetic result instead of executing it.
func (i *Interpreter) Resolve(ctx context.Context, utterance, contextText string) (string, string) {
	if entry, ok := i.registry.Match(utterance); ok {
		i.logger.Printf("matched pattern %q", entry.Phrase)
		return entry.SQL, entry.Phrase
	}

	if i.resolver != nil {
		candidate, err := i.resolver.Resolve(ctx, utterance, contextText)
		if err != nil {
			// Any resolver failure is treated as absence.
			i.logger.Printf("freeform resolver unavailable: %v", err)
		} else if err := ValidateCandidate(candidate); err != nil {
			// Security-relevant: the model produced something we refuse to run.
			i.logger.Printf("rejected generated query (%v): %.120s", err, candidate)
		} else {
			i.logger.Printf("using freeform generated query")
			return candidate, registry.CategoryFreeform
		}
	}

	i.logger.Printf("no pattern matched, returning help text")
	return registry.HelpText, registry.CategoryUnknown
}

// ValidateCandidate gates model-generated SQL: it must be non-empty, read-only,
// start with a read clause and stay inside the tas_demo schema.
func ValidateCandidate(sql string) error {
	if strings.TrimSpace(sql) == "" {
		return fmt.Errorf("empty candidate")
	}
	if err := query.ValidateReadOnly(sql); err != nil {
		return err
	}
	if !strings.Contains(sql, query.SchemaName+".") {
		return fmt.Errorf("candidate does not reference the %s schema", query.SchemaName)
	}
	return nil
}
