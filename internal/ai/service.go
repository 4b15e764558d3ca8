package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"legalaid-backend/internal/llm"
	"legalaid-backend/internal/search"
	"legalaid-backend/internal/shared/metrics"
	"legalaid-backend/internal/shared/telemetry"
)

const (
	completionTimeout = 30 * time.Second
	defaultTopK       = 5
	maxExcerptLength  = 200
	modelName         = "completion-stub"
)

var (
	ErrEmptyQuery      = errors.New("query must not be empty")
	ErrUnknownTemplate = errors.New("unknown document type")
)

// Source is one retrieved document fragment backing an answer.
type Source struct {
	DocID   string  `json:"docId"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// Citation is a numbered reference into Sources, matching the [n] markers
// the completion is asked to emit.
type Citation struct {
	ID      int     `json:"id"`
	DocID   string  `json:"docId"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

// QueryResult is the answer to an AI query plus the evidence behind it.
type QueryResult struct {
	Answer    string         `json:"answer"`
	Sources   []Source       `json:"sources"`
	Citations []Citation     `json:"citations"`
	Metadata  map[string]any `json:"metadata"`
}

// Draft is a generated legal document.
type Draft struct {
	DocumentType  string         `json:"documentType"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Parties       []string       `json:"parties"`
	EffectiveDate string         `json:"effectiveDate"`
	Content       string         `json:"content"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	Metadata      map[string]any `json:"metadata"`
	Note          string         `json:"note"`
}

// Service answers legal questions against indexed documents and drafts
// documents from templates.
type Service struct {
	Index *search.Index
	LLM   llm.Client
}

func NewService(index *search.Index, client llm.Client) *Service {
	return &Service{Index: index, LLM: client}
}

// Query retrieves matching document fragments and asks the completion
// client for an answer grounded in them. A completion failure degrades the
// answer but keeps the sources, so the caller still gets the evidence.
func (s *Service) Query(ctx context.Context, userID, query string, topK int, useDocuments bool) (QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return QueryResult{}, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = defaultTopK
	}

	sources := []Source{}
	citations := []Citation{}
	if useDocuments && s.Index != nil {
		for i, res := range s.Index.Query(query, topK) {
			sources = append(sources, Source{DocID: res.DocID, Score: res.Score, Snippet: res.Snippet})
			citations = append(citations, Citation{
				ID:      i + 1,
				DocID:   res.DocID,
				Score:   res.Score,
				Excerpt: truncate(res.Snippet, maxExcerptLength),
			})
		}
	}

	answer, degraded := s.complete(ctx, buildQueryPrompt(query, sources))
	if degraded {
		answer = "The assistant is temporarily unavailable. The matching document excerpts below may still help."
		metrics.IncAIDegraded()
	}

	metrics.IncAIQuery()
	return QueryResult{
		Answer:    answer,
		Sources:   sources,
		Citations: citations,
		Metadata: map[string]any{
			"queryTimestamp":    time.Now().UTC().Format(time.RFC3339),
			"userId":            userID,
			"useDocuments":      useDocuments,
			"documentsSearched": len(sources),
			"model":             modelName,
			"degraded":          degraded,
		},
	}, nil
}

// DraftDocument generates a document from a known template. Unknown types
// are a validation error listing the available templates.
func (s *Service) DraftDocument(ctx context.Context, userID, documentType string, parties []string, effectiveDate string, details map[string]string) (Draft, error) {
	docType := strings.ToLower(strings.TrimSpace(documentType))
	tpl, ok := templateByType(docType)
	if !ok {
		return Draft{}, ErrUnknownTemplate
	}

	content, degraded := s.complete(ctx, buildDraftPrompt(tpl, parties, effectiveDate, details))
	if degraded {
		content = "Document generation is temporarily unavailable. Please try again."
		metrics.IncAIDegraded()
	}

	return Draft{
		DocumentType:  docType,
		Title:         tpl.Title,
		Description:   tpl.Description,
		Parties:       parties,
		EffectiveDate: effectiveDate,
		Content:       content,
		GeneratedAt:   time.Now().UTC(),
		Metadata: map[string]any{
			"userId":   userID,
			"model":    modelName,
			"degraded": degraded,
		},
		Note: "This is an AI-generated draft. Please review with a legal professional before use.",
	}, nil
}

// Templates lists the document types the drafting endpoint accepts.
func (s *Service) Templates() []Template {
	out := make([]Template, len(documentTemplates))
	copy(out, documentTemplates)
	return out
}

// TemplateTypes returns the accepted type keys, sorted.
func (s *Service) TemplateTypes() []string {
	types := make([]string, 0, len(documentTemplates))
	for _, tpl := range documentTemplates {
		types = append(types, tpl.Type)
	}
	sort.Strings(types)
	return types
}

func (s *Service) complete(ctx context.Context, prompt string) (answer string, degraded bool) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	start := time.Now()
	answer, err := s.LLM.Complete(ctx, prompt)
	metrics.ObserveCompletionDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		telemetry.Error("completion failed", map[string]any{"error": err.Error()})
		return "", true
	}
	return answer, false
}

func buildQueryPrompt(query string, sources []Source) string {
	if len(sources) == 0 {
		return fmt.Sprintf("Question: %s\n\nProvide helpful legal information.", query)
	}

	var b strings.Builder
	b.WriteString("Based on these documents:\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, src.Snippet)
	}
	fmt.Fprintf(&b, "Answer this question: %s\n", query)
	b.WriteString("Include references like [1], [2] etc to cite sources.")
	return b.String()
}

func buildDraftPrompt(tpl Template, parties []string, effectiveDate string, details map[string]string) string {
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional %s with the following details:\n", tpl.Title)
	fmt.Fprintf(&b, "Parties: %s\n", strings.Join(parties, ", "))
	fmt.Fprintf(&b, "Effective Date: %s\n", effectiveDate)
	b.WriteString("Additional Details:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, details[k])
	}
	b.WriteString("\nCreate a complete, ready-to-use document with all necessary legal clauses and sections.")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
