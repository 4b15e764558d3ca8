package search

import (
	"sort"
	"strings"
	"sync"
)

const snippetLength = 200

// Result is a scored match for a query.
type Result struct {
	DocID   string  `json:"docId"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// Index is an in-memory retrieval index that ranks stored texts by exact
// token overlap with the query. It is a deliberate placeholder for a real
// retrieval backend; ranking quality is not a goal.
type Index struct {
	mu   sync.RWMutex
	docs map[string]string
}

// New constructs an empty index.
func New() *Index {
	return &Index{docs: make(map[string]string)}
}

// Add stores or replaces the text for a document.
func (ix *Index) Add(docID, text string) {
	if docID == "" || text == "" {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.docs[docID] = text
}

// Remove drops a document from the index.
func (ix *Index) Remove(docID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.docs, docID)
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

// Query scores every stored text by the number of query tokens it contains
// and returns the topK best matches, highest score first. Documents with no
// overlap are omitted.
func (ix *Index) Query(query string, topK int) []Result {
	qtokens := tokenize(query)
	if len(qtokens) == 0 || topK <= 0 {
		return []Result{}
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]Result, 0, len(ix.docs))
	for docID, text := range ix.docs {
		score := overlap(qtokens, tokenize(text))
		if score == 0 {
			continue
		}
		results = append(results, Result{
			DocID:   docID,
			Score:   float64(score),
			Snippet: snippet(text),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tokens[tok] = struct{}{}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}

func snippet(text string) string {
	if len(text) <= snippetLength {
		return text
	}
	return text[:snippetLength]
}
