package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"ark-trip-service/internal/domain"
)

// QuestionBank is an in-memory app.QuestionBank seeded with a static set,
// useful for demos and tests. Insertion order is preserved for listing.
type QuestionBank struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
	order     []string
}

func NewQuestionBank(seed []domain.Question) *QuestionBank {
	b := &QuestionBank{questions: make(map[string]domain.Question)}
	for _, q := range seed {
		b.questions[q.ID] = q
		b.order = append(b.order, q.ID)
	}
	return b
}

func (b *QuestionBank) List(_ context.Context) ([]domain.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Question, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.questions[id])
	}
	return out, nil
}

func (b *QuestionBank) Get(_ context.Context, id string) (domain.Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	q, ok := b.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (b *QuestionBank) Save(_ context.Context, q domain.Question) (domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q.ID == "" {
		q.ID = "custom-" + uuid.NewString()
	}
	if _, ok := b.questions[q.ID]; !ok {
		b.order = append(b.order, q.ID)
	}
	b.questions[q.ID] = q
	return q, nil
}

func (b *QuestionBank) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(b.questions, id)
	for i, existing := range b.order {
		if existing == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return nil
}
