package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"

	"reportcards/pkg/contracts/domain"
)

// FakeRenderer writes a small text file per student and fails for the
// configured student ids.
type FakeRenderer struct {
	mu     sync.Mutex
	fail   map[string]error
	calls  []string
	closed bool
}

// NewFakeRenderer creates a renderer failing for the given student ids
func NewFakeRenderer(failFor ...string) *FakeRenderer {
	r := &FakeRenderer{fail: make(map[string]error)}
	for _, id := range failFor {
		r.fail[id] = fmt.Errorf("cannot draw card for %s", id)
	}
	return r
}

// Render implements render.Renderer
func (r *FakeRenderer) Render(_ context.Context, g domain.StudentGroup, path string) error {
	r.mu.Lock()
	r.calls = append(r.calls, g.StudentID)
	err := r.fail[g.StudentID]
	r.mu.Unlock()

	if err != nil {
		return err
	}
	body := fmt.Sprintf("%s|%s|%v|%v\n", g.StudentID, g.Name, g.Total, g.Average)
	return os.WriteFile(path, []byte(body), 0o644)
}

// Close implements render.Renderer
func (r *FakeRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Calls returns the student ids rendered so far, in call order
func (r *FakeRenderer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Closed reports whether Close was called
func (r *FakeRenderer) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
