package graph

import (
	"context"
	"strings"
	"sync"
)

// Mode distinguishes read from write statements.
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// Call is one statement received by a MemoryClient.
type Call struct {
	Mode   Mode
	Query  string
	Params map[string]any
}

type scripted struct {
	fragment string
	result   Result
}

// MemoryClient is a scripted Client for tests. It records every statement and
// answers with the first registered result whose fragment occurs in the query.
type MemoryClient struct {
	mu        sync.Mutex
	calls     []Call
	responses []scripted
	err       error
}

// NewMemoryClient returns an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// Respond registers res for statements containing fragment.
func (m *MemoryClient) Respond(fragment string, res Result) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, scripted{fragment: fragment, result: res})
	return m
}

// Fail makes every subsequent call return err.
func (m *MemoryClient) Fail(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.handle(ModeWrite, cypher, params)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.handle(ModeRead, cypher, params)
}

func (m *MemoryClient) handle(mode Mode, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	copied := make(map[string]any, len(params))
	for k, v := range params {
		copied[k] = v
	}
	m.calls = append(m.calls, Call{Mode: mode, Query: cypher, Params: copied})

	for _, r := range m.responses {
		if strings.Contains(cypher, r.fragment) {
			return r.result, nil
		}
	}
	return Result{}, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *MemoryClient) Close(context.Context) error { return nil }

// Calls returns a snapshot of the statements received so far.
func (m *MemoryClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
