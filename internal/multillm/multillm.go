// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package multillm fans one generation request out to several configured
// providers concurrently and collects per-provider results. Providers are
// isolated: one failure never aborts the others.
package multillm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/papergen/internal/llm"
)

// Result is one provider's tagged outcome: success carries Text, failure
// carries Err. Exactly one of the two is set.
type Result struct {
	Provider string
	Model    string
	Text     string
	Err      error
}

// TimeoutError records a provider call still outstanding when the fan-out
// timeout elapsed. Its eventual result, if any, is discarded.
type TimeoutError struct {
	Provider string
	Elapsed  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response within %v", e.Provider, e.Elapsed)
}

// AggregateError reports that every provider failed, enumerating each
// provider's individual error.
type AggregateError struct {
	Results []Result
}

func (e *AggregateError) Error() string {
	parts := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		parts = append(parts, fmt.Sprintf("%s: %v", r.Provider, r.Err))
	}
	return "all providers failed: " + strings.Join(parts, "; ")
}

// Pool holds the providers participating in a fan-out, in registration order.
type Pool struct {
	clients []llm.Client
}

// NewPool creates a pool over the given clients. Result order follows the
// argument order.
func NewPool(clients ...llm.Client) *Pool {
	return &Pool{clients: clients}
}

// Size returns the number of providers in the pool.
func (p *Pool) Size() int { return len(p.clients) }

// Client returns the first pool member whose provider name matches, or nil.
func (p *Pool) Client(name string) llm.Client {
	for _, c := range p.clients {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// First returns the first pool member, or nil for an empty pool.
func (p *Pool) First() llm.Client {
	if len(p.clients) == 0 {
		return nil
	}
	return p.clients[0]
}

// indexed pairs a result with its provider's registration slot.
type indexed struct {
	slot   int
	result Result
}

// Generate sends req to every provider concurrently and waits until all
// respond or timeout elapses, whichever is first. The returned slice has one
// entry per provider in registration order. Providers that did not respond
// in time get a TimeoutError entry; their late results are discarded.
//
// If every provider failed the error is an *AggregateError listing each
// failure, and the per-provider results are still returned.
func (p *Pool) Generate(ctx context.Context, req llm.Request, timeout time.Duration) ([]Result, error) {
	if len(p.clients) == 0 {
		return nil, fmt.Errorf("no providers in pool")
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered to pool size so abandoned goroutines never block.
	ch := make(chan indexed, len(p.clients))
	for i, c := range p.clients {
		go func(slot int, c llm.Client) {
			text, err := c.Generate(cctx, req)
			ch <- indexed{slot: slot, result: Result{
				Provider: c.Name(),
				Model:    c.Model(),
				Text:     text,
				Err:      err,
			}}
		}(i, c)
	}

	results := make([]Result, len(p.clients))
	filled := make([]bool, len(p.clients))
	pending := len(p.clients)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

collect:
	for pending > 0 {
		select {
		case in := <-ch:
			results[in.slot] = in.result
			filled[in.slot] = true
			pending--
		case <-timer.C:
			break collect
		}
	}

	for i, ok := range filled {
		if !ok {
			results[i] = Result{
				Provider: p.clients[i].Name(),
				Model:    p.clients[i].Model(),
				Err:      &TimeoutError{Provider: p.clients[i].Name(), Elapsed: timeout},
			}
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed == len(results) {
		return results, &AggregateError{Results: results}
	}
	return results, nil
}
