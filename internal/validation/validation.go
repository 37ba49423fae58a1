// Package validation implements the ordered, short-circuiting predicate
// chain run over outgoing messages before they become events.
package validation

import "time"

// Context carries what a validator needs to judge one outgoing message.
type Context struct {
	Peer      string
	Pseudonym string
	Content   string
	Timestamp time.Time
}

// Code is a transport-agnostic validation failure kind, mapped by the
// service facade onto the transport's status vocabulary.
type Code int

const (
	// CodeInvalidArgument marks a malformed or out-of-range payload.
	CodeInvalidArgument Code = iota
	// CodeResourceExhausted marks a rate-limit trip.
	CodeResourceExhausted
)

// Result is the outcome of running one validator.
type Result struct {
	Valid   bool
	Message string
	Code    Code
}

// OK is the shared successful result.
var OK = Result{Valid: true}

// Fail builds a failed result with the given message and code.
func Fail(message string, code Code) Result {
	return Result{Valid: false, Message: message, Code: code}
}

// Validator is one predicate in the chain.
type Validator interface {
	Validate(ctx Context) Result
}

// Chain runs validators in order, short-circuiting on the first failure.
type Chain struct {
	validators []Validator
}

// NewChain builds a chain from zero or more validators, preserving order.
func NewChain(validators ...Validator) *Chain {
	return &Chain{validators: validators}
}

// Add appends a validator and returns the chain for further chaining.
func (c *Chain) Add(v Validator) *Chain {
	c.validators = append(c.validators, v)
	return c
}

// Validate runs every validator in order, returning the first failure or
// OK if all pass.
func (c *Chain) Validate(ctx Context) Result {
	for _, v := range c.validators {
		if res := v.Validate(ctx); !res.Valid {
			return res
		}
	}
	return OK
}
