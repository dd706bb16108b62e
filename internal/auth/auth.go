// Package auth issues and checks the bearer tokens that guard the mutating
// routes of the HTTP API.
package auth

import (
	"context"
)

type contextKey string

const operatorKey contextKey = "operator"

// Operator is the authenticated caller of a request.
type Operator struct {
	Subject string
	TokenID string
}

// GetOperator retrieves the operator from the context
func GetOperator(ctx context.Context) *Operator {
	op, _ := ctx.Value(operatorKey).(*Operator)
	return op
}

// SetOperatorInContext sets the operator in the context
func SetOperatorInContext(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, operatorKey, op)
}
