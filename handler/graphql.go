package handler

import (
	"context"
	"fmt"

	"github.com/yshengliao/mockwire/graphql"
	"github.com/yshengliao/mockwire/request"
)

// OperationWildcard matches any operation name of the registered kind.
const OperationWildcard = "*"

// GraphQLHandler matches requests carrying a GraphQL payload by
// operation kind and name. A request without a well-formed payload never
// matches, so the handler falls through to later registrations instead of
// failing hard.
type GraphQLHandler struct {
	opType   graphql.OperationType
	name     string
	resolver Resolver
}

// Query registers a handler for the named query operation. Pass
// OperationWildcard to match any query.
func Query(name string, r Resolver) *GraphQLHandler {
	return &GraphQLHandler{opType: graphql.OperationQuery, name: name, resolver: r}
}

// Mutation registers a handler for the named mutation operation. Pass
// OperationWildcard to match any mutation.
func Mutation(name string, r Resolver) *GraphQLHandler {
	return &GraphQLHandler{opType: graphql.OperationMutation, name: name, resolver: r}
}

// Test parses the GraphQL payload (POST JSON body or GET query
// parameters) and compares operation kind and name. Parse failures are
// treated as a non-match.
func (h *GraphQLHandler) Test(ctx context.Context, req *request.Request) bool {
	p, err := req.GraphQL(ctx)
	if err != nil {
		return false
	}
	if p.Type != h.opType {
		return false
	}
	return h.name == OperationWildcard || p.OperationName == h.name
}

// Extract populates the GraphQL view of the request context: raw query,
// variables, and operation name, alongside cookies. The payload parse is
// cached on the request, so a resolver re-reading the body still
// succeeds.
func (h *GraphQLHandler) Extract(ctx context.Context, req *request.Request, requestID string) (*RequestContext, error) {
	p, err := req.GraphQL(ctx)
	if err != nil {
		return nil, fmt.Errorf("handler: extract graphql payload: %w", err)
	}
	return &RequestContext{
		Request:       req,
		RequestID:     requestID,
		Params:        Params{},
		Cookies:       req.Cookies(),
		Query:         p.Query,
		Variables:     p.Variables,
		OperationName: p.OperationName,
	}, nil
}

// Resolver returns the bound resolver.
func (h *GraphQLHandler) Resolver() Resolver { return h.resolver }

func (h *GraphQLHandler) String() string {
	return string(h.opType) + " " + h.name
}
