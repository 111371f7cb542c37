// Package graphql parses GraphQL payloads out of intercepted HTTP requests.
//
// A payload arrives either as a JSON document in a POST body or as
// query-string parameters on a GET request. Parsing is deterministic and
// side-effect free so callers may re-parse the same request at will.
package graphql

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

// ErrMalformedPayload indicates the request does not carry a well-formed
// GraphQL payload. Predicates treat this as a non-match rather than a
// hard failure.
var ErrMalformedPayload = errors.New("graphql: malformed payload")

// OperationType is the GraphQL operation kind.
type OperationType string

const (
	OperationQuery        OperationType = "query"
	OperationMutation     OperationType = "mutation"
	OperationSubscription OperationType = "subscription"
)

// Payload is the parsed GraphQL request payload.
type Payload struct {
	// Query is the raw GraphQL document.
	Query string

	// OperationName is the explicit operationName field if present,
	// otherwise the name parsed from the document. Empty for anonymous
	// operations.
	OperationName string

	// Variables holds the operation variables. Never nil.
	Variables map[string]any

	// Type is the operation kind derived from the document.
	Type OperationType
}

// Parse extracts a GraphQL payload from the request parts. POST bodies are
// expected to be JSON documents with a "query" field; GET requests carry
// the same fields as query-string parameters. Anything else returns
// ErrMalformedPayload.
func Parse(method string, u *url.URL, body []byte) (*Payload, error) {
	switch {
	case strings.EqualFold(method, http.MethodPost):
		return parseBody(body)
	case strings.EqualFold(method, http.MethodGet):
		return parseQueryString(u)
	default:
		return nil, fmt.Errorf("%w: method %s", ErrMalformedPayload, method)
	}
}

func parseBody(body []byte) (*Payload, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrMalformedPayload)
	}
	doc := gjson.ParseBytes(body)
	query := doc.Get("query")
	if query.Type != gjson.String || query.Str == "" {
		return nil, fmt.Errorf("%w: missing query field", ErrMalformedPayload)
	}

	p := &Payload{
		Query:         query.Str,
		OperationName: doc.Get("operationName").Str,
		Variables:     map[string]any{},
	}
	if vars := doc.Get("variables"); vars.IsObject() {
		if m, ok := vars.Value().(map[string]any); ok {
			p.Variables = m
		}
	}
	return finish(p)
}

func parseQueryString(u *url.URL) (*Payload, error) {
	if u == nil {
		return nil, fmt.Errorf("%w: no URL", ErrMalformedPayload)
	}
	q := u.Query()
	query := q.Get("query")
	if query == "" {
		return nil, fmt.Errorf("%w: missing query parameter", ErrMalformedPayload)
	}

	p := &Payload{
		Query:         query,
		OperationName: q.Get("operationName"),
		Variables:     map[string]any{},
	}
	if raw := q.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Variables); err != nil {
			return nil, fmt.Errorf("%w: variables parameter: %v", ErrMalformedPayload, err)
		}
	}
	return finish(p)
}

// finish derives the operation type and name from the document.
func finish(p *Payload) (*Payload, error) {
	opType, opName, err := parseOperation(p.Query)
	if err != nil {
		return nil, err
	}
	p.Type = opType
	if p.OperationName == "" {
		p.OperationName = opName
	}
	if p.Variables == nil {
		p.Variables = map[string]any{}
	}
	return p, nil
}

// parseOperation scans the leading tokens of a GraphQL document for the
// operation keyword and optional name. The shorthand form "{ ... }" is a
// query per the GraphQL spec.
func parseOperation(doc string) (OperationType, string, error) {
	s := strings.TrimLeftFunc(doc, unicode.IsSpace)
	if s == "" {
		return "", "", fmt.Errorf("%w: empty query", ErrMalformedPayload)
	}
	if s[0] == '{' {
		return OperationQuery, "", nil
	}

	keyword := leadingIdent(s)
	var opType OperationType
	switch keyword {
	case "query":
		opType = OperationQuery
	case "mutation":
		opType = OperationMutation
	case "subscription":
		opType = OperationSubscription
	default:
		return "", "", fmt.Errorf("%w: unrecognized operation %q", ErrMalformedPayload, keyword)
	}

	rest := strings.TrimLeftFunc(s[len(keyword):], unicode.IsSpace)
	name := leadingIdent(rest)
	return opType, name, nil
}

// leadingIdent returns the GraphQL name at the start of s, if any.
func leadingIdent(s string) string {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return s[:i]
	}
	return s
}
