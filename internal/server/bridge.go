package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/mintaslang/dew/internal/types"
)

// Step is one observable result of evaluating a handler body: the value it
// produced and whether the handler returned it (ending evaluation) or
// merely emitted it.
type Step struct {
	Value    types.Value
	Returned bool
}

// Evaluator is the contract with the host scripting engine. The server
// hands it a handler body and the request value; the engine replies with
// the steps the handler produced, in order.
type Evaluator interface {
	Evaluate(ctx context.Context, handler string, request types.Value) ([]Step, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, handler string, request types.Value) ([]Step, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, handler string, request types.Value) ([]Step, error) {
	return f(ctx, handler, request)
}

// RunHandler evaluates a route handler and folds its steps into a
// response. A returned response value is used as-is; a cookie-set table
// accumulates a Set-Cookie header and evaluation continues; any other
// returned value is serialized to JSON. A handler that never returns yields
// an empty 200. Evaluation failure maps to a 500 with the message embedded.
func RunHandler(ctx context.Context, ev Evaluator, handler string, request types.Value) *Response {
	steps, err := ev.Evaluate(ctx, handler, request)
	if err != nil {
		return HTMLResponse(500, fmt.Sprintf("<h1>Error</h1><p>%s</p>", err))
	}

	var cookies []string
	for _, step := range steps {
		if step.Value.Kind() == types.KindResponse {
			resp := responseFromValue(step.Value)
			resp.Cookies = append(resp.Cookies, cookies...)
			return resp
		}
		if step.Value.Tag("set_cookie") {
			cookies = append(cookies, cookieFromValue(step.Value))
			continue
		}
		if step.Returned {
			resp := JSONResponse(200, step.Value.JSON())
			resp.Cookies = cookies
			return resp
		}
	}

	resp := TextResponse(200, "")
	resp.Cookies = cookies
	return resp
}

// RunBeforeHandlers evaluates the before chain. The first handler producing
// a response with a status other than 200 short-circuits the request; nil
// means the chain passed.
func RunBeforeHandlers(ctx context.Context, ev Evaluator, handlers []string, request types.Value) *Response {
	for _, h := range handlers {
		steps, err := ev.Evaluate(ctx, h, request)
		if err != nil {
			return HTMLResponse(500, fmt.Sprintf("<h1>Error</h1><p>%s</p>", err))
		}
		for _, step := range steps {
			if step.Value.Kind() == types.KindResponse {
				if resp := responseFromValue(step.Value); resp.Status != 200 {
					return resp
				}
			}
		}
	}
	return nil
}

// RunAfterHandlers evaluates the after chain for side effects only.
func RunAfterHandlers(ctx context.Context, ev Evaluator, handlers []string, request types.Value) {
	for _, h := range handlers {
		_, _ = ev.Evaluate(ctx, h, request)
	}
}

func responseFromValue(v types.Value) *Response {
	p := v.Payload()
	if p == nil {
		return TextResponse(200, "")
	}
	if p.Redirect != "" {
		resp := RedirectResponse(p.Redirect)
		if p.Status != 0 {
			resp.Status = p.Status
		}
		return resp
	}
	status := p.Status
	if status == 0 {
		status = 200
	}
	ct := p.ContentType
	if ct == "" {
		ct = "text/plain"
	}
	return &Response{Status: status, ContentType: ct, Body: []byte(p.Body)}
}

// cookieFromValue renders a cookie-set table ({name, value, max_age, path,
// http_only}) into a Set-Cookie string.
func cookieFromValue(v types.Value) string {
	name := "cookie"
	if n, ok := v.Field("name"); ok {
		name = n.String()
	}
	value := ""
	if val, ok := v.Field("value"); ok {
		value = val.String()
	}

	var b strings.Builder
	b.WriteString(name + "=" + value)
	if ma, ok := v.Field("max_age"); ok {
		b.WriteString("; Max-Age=" + ma.String())
	}
	path := "/"
	if p, ok := v.Field("path"); ok {
		path = p.String()
	}
	b.WriteString("; Path=" + path)
	if ho, ok := v.Field("http_only"); ok && ho.Truthy() {
		b.WriteString("; HttpOnly")
	}
	return b.String()
}
