package server

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mintaslang/dew/internal/config"
	"github.com/mintaslang/dew/internal/errors"
	"github.com/mintaslang/dew/internal/logging"
	"github.com/mintaslang/dew/internal/renderer"
	"github.com/mintaslang/dew/internal/router"
	"github.com/mintaslang/dew/internal/types"
)

const (
	// readBufferSize bounds a request to a single read from the socket.
	readBufferSize = 64 * 1024
	readTimeout    = 30 * time.Second
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "Authorization", "X-Requested-With"}
)

// Server owns one listener and everything registered against it: the route
// table, middleware and handler chains, and the session, rate-limit, job
// and queue stores. All state is per-instance; nothing is shared through
// package globals.
type Server struct {
	mu sync.Mutex

	cfg       *config.Config
	logger    logging.Logger
	evaluator Evaluator

	routes   *router.Table
	renderer *renderer.Renderer

	middleware []string
	before     []string
	after      []string
	websockets map[string]bool

	sessions *SessionStore
	limiter  *RateLimiter
	jobs     *JobStore
	queues   *QueueStore
	database types.Value

	// failures records per-connection errors so the accept loop can keep
	// running while they stay inspectable by the host.
	failures *errors.Collector

	listener net.Listener
}

// New builds a server from a config. The evaluator may be nil until the
// host installs one with SetEvaluator; routes without an evaluator answer
// 500.
func New(cfg *config.Config, logger logging.Logger, ev Evaluator) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Server{
		cfg:        cfg,
		logger:     logger.WithComponent("server"),
		evaluator:  ev,
		routes:     router.NewTable(),
		renderer:   renderer.New(cfg.Server.TemplateDir),
		websockets: map[string]bool{},
		sessions:   NewSessionStore(cfg.Session),
		jobs:       NewJobStore(),
		queues:     NewQueueStore(),
		database:   types.Null(),
		failures:   errors.NewCollector(),
	}
	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(cfg.RateLimit.MaxRequests,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
	}
	return s
}

// SetEvaluator installs the handler evaluator.
func (s *Server) SetEvaluator(ev Evaluator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluator = ev
}

// AddRoute registers a handler body for a method and path pattern.
func (s *Server) AddRoute(method, path, handler string) error {
	m, ok := router.ParseMethod(method)
	if !ok {
		return errors.BadRequest("unknown method %q", method)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes.Add(router.Route{Method: m, Path: path, Handler: handler})
	return nil
}

// AddValidatedRoute registers a route whose body fields are validated
// against the given rules before the handler runs.
func (s *Server) AddValidatedRoute(method, path, handler string, rules map[string]string) error {
	m, ok := router.ParseMethod(method)
	if !ok {
		return errors.BadRequest("unknown method %q", method)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes.Add(router.Route{Method: m, Path: path, Handler: handler, Rules: rules})
	return nil
}

// BeginGroup opens a route group; subsequent AddRoute calls join it until
// EndGroup.
func (s *Server) BeginGroup(prefix string, middleware []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes.BeginGroup(prefix, middleware)
}

// EndGroup closes the innermost open group.
func (s *Server) EndGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes.EndGroup()
}

// AddStatic maps a URL prefix to a directory of files.
func (s *Server) AddStatic(urlPrefix, dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes.AddStatic(urlPrefix, dir)
}

// AddMiddleware enables a named middleware server-wide. Recognized names
// are logger, compress and cors; unrecognized names are kept so grouped
// routes can reference them.
func (s *Server) AddMiddleware(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middleware = append(s.middleware, name)
}

// AddBefore appends a handler body run before every routed request.
func (s *Server) AddBefore(handler string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.before = append(s.before, handler)
}

// AddAfter appends a handler body run after every routed request.
func (s *Server) AddAfter(handler string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.after = append(s.after, handler)
}

// AddErrorHandler registers a handler body for a status code.
func (s *Server) AddErrorHandler(status int, handler string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes.ErrorHandlers[status] = handler
}

// AddWebSocket marks a path as accepting websocket handshakes. With no
// registered paths any upgrade request is accepted.
func (s *Server) AddWebSocket(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.websockets[path] = true
}

// SetDatabase stores the host's database handle for handler access.
func (s *Server) SetDatabase(v types.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.database = v
}

// Database returns the stored database handle.
func (s *Server) Database() types.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.database
}

// SetSession replaces the session configuration and resets the store.
func (s *Server) SetSession(cfg config.SessionConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Session = cfg
	s.sessions = NewSessionStore(cfg)
}

// SetRateLimit enables rate limiting with the given window.
func (s *Server) SetRateLimit(maxRequests, windowSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.RateLimit = config.RateLimitConfig{
		Enabled:       true,
		MaxRequests:   maxRequests,
		WindowSeconds: windowSeconds,
	}
	s.limiter = NewRateLimiter(maxRequests, time.Duration(windowSeconds)*time.Second)
}

// SetSecurity toggles the injection heuristics.
func (s *Server) SetSecurity(sqlInjectionCheck bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Security.SQLInjectionCheck = sqlInjectionCheck
}

// LoadConfigFile loads a .env, YAML or JSON file and returns its flattened
// key/value pairs for the host.
func (s *Server) LoadConfigFile(path string) (map[string]string, error) {
	return config.LoadFile(path)
}

// Sessions exposes the session store to the host.
func (s *Server) Sessions() *SessionStore { return s.sessions }

// Jobs exposes the job store to the host.
func (s *Server) Jobs() *JobStore { return s.jobs }

// Queues exposes the queue store to the host.
func (s *Server) Queues() *QueueStore { return s.queues }

// Renderer exposes the template renderer.
func (s *Server) Renderer() *renderer.Renderer { return s.renderer }

// Errors returns the per-connection failures recorded while serving.
func (s *Server) Errors() []error { return s.failures.Errors() }

// ClearErrors drops the recorded failures.
func (s *Server) ClearErrors() { s.failures.Clear() }

// RouteTable returns the routing state for inspection.
func (s *Server) RouteTable() *router.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.routes
}

// Config returns the server configuration.
func (s *Server) Config() *config.Config { return s.cfg }

// ListenerAddr returns the bound address once serving, empty before.
func (s *Server) ListenerAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close shuts down the listener if serving.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// ListenAndServe binds the configured address and serves connections
// strictly sequentially until the context is canceled or the listener is
// closed. Per-connection failures are logged and never stop the loop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("binding %s: %w", s.cfg.Addr(), err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info(ctx, "listening", "addr", s.cfg.Addr(), "routes", s.routeCount())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		s.handleConn(ctx, conn)
	}
}

func (s *Server) routeCount() int {
	n := len(s.routes.Routes)
	for _, g := range s.routes.Groups {
		n += len(g.Routes)
	}
	return n
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	start := time.Now()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	buf := make([]byte, readBufferSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}
	raw := buf[:n]

	remoteIP := ""
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		remoteIP = addr.IP.String()
	}

	req, err := ParseRequest(raw, remoteIP, n == readBufferSize)
	if err != nil {
		s.failures.Add(err)
		status := errors.StatusOf(err)
		resp := TextResponse(status, err.Error())
		conn.Write(resp.Bytes("", false))
		logging.RequestLog(s.logger, ctx, "?", "?", status, time.Since(start))
		return
	}

	if req.Method == "GET" && req.IsWebSocketUpgrade() && s.acceptsWebSocket(req.Path) {
		conn.Write(WebSocketHandshake(req.Headers["sec-websocket-key"]))
		logging.RequestLog(s.logger, ctx, "WEBSOCKET", req.Path, 101, time.Since(start))
		return
	}

	resp, mid := s.dispatch(ctx, req, string(raw))
	compress := s.hasMiddleware("compress", mid)
	conn.Write(resp.Bytes(req.Headers["accept-encoding"], compress))

	if s.hasMiddleware("logger", mid) {
		logging.RequestLog(s.logger, ctx, req.Method, req.Path, resp.Status, time.Since(start))
	} else {
		s.logger.Debug(ctx, "request", "method", req.Method, "path", req.Path,
			"status", resp.Status, "duration_ms", time.Since(start).Milliseconds())
	}
}

func (s *Server) acceptsWebSocket(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.websockets) == 0 || s.websockets[path]
}

// hasMiddleware reports whether a middleware name is enabled server-wide
// or by the matched route's group.
func (s *Server) hasMiddleware(name string, group *router.Group) bool {
	for _, m := range s.middleware {
		if m == name {
			return true
		}
	}
	if group != nil {
		for _, m := range group.Middleware {
			if m == name {
				return true
			}
		}
	}
	return false
}

// dispatch runs the request pipeline and returns the response together
// with the matched group, if any, for middleware resolution.
func (s *Server) dispatch(ctx context.Context, req *Request, raw string) (*Response, *router.Group) {
	if req.Method == "OPTIONS" {
		return s.preflight(), nil
	}

	if req.Method == "GET" {
		if resp := s.serveStatic(req); resp != nil {
			return resp, nil
		}
	}

	if s.limiter != nil && !s.limiter.Allow(req.RemoteIP) {
		s.failures.Add(errors.TooManyRequests("client %s exceeded %d requests per %ds",
			req.RemoteIP, s.cfg.RateLimit.MaxRequests, s.cfg.RateLimit.WindowSeconds))
		return JSONResponse(429, `{"error":"Too Many Requests","message":"Rate limit exceeded"}`), nil
	}

	if s.cfg.Security.SQLInjectionCheck && LooksLikeSQLInjection(req.URL, raw) {
		return JSONResponse(400, `{"error":"Bad Request","message":"Potentially malicious input detected"}`), nil
	}

	match, ok := s.routes.FindRoute(req.Method, req.Path)
	if !ok {
		return s.notFound(ctx, req), nil
	}
	req.Params = match.Params

	return s.invoke(ctx, req, match.Route), match.Group
}

// preflight builds the CORS 204, with the method and header lists taken
// from the CORS config when set.
func (s *Server) preflight() *Response {
	methods := s.cfg.CORS.AllowedMethods
	if len(methods) == 0 {
		methods = defaultCORSMethods
	}
	headers := s.cfg.CORS.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultCORSHeaders
	}

	resp := TextResponse(204, "")
	resp.Extra = [][2]string{
		{"Access-Control-Allow-Methods", strings.Join(methods, ", ")},
		{"Access-Control-Allow-Headers", strings.Join(headers, ", ")},
		{"Access-Control-Max-Age", "86400"},
	}
	return resp
}

// serveStatic answers a GET from the static mappings, or nil to fall
// through to routing. Unchanged files answer 304 against If-None-Match.
func (s *Server) serveStatic(req *Request) *Response {
	file, ok := s.routes.FindStatic(req.Path)
	if !ok {
		return nil
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	sum := md5.Sum(content)
	etag := hex.EncodeToString(sum[:])

	if ifNone := strings.Trim(req.Headers["if-none-match"], `"`); ifNone == etag {
		return &Response{Status: 304, ContentType: MimeType(file), Static: true, ETag: etag}
	}
	return &Response{
		Status:      200,
		ContentType: MimeType(file),
		Body:        content,
		Static:      true,
		ETag:        etag,
	}
}

// invoke runs the before chain, validation, the route handler and the
// after chain.
func (s *Server) invoke(ctx context.Context, req *Request, route router.Route) *Response {
	if s.evaluator == nil {
		return HTMLResponse(500, "<h1>Error</h1><p>no evaluator installed</p>")
	}

	sessionID, setCookie := s.sessions.SessionID(req)
	reqValue := s.requestValue(req, sessionID)

	if resp := RunBeforeHandlers(ctx, s.evaluator, s.before, reqValue); resp != nil {
		return withSessionCookie(resp, setCookie)
	}

	if len(route.Rules) > 0 {
		if resp := s.validateRequest(req, route.Rules); resp != nil {
			return withSessionCookie(resp, setCookie)
		}
	}

	resp := RunHandler(ctx, s.evaluator, route.Handler, reqValue)
	RunAfterHandlers(ctx, s.evaluator, s.after, reqValue)
	return withSessionCookie(resp, setCookie)
}

// validateRequest checks the request body fields against the route's rules
// and answers 422 with the per-field messages on failure.
func (s *Server) validateRequest(req *Request, rules map[string]string) *Response {
	values := map[string]types.Value{}
	if form := req.FormValues(); form != nil {
		for k, v := range form {
			values[k] = types.Str(v)
		}
	} else if req.ContentType() == "application/json" {
		if v, ok := parseJSONValue(strings.TrimSpace(req.Body)); ok {
			for k, f := range v.Fields() {
				values[k] = f
			}
		}
	}

	failures := ValidateFields(values, rules)
	if len(failures) == 0 {
		return nil
	}
	fields := map[string]types.Value{}
	for k, msg := range failures {
		fields[k] = types.Str(msg)
	}
	body := types.Table(map[string]types.Value{
		"error":  types.Str("Validation failed"),
		"errors": types.Table(fields),
	})
	return JSONResponse(422, body.JSON())
}

func (s *Server) requestValue(req *Request, sessionID string) types.Value {
	v := req.ToValue()
	fields := v.Fields()
	fields["session_id"] = types.Str(sessionID)
	return types.Table(fields)
}

func withSessionCookie(resp *Response, setCookie string) *Response {
	if setCookie != "" {
		resp.Cookies = append(resp.Cookies, setCookie)
	}
	return resp
}

// notFound answers an unmatched path with the registered 404 handler, or
// the default page.
func (s *Server) notFound(ctx context.Context, req *Request) *Response {
	if handler, ok := s.routes.ErrorHandlers[404]; ok && s.evaluator != nil {
		minimal := types.Table(map[string]types.Value{
			"method": types.Str(req.Method),
			"path":   types.Str(req.Path),
		})
		steps, err := s.evaluator.Evaluate(ctx, handler, minimal)
		if err != nil {
			return TextResponse(500, fmt.Sprintf("Error in error handler: %s", err))
		}
		for _, step := range steps {
			if step.Value.Kind() == types.KindResponse {
				return responseFromValue(step.Value)
			}
			if step.Returned {
				return JSONResponse(200, step.Value.JSON())
			}
		}
	}
	return HTMLResponse(404, fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>404 Not Found</title></head>"+
			"<body style=\"font-family:system-ui;text-align:center;padding:50px\">"+
			"<h1>404</h1><p>Page not found: %s</p>"+
			"<p style=\"color:#666\">Dew</p></body></html>", req.Path))
}
