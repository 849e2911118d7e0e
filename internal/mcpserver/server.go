package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"aaveLens/internal/tools"
)

const (
	ServerName    = "aave-mcp-server"
	ServerVersion = "1.0.0"
)

// Server fronts an mcp-go server with the tool dispatcher.
// mcp-go rejects calls to unregistered tools with a JSON-RPC error, so those
// calls are answered here with the dispatcher's unknown-tool result instead.
type Server struct {
	mcp        *server.MCPServer
	dispatcher *tools.Dispatcher
	known      map[string]struct{}
}

// New registers every catalog tool on an MCP server that forwards calls to d.
func New(d *tools.Dispatcher) *Server {
	s := server.NewMCPServer(ServerName, ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	catalog := d.List()
	known := make(map[string]struct{}, len(catalog))
	handler := callHandler(d)
	for _, tool := range mcpTools(catalog) {
		s.AddTool(tool, handler)
		known[tool.Name] = struct{}{}
	}
	return &Server{mcp: s, dispatcher: d, known: known}
}

type toolCall struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      any           `json:"id"`
	Method  mcp.MCPMethod `json:"method"`
	Params  struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"params"`
}

// HandleMessage answers one JSON-RPC message. The result is nil for notifications.
func (s *Server) HandleMessage(ctx context.Context, message json.RawMessage) mcp.JSONRPCMessage {
	var call toolCall
	if err := json.Unmarshal(message, &call); err == nil &&
		call.JSONRPC == mcp.JSONRPC_VERSION &&
		call.ID != nil &&
		call.Method == mcp.MethodToolsCall {
		if _, ok := s.known[call.Params.Name]; !ok {
			result := s.dispatcher.Call(ctx, call.Params.Name, call.Params.Arguments)
			return mcp.JSONRPCResponse{
				JSONRPC: mcp.JSONRPC_VERSION,
				ID:      mcp.NewRequestId(call.ID),
				Result:  *callResult(result),
			}
		}
	}
	return s.mcp.HandleMessage(ctx, message)
}

// Serve speaks newline-delimited JSON-RPC over in and out until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := &stdioSession{notifications: make(chan mcp.JSONRPCNotification, 100)}
	if err := s.mcp.RegisterSession(ctx, session); err != nil {
		return fmt.Errorf("register session: %w", err)
	}
	defer s.mcp.UnregisterSession(ctx, session.SessionID())
	ctx = s.mcp.WithContext(ctx, session)

	w := &lineWriter{out: out}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-session.notifications:
				if err := w.write(n); err != nil {
					logger.Warn("write notification failed", zap.Error(err))
				}
			}
		}
	}()

	type readResult struct {
		line []byte
		err  error
	}
	lines := make(chan readResult)
	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadBytes('\n')
			select {
			case lines <- readResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	logger.Info("mcp server listening on stdio")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r := <-lines:
			if line := bytes.TrimSpace(r.line); len(line) > 0 {
				if resp := s.HandleMessage(ctx, json.RawMessage(line)); resp != nil {
					if err := w.write(resp); err != nil {
						return fmt.Errorf("write response: %w", err)
					}
				}
			}
			if r.err != nil {
				if errors.Is(r.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("read input: %w", r.err)
			}
		}
	}
}

type lineWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *lineWriter) write(msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintf(w.out, "%s\n", data)
	return err
}

// stdioSession is the single client session of a stdio connection.
type stdioSession struct {
	notifications chan mcp.JSONRPCNotification
	initialized   atomic.Bool
}

var _ server.ClientSession = (*stdioSession)(nil)

func (s *stdioSession) SessionID() string { return "stdio" }

func (s *stdioSession) NotificationChannel() chan<- mcp.JSONRPCNotification {
	return s.notifications
}

func (s *stdioSession) Initialize() { s.initialized.Store(true) }

func (s *stdioSession) Initialized() bool { return s.initialized.Load() }

func mcpTools(catalog []tools.Descriptor) []mcp.Tool {
	out := make([]mcp.Tool, 0, len(catalog))
	for _, desc := range catalog {
		out = append(out, mcp.NewToolWithRawSchema(desc.Name, desc.Description, desc.InputSchema))
	}
	return out
}

func callHandler(d *tools.Dispatcher) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return callResult(d.Call(ctx, req.Params.Name, req.GetArguments())), nil
	}
}

func callResult(result tools.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(result.Content))
	for _, item := range result.Content {
		content = append(content, mcp.NewTextContent(item.Text))
	}
	return &mcp.CallToolResult{Content: content, IsError: result.IsError}
}
