// Package mcpserver exposes the expense ledger to MCP hosts: the
// agregar_gasto tool, the resource://gastos resource and the
// prompt_agregar_gasto prompt.
package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gastos/internal/core"
	"gastos/internal/log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Names under which the operations are registered.
const (
	ToolAddExpense   = "agregar_gasto"
	ResourceURI      = "resource://gastos"
	ResourceName     = "datos_de_gastos"
	PromptAddExpense = "prompt_agregar_gasto"
)

// Version is reported to MCP clients. Overridden at build time.
var Version = "dev"

const toolDescription = `Agrega un gasto al registro.

Parámetros esperados:
- fecha: cadena en formato YYYY-MM-DD
- categoria: cadena no vacía
- cantidad: número (float)
- metodo_de_pago: cadena no vacía

Devuelve un mensaje de confirmación o una descripción del error.`

const resourceDescription = `Devuelve todos los gastos almacenados como JSON con la forma ` +
	`{"gastos": [{"fecha":"YYYY-MM-DD","categoria":"...","cantidad": number, "metodo_de_pago":"..."}, ...]}`

// Service is the behavior the MCP layer needs. Every method returns the
// text shown to the client, including failures.
type Service interface {
	AddExpenseReply(ctx context.Context, in core.ExpenseInput) string
	ExpensesReply(ctx context.Context) string
	PromptReply(ctx context.Context) string
}

// Server binds a Service to an MCP server.
type Server struct {
	mcp     *server.MCPServer
	service Service
	logger  *log.Logger
}

func New(name string, svc Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		mcp: server.NewMCPServer(name, Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
			server.WithPromptCapabilities(false),
			server.WithRecovery(),
		),
		service: svc,
		logger:  logger.WithComponent(log.ComponentMCP),
	}
	s.register()
	return s
}

// MCP returns the underlying server, for transports other than stdio.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func (s *Server) register() {
	s.mcp.AddTool(mcp.NewTool(ToolAddExpense,
		mcp.WithDescription(toolDescription),
		mcp.WithString(core.FieldDate, mcp.Required(), mcp.Description("Fecha en formato YYYY-MM-DD")),
		mcp.WithString(core.FieldCategory, mcp.Required(), mcp.Description("Categoría del gasto")),
		mcp.WithNumber(core.FieldAmount, mcp.Required(), mcp.Description("Cantidad, mayor o igual que cero")),
		mcp.WithString(core.FieldPaymentMethod, mcp.Required(), mcp.Description("Método de pago")),
	), s.handleAddExpense)

	s.mcp.AddResource(mcp.NewResource(ResourceURI, ResourceName,
		mcp.WithResourceDescription(resourceDescription),
		mcp.WithMIMEType("application/json"),
	), s.handleExpenses)

	s.mcp.AddPrompt(mcp.NewPrompt(PromptAddExpense,
		mcp.WithPromptDescription("Indica al asistente que use agregar_gasto"),
	), s.handlePrompt)
}

func (s *Server) handleAddExpense(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	amount := args[core.FieldAmount]
	if amount == nil {
		amount = ""
	}
	in := core.ExpenseInput{
		Date:          stringArg(args, core.FieldDate),
		Category:      stringArg(args, core.FieldCategory),
		Amount:        amount,
		PaymentMethod: stringArg(args, core.FieldPaymentMethod),
	}

	reply := s.service.AddExpenseReply(ctx, in)
	s.logger.DebugContext(ctx, "Tool call handled", log.FieldTool, ToolAddExpense, "reply", reply)

	// Failures are reported in the text, never as a tool error.
	return mcp.NewToolResultText(reply), nil
}

func (s *Server) handleExpenses(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text := s.service.ExpensesReply(ctx)
	s.logger.DebugContext(ctx, "Resource read", log.FieldResource, request.Params.URI)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ResourceURI,
			MIMEType: "application/json",
			Text:     text,
		},
	}, nil
}

func (s *Server) handlePrompt(ctx context.Context, _ mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := s.service.PromptReply(ctx)
	s.logger.DebugContext(ctx, "Prompt requested", log.FieldPrompt, PromptAddExpense)

	return mcp.NewGetPromptResult("Agregar un gasto", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	}), nil
}

// ServeStdio speaks MCP over in/out until ctx is cancelled or in is closed.
// out must not be shared with anything else; logs go to stderr.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.InfoContext(ctx, "MCP stdio server started", log.FieldOperation, log.OpStartup)
	err := stdio.Listen(ctx, in, out)
	s.logger.InfoContext(ctx, "MCP stdio server stopped", log.FieldOperation, log.OpShutdown)
	return err
}

func stringArg(args map[string]any, key string) string {
	switch v := args[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
