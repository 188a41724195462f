package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dmmcquay/chessbook/internal/logging"
	"github.com/dmmcquay/chessbook/internal/render"
)

// StatusFunc reports extra sections for the health tool, such as the rate
// limiter state.
type StatusFunc func() map[string]interface{}

// ToolsHandler manages the chessbook MCP tools.
type ToolsHandler struct {
	renderer   render.RendererInterface
	logger     logging.ContextLogger
	middleware *Middleware
	status     map[string]StatusFunc
}

// NewToolsHandler creates a new tools handler.
func NewToolsHandler(renderer render.RendererInterface, logger logging.ContextLogger) *ToolsHandler {
	return &ToolsHandler{
		renderer: renderer,
		logger:   logger,
		status:   make(map[string]StatusFunc),
	}
}

// SetMiddleware sets the middleware for the tools handler.
func (h *ToolsHandler) SetMiddleware(middleware *Middleware) {
	h.middleware = middleware
}

// AddStatus adds a named section to the health tool output.
func (h *ToolsHandler) AddStatus(name string, fn StatusFunc) {
	h.status[name] = fn
}

func (h *ToolsHandler) wrap(name string, handler ToolHandler) ToolHandler {
	if h.middleware == nil {
		return handler
	}
	return h.middleware.WrapTool(name, handler)
}

// RegisterTools registers all tools with the MCP server.
func (h *ToolsHandler) RegisterTools(s *server.MCPServer) {
	renderGameTool := mcp.NewTool("renderGame",
		mcp.WithDescription("Render the games of a PGN text as a diagram book: a title page with headers, move text and opening, then one row of diagrams per full move."),
		mcp.WithString("pgn",
			mcp.Description("PGN text with one or more games"),
			mcp.Required(),
		),
		mcp.WithString("format",
			mcp.Description("Output format: text, html or png (default: from config)"),
			mcp.Enum("text", "html", "png"),
		),
		mcp.WithNumber("gameIndex",
			mcp.Description("1-based game to render. If not specified, all games are rendered into one document."),
		),
		mcp.WithBoolean("unicode",
			mcp.Description("Draw text diagrams with Unicode chess symbols instead of font characters"),
		),
		mcp.WithBoolean("includeOpening",
			mcp.Description("Look up and print the opening (default: true)"),
		),
	)
	s.AddTool(renderGameTool, h.wrap("renderGame", h.HandleRenderGame))

	renderPositionTool := mcp.NewTool("renderPosition",
		mcp.WithDescription("Render a single diagram from a FEN position, optionally marking the squares of the last move and a checked king"),
		mcp.WithString("fen",
			mcp.Description("FEN of the position (default: the initial position)"),
			mcp.Required(),
		),
		mcp.WithString("from",
			mcp.Description("Square the last move started from, e.g. 'e2'"),
		),
		mcp.WithString("to",
			mcp.Description("Square the last move arrived at, e.g. 'e4'"),
		),
		mcp.WithString("check",
			mcp.Description("Square of a king in check. If not specified, the king of the side to move is marked when in check."),
		),
		mcp.WithBoolean("flip",
			mcp.Description("Show the board from Black's side"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: text, html or png (default: from config)"),
			mcp.Enum("text", "html", "png"),
		),
		mcp.WithBoolean("unicode",
			mcp.Description("Draw text diagrams with Unicode chess symbols"),
		),
	)
	s.AddTool(renderPositionTool, h.wrap("renderPosition", h.HandleRenderPosition))

	classifyTool := mcp.NewTool("classifyOpening",
		mcp.WithDescription("Find the ECO opening of a game or of bare move text such as '1. e4 e5 2. Nf3'"),
		mcp.WithString("pgn",
			mcp.Description("PGN text or move text"),
			mcp.Required(),
		),
		mcp.WithString("eco",
			mcp.Description("ECO code to try first, e.g. 'C23'"),
		),
	)
	s.AddTool(classifyTool, h.wrap("classifyOpening", h.HandleClassifyOpening))

	listGamesTool := mcp.NewTool("listGames",
		mcp.WithDescription("List the games of a PGN text with their headers"),
		mcp.WithString("pgn",
			mcp.Description("PGN text with one or more games"),
			mcp.Required(),
		),
	)
	s.AddTool(listGamesTool, h.wrap("listGames", h.HandleListGames))

	healthTool := mcp.NewTool("health",
		mcp.WithDescription("Get the renderer configuration, cache and rate limit status"),
	)
	s.AddTool(healthTool, h.wrap("health", h.HandleHealth))
}

// arguments returns the argument map of a request. A request without
// arguments yields an empty map.
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return args, nil
}

func requiredString(args map[string]interface{}, name string) (string, error) {
	val, ok := args[name]
	if !ok {
		return "", fmt.Errorf("missing required parameter '%s'", name)
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", name)
	}
	return s, nil
}

func optionalString(args map[string]interface{}, name string) string {
	if s, ok := args[name].(string); ok {
		return s
	}
	return ""
}

func optionalBool(args map[string]interface{}, name string, def bool) bool {
	if b, ok := args[name].(bool); ok {
		return b
	}
	return def
}

// optionalInt accepts JSON numbers, which arrive as float64.
func optionalInt(args map[string]interface{}, name string) (int, error) {
	val, ok := args[name]
	if !ok || val == nil {
		return 0, nil
	}
	f, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%s must be a whole number", name)
	}
	return int(f), nil
}

// requestLogger tags ctx with fresh correlation and request IDs.
func (h *ToolsHandler) requestLogger(ctx context.Context, tool string) (context.Context, logging.ContextLogger) {
	ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())
	ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
	return ctx, h.logger.WithContext(ctx).WithField("tool", tool)
}

// documentResult turns a rendered document into a tool result. PNG data is
// returned as an image, text and HTML as text.
func documentResult(doc *render.Document) *mcp.CallToolResult {
	summary := fmt.Sprintf("%d page(s), %s", doc.Pages, doc.MIME)
	if strings.HasPrefix(doc.MIME, "image/") {
		return mcp.NewToolResultImage(summary, base64.StdEncoding.EncodeToString(doc.Data), doc.MIME)
	}
	return mcp.NewToolResultText(string(doc.Data))
}

// failed reports caller mistakes as tool errors the client can read and
// everything else as a handler error.
func failed(logger logging.ContextLogger, what string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, render.ErrInvalidRequest) {
		logger.Warn("Rejected request", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Error("Failed to %s: %v", what, err)
	return nil, fmt.Errorf("failed to %s: %w", what, err)
}

// HandleRenderGame handles the renderGame tool.
func (h *ToolsHandler) HandleRenderGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, logger := h.requestLogger(ctx, "renderGame")
	logger.Info("Handling renderGame request")

	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	pgn, err := requiredString(args, "pgn")
	if err != nil {
		return nil, err
	}
	index, err := optionalInt(args, "gameIndex")
	if err != nil {
		return nil, err
	}

	req := render.GameRequest{
		PGN:            pgn,
		Format:         optionalString(args, "format"),
		GameIndex:      index,
		Unicode:        optionalBool(args, "unicode", false),
		IncludeOpening: optionalBool(args, "includeOpening", true),
	}
	doc, err := h.renderer.RenderGame(ctx, req)
	if err != nil {
		return failed(logger, "render game", err)
	}
	logger.Debug("Game rendered", "pages", doc.Pages, "bytes", len(doc.Data), "cached", doc.Cached)
	return documentResult(doc), nil
}

// HandleRenderPosition handles the renderPosition tool.
func (h *ToolsHandler) HandleRenderPosition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, logger := h.requestLogger(ctx, "renderPosition")
	logger.Info("Handling renderPosition request")

	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	fen, err := requiredString(args, "fen")
	if err != nil {
		return nil, err
	}

	req := render.PositionRequest{
		FEN:     fen,
		From:    optionalString(args, "from"),
		To:      optionalString(args, "to"),
		Check:   optionalString(args, "check"),
		Flip:    optionalBool(args, "flip", false),
		Format:  optionalString(args, "format"),
		Unicode: optionalBool(args, "unicode", false),
	}
	doc, err := h.renderer.RenderPosition(ctx, req)
	if err != nil {
		return failed(logger, "render position", err)
	}
	logger.Debug("Position rendered", "bytes", len(doc.Data), "cached", doc.Cached)
	return documentResult(doc), nil
}

// HandleClassifyOpening handles the classifyOpening tool.
func (h *ToolsHandler) HandleClassifyOpening(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, logger := h.requestLogger(ctx, "classifyOpening")
	logger.Info("Handling classifyOpening request")

	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	pgn, err := requiredString(args, "pgn")
	if err != nil {
		return nil, err
	}
	eco := strings.ToUpper(strings.TrimSpace(optionalString(args, "eco")))

	rec, err := h.renderer.Classify(ctx, pgn, eco)
	if err != nil {
		return failed(logger, "classify opening", err)
	}
	if rec == nil {
		logger.Debug("No classification", "eco", eco)
		return mcp.NewToolResultText("No opening classification found"), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s %s\n\n", rec.Code, rec.Name))
	if rec.Group != "" {
		sb.WriteString(fmt.Sprintf("- Group: %s\n", rec.Group))
	}
	if rec.Variant != "" {
		sb.WriteString(fmt.Sprintf("- Variation: %s\n", rec.Variant))
	}
	sb.WriteString(fmt.Sprintf("- Moves: %s\n", rec.MoveText))
	if rec.FEN != "" {
		sb.WriteString(fmt.Sprintf("- FEN: %s\n", rec.FEN))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleListGames handles the listGames tool.
func (h *ToolsHandler) HandleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, logger := h.requestLogger(ctx, "listGames")
	logger.Info("Handling listGames request")

	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	pgn, err := requiredString(args, "pgn")
	if err != nil {
		return nil, err
	}

	games, err := h.renderer.ListGames(ctx, pgn)
	if err != nil {
		return failed(logger, "list games", err)
	}
	resultJSON, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format result: %w", err)
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// HandleHealth handles the health tool.
func (h *ToolsHandler) HandleHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, logger := h.requestLogger(ctx, "health")
	logger.Debug("Handling health request")

	out := map[string]interface{}{
		"renderer": h.renderer.Status(),
	}
	for name, fn := range h.status {
		out[name] = fn()
	}
	resultJSON, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format result: %w", err)
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}
