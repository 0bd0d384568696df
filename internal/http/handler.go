package http

import (
	"fmt"
	"strings"
	"time"

	"chess-rules/internal/core"
	"chess-rules/internal/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

type HTTPHandler struct {
	proc *processor.Processor
}

func NewHTTPHandler(proc *processor.Processor) *HTTPHandler {
	return &HTTPHandler{proc: proc}
}

func NewFiberApp(proc *processor.Processor, devMode bool) *fiber.App {
	h := NewHTTPHandler(proc)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // covers the long-poll wait
		IdleTimeout:  30 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	api.Use(contentTypeValidator)
	api.Use(validationMiddleware)

	games := api.Group("/games")
	games.Post("", h.CreateGame)
	games.Put("/:gameId/players", h.ConfigurePlayers)
	games.Get("/:gameId", h.GetGame)
	games.Delete("/:gameId", h.DeleteGame)
	games.Post("/:gameId/moves", h.MakeMove)
	games.Post("/:gameId/undo", h.UndoMove)
	games.Get("/:gameId/board", h.GetBoard)
	games.Get("/:gameId/preview/:square", h.Preview)
	games.Get("/:gameId/history", h.GetHistory)

	api.Get("/archive/:gameId", h.GetArchive)

	return app
}

// contentTypeValidator ensures POST and PUT requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodPost || method == fiber.MethodPut {
		contentType := c.Get("Content-Type")
		if mediaType, _, _ := strings.Cut(contentType, ";"); contentType != "" && strings.TrimSpace(mediaType) != fiber.MIMEApplicationJSON {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrGameNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes onto HTTP status codes
func statusFor(code string) int {
	switch code {
	case core.ErrGameNotFound, core.ErrNotArchived:
		return fiber.StatusNotFound
	case core.ErrGameOver, core.ErrNotHumanTurn:
		return fiber.StatusConflict
	case core.ErrIllegalMove, core.ErrInvalidNotation:
		return fiber.StatusUnprocessableEntity
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// reply writes a processor response with the given success status
func reply(c *fiber.Ctx, resp processor.ProcessorResponse, okStatus int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Pending {
		okStatus = fiber.StatusAccepted
	}
	if resp.Data == nil {
		return c.SendStatus(okStatus)
	}
	return c.Status(okStatus).JSON(resp.Data)
}

func badGameID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   "invalid game ID format",
		Code:    core.ErrInvalidRequest,
		Details: "game ID must be a valid UUID",
	})
}

func bypass(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(core.ErrorResponse{
		Error: err.Error(),
		Code:  core.ErrInternalError,
	})
}

// Health check endpoint
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "healthy",
		"time":          time.Now().Unix(),
		"storage":       h.proc.StorageHealth(),
		"computerGames": h.proc.ComputerGames(),
	})
}

// CreateGame creates a new game with specified player types and optional FEN
func (h *HTTPHandler) CreateGame(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateGameRequest](c)
	if err != nil {
		return bypass(c, err)
	}

	resp := h.proc.Execute(c.Context(), processor.NewCreateGameCommand(req))
	return reply(c, resp, fiber.StatusCreated)
}

// ConfigurePlayers updates player configuration mid-game
func (h *HTTPHandler) ConfigurePlayers(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	req, err := validatedBody[core.ConfigurePlayersRequest](c)
	if err != nil {
		return bypass(c, err)
	}

	resp := h.proc.Execute(c.Context(), processor.NewConfigurePlayersCommand(gameID, req))
	return reply(c, resp, fiber.StatusOK)
}

// GetGame retrieves current game state; ?wait=true&moveCount=n long-polls
func (h *HTTPHandler) GetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	wait := processor.WaitArgs{Wait: c.QueryBool("wait", false)}
	if wait.Wait {
		wait.MoveCount = c.QueryInt("moveCount", -1)
		if wait.MoveCount < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
				Error:   "moveCount is required when waiting",
				Code:    core.ErrInvalidRequest,
				Details: "moveCount must be a non-negative integer",
			})
		}
	}

	resp := h.proc.Execute(c.Context(), processor.NewGetGameCommand(gameID, wait))
	return reply(c, resp, fiber.StatusOK)
}

// MakeMove submits a move, or "cccc" to let the computer move
func (h *HTTPHandler) MakeMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	req, err := validatedBody[core.MoveRequest](c)
	if err != nil {
		return bypass(c, err)
	}

	resp := h.proc.Execute(c.Context(), processor.NewMakeMoveCommand(gameID, req))
	return reply(c, resp, fiber.StatusOK)
}

// UndoMove undoes one or more moves
func (h *HTTPHandler) UndoMove(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	req, err := validatedBody[core.UndoRequest](c)
	if err != nil {
		return bypass(c, err)
	}

	resp := h.proc.Execute(c.Context(), processor.NewUndoMoveCommand(gameID, req))
	return reply(c, resp, fiber.StatusOK)
}

// DeleteGame removes a game from memory
func (h *HTTPHandler) DeleteGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	resp := h.proc.Execute(c.Context(), processor.NewDeleteGameCommand(gameID))
	return reply(c, resp, fiber.StatusNoContent)
}

// GetBoard returns the FEN and an ASCII diagram
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	resp := h.proc.Execute(c.Context(), processor.NewGetBoardCommand(gameID))
	return reply(c, resp, fiber.StatusOK)
}

// Preview returns the legal targets of the piece on a square
func (h *HTTPHandler) Preview(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	resp := h.proc.Execute(c.Context(), processor.NewPreviewCommand(gameID, c.Params("square")))
	return reply(c, resp, fiber.StatusOK)
}

// GetHistory returns moves, FEN history and the summary of a finished game
func (h *HTTPHandler) GetHistory(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	resp := h.proc.Execute(c.Context(), processor.NewGetHistoryCommand(gameID))
	return reply(c, resp, fiber.StatusOK)
}

// GetArchive returns an archived session summary
func (h *HTTPHandler) GetArchive(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return badGameID(c)
	}

	resp := h.proc.Execute(c.Context(), processor.NewGetArchiveCommand(gameID))
	return reply(c, resp, fiber.StatusOK)
}
