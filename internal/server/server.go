// Package server exposes the recommendation engine over HTTP. The engine
// itself stays synchronous and pure; the server owns request validation,
// ledger snapshots and the JSON surface.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"cardrec/internal/catalog"
	"cardrec/internal/engine"
	"cardrec/internal/ledger"
	"cardrec/internal/logging"
	"cardrec/internal/models"
)

// Server wires the engine, catalog and ledger store behind a gin router.
type Server struct {
	ranker   *engine.Ranker
	catalog  *catalog.Catalog
	ledger   ledger.Store
	log      logging.Logger
	validate *validator.Validate
}

// New creates a Server.
func New(ranker *engine.Ranker, cat *catalog.Catalog, store ledger.Store, log logging.Logger) *Server {
	v := validator.New()
	// Rejects strings that are only whitespace; "required" alone admits " ".
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return &Server{ranker: ranker, catalog: cat, ledger: store, log: log, validate: v}
}

// Router builds the HTTP routes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.POST("/recommend", s.handleRecommend)
	api.GET("/cards", s.handleCards)
	api.POST("/ledger/record", s.handleLedgerRecord)
	api.POST("/ledger/reset", s.handleLedgerReset)

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(
			logging.Field{Key: "method", Value: c.Request.Method},
			logging.Field{Key: "path", Value: c.Request.URL.Path},
			logging.Field{Key: "status", Value: c.Writer.Status()},
			logging.Field{Key: "duration", Value: time.Since(start).String()},
		).Debug("Request handled")
	}
}

// === DTOs ===

// RecommendRequest asks for a ranking of the given candidate cards for one
// purchase. Spent, when present, is the ledger snapshot to rank against
// ("cardID:category" keys); otherwise the snapshot is read from the ledger
// store for UserID, or empty when neither is given.
type RecommendRequest struct {
	Merchant string            `json:"merchant" validate:"required,notblank"`
	Amount   decimal.Decimal   `json:"amount" validate:"required"`
	CardIDs  []string          `json:"card_ids" validate:"required,min=1"`
	UserID   string            `json:"user_id"`
	Spent    map[string]string `json:"spent"`
}

// LedgerRecordRequest adds spend to a user's (card, category) accumulator.
// Callers invoke this after the user commits to a recommended card.
type LedgerRecordRequest struct {
	UserID   string          `json:"user_id" validate:"required,notblank"`
	CardID   string          `json:"card_id" validate:"required,notblank"`
	Category string          `json:"category" validate:"required,notblank"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}

// LedgerResetRequest clears a user's accumulators for a new billing cycle.
type LedgerResetRequest struct {
	UserID string `json:"user_id" validate:"required,notblank"`
}

type cardResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Issuer    string   `json:"issuer"`
	AnnualFee int64    `json:"annual_fee"`
	Perks     []string `json:"perks,omitempty"`
}

// === Handlers ===

func (s *Server) handleRecommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := s.validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.snapshotFor(c, req)
	if err != nil {
		if engine.IsInvalidInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.WithError(err).Error("Failed to read ledger snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ledger unavailable"})
		return
	}

	purchase := models.Purchase{Merchant: req.Merchant, Amount: req.Amount}
	recs, err := s.ranker.Recommend(req.CardIDs, purchase, snap)
	if err != nil {
		if engine.IsInvalidInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.log.WithError(err).Error("Recommendation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"merchant": req.Merchant,
		"category": s.ranker.Category(req.Merchant),
		"results":  recs,
	})
}

func (s *Server) handleCards(c *gin.Context) {
	cards := s.catalog.Cards()
	resp := make([]cardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, cardResponse{
			ID:        card.ID,
			Name:      card.DisplayName,
			Issuer:    card.Issuer,
			AnnualFee: card.AnnualFee,
			Perks:     card.Perks,
		})
	}
	c.JSON(http.StatusOK, gin.H{"cards": resp})
}

func (s *Server) handleLedgerRecord(c *gin.Context) {
	var req LedgerRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := s.validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	if _, ok := s.catalog.Card(req.CardID); !ok {
		unknown := &engine.UnknownCardError{CardID: req.CardID}
		c.JSON(http.StatusBadRequest, gin.H{"error": unknown.Error()})
		return
	}

	key := ledger.Key{CardID: req.CardID, Category: req.Category}
	if err := s.ledger.Record(c.Request.Context(), req.UserID, key, req.Amount); err != nil {
		s.log.WithError(err).Error("Failed to record spend")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record spend"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLedgerReset(c *gin.Context) {
	var req LedgerResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if err := s.validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.ledger.Reset(c.Request.Context(), req.UserID); err != nil {
		s.log.WithError(err).Error("Failed to reset ledger")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset ledger"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// === Helpers ===

func (s *Server) snapshotFor(c *gin.Context, req RecommendRequest) (ledger.Snapshot, error) {
	if req.Spent != nil {
		snap := make(ledger.Snapshot, len(req.Spent))
		for field, value := range req.Spent {
			cardID, category, ok := strings.Cut(field, ":")
			if !ok {
				return nil, &engine.InvalidInputError{Field: "spent", Reason: fmt.Sprintf("bad key %q: want cardID:category", field)}
			}
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return nil, &engine.InvalidInputError{Field: "spent", Reason: fmt.Sprintf("bad amount %q", value)}
			}
			snap[ledger.Key{CardID: cardID, Category: category}] = amount
		}
		return snap, nil
	}
	if req.UserID != "" {
		return s.ledger.Snapshot(c.Request.Context(), req.UserID)
	}
	return ledger.Snapshot{}, nil
}

func (s *Server) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs []string
	for _, e := range err.(validator.ValidationErrors) {
		errs = append(errs, fieldErrorToString(e))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "min":
		return fmt.Sprintf("%s must not be empty", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
