package api

import (
	"net/http"
	"strconv"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"
	"RefDesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SettlementHandler exposes the settlement batch trigger, the mark-paid
// transition and the reporting queries.
type SettlementHandler struct {
	settlements *service.SettlementService
	logger      *logrus.Logger
}

// NewSettlementHandler creates a SettlementHandler and its service stack.
func NewSettlementHandler(db *gorm.DB, logger *logrus.Logger) *SettlementHandler {
	referees := repository.NewRefereeRepository(db)
	matches := repository.NewMatchRepository(db)
	notifier := service.NewNotifier(repository.NewNotificationRepository(db), logger)
	rates := service.NewRankTierDirectory(referees)
	return &SettlementHandler{
		settlements: service.NewSettlementService(
			repository.NewSettlementRepository(db), matches, referees, rates, notifier, logger),
		logger: logger,
	}
}

type generateRequest struct {
	Period string `json:"period" binding:"required"`
}

// Generate runs the settlement batch for a period. Safe to re-run:
// already settled referees are skipped.
// POST /api/settlements/generate
func (h *SettlementHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	period, err := model.ParsePeriod(req.Period)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.settlements.GenerateForPeriod(c.Request.Context(), period)
	if err != nil {
		// Partial runs still report what committed.
		if report != nil {
			h.logger.WithError(err).Warn("settlement run finished with failures")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
			return
		}
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// List queries settlements by period, referee, both, or the pending
// backlog.
// GET /api/settlements?period=&referee_id=&pending=true
func (h *SettlementHandler) List(c *gin.Context) {
	var filter service.SettlementFilter

	if p := c.Query("period"); p != "" {
		period, err := model.ParsePeriod(p)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Period = period
	}
	if r := c.Query("referee_id"); r != "" {
		refereeID, err := strconv.ParseUint(r, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "referee_id must be numeric"})
			return
		}
		filter.RefereeID = refereeID
	}
	filter.PendingOnly = c.Query("pending") == "true"

	list, err := h.settlements.ListSettlements(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": list})
}

// Get returns one settlement with the matches it covers.
// GET /api/settlements/:settlement_uuid
func (h *SettlementHandler) Get(c *gin.Context) {
	uuid := c.Param("settlement_uuid")
	settlement, err := h.settlements.GetSettlement(c.Request.Context(), uuid)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	matches, err := h.settlements.SettlementMatches(c.Request.Context(), uuid)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlement": settlement, "matches": matches})
}

// Pay marks a settlement paid. One-way.
// POST /api/settlements/:settlement_uuid/pay
func (h *SettlementHandler) Pay(c *gin.Context) {
	settlement, err := h.settlements.MarkPaid(c.Request.Context(), c.Param("settlement_uuid"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}
