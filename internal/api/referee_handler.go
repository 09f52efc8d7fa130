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

// RefereeHandler exposes referee registration, listing, retirement and
// the per-referee dashboard views.
type RefereeHandler struct {
	referees *service.RefereeService
	logger   *logrus.Logger
}

// NewRefereeHandler creates a RefereeHandler and its service stack.
func NewRefereeHandler(db *gorm.DB, logger *logrus.Logger) *RefereeHandler {
	return &RefereeHandler{
		referees: service.NewRefereeService(
			repository.NewRefereeRepository(db),
			repository.NewMatchRepository(db),
			repository.NewSettlementRepository(db),
			logger),
		logger: logger,
	}
}

type registerRequest struct {
	Name           string   `json:"name" binding:"required"`
	DocumentNumber string   `json:"document_number" binding:"required"`
	Phone          string   `json:"phone" binding:"required"`
	Speciality     string   `json:"speciality"`
	Tier           string   `json:"tier"`
	Unavailability []string `json:"unavailability"`
	Username       string   `json:"username" binding:"required"`
	Password       string   `json:"password" binding:"required,min=8"`
}

// Register creates a referee with its login identity.
// POST /api/referees
func (h *RefereeHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	referee, err := h.referees.Register(c.Request.Context(), service.RegisterInput{
		Name:           req.Name,
		DocumentNumber: req.DocumentNumber,
		Phone:          req.Phone,
		Speciality:     req.Speciality,
		TierName:       req.Tier,
		Unavailability: req.Unavailability,
		Username:       req.Username,
		Password:       req.Password,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, referee)
}

// List returns all active referees, or one referee by login username.
// GET /api/referees?username=
func (h *RefereeHandler) List(c *gin.Context) {
	if username := c.Query("username"); username != "" {
		referee, err := h.referees.FindByUsername(c.Request.Context(), username)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"referees": []interface{}{referee}})
		return
	}

	list, err := h.referees.ListReferees(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referees": list})
}

// Tiers returns the configured rank tiers.
// GET /api/tiers
func (h *RefereeHandler) Tiers(c *gin.Context) {
	list, err := h.referees.Tiers(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": list})
}

// Get returns one referee.
// GET /api/referees/:id
func (h *RefereeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return
	}
	referee, err := h.referees.GetReferee(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, referee)
}

// Retire removes a referee from service; blocked while history exists.
// DELETE /api/referees/:id
func (h *RefereeHandler) Retire(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return
	}
	if err := h.referees.Retire(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats returns the referee dashboard counters.
// GET /api/referees/:id/stats
func (h *RefereeHandler) Stats(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return
	}
	stats, err := h.referees.Stats(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Calendar returns a referee's matches for a period grouped by date.
// GET /api/referees/:id/calendar?period=2025-09
func (h *RefereeHandler) Calendar(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return
	}
	period, err := model.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	days, err := h.referees.Calendar(c.Request.Context(), id, period)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period.String(), "days": days})
}
