package api

import (
	"net/http"
	"strconv"
	"time"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"
	"RefDesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MatchHandler exposes match creation, queries and the referee
// confirmation workflow. The acting identity is an explicit request
// field, never session state.
type MatchHandler struct {
	assignments *service.AssignmentService
	logger      *logrus.Logger
}

// NewMatchHandler creates a MatchHandler and its service stack.
func NewMatchHandler(db *gorm.DB, logger *logrus.Logger) *MatchHandler {
	matches := repository.NewMatchRepository(db)
	referees := repository.NewRefereeRepository(db)
	notifier := service.NewNotifier(repository.NewNotificationRepository(db), logger)
	return &MatchHandler{
		assignments: service.NewAssignmentService(matches, referees, notifier, logger),
		logger:      logger,
	}
}

type createMatchRequest struct {
	Date       string  `json:"date" binding:"required"`
	Kickoff    string  `json:"kickoff" binding:"required"`
	HomeTeam   string  `json:"home_team" binding:"required"`
	AwayTeam   string  `json:"away_team" binding:"required"`
	Tournament *string `json:"tournament"`
	RefereeID  *uint64 `json:"referee_id"`
}

// CreateMatch registers a fixture.
// POST /api/matches
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	if _, err := time.Parse("15:04", req.Kickoff); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kickoff must be HH:MM"})
		return
	}

	match, err := h.assignments.CreateMatch(c.Request.Context(), service.CreateMatchInput{
		Date:       date,
		Kickoff:    req.Kickoff,
		HomeTeam:   req.HomeTeam,
		AwayTeam:   req.AwayTeam,
		Tournament: req.Tournament,
		RefereeID:  req.RefereeID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// ListMatches queries matches by referee and status, or the unassigned
// backlog.
// GET /api/matches?referee_id=&status=&unassigned=true
func (h *MatchHandler) ListMatches(c *gin.Context) {
	if c.Query("unassigned") == "true" {
		list, err := h.assignments.UnassignedMatches(c.Request.Context())
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"matches": list})
		return
	}

	refereeID, err := strconv.ParseUint(c.Query("referee_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "referee_id is required"})
		return
	}
	list, err := h.assignments.MatchesForReferee(c.Request.Context(), refereeID, model.MatchStatus(c.Query("status")))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": list})
}

// Summary returns match counts per status.
// GET /api/matches/summary
func (h *MatchHandler) Summary(c *gin.Context) {
	summary, err := h.assignments.StatusSummary(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetMatch returns one match.
// GET /api/matches/:match_uuid
func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.assignments.GetMatch(c.Request.Context(), c.Param("match_uuid"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

type actingRefereeRequest struct {
	ActingRefereeID uint64 `json:"acting_referee_id" binding:"required"`
}

// Confirm records the assigned referee's availability.
// POST /api/matches/:match_uuid/confirm
func (h *MatchHandler) Confirm(c *gin.Context) {
	var req actingRefereeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	match, err := h.assignments.ConfirmAvailability(c.Request.Context(), c.Param("match_uuid"), req.ActingRefereeID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Decline marks the assigned referee unavailable.
// POST /api/matches/:match_uuid/decline
func (h *MatchHandler) Decline(c *gin.Context) {
	var req actingRefereeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	match, err := h.assignments.MarkUnavailable(c.Request.Context(), c.Param("match_uuid"), req.ActingRefereeID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

type reassignRequest struct {
	ActingRefereeID uint64 `json:"acting_referee_id" binding:"required"`
	NewRefereeID    uint64 `json:"new_referee_id" binding:"required"`
}

// Reassign hands the match to a new referee, pending their confirmation.
// POST /api/matches/:match_uuid/reassign
func (h *MatchHandler) Reassign(c *gin.Context) {
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	match, err := h.assignments.Reassign(c.Request.Context(), c.Param("match_uuid"), req.NewRefereeID, req.ActingRefereeID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Start records kickoff.
// POST /api/matches/:match_uuid/start
func (h *MatchHandler) Start(c *gin.Context) {
	match, err := h.assignments.StartMatch(c.Request.Context(), c.Param("match_uuid"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Finish records the final result.
// POST /api/matches/:match_uuid/finish
func (h *MatchHandler) Finish(c *gin.Context) {
	match, err := h.assignments.FinishMatch(c.Request.Context(), c.Param("match_uuid"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, match)
}
