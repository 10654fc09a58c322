package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/orgchart/internal/core/errs"
	"github.com/agenthands/orgchart/internal/core/model"
)

type ActivePortfolioRequest struct {
	PresidentID string `json:"presidentId"`
	Date        string `json:"date"`
}

type DateRequest struct {
	Date string `json:"date"`
}

func (s *Server) ActivePortfolioList(c *gin.Context) {
	var req ActivePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	snapshot, err := s.Orgchart.ActivePortfolios(c.Request.Context(), req.PresidentID, req.Date)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) DepartmentsByPortfolio(c *gin.Context) {
	var req DateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	snapshot, err := s.Orgchart.DepartmentsByPortfolio(c.Request.Context(), c.Param("portfolioId"), req.Date)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) PrimeMinister(c *gin.Context) {
	var req DateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	pm, err := s.Orgchart.PrimeMinister(c.Request.Context(), req.Date)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if pm == nil {
		c.JSON(http.StatusOK, gin.H{"body": gin.H{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"body": pm})
}

func (s *Server) DepartmentHistory(c *gin.Context) {
	views, err := s.Orgchart.DepartmentHistory(c.Request.Context(), c.Param("departmentId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if views == nil {
		views = []model.TimelineView{}
	}
	c.JSON(http.StatusOK, views)
}

// writeError maps an error kind to its status. Only bad request and not found messages
// reach the client.
func (s *Server) writeError(c *gin.Context, err error) {
	switch errs.KindOf(err) {
	case errs.KindBadRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": errs.Message(err)})
	case errs.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": errs.Message(err)})
	default:
		requestLogger(c, s.Log).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errs.GenericMessage})
	}
}
