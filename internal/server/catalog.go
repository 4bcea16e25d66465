package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/normalize"
	"github.com/joseph-ayodele/rental-ledger/internal/repository"
)

type createPropertyRequest struct {
	Name              string  `json:"name" binding:"required"`
	CleaningFee       float64 `json:"cleaningFee" binding:"gte=0"`
	CheckInFee        float64 `json:"checkInFee" binding:"gte=0"`
	CommissionPercent float64 `json:"commissionPercent" binding:"gte=0,lte=100"`
	TeamPayment       float64 `json:"teamPayment" binding:"gte=0"`
}

func (s *Server) listProperties(c *gin.Context) {
	props, err := s.deps.Properties.ListProperties(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	if props == nil {
		props = []*entity.Property{}
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}

func (s *Server) createProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid property: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		fail(c, http.StatusBadRequest, "invalid property: name is required")
		return
	}
	p, err := s.deps.Properties.Create(c.Request.Context(), &entity.Property{
		Name:              req.Name,
		CleaningFee:       req.CleaningFee,
		CheckInFee:        req.CheckInFee,
		CommissionPercent: req.CommissionPercent,
		TeamPayment:       req.TeamPayment,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	if s.deps.Catalog != nil {
		s.deps.Catalog.Invalidate()
	}
	s.logger.Info("property.create.ok", "property_id", p.ID, "name", p.Name)
	c.JSON(http.StatusCreated, p)
}

// reservationFilter reads propertyId, from, to and limit. Dates may be
// written in any accepted input format.
func reservationFilter(c *gin.Context) (repository.ReservationFilter, error) {
	var f repository.ReservationFilter
	if v := c.Query("propertyId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("%w: propertyId must be a positive integer", common.ErrInvalidInput)
		}
		f.PropertyID = id
	}
	for _, q := range []struct {
		key string
		dst *string
	}{{"from", &f.From}, {"to", &f.To}} {
		v := c.Query(q.key)
		if v == "" {
			continue
		}
		d := normalize.Date(v)
		if d == "" {
			return f, fmt.Errorf("%w: %s is not a valid date", common.ErrInvalidInput, q.key)
		}
		*q.dst = d
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("%w: limit must be a non-negative integer", common.ErrInvalidInput)
		}
		f.Limit = n
	}
	f.ImportRunID = c.Query("importRunId")
	return f, nil
}

func (s *Server) listReservations(c *gin.Context) {
	f, err := reservationFilter(c)
	if err != nil {
		failErr(c, err)
		return
	}
	recs, err := s.deps.Reservations.List(c.Request.Context(), f)
	if err != nil {
		failErr(c, err)
		return
	}
	if recs == nil {
		recs = []*entity.Reservation{}
	}
	c.JSON(http.StatusOK, gin.H{"reservations": recs})
}

func (s *Server) exportReservations(c *gin.Context) {
	f, err := reservationFilter(c)
	if err != nil {
		failErr(c, err)
		return
	}
	b, err := s.deps.Exporter.ReservationsXLSX(c.Request.Context(), f)
	if err != nil {
		failErr(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="reservations.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
}

func (s *Server) getImportRun(c *gin.Context) {
	run, err := s.deps.Runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
