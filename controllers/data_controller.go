package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stockpulse/services/analysis"

	"github.com/gin-gonic/gin"
)

// DataController serves fused and raw market data views.
type DataController struct {
	engine *analysis.Engine
	store  analysis.Store
}

// NewDataController creates a new data controller
func NewDataController(engine *analysis.Engine, store analysis.Store) *DataController {
	return &DataController{engine: engine, store: store}
}

// GetFusedData returns the fused view for a symbol
// GET /api/data/:symbol?limit=N
func (dc *DataController) GetFusedData(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	limit, ok := parseLimit(c)
	if !ok {
		return
	}

	view, err := dc.engine.Fuse(c.Request.Context(), symbol, limit)
	if errors.Is(err, analysis.ErrNotAvailable) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Data not available"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load data"})
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetPrices returns the stored raw price bars for a symbol, oldest first
// GET /api/prices/:symbol?limit=N
func (dc *DataController) GetPrices(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	limit, ok := parseLimit(c)
	if !ok {
		return
	}
	if limit == 0 {
		limit = analysis.DefaultLimit
	}

	bars, err := dc.store.PriceBars(c.Request.Context(), symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load prices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"symbol": symbol,
		"prices": bars,
	})
}

// GetFundamentals returns the latest stored fundamentals for a symbol
// GET /api/fundamentals/:symbol
func (dc *DataController) GetFundamentals(c *gin.Context) {
	symbol := strings.ToUpper(c.Param("symbol"))

	snapshot, err := dc.store.LatestFundamentals(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load fundamentals"})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Data not available"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// parseLimit reads the optional ?limit query parameter. On an invalid value
// it writes a 400 response and returns ok=false.
func parseLimit(c *gin.Context) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return 0, false
	}
	return limit, true
}
