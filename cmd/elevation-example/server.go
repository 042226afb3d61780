package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kokudo/go-demtile"
)

type elevationQuery struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lng *float64 `form:"lng" binding:"required"`
}

// An elevationResponse is the JSON body of an elevation response. Height is
// null when the elevation is unknown.
type elevationResponse struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Height    *float64 `json:"height"`
	Formatted string   `json:"formatted,omitempty"`
	Tier      string   `json:"tier,omitempty"`
	Precision int      `json:"precision"`
	Zoom      int      `json:"zoom,omitempty"`
}

func newElevationResponse(result demtile.Result) elevationResponse {
	response := elevationResponse{
		Lat:       result.Position.Lat,
		Lng:       result.Position.Lng,
		Formatted: result.String(),
		Tier:      result.TierTitle,
		Precision: result.Precision,
		Zoom:      result.Zoom,
	}
	if result.HasHeight() {
		height := result.Height
		response.Height = &height
	}
	return response
}

func newRouter(resolver *demtile.Resolver) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.GET("/elevation", elevationHandler(resolver))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func elevationHandler(resolver *demtile.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query elevationQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pos := demtile.GeoPosition{Lat: *query.Lat, Lng: *query.Lng}
		result, err := resolver.Resolve(c.Request.Context(), pos)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, newElevationResponse(result))
	}
}
