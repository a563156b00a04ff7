package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/services"
)

// GetReport aggregates revenue and traffic over ?start=YYYY-MM-DD&end=....
func GetReport(c *gin.Context) {
	startStr := c.Query("start")
	endStr := c.Query("end")

	now := time.Now()
	start := now.AddDate(0, 0, -29)
	end := now

	var err error
	if startStr != "" {
		start, err = time.ParseInLocation("2006-01-02", startStr, now.Location())
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Fecha de inicio inválida", err.Error())
			return
		}
	}
	if endStr != "" {
		end, err = time.ParseInLocation("2006-01-02", endStr, now.Location())
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Fecha de término inválida", err.Error())
			return
		}
	}
	if end.Before(start) {
		ErrorResponse(c, http.StatusBadRequest, "El rango de fechas es inválido", "end before start")
		return
	}

	report, err := services.GetReportData(start, end)
	if err != nil {
		log.Printf("Failed to build report: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error generando el reporte", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Reporte generado", report)
}
