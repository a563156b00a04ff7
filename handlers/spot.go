package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/services"
)

// GetSpots lists all spots. OPERATOR accounts bound to a gate only see
// that gate's spots.
func GetSpots(c *gin.Context) {
	accessID := ""
	if role, ok := c.Get("role"); ok && role == models.RoleOperator {
		if boundAccess, ok := c.Get("access_id"); ok {
			accessID, _ = boundAccess.(string)
		}
	}

	spots, err := services.GetAllSpots(accessID)
	if err != nil {
		log.Printf("Failed to fetch spots: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando sitios", err.Error())
		return
	}

	responses := make([]models.ParkingSpotResponse, len(spots))
	for i, spot := range spots {
		responses[i] = spot.ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", responses)
}

// GetSpotCounts returns the per-tower inventory summary.
func GetSpotCounts(c *gin.Context) {
	towerID := c.DefaultQuery("tower_id", "T1")
	counts, err := services.GetSpotCounts(towerID)
	if err != nil {
		log.Printf("Failed to count spots for tower %s: %v", towerID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando inventario", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", counts)
}

type SpotCountsInput struct {
	Total   int    `json:"total" binding:"gte=0"`
	TowerID string `json:"tower_id"`
}

// UpdateSpotCounts resizes a tower's inventory.
func UpdateSpotCounts(c *gin.Context) {
	var input SpotCountsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}
	if input.TowerID == "" {
		input.TowerID = "T1"
	}

	if err := services.UpdateSpotCounts(input.Total, input.TowerID); err != nil {
		log.Printf("Failed to resize tower %s: %v", input.TowerID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error redimensionando el inventario", err.Error())
		return
	}

	counts, err := services.GetSpotCounts(input.TowerID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando inventario", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Inventario actualizado", counts)
}

// ToggleSpotType flips a spot between GENERAL and RESERVED.
func ToggleSpotType(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "ID de sitio inválido", err.Error())
		return
	}

	spot, err := services.ToggleSpotType(spotID)
	switch {
	case errors.Is(err, services.ErrSpotNotFound):
		ErrorResponse(c, http.StatusNotFound, "El sitio no existe", err.Error())
	case errors.Is(err, services.ErrSpotOccupiedToggle):
		ErrorResponse(c, http.StatusConflict, "No se puede cambiar el tipo de un sitio ocupado", err.Error())
	case err != nil:
		log.Printf("Failed to toggle spot %d: %v", spotID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error cambiando el tipo del sitio", err.Error())
	default:
		SuccessResponse(c, http.StatusOK, "Tipo de sitio actualizado", spot.ToResponse())
	}
}

type MonthlyFeeInput struct {
	Fee int `json:"fee" binding:"gte=0"`
}

// UpdateSpotMonthlyFee sets the subscription fee of a spot.
func UpdateSpotMonthlyFee(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "ID de sitio inválido", err.Error())
		return
	}

	var input MonthlyFeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}

	err = services.UpdateSpotMonthlyFee(spotID, input.Fee)
	switch {
	case errors.Is(err, services.ErrSpotNotFound):
		ErrorResponse(c, http.StatusNotFound, "El sitio no existe", err.Error())
	case err != nil:
		log.Printf("Failed to update fee of spot %d: %v", spotID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error actualizando la tarifa mensual", err.Error())
	default:
		SuccessResponse(c, http.StatusOK, "Tarifa mensual actualizada", gin.H{"spot_id": spotID, "fee": input.Fee})
	}
}

// UpdateSpotAssignment attaches or updates the subscriber of a spot.
func UpdateSpotAssignment(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "ID de sitio inválido", err.Error())
		return
	}

	var input services.SpotAssignment
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}
	input.Plate = NormalizePlate(input.Plate)

	err = services.UpdateSpotAssignment(spotID, input)
	switch {
	case errors.Is(err, services.ErrSpotNotFound):
		ErrorResponse(c, http.StatusNotFound, "El sitio no existe", err.Error())
	case err != nil:
		log.Printf("Failed to update assignment of spot %d: %v", spotID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error actualizando el abonado", err.Error())
	default:
		SuccessResponse(c, http.StatusOK, "Abonado actualizado", nil)
	}
}

// RemoveSpotAssignment detaches the subscriber of a spot.
func RemoveSpotAssignment(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "ID de sitio inválido", err.Error())
		return
	}

	if err := services.RemoveSpotAssignment(spotID); err != nil {
		log.Printf("Failed to remove assignment of spot %d: %v", spotID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error quitando el abonado", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Abonado desvinculado", nil)
}
