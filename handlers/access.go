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

type VehicleEntryInput struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	AccessID     string `json:"access_id"`
}

// ProcessEntry evaluates a plate at a gate (manual guard flow).
func ProcessEntry(c *gin.Context) {
	var input VehicleEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}

	plate := NormalizePlate(input.LicensePlate)
	result, err := services.ProcessVehicleEntry(plate, input.AccessID)
	if err != nil {
		log.Printf("Failed to process entry for plate %s: %v", plate, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error procesando la entrada", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, result.Message, result)
}

// ProcessExit closes a stay by plate (manual guard flow).
func ProcessExit(c *gin.Context) {
	var input VehicleEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}

	plate := NormalizePlate(input.LicensePlate)
	result, err := services.ProcessVehicleExit(plate, input.AccessID)
	if err != nil {
		log.Printf("Failed to process exit for plate %s: %v", plate, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error procesando la salida", err.Error())
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: result.Success,
		Message: result.Message,
		Data:    result,
	})
}

type OccupySpotInput struct {
	LicensePlate string `json:"license_plate" binding:"required"`
	EntryType    string `json:"entry_type" binding:"omitempty,oneof=AUTOMATIC MANUAL"`
	AccessID     string `json:"access_id"`
}

// OccupySpot assigns a plate to a concrete spot (guard picks the spot).
func OccupySpot(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "ID de sitio inválido", err.Error())
		return
	}

	var input OccupySpotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}
	if input.EntryType == "" {
		input.EntryType = models.EntryManual
	}

	plate := NormalizePlate(input.LicensePlate)
	err = services.OccupySpot(spotID, plate, input.EntryType, input.AccessID)
	switch {
	case errors.Is(err, services.ErrSpotNotFound):
		ErrorResponse(c, http.StatusNotFound, "El sitio no existe", err.Error())
	case errors.Is(err, services.ErrSpotOccupied):
		ErrorResponse(c, http.StatusConflict, "El sitio ya está ocupado.", err.Error())
	case err != nil:
		log.Printf("Failed to occupy spot %d: %v", spotID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error ocupando el sitio", err.Error())
	default:
		SuccessResponse(c, http.StatusOK, "Sitio ocupado", gin.H{"spot_id": spotID, "license_plate": plate})
	}
}

// FreeSpot releases a spot and reports the computed cost.
func FreeSpot(c *gin.Context) {
	spotID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "ID de sitio inválido", err.Error())
		return
	}

	result, err := services.FreeSpot(spotID)
	if err != nil {
		log.Printf("Failed to free spot %d: %v", spotID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error liberando el sitio", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Sitio liberado", result)
}

// GetAvailableSpots lists the spots a visitor could take right now.
func GetAvailableSpots(c *gin.Context) {
	spots, err := services.GetAvailableGeneralSpots(c.Query("access_id"))
	if err != nil {
		log.Printf("Failed to get available spots: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando sitios disponibles", err.Error())
		return
	}

	responses := make([]models.ParkingSpotResponse, len(spots))
	for i, spot := range spots {
		responses[i] = spot.ToResponse()
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", responses)
}
