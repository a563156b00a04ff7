package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/services"
)

// Setup idempotently seeds gates, settings, admin and the spot grid.
func Setup(c *gin.Context) {
	if err := services.SetupDatabase(); err != nil {
		log.Printf("Setup failed: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error inicializando la base de datos", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Base de datos inicializada correctamente. Ya puedes volver al inicio.", nil)
}

// Diagnostic reports connection-string presence (masked), a connectivity
// probe, and the configured gates and cameras.
func Diagnostic(c *gin.Context) {
	probe := "ok"
	if err := database.Ping(); err != nil {
		probe = err.Error()
	}

	var accesses []models.Access
	if err := database.DB.Find(&accesses).Error; err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando accesos", err.Error())
		return
	}
	var cameras []models.Camera
	if err := database.DB.Preload("Access").Find(&cameras).Error; err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando cámaras", err.Error())
		return
	}

	accessResponses := make([]models.AccessResponse, len(accesses))
	for i, access := range accesses {
		accessResponses[i] = access.ToResponse()
	}
	cameraResponses := make([]models.CameraResponse, len(cameras))
	for i, camera := range cameras {
		cameraResponses[i] = camera.ToResponse()
	}

	SuccessResponse(c, http.StatusOK, "Diagnóstico", gin.H{
		"database_url":  database.MaskedDSN(),
		"probe":         probe,
		"operator_only": services.IsOperatorOnly(),
		"accesses":      accessResponses,
		"cameras":       cameraResponses,
	})
}

// DBCheck returns occupancy stats, the last records and the open ones.
func DBCheck(c *gin.Context) {
	var spots []models.ParkingSpot
	if err := database.DB.Find(&spots).Error; err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando sitios", err.Error())
		return
	}
	occupied := make([]models.ParkingSpotResponse, 0)
	for _, spot := range spots {
		if spot.IsOccupied {
			occupied = append(occupied, spot.ToResponse())
		}
	}

	var lastRecords []models.ParkingRecord
	if err := database.DB.Order("entry_time DESC").Limit(5).Find(&lastRecords).Error; err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando registros", err.Error())
		return
	}
	var activeRecords []models.ParkingRecord
	if err := database.DB.Where("exit_time IS NULL").Find(&activeRecords).Error; err != nil {
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando registros activos", err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Estado de la base de datos", gin.H{
		"stats": gin.H{
			"total_spots":          len(spots),
			"occupied_spots":       len(occupied),
			"active_records_count": len(activeRecords),
		},
		"occupied_spots": occupied,
		"last_5_records": lastRecords,
		"active_records": activeRecords,
	})
}

// SimulateEntry fabricates a test entry to smoke-test a deployment.
func SimulateEntry(c *gin.Context) {
	plate, result, err := services.SimulateEntry()
	if err != nil {
		log.Printf("Simulation failed: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error en la simulación", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Si ves este mensaje, la base de datos y la lógica funcionan. Revisa el Dashboard.", gin.H{
		"test_plate": plate,
		"result":     result,
	})
}

// SimulateMonth fills the store with a month of synthetic traffic.
func SimulateMonth(c *gin.Context) {
	count, err := services.SimulateOneMonthData()
	if err != nil {
		log.Printf("Month simulation failed: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error en la simulación", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Simulación completada", gin.H{"count": count})
}

// ClearRecords wipes records, staff and spot state.
func ClearRecords(c *gin.Context) {
	if err := services.ClearAllRecords(); err != nil {
		log.Printf("Clear failed: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error limpiando los registros", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Registros eliminados", nil)
}

type CameraInput struct {
	DeviceName string `json:"device_name" binding:"required,max=100"`
	AccessID   string `json:"access_id" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=ENTRY EXIT BOTH"`
}

// CreateCamera registers an LPR device against a gate.
func CreateCamera(c *gin.Context) {
	var input CameraInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}

	var access models.Access
	if err := database.DB.First(&access, "id = ?", input.AccessID).Error; err != nil {
		ErrorResponse(c, http.StatusBadRequest, "El acceso indicado no existe", err.Error())
		return
	}

	camera := models.Camera{
		DeviceName: input.DeviceName,
		AccessID:   input.AccessID,
		Type:       input.Type,
	}
	if err := database.DB.Create(&camera).Error; err != nil {
		log.Printf("Failed to create camera %s: %v", input.DeviceName, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error registrando la cámara", err.Error())
		return
	}
	camera.Access = access
	SuccessResponse(c, http.StatusCreated, "Cámara registrada", camera.ToResponse())
}
