package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/services"
	"gorm.io/gorm"
)

// LPREvent is the normalized outcome of parsing a camera payload: which
// plate, from which device, and (when the payload carries it) in which
// direction.
type LPREvent struct {
	Plate     string
	Device    string
	Direction string // "ENTRY", "EXIT" or empty
	Format    string
}

var ErrUnrecognizedPayload = errors.New("unrecognized LPR payload format")

var plateNormalizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// NormalizePlate strips separators and uppercases, so "ab-c105" and
// "ABC 105" compare equal.
func NormalizePlate(plate string) string {
	return strings.ToUpper(plateNormalizer.ReplaceAllString(plate, ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// hikCentralEventInfo is the event body HikCentral pushes. Field naming
// varies across versions, hence the alternates.
type hikCentralEventInfo struct {
	PlateNumber  string `json:"plateNumber"`
	LicensePlate string `json:"licensePlate"`
	PlateSnake   string `json:"plate_number"`
	DeviceName   string `json:"deviceName"`
	DeviceSnake  string `json:"device_name"`
	Direction    string `json:"direction"`
	VehicleList  []struct {
		Plate string `json:"plate"`
	} `json:"vehicleList"`
}

type hikCentralPayload struct {
	Data *struct {
		EventInfo *hikCentralEventInfo `json:"eventInfo"`
	} `json:"data"`
	EventInfo *hikCentralEventInfo `json:"eventInfo"`
}

func parseHikCentral(body []byte) (*LPREvent, bool) {
	var payload hikCentralPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	info := payload.EventInfo
	if payload.Data != nil && payload.Data.EventInfo != nil {
		info = payload.Data.EventInfo
	}
	if info == nil {
		return nil, false
	}
	plate := firstNonEmpty(info.PlateNumber, info.LicensePlate, info.PlateSnake)
	if plate == "" && len(info.VehicleList) > 0 {
		plate = info.VehicleList[0].Plate
	}
	return &LPREvent{
		Plate:     plate,
		Device:    firstNonEmpty(info.DeviceName, info.DeviceSnake),
		Direction: strings.ToUpper(info.Direction),
		Format:    "HikCentral",
	}, true
}

// isapiPayload is the direct-camera HTTP push (ISAPI) shape.
type isapiPayload struct {
	EventNotificationAlert *struct {
		DeviceName  string `json:"deviceName"`
		DeviceSnake string `json:"device_name"`
		Direction   string `json:"direction"`
		ANPR        *struct {
			LicensePlate string `json:"licensePlate"`
			PlateNo      string `json:"plateNo"`
			PlateNumber  string `json:"plateNumber"`
		} `json:"ANPR"`
		ANPRLower *struct {
			LicensePlate string `json:"licensePlate"`
			PlateNo      string `json:"plateNo"`
			PlateNumber  string `json:"plateNumber"`
		} `json:"anpr"`
		ExtensionInfo *struct {
			PlateNumber  string `json:"plateNumber"`
			LicensePlate string `json:"licensePlate"`
		} `json:"extensionInfo"`
	} `json:"EventNotificationAlert"`
}

func parseISAPI(body []byte) (*LPREvent, bool) {
	var payload isapiPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	alert := payload.EventNotificationAlert
	if alert == nil {
		return nil, false
	}

	plate := ""
	if alert.ANPR != nil {
		plate = firstNonEmpty(alert.ANPR.LicensePlate, alert.ANPR.PlateNo, alert.ANPR.PlateNumber)
	}
	if plate == "" && alert.ANPRLower != nil {
		plate = firstNonEmpty(alert.ANPRLower.LicensePlate, alert.ANPRLower.PlateNo, alert.ANPRLower.PlateNumber)
	}
	if plate == "" && alert.ExtensionInfo != nil {
		plate = firstNonEmpty(alert.ExtensionInfo.PlateNumber, alert.ExtensionInfo.LicensePlate)
	}

	return &LPREvent{
		Plate:     plate,
		Device:    firstNonEmpty(alert.DeviceName, alert.DeviceSnake, "Camara_Directa"),
		Direction: strings.ToUpper(alert.Direction),
		Format:    "ISAPI",
	}, true
}

// genericPayload is the flat shape used by the simulator and some vendors.
type genericPayload struct {
	PlateNumber    string `json:"plateNumber"`
	LicensePlate   string `json:"licensePlate"`
	PlateSnake     string `json:"plate_number"`
	PlateNumberUC  string `json:"PlateNumber"`
	LicensePlateUC string `json:"LicensePlate"`
	DeviceName     string `json:"deviceName"`
	DeviceSnake    string `json:"device_name"`
	DeviceNameUC   string `json:"DeviceName"`
	Direction      string `json:"direction"`
}

func parseGeneric(body []byte) (*LPREvent, bool) {
	var payload genericPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}
	plate := firstNonEmpty(payload.PlateNumber, payload.LicensePlate, payload.PlateSnake, payload.PlateNumberUC, payload.LicensePlateUC)
	if plate == "" {
		return nil, false
	}
	return &LPREvent{
		Plate:     plate,
		Device:    firstNonEmpty(payload.DeviceName, payload.DeviceSnake, payload.DeviceNameUC, "Unknown_Device"),
		Direction: strings.ToUpper(payload.Direction),
		Format:    "Generic",
	}, true
}

// ParseLPRPayload tries each known vendor format in order and fails with
// ErrUnrecognizedPayload when none matches.
func ParseLPRPayload(body []byte) (*LPREvent, error) {
	if !json.Valid(body) {
		return nil, ErrUnrecognizedPayload
	}
	if event, ok := parseHikCentral(body); ok && event.Plate != "" {
		return event, nil
	}
	if event, ok := parseISAPI(body); ok && event.Plate != "" {
		return event, nil
	}
	if event, ok := parseGeneric(body); ok {
		return event, nil
	}
	return nil, ErrUnrecognizedPayload
}

// resolveCamera maps a device name to its gate and direction. Unknown
// devices fall back to name heuristics and the default gate.
func resolveCamera(deviceName string) (accessID, accessName, cameraType string) {
	var camera models.Camera
	err := database.DB.Preload("Access").Where("device_name = ?", deviceName).First(&camera).Error
	if err == nil {
		return camera.AccessID, camera.Access.Name, camera.Type
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to look up camera %s: %v", deviceName, err)
	} else {
		log.Printf("Camera '%s' is not in the mapping table, falling back to name heuristics", deviceName)
	}

	upper := strings.ToUpper(deviceName)
	switch {
	case strings.Contains(upper, "ENTRADA") || strings.Contains(upper, "ENTRY"):
		cameraType = models.CameraEntry
	case strings.Contains(upper, "SALIDA") || strings.Contains(upper, "EXIT"):
		cameraType = models.CameraExit
	}
	return "gate-a", "Desconocido", cameraType
}

// LPRWebhook receives camera push notifications and routes them through
// the entry/exit workflow.
func LPRWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "No se pudo leer el cuerpo de la petición", err.Error())
		return
	}

	event, err := ParseLPRPayload(body)
	if err != nil {
		log.Printf("[LPR] Unrecognized payload: %.500s", string(body))
		ErrorResponse(c, http.StatusBadRequest, "Formato no reconocido (posiblemente XML)", err.Error())
		return
	}

	plate := NormalizePlate(event.Plate)
	if plate == "" {
		ErrorResponse(c, http.StatusBadRequest, "No se encontró patente en el payload", "")
		return
	}
	log.Printf("[LPR] %s event: plate=%s device=%s", event.Format, plate, event.Device)

	accessID, accessName, cameraType := resolveCamera(event.Device)

	// A BOTH camera can't decide on its own; the payload has to say.
	if cameraType == models.CameraBoth {
		if event.Direction == models.CameraEntry || event.Direction == models.CameraExit {
			cameraType = event.Direction
		} else {
			cameraType = ""
		}
	}

	switch cameraType {
	case models.CameraEntry:
		handleEntryEvent(c, plate, accessID, accessName)
	case models.CameraExit:
		handleExitEvent(c, plate, accessID, accessName)
	default:
		SuccessResponse(c, http.StatusOK, "Evento recibido pero la cámara no está configurada como ENTRY o EXIT", gin.H{
			"plate":  plate,
			"camera": event.Device,
		})
	}
}

func handleEntryEvent(c *gin.Context, plate, accessID, accessName string) {
	log.Printf("[ANPR] Detectado ingreso en %s: %s", accessName, plate)

	result, err := services.ProcessVehicleEntry(plate, accessID)
	if err != nil {
		log.Printf("Failed to process entry for plate %s: %v", plate, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error interno procesando evento LPR", err.Error())
		return
	}

	if result.Allowed {
		SuccessResponse(c, http.StatusOK, fmt.Sprintf("Acceso concedido a Abonado: %s en %s", plate, accessName), result)
		return
	}

	// No automatic match: try to place the visitor on a general spot.
	available, err := services.GetAvailableGeneralSpots(accessID)
	if err != nil {
		log.Printf("Failed to query general spots: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error interno procesando evento LPR", err.Error())
		return
	}
	for _, spot := range available {
		err := services.OccupySpot(spot.ID, plate, models.EntryManual, accessID)
		if errors.Is(err, services.ErrSpotOccupied) {
			continue // taken between query and lock, try the next one
		}
		if err != nil {
			log.Printf("Failed to occupy general spot %d: %v", spot.ID, err)
			ErrorResponse(c, http.StatusInternalServerError, "Error interno procesando evento LPR", err.Error())
			return
		}
		SuccessResponse(c, http.StatusOK, fmt.Sprintf("Acceso concedido a Visita: %s en %s. Sitio %s", plate, accessName, spot.Code), gin.H{
			"spot": spot.Code,
		})
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: false,
		Message: fmt.Sprintf("No hay sitios disponibles en %s para: %s", accessName, plate),
		Data:    result,
	})
}

func handleExitEvent(c *gin.Context, plate, accessID, accessName string) {
	log.Printf("[ANPR] Detectado salida en %s: %s", accessName, plate)

	result, err := services.ProcessVehicleExit(plate, accessID)
	if err != nil {
		log.Printf("Failed to process exit for plate %s: %v", plate, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error interno procesando evento LPR", err.Error())
		return
	}

	c.JSON(http.StatusOK, APIResponse{
		Success: result.Success,
		Message: fmt.Sprintf("%s (Salida por %s)", result.Message, accessName),
		Data:    result,
	})
}

// LPRStatus lets an installer verify the endpoint from a browser.
func LPRStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":               "active",
		"service":              "LPR Integration",
		"integration_endpoint": "/api/v1/webhook/lpr",
	})
}
