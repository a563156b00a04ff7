package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/services"
)

// GetPricing returns the visitor price per minute.
func GetPricing(c *gin.Context) {
	price, err := services.GetPricePerMinute()
	if err != nil {
		log.Printf("Failed to read price: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando la tarifa", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", gin.H{"price_per_minute": price})
}

type PricingInput struct {
	PricePerMinute int `json:"price_per_minute" binding:"gte=0"`
}

func UpdatePricing(c *gin.Context) {
	var input PricingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}
	if err := services.SetPricePerMinute(input.PricePerMinute); err != nil {
		log.Printf("Failed to set price: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error actualizando la tarifa", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Tarifa actualizada", gin.H{"price_per_minute": input.PricePerMinute})
}

// GetCharging reports whether visitor stays are billed.
func GetCharging(c *gin.Context) {
	enabled, err := services.IsChargingEnabled()
	if err != nil {
		log.Printf("Failed to read charging flag: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando el cobro", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", gin.H{"charging_enabled": enabled})
}

type ChargingInput struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func UpdateCharging(c *gin.Context) {
	var input ChargingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}
	if err := services.SetChargingEnabled(*input.Enabled); err != nil {
		log.Printf("Failed to set charging flag: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error actualizando el cobro", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Cobro actualizado", gin.H{"charging_enabled": *input.Enabled})
}

// GetBranding returns the branding settings with defaults applied.
func GetBranding(c *gin.Context) {
	branding, err := services.GetBranding()
	if err != nil {
		log.Printf("Failed to read branding: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando la marca", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", branding)
}

func UpdateBranding(c *gin.Context) {
	var input services.Branding
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}
	if err := services.UpdateBranding(input); err != nil {
		log.Printf("Failed to update branding: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error actualizando la marca", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Marca actualizada", nil)
}

// GetTrialStatus returns the remaining days of the install trial.
func GetTrialStatus(c *gin.Context) {
	status, err := services.GetTrialStatus()
	if err != nil {
		log.Printf("Failed to read trial status: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando el periodo de prueba", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", status)
}
