package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/services"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login validates credentials and returns a session token.
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}

	result, err := services.LoginUser(input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			ErrorResponse(c, http.StatusUnauthorized, "Usuario o contraseña incorrectos", "")
			return
		}
		log.Printf("Failed to log in user %s: %v", input.Username, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error iniciando sesión", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Sesión iniciada", result)
}

// GetUsers lists all dashboard accounts.
func GetUsers(c *gin.Context) {
	users, err := services.GetUsers()
	if err != nil {
		log.Printf("Failed to fetch users: %v", err)
		ErrorResponse(c, http.StatusInternalServerError, "Error consultando usuarios", err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Consulta exitosa", users)
}

type CreateUserInput struct {
	Username string  `json:"username" binding:"required,max=50"`
	Password string  `json:"password" binding:"required,min=4"`
	Email    *string `json:"email" binding:"omitempty,email"`
	AccessID *string `json:"access_id"`
	Role     string  `json:"role" binding:"omitempty,oneof=SUPER_ADMIN ADMIN OPERATOR"`
}

// CreateUser registers a new dashboard account.
func CreateUser(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Datos de entrada inválidos", err.Error())
		return
	}

	user := models.User{
		Username: input.Username,
		Password: input.Password,
		Email:    input.Email,
		AccessID: input.AccessID,
		Role:     input.Role,
	}
	if err := services.CreateUser(&user); err != nil {
		if errors.Is(err, services.ErrDuplicateUser) {
			ErrorResponse(c, http.StatusConflict, "Error al crear el usuario. Probablemente el nombre o email ya existen.", "")
			return
		}
		log.Printf("Failed to create user %s: %v", input.Username, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error creando el usuario", err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Usuario creado", user.ToResponse())
}

// DeleteUser removes a dashboard account.
func DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	err := services.DeleteUser(userID)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		ErrorResponse(c, http.StatusNotFound, "El usuario no existe", "")
	case err != nil:
		log.Printf("Failed to delete user %s: %v", userID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Error al eliminar el usuario.", err.Error())
	default:
		SuccessResponse(c, http.StatusOK, "Usuario eliminado", nil)
	}
}
