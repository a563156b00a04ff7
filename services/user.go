package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUser      = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// LoginResult carries the authenticated user and its session token.
type LoginResult struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// LoginUser validates the credentials and issues a signed session token.
func LoginUser(username, password string) (*LoginResult, error) {
	var user models.User
	err := database.DB.Preload("Access").Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user %s: %w", username, err)
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	accessID := ""
	if user.AccessID != nil {
		accessID = *user.AccessID
	}
	token, err := utils.GenerateToken(user.ID, user.Role, accessID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("User %s logged in successfully (role: %s)", user.Username, user.Role)
	return &LoginResult{Token: token, User: user.ToResponse()}, nil
}

// GetUsers lists all accounts with their gate names.
func GetUsers() ([]models.UserResponse, error) {
	var users []models.User
	if err := database.DB.Preload("Access").Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	responses := make([]models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

// CreateUser hashes the password and inserts the account. Duplicate
// username/email is an expected failure, not a store error.
func CreateUser(user *models.User) error {
	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed

	if user.Role == "" {
		user.Role = models.RoleOperator
	}

	if err := database.DB.Create(user).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrDuplicateUser
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}

	log.Printf("Created user %s (role: %s)", user.Username, user.Role)
	return nil
}

// DeleteUser removes an account by id.
func DeleteUser(userID string) error {
	result := database.DB.Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	log.Printf("Deleted user %s", userID)
	return nil
}

// EnsureAdminExists creates the default SUPER_ADMIN account when no
// SUPER_ADMIN is present yet.
func EnsureAdminExists() {
	var admin models.User
	if err := database.DB.Where("role = ?", models.RoleSuperAdmin).First(&admin).Error; err == nil {
		log.Printf("Super admin already exists: username=%s", admin.Username)
		return
	}

	admin = models.User{
		Username: "admin",
		Password: "admin",
		Role:     models.RoleSuperAdmin,
	}
	if err := CreateUser(&admin); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return
		}
		log.Fatalf("Failed to create default super admin: %v", err)
	}
	log.Printf("Default super admin created: username=%s (change the password)", admin.Username)
}

// UpgradePlaintextPasswords hashes any password that is still stored in the
// clear, for databases migrated from the old dashboard.
func UpgradePlaintextPasswords() {
	var users []models.User
	if err := database.DB.Find(&users).Error; err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}

	for _, user := range users {
		if len(user.Password) == 60 && strings.HasPrefix(user.Password, "$2a$") {
			continue
		}
		log.Printf("Found plaintext password for user %s, upgrading...", user.Username)
		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			log.Printf("Failed to hash password for user %s: %v", user.Username, err)
			continue
		}
		if err := database.DB.Model(&user).Update("password", hashed).Error; err != nil {
			log.Printf("Failed to update password for user %s: %v", user.Username, err)
			continue
		}
		log.Printf("Upgraded password for user %s", user.Username)
	}
}
