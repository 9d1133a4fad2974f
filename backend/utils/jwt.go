package utils

import (
	"errors"
	"strings"
	"time"

	"philosofium/backend/config"
	"philosofium/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID uint
	Role   models.Role
}

func GenerateJWTToken(userID uint, role models.Role, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(cfg.JWTTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func ParseJWTToken(tokenString string, cfg *config.Config) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return nil, errors.New("invalid user ID in token")
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = string(models.RoleStudent)
	}

	return &Claims{UserID: uint(userIDFloat), Role: models.Role(role)}, nil
}

// ExtractClaimsFromToken reads the Authorization header, with or without the Bearer prefix.
func ExtractClaimsFromToken(c *fiber.Ctx, cfg *config.Config) (*Claims, error) {
	tokenString := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}
	if tokenString == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}

	claims, err := ParseJWTToken(tokenString, cfg)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return claims, nil
}
