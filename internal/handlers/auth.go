package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/edutrial/thpt-score-service/internal/config"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "user_id"
	userNameKey = "user_name"

	// DevUserHeader names the caller when authentication is disabled
	DevUserHeader = "X-User-ID"
	devUserID     = "local-dev"
)

var errMissingToken = errors.New("missing bearer token")

// Principal is the authenticated caller
type Principal struct {
	UserID       string
	Name         string
	Organization string
}

// TokenVerifier turns a bearer token into a Principal
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

type casdoorVerifier struct {
	client *casdoorsdk.Client
}

// NewCasdoorVerifier verifies tokens issued by the configured Casdoor application
func NewCasdoorVerifier(cfg config.AuthConfig) TokenVerifier {
	return &casdoorVerifier{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.OrganizationName,
			cfg.ApplicationName,
		),
	}
}

func (v *casdoorVerifier) Verify(token string) (*Principal, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, err
	}

	userID := claims.User.Id
	if userID == "" {
		userID = claims.User.Owner + "/" + claims.User.Name
	}
	return &Principal{
		UserID:       userID,
		Name:         claims.User.DisplayName,
		Organization: claims.User.Owner,
	}, nil
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var principal *Principal
			if principal, err = verifier.Verify(token); err == nil {
				c.Set(userIDKey, principal.UserID)
				c.Set(userNameKey, principal.Name)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
			Details: err.Error(),
		})
	}
}

// DevAuthMiddleware trusts the X-User-ID header; for local use with auth disabled
func DevAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(DevUserHeader))
		if userID == "" {
			userID = devUserID
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}
