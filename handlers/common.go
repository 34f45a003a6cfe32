package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/umakantv/go-utils/httpserver"
	logger "github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"github.com/lagat24/greentrace/models"
)

// logRequest logs the request with the specified format.
// Shared package-level helper reusing httpserver context utils for
// route/auth details and structured logging.
func logRequest(ctx context.Context, level string, message string, fields ...zap.Field) {
	routeName := httpserver.GetRouteName(ctx)
	method := httpserver.GetRouteMethod(ctx)
	path := httpserver.GetRoutePath(ctx)
	auth := httpserver.GetRequestAuth(ctx)

	// Build log message
	logMsg := time.Now().Format("2006-01-02 15:04:05") + " - " + routeName + " - " + method + " - " + path
	if auth != nil {
		logMsg += " - client:" + auth.Client
	}
	if message != "" {
		logMsg += " - " + message
	}

	// Add custom fields
	allFields := append([]zap.Field{
		zap.String("route", routeName),
		zap.String("method", method),
		zap.String("path", path),
	}, fields...)

	switch level {
	case "info":
		logger.Info(logMsg, allFields...)
	case "error":
		logger.Error(logMsg, allFields...)
	case "debug":
		logger.Debug(logMsg, allFields...)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError writes the standard error body.
func writeError(w http.ResponseWriter, status int, message, field string) {
	writeJSON(w, status, models.ErrorResponse{Error: message, Field: field})
}

// currentUserID extracts the authenticated user id stashed in the request
// auth claims by the server's checkAuth callback.
func currentUserID(ctx context.Context) (int, bool) {
	auth := httpserver.GetRequestAuth(ctx)
	if auth == nil {
		return 0, false
	}
	claims, ok := auth.Claims.(map[string]interface{})
	if !ok {
		return 0, false
	}
	id, ok := claims["user_id"].(int)
	return id, ok
}
