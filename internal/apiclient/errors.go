package apiclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

const msgNoBaseURL = "API_BASE_URL no está configurada. Configura API_BASE_URL en tu archivo .env"

// Error is a request the backend rejected: HTTP errors carry the status,
// network-level failures leave it at zero.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// DecodeError marks a 2xx response whose body does not match any of the
// shapes the backend is known to produce. The caller gets a typed error
// instead of a half-guessed record.
type DecodeError struct {
	What string
}

func (e *DecodeError) Error() string {
	return "La respuesta del servidor tiene un formato inesperado: " + e.What
}

// classifyNetworkError maps a transport failure onto the connection/CORS
// message taxonomy the screens display.
func (c *Client) classifyNetworkError(err error) *Error {
	msg := err.Error()
	if strings.Contains(msg, "CORS") || strings.Contains(msg, "Access-Control") {
		return &Error{Message: "Error de CORS: El servidor no permite peticiones desde este origen. Verifica la configuración CORS del servidor."}
	}
	return &Error{Message: fmt.Sprintf(`Error de conexión: No se pudo conectar al servidor %s. Verifica que:
- La URL sea correcta
- El servidor esté disponible
- No haya problemas de CORS
- El certificado SSL sea válido`, c.baseURL)}
}

// extractErrorMessage pulls a human-readable message out of the error
// payload. The backend answers with a plain string, an object keyed by
// message/error/detail/title/msg, or an array of either; arrays are
// joined with commas.
func extractErrorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("Error %d", status)

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return trimmed
	}

	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case []any:
		if msg := joinErrorList(t); msg != "" {
			return msg
		}
	case map[string]any:
		if arr, ok := t["detail"].([]any); ok {
			if msg := joinErrorList(arr); msg != "" {
				return msg
			}
		}
		if arr, ok := t["error"].([]any); ok {
			if msg := joinErrorList(arr); msg != "" {
				return msg
			}
		}
		for _, key := range []string{"message", "error", "detail", "title", "msg"} {
			if s, ok := t[key].(string); ok && s != "" {
				return s
			}
		}
	}

	return fallback
}

func joinErrorList(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch e := item.(type) {
		case string:
			parts = append(parts, e)
		case map[string]any:
			found := ""
			for _, key := range []string{"msg", "message", "error", "detail"} {
				if s, ok := e[key].(string); ok && s != "" {
					found = s
					break
				}
			}
			if found == "" {
				if data, err := json.Marshal(e); err == nil {
					found = string(data)
				}
			}
			parts = append(parts, found)
		default:
			parts = append(parts, fmt.Sprint(e))
		}
	}
	return strings.Join(parts, ", ")
}
