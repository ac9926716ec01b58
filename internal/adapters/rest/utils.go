package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// parseInt: пустой параметр - def, мусор - ошибка с именем параметра
func parseInt(query url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", key)
	}
	return v, nil
}

func parseBool(query url.Values, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: must be a boolean", key)
	}
	return v, nil
}

// parseEnum приводит значение к верхнему регистру, "non-ac" и "non_ac" считаются одним и тем же
func parseEnum(query url.Values, key, def string) string {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return def
	}
	return strings.ReplaceAll(strings.ToUpper(raw), "-", "_")
}
