package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Freeeeeet/guide_scheduler/internal/calendar"
	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// decode читает JSON-тело и проверяет теги validate
func (a *API) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewValidationError("invalid request body")
	}
	if err := a.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return model.NewValidationError("%s", strings.Join(fields, ", "))
		}
		return model.NewValidationError("%v", err)
	}
	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("invalid %s %q", name, raw)
	}
	return id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewValidationError("invalid %s %q", name, raw)
	}
	return id, nil
}

func parseDate(name, raw string) (calendar.Date, error) {
	if raw == "" {
		return calendar.Date{}, model.NewValidationError("%s is required", name)
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return calendar.Date{}, model.NewValidationError("invalid %s %q, want YYYY-MM-DD", name, raw)
	}
	return d, nil
}

func queryDate(r *http.Request, name string) (calendar.Date, error) {
	return parseDate(name, r.URL.Query().Get(name))
}

// queryInt возвращает def, если параметр не задан
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError("invalid %s %q", name, raw)
	}
	return v, nil
}

func parseTime(name, raw string) (calendar.LocalTime, error) {
	t, err := calendar.ParseTime(raw)
	if err != nil {
		return 0, model.NewValidationError("invalid %s %q, want HH:MM", name, raw)
	}
	return t, nil
}

// parseOptionalTime nil для пустого значения
func parseOptionalTime(name string, raw *string) (*calendar.LocalTime, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseTime(name, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
