package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/model"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type API struct {
	root     *mux.Router
	router   *mux.Router
	services *service.Services
	validate *validator.Validate
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAPI собирает роутер; timeout ограничивает каждый запрос к хранилищу
func NewAPI(services *service.Services, timeout time.Duration, logger *zap.Logger) *API {
	root := mux.NewRouter()
	a := &API{
		root:     root,
		router:   root.PathPrefix("/api").Subrouter(),
		services: services,
		validate: validator.New(),
		timeout:  timeout,
		logger:   logger,
	}
	a.router.Use(a.withTimeout)
	return a
}

func (a *API) Router() *mux.Router {
	return a.root
}

// Handler добавляет журнал запросов и восстановление после паники
func (a *API) Handler() http.Handler {
	stdLog := zap.NewStdLog(a.logger.Named("http"))
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(stdLog),
		handlers.PrintRecoveryStack(true),
	)(a.root)
	return handlers.CombinedLoggingHandler(stdLog.Writer(), recovered)
}

func (a *API) withTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.timeout <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:   status,
		Response: data,
	})
	if err != nil {
		a.logger.Error("Failed to encode response", zap.Error(err))
	}
}

var statusByKind = map[model.ErrorKind]int{
	model.KindValidation:        http.StatusBadRequest,
	model.KindNotFound:          http.StatusNotFound,
	model.KindConflict:          http.StatusConflict,
	model.KindInvalidTransition: http.StatusUnprocessableEntity,
	model.KindUnavailable:       http.StatusServiceUnavailable,
}

// Error переводит ошибку движка в HTTP-статус
func (a *API) Error(w http.ResponseWriter, r *http.Request, err error) {
	var e *model.Error
	if !errors.As(err, &e) {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			e = &model.Error{Kind: model.KindUnavailable, Message: "request timed out", Err: err}
		} else {
			a.logger.Error("Unhandled error",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(err),
			)
			a.Response(w, http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal server error"})
			return
		}
	}

	status := statusByKind[e.Kind]
	if e.Kind == model.KindUnavailable {
		a.logger.Warn("Store unavailable", zap.String("path", r.URL.Path), zap.Error(err))
	}
	a.Response(w, status, errorResponse{
		Error:     string(e.Kind),
		Message:   err.Error(),
		Retryable: e.Retryable(),
	})
}
