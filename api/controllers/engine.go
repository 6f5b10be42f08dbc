package controllers

import (
	"context"
	"net/http"

	"github.com/phantomlabs/phantom-backend/api/responses"
	"github.com/phantomlabs/phantom-backend/internal/engine"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
)

// EngineService is the slice of the engine the HTTP layer drives.
type EngineService interface {
	Status() engine.Status
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Status reports the engine and monitor aggregate.
func Status(eng EngineService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engine unavailable"))
			return
		}
		responses.WriteSuccess(w, eng.Status())
	}
}

// EngineStart transitions the engine to running.
func EngineStart(eng EngineService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engine unavailable"))
			return
		}
		if err := eng.Start(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eng.Status())
	}
}

// EngineStop halts the engine and its monitors.
func EngineStop(eng EngineService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if eng == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engine unavailable"))
			return
		}
		if err := eng.Stop(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, eng.Status())
	}
}
