package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/phantomlabs/phantom-backend/api/responses"
	"github.com/phantomlabs/phantom-backend/api/validators"
	"github.com/phantomlabs/phantom-backend/internal/monitors"
	"github.com/phantomlabs/phantom-backend/internal/products"
	"github.com/phantomlabs/phantom-backend/pkg/enums"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
)

// MonitorService is the slice of the monitor manager the HTTP layer drives.
type MonitorService interface {
	Running() bool
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Stats() monitors.ManagerStats
	SetupShopify(stores []monitors.StoreConfig, targetSizes []string, useDefaults bool) error
	AddShopifyStore(store monitors.StoreConfig, targetSizes []string) error
	SetupFootsites(ctx context.Context, siteIDs, keywords, targetSizes []string) error
	EnableAutoTasks(enabled bool, minConfidence float64, minPriority enums.Priority)
	AutoTasks() monitors.AutoTaskConfig
	RecentEvents(limit int) []monitors.Event
	HighPriorityEvents(limit int) []monitors.Event
}

type shopifySetupRequest struct {
	Stores      []monitors.StoreConfig `json:"stores" validate:"dive"`
	TargetSizes []string               `json:"target_sizes"`
	UseDefaults bool                   `json:"use_defaults"`
}

type shopifyAddStoreRequest struct {
	Name        string   `json:"name" validate:"required"`
	URL         string   `json:"url" validate:"required,url"`
	DelayMS     int      `json:"delay_ms"`
	TargetSizes []string `json:"target_sizes"`
}

type footsitesSetupRequest struct {
	Sites       []string `json:"sites"`
	Keywords    []string `json:"keywords"`
	TargetSizes []string `json:"target_sizes"`
}

type autoTasksRequest struct {
	Enabled       bool    `json:"enabled"`
	MinConfidence float64 `json:"min_confidence" validate:"min=0,max=1"`
	MinPriority   string  `json:"min_priority" validate:"required"`
}

type eventDTO struct {
	Type       enums.MonitorEventType `json:"type"`
	Source     enums.MonitorSource    `json:"source"`
	Store      string                 `json:"store"`
	Product    monitors.LiveProduct   `json:"product"`
	Matched    *products.ProductDTO   `json:"matched,omitempty"`
	Confidence float64                `json:"confidence"`
	Timestamp  time.Time              `json:"timestamp"`
}

func toEventDTOs(events []monitors.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, eventDTO{
			Type:       e.Type,
			Source:     e.Source,
			Store:      e.Store,
			Product:    e.Product,
			Matched:    products.FromModel(e.Matched),
			Confidence: e.Confidence,
			Timestamp:  e.Timestamp,
		})
	}
	return out
}

// MonitorsStatus reports per-monitor counters.
func MonitorsStatus(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}
		responses.WriteSuccess(w, mgr.Stats())
	}
}

// MonitorsStart launches all configured monitors.
func MonitorsStart(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}
		if err := mgr.Start(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.Stats())
	}
}

// MonitorsStop halts all running monitors.
func MonitorsStop(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}
		if err := mgr.Stop(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.Stats())
	}
}

// MonitorsShopifySetup replaces the Shopify monitor roster.
func MonitorsShopifySetup(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}

		var body shopifySetupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := mgr.SetupShopify(body.Stores, body.TargetSizes, body.UseDefaults); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.Stats())
	}
}

// MonitorsShopifyAddStore appends a single storefront to the roster.
func MonitorsShopifyAddStore(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}

		var body shopifyAddStoreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := monitors.StoreConfig{Name: body.Name, URL: body.URL, Delay: body.DelayMS}
		if err := mgr.AddShopifyStore(store, body.TargetSizes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, mgr.Stats())
	}
}

// MonitorsFootsitesSetup replaces the footsite monitor roster. Keywords are
// derived from the curated catalog when the payload leaves them empty.
func MonitorsFootsitesSetup(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}

		var body footsitesSetupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := mgr.SetupFootsites(r.Context(), body.Sites, body.Keywords, body.TargetSizes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.Stats())
	}
}

// MonitorsAutoTasks updates the automatic task creation gate.
func MonitorsAutoTasks(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}

		var body autoTasksRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priority, err := enums.ParsePriority(body.MinPriority)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid min priority"))
			return
		}

		mgr.EnableAutoTasks(body.Enabled, body.MinConfidence, priority)
		responses.WriteSuccess(w, mgr.AutoTasks())
	}
}

// MonitorEvents returns recent detections, oldest first.
func MonitorEvents(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toEventDTOs(mgr.RecentEvents(limit)))
	}
}

// MonitorHighPriorityEvents returns recent high-priority detections.
func MonitorHighPriorityEvents(mgr MonitorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "monitor manager unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toEventDTOs(mgr.HighPriorityEvents(limit)))
	}
}
