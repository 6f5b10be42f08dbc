package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phantomlabs/phantom-backend/api/responses"
	"github.com/phantomlabs/phantom-backend/api/validators"
	"github.com/phantomlabs/phantom-backend/internal/products"
	pkgerrors "github.com/phantomlabs/phantom-backend/pkg/errors"
	"github.com/phantomlabs/phantom-backend/pkg/logger"
)

type createProductRequest struct {
	Name             string          `json:"name" validate:"required"`
	Brand            string          `json:"brand" validate:"required"`
	SKU              *string         `json:"sku"`
	StyleCode        *string         `json:"style_code"`
	Keywords         []string        `json:"keywords" validate:"required,min=1"`
	NegativeKeywords []string        `json:"negative_keywords"`
	OptimizedSearch  string          `json:"optimized_search"`
	RetailPrice      decimal.Decimal `json:"retail_price"`
	ResalePrice      decimal.Decimal `json:"resale_price"`
	Priority         string          `json:"priority"`
}

// ProductsList returns a page of the curated catalog.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), products.ListParams{
			Limit:    limit,
			Cursor:   r.URL.Query().Get("cursor"),
			Priority: r.URL.Query().Get("priority"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"items":  products.FromModels(result.Items),
			"cursor": result.Cursor,
		})
	}
}

// ProductsCreate adds a curated product to the catalog.
func ProductsCreate(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), products.CreateParams{
			Name:             body.Name,
			Brand:            body.Brand,
			SKU:              body.SKU,
			StyleCode:        body.StyleCode,
			Keywords:         body.Keywords,
			NegativeKeywords: body.NegativeKeywords,
			OptimizedSearch:  body.OptimizedSearch,
			RetailPrice:      body.RetailPrice,
			ResalePrice:      body.ResalePrice,
			Priority:         body.Priority,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, products.FromModel(created))
	}
}

// ProductsDelete removes a curated product by id.
func ProductsDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id.String()})
	}
}

// ProductsHighPriority returns the must-cop subset of the catalog.
func ProductsHighPriority(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		items, err := svc.HighPriority(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products.FromModels(items))
	}
}

// ProductsProfitable returns enabled products above the profit floor.
func ProductsProfitable(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		minProfit, err := validators.ParseQueryDecimal(r, "minProfit")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Profitable(r.Context(), minProfit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products.FromModels(items))
	}
}

// ProductsImport ingests a keyword export file posted as the request body.
func ProductsImport(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		imported, err := svc.Import(r.Context(), r.Body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"imported": imported})
	}
}
