package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-structured-data/internal/auth"
	"github.com/fekuna/omnipos-structured-data/internal/logger"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata/dto"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const contentTypeJSONLD = "application/ld+json; charset=utf-8"

type HTTPHandler struct {
	uc              structureddata.UseCase
	defaultCurrency string
	logger          logger.ZapLogger
}

func NewHTTPHandler(uc structureddata.UseCase, defaultCurrency string, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{
		uc:              uc,
		defaultCurrency: defaultCurrency,
		logger:          log.With(zap.String("transport", "http")),
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/products/{productID}/jsonld", h.ProductJSONLD)
		r.Get("/categories/{categoryID}/jsonld", h.CategoryJSONLD)
		r.Get("/search/jsonld", h.SearchJSONLD)
	})
	return r
}

func (h *HTTPHandler) ProductJSONLD(w http.ResponseWriter, r *http.Request) {
	merchantID := r.Header.Get(auth.MerchantIDHeader)
	if merchantID == "" {
		h.writeError(w, r, errMissingMerchant)
		return
	}

	q := r.URL.Query()
	currency := q.Get("currency")
	if currency == "" {
		currency = h.defaultCurrency
	}

	doc, err := h.uc.ProductDocument(r.Context(), &dto.ProductDocumentInput{
		MerchantID: merchantID,
		ProductID:  chi.URLParam(r, "productID"),
		Currency:   currency,
		StoreID:    optionalString(q.Get("store_id")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDocument(w, doc)
}

func (h *HTTPHandler) CategoryJSONLD(w http.ResponseWriter, r *http.Request) {
	merchantID := r.Header.Get(auth.MerchantIDHeader)
	if merchantID == "" {
		h.writeError(w, r, errMissingMerchant)
		return
	}

	q := r.URL.Query()
	doc, err := h.uc.CategoryDocument(r.Context(), &dto.CategoryDocumentInput{
		MerchantID: merchantID,
		CategoryID: chi.URLParam(r, "categoryID"),
		StoreID:    optionalString(q.Get("store_id")),
		Page:       queryInt(q.Get("page")),
		PageSize:   queryInt(q.Get("page_size")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDocument(w, doc)
}

func (h *HTTPHandler) SearchJSONLD(w http.ResponseWriter, r *http.Request) {
	merchantID := r.Header.Get(auth.MerchantIDHeader)
	if merchantID == "" {
		h.writeError(w, r, errMissingMerchant)
		return
	}

	q := r.URL.Query()
	doc, err := h.uc.SearchDocument(r.Context(), &dto.SearchDocumentInput{
		MerchantID: merchantID,
		Query:      q.Get("q"),
		StoreID:    optionalString(q.Get("store_id")),
		Page:       queryInt(q.Get("page")),
		PageSize:   queryInt(q.Get("page_size")),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeDocument(w, doc)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	c := classify(err)
	requestID := middleware.GetReqID(r.Context())
	if c.httpStatus >= http.StatusInternalServerError || c.httpStatus == http.StatusUnprocessableEntity {
		h.logger.Error("json-ld request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(c.httpStatus)
	_ = json.NewEncoder(w).Encode(errorBody{Error: errorDetail{
		Code:      c.code,
		Message:   c.message,
		Fields:    c.fields,
		RequestID: requestID,
	}})
}

func writeDocument(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", contentTypeJSONLD)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
