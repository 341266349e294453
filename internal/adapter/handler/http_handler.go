package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rl1809/aid-distribution/internal/core/service"
	"github.com/rl1809/aid-distribution/internal/port"
)

type HTTPHandler struct {
	svc *service.DistributionService
}

func NewHTTPHandler(svc *service.DistributionService) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Register wires all routes onto the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/api/distribution/distribute", h.Distribute)
	mux.HandleFunc("/api/distribution/check-eligibility", h.CheckEligibility)
	mux.HandleFunc("/api/distribution/logs", h.GetLogs)
	mux.HandleFunc("/api/inventory/restock", h.Restock)
}

type distributeHTTPRequest struct {
	RequestID   string `json:"request_id,omitempty"`
	CenterID    int64  `json:"center_id"`
	PackageID   int64  `json:"package_id"`
	HouseholdID int64  `json:"household_id"`
	Quantity    int    `json:"quantity"`
}

type distributeHTTPResponse struct {
	Result        string `json:"result"`
	Message       string `json:"message"`
	LogID         string `json:"log_id,omitempty"`
	DaysSinceLast *int   `json:"days_since_last,omitempty"`
}

func (h *HTTPHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req distributeHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, distributeHTTPResponse{
			Result:  "error",
			Message: "invalid request body",
		})
		return
	}

	if req.CenterID == 0 || req.PackageID == 0 || req.HouseholdID == 0 {
		writeJSON(w, http.StatusBadRequest, distributeHTTPResponse{
			Result:  "error",
			Message: "center_id, package_id and household_id are required",
		})
		return
	}

	res, err := h.svc.Distribute(r.Context(), service.DistributeRequest{
		RequestID:   req.RequestID,
		CenterID:    req.CenterID,
		PackageID:   req.PackageID,
		HouseholdID: req.HouseholdID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRequest) {
			writeJSON(w, http.StatusConflict, distributeHTTPResponse{
				Result:  "error",
				Message: "duplicate request",
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, distributeHTTPResponse{
			Result:  "error",
			Message: "internal error",
		})
		return
	}

	writeJSON(w, statusForOutcome(res.Kind), distributeHTTPResponse{
		Result:        string(res.Kind),
		Message:       res.Message,
		LogID:         res.LogID,
		DaysSinceLast: res.DaysSinceLast,
	})
}

func statusForOutcome(kind service.OutcomeKind) int {
	switch kind {
	case service.OutcomeSuccess:
		return http.StatusOK
	case service.OutcomeIneligible:
		return http.StatusConflict
	case service.OutcomeInsufficientStock:
		return http.StatusGone
	case service.OutcomeNotFound:
		return http.StatusNotFound
	case service.OutcomeConcurrencyTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type eligibilityHTTPRequest struct {
	CenterID    int64 `json:"center_id"`
	PackageID   int64 `json:"package_id"`
	HouseholdID int64 `json:"household_id"`
}

type eligibilityHTTPResponse struct {
	Eligible      bool   `json:"eligible"`
	Message       string `json:"message"`
	DaysSinceLast *int   `json:"days_since_last"`
}

func (h *HTTPHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req eligibilityHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}

	res, err := h.svc.CheckEligibility(r.Context(), req.CenterID, req.PackageID, req.HouseholdID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, eligibilityHTTPResponse{
		Eligible:      res.Eligible,
		Message:       res.Message,
		DaysSinceLast: res.DaysSinceLast,
	})
}

type restockHTTPRequest struct {
	CenterID  int64 `json:"center_id"`
	PackageID int64 `json:"package_id"`
	Quantity  int   `json:"quantity"`
}

type restockHTTPResponse struct {
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
}

func (h *HTTPHandler) Restock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req restockHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, restockHTTPResponse{Message: "invalid request body"})
		return
	}

	if req.Quantity <= 0 {
		writeJSON(w, http.StatusBadRequest, restockHTTPResponse{Message: "quantity must be positive"})
		return
	}

	quantity, err := h.svc.Restock(r.Context(), req.CenterID, req.PackageID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrUnknownReference) {
			writeJSON(w, http.StatusNotFound, restockHTTPResponse{Message: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, restockHTTPResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, restockHTTPResponse{
		Message:  "restocked successfully",
		Quantity: quantity,
	})
}

type logEntryHTTPResponse struct {
	LogID            string `json:"log_id"`
	HouseholdID      int64  `json:"household_id"`
	PackageID        int64  `json:"package_id"`
	CenterID         int64  `json:"center_id"`
	Quantity         int    `json:"quantity"`
	DistributionDate string `json:"distribution_date"`
	Status           string `json:"status"`
}

func (h *HTTPHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filter := port.LogFilter{
		HouseholdID: queryInt64(r, "household_id"),
		PackageID:   queryInt64(r, "package_id"),
		CenterID:    queryInt64(r, "center_id"),
	}
	limit := int(queryInt64(r, "limit"))

	entries, err := h.svc.GetLogs(r.Context(), filter, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	logs := make([]logEntryHTTPResponse, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, logEntryHTTPResponse{
			LogID:            e.LogID,
			HouseholdID:      e.HouseholdID,
			PackageID:        e.PackageID,
			CenterID:         e.CenterID,
			Quantity:         e.Quantity,
			DistributionDate: e.DistributionDate.Format("2006-01-02T15:04:05Z07:00"),
			Status:           string(e.Status),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":  logs,
		"total": len(logs),
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt64(r *http.Request, name string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return v
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
