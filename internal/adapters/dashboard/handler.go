// Package dashboard exposes widget evaluation, layer management, and report
// exports over HTTP.
package dashboard

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"corridorcore/internal/core"
	"corridorcore/pkg/domain"
)

// Handler provides HTTP access to widgets, layers, and report exports.
type Handler struct {
	Service *core.Service
	Reports ReportScheduler
	Tracer  core.Tracer
}

// NewHandler constructs a dashboard HTTP handler.
func NewHandler(service *core.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		writeError(w, http.StatusInternalServerError, "dashboard service not configured")
		return
	}

	if h.Tracer != nil {
		_, span := h.Tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End(nil)
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/api/v1/widgets":
		h.handleListWidgets(w, r)
	case strings.HasPrefix(path, "/api/v1/widgets/"):
		h.handleWidget(w, r, strings.TrimPrefix(path, "/api/v1/widgets/"))
	case r.Method == http.MethodGet && path == "/api/v1/layers":
		h.handleListLayers(w, r)
	case strings.HasPrefix(path, "/api/v1/layers/"):
		h.handleLayer(w, r, strings.TrimPrefix(path, "/api/v1/layers/"))
	case strings.HasPrefix(path, "/api/v1/reports"):
		if h.Reports == nil {
			http.NotFound(w, r)
			return
		}
		h.handleReports(w, r, path)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleListWidgets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"widgets": h.Service.Widgets()})
}

type evaluateRequest struct {
	Selection []domain.Feature `json:"selection"`
}

type evaluateResponse struct {
	Widget core.StatDefinition `json:"widget"`
	Value  core.WidgetValue    `json:"value"`
}

func (h *Handler) handleWidget(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	id := segments[0]
	def, ok := h.Service.Widget(id)
	if !ok {
		writeError(w, http.StatusNotFound, "widget not found")
		return
	}

	if len(segments) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"widget": def})
		return
	}

	if len(segments) != 2 || segments[1] != "value" {
		writeError(w, http.StatusNotFound, "widget endpoint not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid evaluation request payload")
		return
	}

	value, err := h.Service.EvaluateWidget(r.Context(), id, req.Selection)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Widget: def, Value: value})
}

type layerSummary struct {
	Name             string `json:"name"`
	KeyField         string `json:"key_field,omitempty"`
	FingerprintField string `json:"fingerprint_field,omitempty"`
	Features         int    `json:"features"`
}

func (h *Handler) handleListLayers(w http.ResponseWriter, _ *http.Request) {
	layers := h.Service.ListLayers()
	summaries := make([]layerSummary, 0, len(layers))
	for _, layer := range layers {
		summaries = append(summaries, layerSummary{
			Name:             layer.Name,
			KeyField:         layer.KeyField,
			FingerprintField: layer.FingerprintField,
			Features:         len(layer.Features),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"layers": summaries})
}

func (h *Handler) handleLayer(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	name := segments[0]
	if name == "" {
		http.NotFound(w, r)
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			layer, err := h.Service.Layer(name)
			if err != nil {
				writeError(w, http.StatusNotFound, "layer not found")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"layer": layer})
		case http.MethodPut:
			h.handlePutLayer(w, r, name)
		case http.MethodDelete:
			if _, err := h.Service.DeleteLayer(r.Context(), name); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if len(segments) != 2 || segments[1] != "export" {
		writeError(w, http.StatusNotFound, "layer endpoint not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	layer, err := h.Service.Layer(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "layer not found")
		return
	}
	switch negotiateFormat(r) {
	case "csv":
		streamLayerCSV(w, layer)
	case "json":
		writeJSON(w, http.StatusOK, map[string]any{"layer": layer})
	default:
		writeError(w, http.StatusNotAcceptable, "requested format not supported")
	}
}

func (h *Handler) handlePutLayer(w http.ResponseWriter, r *http.Request, name string) {
	var layer domain.Layer
	if err := json.NewDecoder(r.Body).Decode(&layer); err != nil {
		writeError(w, http.StatusBadRequest, "invalid layer payload")
		return
	}
	layer.Name = name
	res, err := h.Service.PutLayer(r.Context(), layer)
	if err != nil {
		var violation domain.RuleViolationError
		if errors.As(err, &violation) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      violation.Error(),
				"violations": violation.Result.Violations,
			})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"layer":      layerSummary{Name: layer.Name, KeyField: layer.KeyField, FingerprintField: layer.FingerprintField, Features: len(layer.Features)},
		"violations": res.Violations,
	})
}

func (h *Handler) handleReports(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/reports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleReportCreate(w, r)
		return
	}

	if !strings.HasPrefix(path, "/api/v1/reports/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(path, "/api/v1/reports/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	record, ok := h.Reports.GetReport(id)
	if !ok {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": record})
}

type reportRequest struct {
	Formats     []string `json:"formats"`
	RequestedBy string   `json:"requested_by"`
	Reason      string   `json:"reason"`
}

func (h *Handler) handleReportCreate(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid report request payload")
		return
	}

	formats := make([]ReportFormat, 0, len(req.Formats))
	for _, f := range req.Formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "json":
			formats = append(formats, FormatJSON)
		case "csv":
			formats = append(formats, FormatCSV)
		default:
			writeError(w, http.StatusBadRequest, "unsupported report format")
			return
		}
	}

	record, err := h.Reports.EnqueueReport(r.Context(), ReportInput{
		Formats:     formats,
		RequestedBy: req.RequestedBy,
		Reason:      req.Reason,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"report": record})
}

func negotiateFormat(r *http.Request) string {
	wanted := strings.ToLower(r.URL.Query().Get("format"))
	if wanted == "" {
		if strings.Contains(r.Header.Get("Accept"), "text/csv") {
			return "csv"
		}
		return "json"
	}
	switch wanted {
	case "csv", "json":
		return wanted
	}
	return ""
}

func streamLayerCSV(w http.ResponseWriter, layer domain.Layer) {
	filename := fmt.Sprintf("%s-%s.csv", layer.Name, time.Now().UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	columns := layerColumns(layer)
	if err := writer.Write(columns); err != nil {
		return
	}
	for _, feature := range layer.Features {
		record := make([]string, len(columns))
		for i, column := range columns {
			record[i] = formatValue(feature.Value(column))
		}
		if err := writer.Write(record); err != nil {
			return
		}
	}
}

// layerColumns returns the union of feature fields in a stable order, key
// field first when set.
func layerColumns(layer domain.Layer) []string {
	seen := make(map[string]struct{})
	columns := make([]string, 0)
	for _, feature := range layer.Features {
		for field := range feature {
			if _, ok := seen[field]; !ok {
				seen[field] = struct{}{}
				columns = append(columns, field)
			}
		}
	}
	sort.Strings(columns)
	if layer.KeyField != "" {
		for i, column := range columns {
			if column == layer.KeyField {
				copy(columns[1:i+1], columns[:i])
				columns[0] = column
				break
			}
		}
	}
	return columns
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	case float32:
		return fmt.Sprintf("%g", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprint(v)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
