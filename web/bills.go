package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/robinvdvleuten/billtext/ast"
	"github.com/robinvdvleuten/billtext/errors"
	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/loader"
	"github.com/robinvdvleuten/billtext/logger"
	"github.com/robinvdvleuten/billtext/report"
	"github.com/robinvdvleuten/billtext/telemetry"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

type VersionResponse struct {
	Version   string `json:"version"`
	CommitSHA string `json:"commit_sha"`
}

// DocumentSummary is the listing view of one dated section.
type DocumentSummary struct {
	Date         string `json:"date"`
	Remark       string `json:"remark"`
	Transactions int    `json:"transactions"`
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Balance      string `json:"balance"`
}

type BillSummary struct {
	Name      string            `json:"name"`
	Documents []DocumentSummary `json:"documents"`
	Errors    int               `json:"errors"`
	Warnings  int               `json:"warnings"`
	Failure   *errors.ErrorJSON `json:"failure,omitempty"`
}

type BillsResponse struct {
	Bills []BillSummary `json:"bills"`
}

// BillResponse is a processed bill: its JSON projection and diagnostics, or
// the hard failure that prevented processing.
type BillResponse struct {
	Name        string              `json:"name"`
	Source      string              `json:"source"`
	Valid       bool                `json:"valid"`
	Documents   []ledger.Projection `json:"documents"`
	Diagnostics []errors.ErrorJSON  `json:"diagnostics"`
	Failure     *errors.ErrorJSON   `json:"failure,omitempty"`
	Timing      []telemetry.Span    `json:"timing,omitempty"`
}

func summarize(name string, f *loader.File) BillSummary {
	summary := BillSummary{Name: name, Documents: []DocumentSummary{}}
	if f.Err != nil {
		failure := errors.NewJSONFormatter().ToJSON(f.Err)
		summary.Failure = &failure
		return summary
	}

	summary.Errors = len(f.Result.Diagnostics.Errors())
	summary.Warnings = len(f.Result.Diagnostics.Warnings())
	for _, doc := range f.Result.Documents {
		summary.Documents = append(summary.Documents, summarizeDocument(doc))
	}
	return summary
}

func summarizeDocument(doc *ast.Document) DocumentSummary {
	return DocumentSummary{
		Date:         doc.Date,
		Remark:       doc.Remark,
		Transactions: doc.TransactionCount(),
		TotalIncome:  doc.TotalIncome.StringFixed(2),
		TotalExpense: doc.TotalExpense.StringFixed(2),
		Balance:      doc.Balance.StringFixed(2),
	}
}

func billResponse(name string, source []byte, result *ledger.Result, err error) *BillResponse {
	jf := errors.NewJSONFormatter()
	response := &BillResponse{
		Name:        name,
		Source:      string(source),
		Documents:   []ledger.Projection{},
		Diagnostics: []errors.ErrorJSON{},
	}
	if err != nil {
		failure := jf.ToJSON(err)
		response.Failure = &failure
		return response
	}

	response.Valid = !result.HasErrors()
	response.Documents = ledger.ProjectAll(result.Documents)
	response.Diagnostics = jf.FormatAllToSlice(errors.Diagnostics(result.Diagnostics))
	return response
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, &VersionResponse{Version: s.Version, CommitSHA: s.CommitSHA})
}

// handleListBills handles GET requests to /api/bills.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	response := &BillsResponse{Bills: make([]BillSummary, 0, len(s.names))}
	for _, name := range s.names {
		response.Bills = append(response.Bills, summarize(name, s.files[name]))
	}
	s.mu.RUnlock()

	writeJSONResponse(w, http.StatusOK, response)
}

// handleGetBill handles GET requests to /api/bills/{name...}.
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, ok := s.lookup(name)
	if !ok {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}

	writeJSONResponse(w, http.StatusOK, billResponse(name, f.Source, f.Result, f.Err))
}

// handleGetReport handles GET requests to /api/reports/{name...}?format=.
// The format defaults to markdown.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, ok := s.lookup(name)
	if !ok {
		http.Error(w, "Bill not found", http.StatusNotFound)
		return
	}
	if f.Err != nil {
		http.Error(w, f.Err.Error(), http.StatusUnprocessableEntity)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "markdown"
	}
	renderer, err := report.Lookup(format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, f.Result.Documents); err != nil {
		s.log.Error().Err(err).Str("bill", name).Str("format", format).Msg("failed to render report")
		http.Error(w, "Failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleValidate handles POST requests to /api/validate. The bill is
// processed in memory and never written to disk. Stage timings are returned
// with the result.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Filename string `json:"filename"`
		Source   string `json:"source"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.Filename == "" {
		request.Filename = "<request>"
	}

	collector := telemetry.NewTimingCollector()
	timer := collector.Start("validate " + request.Filename)
	ctx := telemetry.WithCollector(logger.WithContext(r.Context(), s.log), collector)
	ctx = telemetry.WithRootTimer(ctx, timer)

	var result *ledger.Result
	f, err := s.loader.LoadBytes(ctx, request.Filename, []byte(request.Source))
	if err == nil {
		result = f.Result
	}
	timer.End()

	response := billResponse(request.Filename, []byte(request.Source), result, err)
	response.Timing = collector.Spans()

	status := http.StatusOK
	if err != nil {
		s.log.Debug().Err(err).Str("file", request.Filename).Msg("bill rejected")
		status = http.StatusUnprocessableEntity
	}
	writeJSONResponse(w, status, response)
}
