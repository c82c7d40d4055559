// Package web serves the search form and renders merged results as an HTML table.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"realestate-compare/models"
	"realestate-compare/services"
	"realestate-compare/utils"
)

// Collector runs one search end to end.
type Collector interface {
	Run(ctx context.Context, req services.SearchRequest) (*services.CollectResult, error)
}

// Defaults pre-fill the search form and fill in omitted fields.
type Defaults struct {
	Location    string
	Destination string
	Mode        models.TravelMode
	MaxListings int
}

// displayColumns are shown in this order when present in the merged table.
var displayColumns = []struct {
	column, header string
	money          bool
}{
	{models.ColAddress, "Address", false},
	{models.ColPrice, "Price", true},
	{models.ColBedrooms, "Bedrooms", false},
	{models.ColBathrooms, "Bathrooms", false},
	{models.ColYearBuilt, "Year Built", false},
	{models.ColSquareFeet, "Square Feet", false},
	{models.ColPropertyTax, "Property Tax", true},
	{models.ColNeighborhood, "Neighborhood", false},
	{models.ColCommuteTimeText, "Commute Time", false},
	{models.ColDistanceText, "Distance", false},
}

// Server is the HTTP front end.
type Server struct {
	collector Collector
	defaults  Defaults
	logger    *utils.Logger
	tmpl      *template.Template
	printer   *message.Printer
	router    *mux.Router
}

// NewServer wires routes for GET / and POST /results.
func NewServer(collector Collector, defaults Defaults, logger *utils.Logger) *Server {
	if defaults.MaxListings <= 0 {
		defaults.MaxListings = 50
	}
	if !defaults.Mode.Valid() {
		defaults.Mode = models.ModeDriving
	}

	s := &Server{
		collector: collector,
		defaults:  defaults,
		logger:    logger,
		tmpl:      parseTemplates(),
		printer:   message.NewPrinter(language.English),
		router:    mux.NewRouter(),
	}
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/results", s.handleResults).Methods(http.MethodPost)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[web] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("[web] Shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.Info("[web] %s %s → %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

type indexData struct {
	Location    string
	Destination string
	Mode        models.TravelMode
	Modes       []models.TravelMode
	MaxListings int
	Rooms       []int
	Error       string
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "index", s.indexData(""))
}

func (s *Server) indexData(errMsg string) indexData {
	return indexData{
		Location:    s.defaults.Location,
		Destination: s.defaults.Destination,
		Mode:        s.defaults.Mode,
		Modes:       models.TravelModes,
		MaxListings: s.defaults.MaxListings,
		Rooms:       []int{1, 2, 3, 4, 5},
		Error:       errMsg,
	}
}

type resultsData struct {
	Count        int
	MaxPrice     string
	MinBedrooms  string
	MinBathrooms string
	Destination  string
	Mode         models.TravelMode
	Sample       bool
	Headers      []string
	Rows         [][]string
	Error        string
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "index", s.indexData("could not read the form"))
		return
	}
	req, err := s.searchRequest(r)
	if err != nil {
		s.render(w, http.StatusBadRequest, "index", s.indexData(err.Error()))
		return
	}

	data := resultsData{
		MaxPrice:     orAny(r.PostFormValue("price_max")),
		MinBedrooms:  orAny(r.PostFormValue("bedrooms")),
		MinBathrooms: orAny(r.PostFormValue("bathrooms")),
		Destination:  req.Destination,
		Mode:         req.Mode,
	}

	res, err := s.collector.Run(r.Context(), req)
	if err != nil {
		s.logger.Error("[web] Search failed: %v", err)
		data.Error = err.Error()
		s.render(w, http.StatusInternalServerError, "results", data)
		return
	}

	data.Sample = res.UsedSample
	data.Headers, data.Rows = s.tableRows(res.Report)
	data.Count = len(data.Rows)
	s.render(w, http.StatusOK, "results", data)
}

// searchRequest reads the form, falling back to defaults for omitted fields.
// "any" and blank room counts mean no minimum.
func (s *Server) searchRequest(r *http.Request) (services.SearchRequest, error) {
	req := services.SearchRequest{
		Location:    formString(r, "search_location", s.defaults.Location),
		Destination: formString(r, "commute_destination", s.defaults.Destination),
		Mode:        s.defaults.Mode,
	}

	var err error
	if req.MaxListings, err = formInt(r, "max_listings", s.defaults.MaxListings); err != nil {
		return req, err
	}
	if req.PriceMin, err = formInt(r, "price_min", 0); err != nil {
		return req, err
	}
	if req.PriceMax, err = formInt(r, "price_max", 0); err != nil {
		return req, err
	}
	if req.MinBedrooms, err = formInt(r, "bedrooms", 0); err != nil {
		return req, err
	}
	if req.MinBaths, err = formInt(r, "bathrooms", 0); err != nil {
		return req, err
	}
	if req.PriceMax > 0 && req.PriceMin > req.PriceMax {
		return req, eris.New("minimum price is above maximum price")
	}

	if raw := strings.TrimSpace(r.PostFormValue("commute_mode")); raw != "" {
		mode, err := models.ParseTravelMode(raw)
		if err != nil {
			return req, eris.Errorf("unknown commute mode %q", raw)
		}
		req.Mode = mode
	}
	return req, nil
}

func (s *Server) tableRows(report *models.Table[models.Merged]) ([]string, [][]string) {
	var headers []string
	var cols []int
	for i, dc := range displayColumns {
		if report.HasColumn(dc.column) {
			headers = append(headers, dc.header)
			cols = append(cols, i)
		}
	}
	if report.Empty() || len(cols) == 0 {
		return headers, nil
	}

	rows := make([][]string, 0, report.Len())
	for _, m := range report.Rows {
		row := make([]string, 0, len(cols))
		for _, i := range cols {
			dc := displayColumns[i]
			v := m.Field(dc.column)
			if dc.money {
				v = s.money(v)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func (s *Server) money(cell string) string {
	n := models.ParseNullInt(cell)
	if !n.Valid {
		return models.NotAvailable
	}
	return s.printer.Sprintf("$%d", n.Int)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("[web] Render %s: %v", name, err)
	}
}

func formString(r *http.Request, key, fallback string) string {
	if v := strings.TrimSpace(r.PostFormValue(key)); v != "" {
		return v
	}
	return fallback
}

func formInt(r *http.Request, key string, fallback int) (int, error) {
	v := strings.TrimSpace(r.PostFormValue(key))
	if v == "" || strings.EqualFold(v, "any") {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, eris.Errorf("invalid value for %s: %q", key, v)
	}
	return n, nil
}

func orAny(v string) string {
	if strings.TrimSpace(v) == "" {
		return "any"
	}
	return v
}
