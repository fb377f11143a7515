package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/property-intel/internal/activity"
	"github.com/sells-group/property-intel/internal/export"
	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/geo"
	"github.com/sells-group/property-intel/internal/model"
)

type searchResponse struct {
	Total   int                `json:"total"`
	Offset  int                `json:"offset"`
	Limit   int                `json:"limit"`
	Sort    filter.SortKey     `json:"sort"`
	Results []model.Property   `json:"results"`
	Facets  filter.FacetCounts `json:"facets"`
}

type mapResponse struct {
	Count    int                        `json:"count"`
	Bounds   *geo.BBox                  `json:"bounds"`
	Viewport *viewport                  `json:"viewport,omitempty"`
	Features *geojson.FeatureCollection `json:"features"`
}

// viewport is the padded frame a map client fits to.
type viewport struct {
	BBox   geo.BBox   `json:"bbox"`
	Center [2]float64 `json:"center"`
}

const viewportPadding = 0.1

// searchRequest reads predicate and sort parameters from r.
func (s *Server) searchRequest(r *http.Request) (filter.Predicate, filter.SortKey, error) {
	q := r.URL.Query()
	pred, err := filter.ParseValues(q)
	if err != nil {
		return filter.Predicate{}, "", err
	}
	key := s.opts.DefaultSort
	if raw := q.Get("sort"); raw != "" {
		if key, err = filter.ParseSortKey(raw); err != nil {
			return filter.Predicate{}, "", err
		}
	}
	return pred, key, nil
}

func (s *Server) page(r *http.Request) (offset, limit int, err error) {
	if offset, err = queryInt(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit", s.opts.PageSize); err != nil {
		return 0, 0, err
	}
	if limit == 0 || limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}
	return offset, limit, nil
}

func (s *Server) respondSearch(w http.ResponseWriter, r *http.Request, pred filter.Predicate, key filter.SortKey) {
	offset, limit, err := s.page(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	all := s.source.GetAll()
	results := filter.Search(all, pred, key)
	writeJSON(w, http.StatusOK, searchResponse{
		Total:   len(results),
		Offset:  offset,
		Limit:   limit,
		Sort:    key,
		Results: filter.Paginate(results, offset, limit),
		Facets:  filter.Facets(all, pred),
	})
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	pred, key, err := s.searchRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.respondSearch(w, r, pred, key)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := s.source.GetByID(id)
	if !ok {
		writeError(w, r, &model.NotFoundError{Entity: "property", ID: id})
		return
	}
	s.record(r, model.ActionViewedProperty, "Viewed property details for "+p.Street)
	writeJSON(w, http.StatusOK, p)
}

// handleMap serves the marker layer. An optional bbox restricts markers to
// the viewport; bounds always describe the returned markers.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	pred, key, err := s.searchRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var box *geo.BBox
	if raw := r.URL.Query().Get("bbox"); raw != "" {
		b, err := geo.ParseBBox(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		box = &b
	}

	ck := newMapKey(pred, key, box)
	if s.mapCache != nil {
		if layer, ok := s.mapCache.get(ck); ok {
			w.Header().Set("X-Cache", "HIT")
			writeRaw(w, layer.body)
			return
		}
		w.Header().Set("X-Cache", "MISS")
	}

	results := filter.Search(s.source.GetAll(), pred, key)
	if box != nil {
		results = geo.Within(results, *box)
	}
	resp := mapResponse{Count: len(results), Features: geo.FeatureCollection(results)}
	if b, ok := geo.Bounds(results); ok {
		resp.Bounds = &b
		padded := b.Pad(viewportPadding)
		lat, lng := padded.Center()
		resp.Viewport = &viewport{BBox: padded, Center: [2]float64{lat, lng}}
	}
	data, err := json.Marshal(resp)
	if err != nil {
		writeError(w, r, eris.Wrap(err, "api: encode map"))
		return
	}
	if s.mapCache != nil {
		s.mapCache.put(ck, data, resp.Count)
	}
	writeRaw(w, data)
}

func (s *Server) handleExport(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := export.ParseFormat(format)
		if err != nil {
			writeError(w, r, err)
			return
		}
		pred, key, err := s.searchRequest(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		results := filter.Search(s.source.GetAll(), pred, key)

		var buf bytes.Buffer
		if err := export.Write(&buf, f, results); err != nil {
			writeError(w, r, err)
			return
		}

		s.record(r, model.ActionExportedData, fmt.Sprintf("Exported %d properties as %s", len(results), f))

		w.Header().Set("Content-Type", contentType(f))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="properties.%s"`, f))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func contentType(f export.Format) string {
	if f == export.FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// record appends to the audit trail. Failures are logged, never returned.
func (s *Server) record(r *http.Request, action, details string) {
	if s.log == nil {
		return
	}
	e := activity.NewEntry(s.userOf(r), action, details, s.opts.Now())
	e.IP = clientAddr(r)
	if err := s.recorder.RecordActivity(r.Context(), e); err != nil {
		zap.L().Warn("api: record activity failed",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
