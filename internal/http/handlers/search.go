package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"selambus/internal/domain/models"
	"selambus/internal/http/middleware"
	"selambus/internal/search"
)

func (h *Handler) form(c *gin.Context) search.Form {
	return search.Form{Scope: h.scope(c), Clock: h.Clock, RequestID: middleware.GetRequestID(c)}
}

// GET /api/cities?q=
func Cities(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"cities": search.Cities})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": search.Suggest(q)})
}

// POST /api/search
func (h *Handler) SubmitSearch(c *gin.Context) {
	var req models.SearchCriteria
	if !BindJSONOrError(c, &req) {
		return
	}
	saved, err := h.form(c).Submit(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	// new criteria invalidate the previous results page
	h.results.drop(middleware.GetClientID(c))
	c.JSON(http.StatusOK, gin.H{"search": saved})
}

// GET /api/search
func (h *Handler) GetSearch(c *gin.Context) {
	crit, ok := h.form(c).Criteria(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"search": crit, "found": ok})
}

func (h *Handler) engine(c *gin.Context) (*search.Engine, error) {
	cid := middleware.GetClientID(c)
	if e, ok := h.results.peek(cid); ok {
		return e, nil
	}
	crit, _ := h.form(c).Criteria(c.Request.Context())
	e, err := search.Load(c.Request.Context(), h.Listings, crit)
	if err != nil {
		return nil, err
	}
	if !middleware.IsAnonymousClient(c) {
		h.results.put(cid, e)
	}
	return e, nil
}

type resultsResponse struct {
	Count   int                 `json:"count"`
	Results []models.BusListing `json:"results"`
	HasMore bool                `json:"hasMore"`
	Filters search.Filters      `json:"filters"`
	Sort    search.SortKey      `json:"sort"`
}

func resultsView(e *search.Engine) resultsResponse {
	return resultsResponse{
		Count:   e.Count(),
		Results: e.Visible(),
		HasMore: e.HasMore(),
		Filters: e.Filters(),
		Sort:    e.SortKey(),
	}
}

// GET /api/results
func (h *Handler) GetResults(c *gin.Context) {
	if c.Query("refresh") == "1" {
		h.results.drop(middleware.GetClientID(c))
	}
	e, err := h.engine(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resultsView(e))
}

// POST /api/results/filters
func (h *Handler) ApplyFilters(c *gin.Context) {
	f := search.DefaultFilters()
	if !BindJSONOrError(c, &f) {
		return
	}
	e, err := h.engine(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	e.ApplyFilters(f)
	c.JSON(http.StatusOK, resultsView(e))
}

// DELETE /api/results/filters
func (h *Handler) ClearFilters(c *gin.Context) {
	e, err := h.engine(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	e.ClearFilters()
	c.JSON(http.StatusOK, resultsView(e))
}

type sortRequest struct {
	Sort search.SortKey `json:"sort"`
}

// PUT /api/results/sort
func (h *Handler) SortResults(c *gin.Context) {
	var req sortRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	e, err := h.engine(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	e.Sort(req.Sort)
	c.JSON(http.StatusOK, resultsView(e))
}

// POST /api/results/more
func (h *Handler) LoadMore(c *gin.Context) {
	e, err := h.engine(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	added := e.LoadMore()
	if added == nil {
		added = []models.BusListing{}
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "hasMore": e.HasMore(), "count": e.Count()})
}

// POST /api/results/:id/select
func (h *Handler) SelectBus(c *gin.Context) {
	e, err := h.engine(c)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	bus, err := e.SelectBus(c.Request.Context(), h.scope(c), middleware.GetRequestID(c), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	// a new bus starts a new seat selection
	h.seats.drop(middleware.GetClientID(c))
	c.JSON(http.StatusOK, gin.H{"selectedBus": bus})
}
