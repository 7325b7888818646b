package handlers

import "net/http"

type AnalyticsHandler struct {
	AnalyticsService AnalyticsService
}

func NewAnalyticsHandler(analyticsService AnalyticsService) AnalyticsHandler {
	return AnalyticsHandler{
		AnalyticsService: analyticsService,
	}
}

func (s *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := s.AnalyticsService.Dashboard(r.Context(), owner)
	if err != nil {
		handleError(w, r, err, "dashboard")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("summary", summary))
}

func (s *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	trends, err := s.AnalyticsService.Trends(r.Context(), owner)
	if err != nil {
		handleError(w, r, err, "trends")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("trends", trends))
}
