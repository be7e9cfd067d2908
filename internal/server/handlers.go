package server

import (
	"net/http"
	"strconv"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/experts"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/orchestrator"
)

// stateResponse is the state plus its user-facing strings rendered in the
// active language.
type stateResponse struct {
	State    orchestrator.State `json:"state"`
	Messages map[string]string  `json:"messages"`
}

func (s *Server) renderState(st orchestrator.State) stateResponse {
	msgs := make(map[string]string)
	if st.GlobalError != nil {
		msgs["globalError"] = s.loc.Error(st.GlobalError)
	}
	if st.Search.Error != nil {
		msgs["searchError"] = s.loc.Error(st.Search.Error)
	}
	if st.Advice != nil {
		msgs["advice"] = s.loc.Text(st.Advice.Message)
		if st.Advice.Detail != nil {
			msgs["adviceDetail"] = s.loc.Text(*st.Advice.Detail)
		}
	}
	if st.Cooldown.Active {
		msgs["cooldown"] = s.loc.T("app.rateLimitCooldownDisplayPrefix", nil) + " " +
			strconv.Itoa(st.Cooldown.RemainingSeconds) + s.loc.T("app.rateLimitCooldownDisplaySuffix", nil)
	}
	return stateResponse{State: st, Messages: msgs}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.renderState(s.orch.State()))
}

type searchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.orch.SetQuery(req.Query)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSearchFocus(w http.ResponseWriter, r *http.Request) {
	s.orch.FocusSearch()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchDismiss(w http.ResponseWriter, r *http.Request) {
	s.orch.DismissSuggestions()
	w.WriteHeader(http.StatusNoContent)
}

type selectRequest struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	err := s.orch.SelectAsset(r.Context(), models.SearchResult{ID: req.ID, Name: req.Name, Symbol: req.Symbol})
	if err != nil && !apperrors.Is(err, apperrors.ErrPartialData) {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.renderState(s.orch.State()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.orch.State().SelectedAsset()
	if !ok {
		s.writeError(w, r, apperrors.NewValidationError("selection", "errors.noSelection"))
		return
	}
	snap, err := s.orch.RefreshAsset(r.Context(), asset.ID, asset.Symbol, asset.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

type adviceResponse struct {
	Advice  models.Advice `json:"advice"`
	Message string        `json:"message"`
	Detail  string        `json:"detail,omitempty"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	asset, ok := s.orch.State().SelectedAsset()
	if !ok {
		s.writeError(w, r, apperrors.NewValidationError("selection", "errors.noSelection"))
		return
	}
	adv := s.orch.RequestAdvice(r.Context(), asset, true)
	resp := adviceResponse{Advice: adv, Message: s.loc.Text(adv.Message)}
	if adv.Detail != nil {
		resp.Detail = s.loc.Text(*adv.Detail)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type alertRequest struct {
	TargetPrice float64               `json:"targetPrice"`
	Condition   models.AlertCondition `json:"condition" validate:"oneof=PRICE_DROPS_TO PRICE_RISES_TO"`
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	alert, err := s.orch.AddAlert(r.Context(), req.TargetPrice, req.Condition)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	removed, err := s.orch.RemoveAlert(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !removed {
		s.writeError(w, r, apperrors.New(apperrors.KindNotFound, "errors.notFound", nil))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDismissTriggered(w http.ResponseWriter, r *http.Request) {
	s.orch.DismissTriggered(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleClearError dismisses the global error banner.
func (s *Server) handleClearError(w http.ResponseWriter, r *http.Request) {
	s.orch.ClearGlobalError()
	w.WriteHeader(http.StatusNoContent)
}

type viewRequest struct {
	View models.View `json:"view" validate:"required"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.orch.SetView(req.View); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type languageRequest struct {
	Locale string `json:"locale" validate:"required"`
}

func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.orch.SetLanguage(r.Context(), req.Locale); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type socialRequest struct {
	Query string   `json:"query" validate:"required"`
	URLs  []string `json:"urls"`
}

type socialResponse struct {
	Report      orchestrator.SocialReport `json:"report"`
	Summary     string                    `json:"summary"`
	Narratives  []string                  `json:"narratives"`
	FetchErrors []string                  `json:"fetchErrors,omitempty"`
}

func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	var req socialRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.orch.AnalyzeSocial(r.Context(), req.Query, req.URLs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := socialResponse{
		Report:     report,
		Summary:    s.loc.Text(report.Analysis.Summary),
		Narratives: make([]string, 0, len(report.Analysis.Narratives)),
	}
	for _, n := range report.Analysis.Narratives {
		resp.Narratives = append(resp.Narratives, s.loc.Text(n))
	}
	for _, fe := range report.FetchErrors {
		resp.FetchErrors = append(resp.FetchErrors, s.loc.Error(fe))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type expertResponse struct {
	models.ExpertTrader
	Description string `json:"description"`
	ProfileURL  string `json:"profileUrl"`
}

func (s *Server) handleExperts(w http.ResponseWriter, r *http.Request) {
	list := experts.List()
	out := make([]expertResponse, 0, len(list))
	for _, e := range list {
		out = append(out, expertResponse{
			ExpertTrader: e,
			Description:  s.loc.T(e.DescriptionKey, nil),
			ProfileURL:   e.ProfileURL(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeError(w, r, apperrors.NewValidationError("key", "errors.invalidInput"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"key": key, "text": s.loc.T(key, nil)})
}
