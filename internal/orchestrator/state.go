package orchestrator

import (
	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/models"
	"crypto-advisor/internal/resilience"
)

// State is the application state shown by every presentation surface.
type State struct {
	Selected      *string                   `json:"selected,omitempty"`
	Assets        map[string]models.Asset   `json:"assets"`
	LoadingData   map[string]bool           `json:"loadingData"`
	LoadingAdvice map[string]bool           `json:"loadingAdvice"`
	Advice        *models.Advice            `json:"advice,omitempty"`
	Alerts        []models.Alert            `json:"alerts"`
	Triggered     []models.Alert            `json:"triggered"`
	Cooldown      resilience.CooldownStatus `json:"cooldown"`
	GlobalError   *apperrors.Error          `json:"globalError,omitempty"`
	Search        SearchState               `json:"search"`
	AIAvailable   bool                      `json:"aiAvailable"`
	View          models.View               `json:"view"`
	Locale        string                    `json:"locale"`
}

// SearchState is the search box and its suggestion list.
type SearchState struct {
	Query          string                `json:"query"`
	DebouncedQuery string                `json:"debouncedQuery"`
	Suggestions    []models.SearchResult `json:"suggestions"`
	Show           bool                  `json:"showSuggestions"`
	Loading        bool                  `json:"loadingSuggestions"`
	Error          *apperrors.Error      `json:"error,omitempty"`
}

func newState() State {
	return State{
		Assets:        make(map[string]models.Asset),
		LoadingData:   make(map[string]bool),
		LoadingAdvice: make(map[string]bool),
		View:          models.ViewMainAnalysis,
	}
}

// SelectedAsset returns the cached snapshot of the selected asset.
func (s State) SelectedAsset() (models.Asset, bool) {
	if s.Selected == nil {
		return models.Asset{}, false
	}
	a, ok := s.Assets[*s.Selected]
	return a, ok
}

// clone returns a copy that shares no mutable memory with s.
func (s State) clone() State {
	cp := s
	if s.Selected != nil {
		id := *s.Selected
		cp.Selected = &id
	}
	cp.Assets = make(map[string]models.Asset, len(s.Assets))
	for id, a := range s.Assets {
		cp.Assets[id] = a.Clone()
	}
	cp.LoadingData = copyFlags(s.LoadingData)
	cp.LoadingAdvice = copyFlags(s.LoadingAdvice)
	if s.Advice != nil {
		adv := *s.Advice
		adv.Asset = s.Advice.Asset.Clone()
		if s.Advice.Detail != nil {
			d := *s.Advice.Detail
			adv.Detail = &d
		}
		cp.Advice = &adv
	}
	cp.Alerts = append([]models.Alert(nil), s.Alerts...)
	cp.Triggered = append([]models.Alert(nil), s.Triggered...)
	cp.Search.Suggestions = append([]models.SearchResult(nil), s.Search.Suggestions...)
	return cp
}

func copyFlags(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		if v {
			out[k] = true
		}
	}
	return out
}
