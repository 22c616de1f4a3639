package ics

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type FeedDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	URL             string `json:"url"`
	Color           string `json:"color"`
	LastRefreshedAt string `json:"lastRefreshedAt,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) AddFeed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto FeedDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.URL == "" {
		http.Error(w, "feed url is required", http.StatusBadRequest)
		return
	}

	created, err := h.service.AddFeed(r.Context(), Feed{Name: dto.Name, URL: dto.URL, Color: dto.Color})
	if err != nil {
		writeFeedError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(feedToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetFeeds(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	feeds, err := h.service.ListFeeds(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]FeedDTO, 0, len(feeds))
	for _, feed := range feeds {
		dtos = append(dtos, feedToDTO(feed))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateFeed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	feedId := mux.Vars(r)["feedId"]

	var dto FeedDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateFeed(r.Context(), Feed{
		ID:    feedId,
		Name:  dto.Name,
		URL:   dto.URL,
		Color: dto.Color,
	})
	if err != nil {
		writeFeedError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(feedToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) DeleteFeed(w http.ResponseWriter, r *http.Request) {
	feedId := mux.Vars(r)["feedId"]

	if err := h.service.DeleteFeed(r.Context(), feedId); err != nil {
		writeFeedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RefreshFeed(w http.ResponseWriter, r *http.Request) {
	feedId := mux.Vars(r)["feedId"]

	if err := h.service.RefreshFeed(r.Context(), feedId); err != nil {
		writeFeedError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func feedToDTO(feed Feed) FeedDTO {
	dto := FeedDTO{
		ID:    feed.ID,
		Name:  feed.Name,
		URL:   feed.URL,
		Color: feed.Color,
	}
	if feed.LastRefreshedAt != nil {
		dto.LastRefreshedAt = feed.LastRefreshedAt.Format(time.RFC3339)
	}
	return dto
}

func writeFeedError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrFeedNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
