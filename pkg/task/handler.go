package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type TaskDTO struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	Position  int    `json:"position"`
	ProjectID string `json:"projectId,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto TaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Content == "" {
		http.Error(w, "task content is required", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dto.Content, dto.ProjectID)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(taskToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	tasks, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		dtos = append(dtos, taskToDTO(task))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	taskId := mux.Vars(r)["taskId"]

	var dto TaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), Task{
		ID:        taskId,
		Content:   dto.Content,
		Completed: dto.Completed,
		ProjectID: dto.ProjectID,
	})
	if err != nil {
		writeTaskError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(taskToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) SetTaskPosition(w http.ResponseWriter, r *http.Request) {
	taskId := mux.Vars(r)["taskId"]
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil {
		http.Error(w, "invalid 'position' query parameter", http.StatusBadRequest)
		return
	}

	if err := h.service.SetPosition(r.Context(), taskId, position); err != nil {
		writeTaskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskId := mux.Vars(r)["taskId"]

	if err := h.service.Delete(r.Context(), taskId); err != nil {
		writeTaskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskToDTO(task Task) TaskDTO {
	return TaskDTO{
		ID:        task.ID,
		Content:   task.Content,
		Completed: task.Completed,
		Position:  task.Position,
		ProjectID: task.ProjectID,
	}
}

func writeTaskError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrTaskNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
