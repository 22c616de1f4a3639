package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type ProjectDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ParentID     string `json:"parentId,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
	IsCollapsed  bool   `json:"isCollapsed"`
	IsDefault    bool   `json:"isDefault"`
}

type ProjectHandler struct {
	service ProjectService
}

func NewProjectHandler(service ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.Name == "" {
		http.Error(w, "project name is required", http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), dto.Name, dto.ParentID)
	if err != nil {
		writeProjectError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(projectToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	projects, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]ProjectDTO, 0, len(projects))
	for _, project := range projects {
		dtos = append(dtos, projectToDTO(project))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	projectId := mux.Vars(r)["projectId"]

	var dto ProjectDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), Project{
		ID:          projectId,
		Name:        dto.Name,
		ParentID:    dto.ParentID,
		IsCollapsed: dto.IsCollapsed,
	})
	if err != nil {
		writeProjectError(w, err)
		return
	}
	if err := json.NewEncoder(w).Encode(projectToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *ProjectHandler) SetProjectPosition(w http.ResponseWriter, r *http.Request) {
	projectId := mux.Vars(r)["projectId"]
	position, err := strconv.Atoi(r.URL.Query().Get("position"))
	if err != nil {
		http.Error(w, "invalid 'position' query parameter", http.StatusBadRequest)
		return
	}

	if err := h.service.SetPosition(r.Context(), projectId, position); err != nil {
		writeProjectError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) SetDefaultProject(w http.ResponseWriter, r *http.Request) {
	projectId := mux.Vars(r)["projectId"]

	if err := h.service.SetDefault(r.Context(), projectId); err != nil {
		writeProjectError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectId := mux.Vars(r)["projectId"]

	if err := h.service.Delete(r.Context(), projectId); err != nil {
		writeProjectError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func projectToDTO(project Project) ProjectDTO {
	return ProjectDTO{
		ID:           project.ID,
		Name:         project.Name,
		ParentID:     project.ParentID,
		DisplayOrder: project.DisplayOrder,
		IsCollapsed:  project.IsCollapsed,
		IsDefault:    project.IsDefault,
	}
}

func writeProjectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrProjectNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDefaultProject):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrProjectCycle):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
