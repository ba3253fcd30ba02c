package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/highcommand/highcommand/internal/dto"
	apperrors "github.com/highcommand/highcommand/internal/errors"
	"github.com/highcommand/highcommand/internal/middleware"
	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/services"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a task in a project. Members only.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Status      string   `json:"status"`
		Priority    string   `json:"priority"`
		DueDate     *string  `json:"due_date"`
		AssigneeIDs []uint64 `json:"assignee_ids"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		ProjectID:   projectID,
		CreatorID:   userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListTasks returns a project's tasks with optional filters. Members only.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	filter, ok := parseTaskListFilter(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(projectID, userID, filter)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
	})
}

// GetTask returns a task with its assignees. Members of the task's project
// only.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates the supplied task fields. Task creator or project
// owner only.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title        *string   `json:"title"`
		Description  *string   `json:"description"`
		Status       *string   `json:"status"`
		Priority     *string   `json:"priority"`
		DueDate      *string   `json:"due_date"`
		ClearDueDate bool      `json:"clear_due_date"`
		AssigneeIDs  *[]uint64 `json:"assignee_ids"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		AssigneeIDs:  req.AssigneeIDs,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task. Task creator or project owner only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// CompleteTask marks a task done. Open to the creator, the project owner
// and assignees.
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseIDParam(c, "task_id")
	if !ok {
		return
	}

	task, err := h.taskService.MarkDone(taskID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ListMyTasks returns tasks assigned to the current user across projects.
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	var status *models.TaskStatus
	if value := c.Query("status"); value != "" {
		s := models.TaskStatus(value)
		status = &s
	}

	tasks, err := h.taskService.ListAssignedTasks(userID, status)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDTOs(tasks),
	})
}

// ExportTasks streams the project's tasks as a CSV attachment. Members only.
func (h *TaskHandler) ExportTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, ok := parseIDParam(c, "project_id")
	if !ok {
		return
	}

	csvData, err := h.taskService.ExportCSV(projectID, userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	filename := fmt.Sprintf("project_%d_tasks.csv", projectID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csvData))
}

// parseTaskListFilter reads the optional task list query parameters,
// responding 400 on a malformed assignee_id.
func parseTaskListFilter(c *gin.Context) (services.TaskListFilter, bool) {
	var filter services.TaskListFilter

	if value := c.Query("status"); value != "" {
		status := models.TaskStatus(value)
		filter.Status = &status
	}
	if value := c.Query("priority"); value != "" {
		priority := models.TaskPriority(value)
		filter.Priority = &priority
	}
	if value := c.Query("assignee_id"); value != "" {
		assigneeID, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			apperrors.BadRequest(c, "Invalid assignee_id")
			return filter, false
		}
		filter.AssigneeID = &assigneeID
	}
	if value := c.Query("due_from"); value != "" {
		dueFrom := value
		filter.DueFrom = &dueFrom
	}
	if value := c.Query("due_to"); value != "" {
		dueTo := value
		filter.DueTo = &dueTo
	}

	return filter, true
}
