package cli

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/services"
)

func (a *App) taskMenu() {
	for !a.eof {
		a.printf("")
		a.printf("Tasks")
		a.printf("1) Create task")
		a.printf("2) List project tasks")
		a.printf("3) View task")
		a.printf("4) Edit task")
		a.printf("5) Delete task")
		a.printf("6) Mark task done")
		a.printf("7) My assigned tasks")
		a.printf("8) Export project tasks to CSV")
		a.printf("0) Back")

		switch a.readLine("> ") {
		case "1":
			a.createTask()
		case "2":
			a.listProjectTasks()
		case "3":
			a.viewTask()
		case "4":
			a.editTask()
		case "5":
			a.deleteTask()
		case "6":
			a.markTaskDone()
		case "7":
			a.listMyTasks()
		case "8":
			a.exportTasks()
		case "0":
			return
		default:
			a.printf("Unknown choice")
		}
	}
}

func assigneeNames(task models.Task) string {
	if len(task.Assignments) == 0 {
		return "-"
	}
	names := make([]string, 0, len(task.Assignments))
	for _, assignment := range task.Assignments {
		names = append(names, assignment.User.Username)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func dueDateLabel(task models.Task) string {
	if task.DueDate == nil {
		return "-"
	}
	return *task.DueDate
}

func (a *App) printTaskLine(task models.Task) {
	a.printf("#%d  %s  [%s/%s]  due: %s  assignees: %s",
		task.ID, task.Title, task.Status, task.Priority, dueDateLabel(task), assigneeNames(task))
}

func (a *App) createTask() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	input := services.CreateTaskInput{
		ProjectID:   projectID,
		CreatorID:   a.currentUser.ID,
		Title:       a.readLine("Title: "),
		Description: a.readLine("Description (optional): "),
	}
	if status := a.readLine("Status (todo/in-progress/done, blank for todo): "); status != "" {
		input.Status = models.TaskStatus(status)
	}
	if priority := a.readLine("Priority (low/medium/high, blank for medium): "); priority != "" {
		input.Priority = models.TaskPriority(priority)
	}
	input.DueDate = a.readOptional("Due date YYYY-MM-DD (blank for none): ")

	assigneeIDs, err := parseIDList(a.readLine("Assignee ids, comma separated (blank for none): "))
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	input.AssigneeIDs = assigneeIDs

	task, err := a.tasks.CreateTask(input)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Created task #%d %q.", task.ID, task.Title)
}

func (a *App) listProjectTasks() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	var filter services.TaskListFilter
	if status := a.readOptional("Filter by status (blank for all): "); status != nil {
		taskStatus := models.TaskStatus(*status)
		filter.Status = &taskStatus
	}
	if priority := a.readOptional("Filter by priority (blank for all): "); priority != nil {
		taskPriority := models.TaskPriority(*priority)
		filter.Priority = &taskPriority
	}
	if value := a.readLine("Filter by assignee id (blank for all): "); value != "" {
		assigneeID, err := parseID(value)
		if err != nil {
			a.printf("Invalid id %q", value)
			return
		}
		filter.AssigneeID = &assigneeID
	}
	filter.DueFrom = a.readOptional("Due on or after YYYY-MM-DD (blank for none): ")
	filter.DueTo = a.readOptional("Due on or before YYYY-MM-DD (blank for none): ")

	tasks, err := a.tasks.ListTasks(projectID, a.currentUser.ID, filter)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(tasks) == 0 {
		a.printf("No tasks found.")
		return
	}
	for _, task := range tasks {
		a.printTaskLine(task)
	}
}

func (a *App) viewTask() {
	taskID, ok := a.readID("Task id: ")
	if !ok {
		return
	}

	task, err := a.tasks.GetTask(taskID, a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}

	a.printf("Task #%d", task.ID)
	a.printf("  Title:     %s", task.Title)
	a.printf("  Project:   %s", task.Project.Name)
	a.printf("  Status:    %s", task.Status)
	a.printf("  Priority:  %s", task.Priority)
	a.printf("  Due:       %s", dueDateLabel(*task))
	a.printf("  Creator:   %s", task.Creator.Username)
	a.printf("  Assignees: %s", assigneeNames(*task))
	if task.Description != "" {
		a.printf("  Description: %s", task.Description)
	}
	a.printf("  Created:   %s", task.CreatedAt.Format(time.RFC3339))
}

func (a *App) editTask() {
	taskID, ok := a.readID("Task id: ")
	if !ok {
		return
	}

	input := services.UpdateTaskInput{
		Title:       a.readOptional("New title (blank to keep): "),
		Description: a.readOptional("New description (blank to keep): "),
	}
	if status := a.readOptional("New status (blank to keep): "); status != nil {
		taskStatus := models.TaskStatus(*status)
		input.Status = &taskStatus
	}
	if priority := a.readOptional("New priority (blank to keep): "); priority != nil {
		taskPriority := models.TaskPriority(*priority)
		input.Priority = &taskPriority
	}
	switch due := a.readLine("New due date YYYY-MM-DD ('-' to clear, blank to keep): "); due {
	case "":
	case "-":
		input.ClearDueDate = true
	default:
		input.DueDate = &due
	}
	switch value := a.readLine("New assignee ids, comma separated ('-' to clear all, blank to keep): "); value {
	case "":
	case "-":
		empty := []uint64{}
		input.AssigneeIDs = &empty
	default:
		assigneeIDs, err := parseIDList(value)
		if err != nil {
			a.printf("Error: %v", err)
			return
		}
		input.AssigneeIDs = &assigneeIDs
	}

	task, err := a.tasks.UpdateTask(taskID, a.currentUser.ID, input)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Updated task #%d.", task.ID)
}

func (a *App) deleteTask() {
	taskID, ok := a.readID("Task id: ")
	if !ok {
		return
	}
	if a.readLine("Type yes to delete: ") != "yes" {
		a.printf("Cancelled.")
		return
	}

	if err := a.tasks.DeleteTask(taskID, a.currentUser.ID); err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Task deleted.")
}

func (a *App) markTaskDone() {
	taskID, ok := a.readID("Task id: ")
	if !ok {
		return
	}

	task, err := a.tasks.MarkDone(taskID, a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Task #%d %q marked done.", task.ID, task.Title)
}

func (a *App) listMyTasks() {
	var status *models.TaskStatus
	if value := a.readOptional("Filter by status (blank for all): "); value != nil {
		taskStatus := models.TaskStatus(*value)
		status = &taskStatus
	}

	tasks, err := a.tasks.ListAssignedTasks(a.currentUser.ID, status)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(tasks) == 0 {
		a.printf("Nothing assigned to you.")
		return
	}
	for _, task := range tasks {
		a.printf("#%d  %s  (%s)  [%s/%s]  due: %s",
			task.ID, task.Title, task.Project.Name, task.Status, task.Priority, dueDateLabel(task))
	}
}

func (a *App) exportTasks() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	csvData, err := a.tasks.ExportCSV(projectID, a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}

	path := a.readLine("Output file (blank for tasks.csv): ")
	if path == "" {
		path = "tasks.csv"
	}
	if err := os.WriteFile(path, []byte(csvData), 0o644); err != nil {
		a.printf("Error: could not write %s: %v", path, err)
		return
	}
	a.printf("Wrote %d bytes to %s.", len(csvData), path)
}
