package cli

import (
	"time"

	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/services"
)

func (a *App) projectMenu() {
	for !a.eof {
		a.printf("")
		a.printf("Projects")
		a.printf(" 1) Create project")
		a.printf(" 2) Browse all projects")
		a.printf(" 3) My projects")
		a.printf(" 4) Search projects")
		a.printf(" 5) View project")
		a.printf(" 6) Edit project")
		a.printf(" 7) Change project status")
		a.printf(" 8) Delete project")
		a.printf(" 9) Request to join")
		a.printf("10) Review join requests")
		a.printf("11) List members")
		a.printf("12) Add member")
		a.printf("13) Remove member")
		a.printf(" 0) Back")

		switch a.readLine("> ") {
		case "1":
			a.createProject()
		case "2":
			a.listProjects("")
		case "3":
			a.listMyProjects()
		case "4":
			a.listProjects(a.readLine("Search term: "))
		case "5":
			a.viewProject()
		case "6":
			a.editProject()
		case "7":
			a.changeProjectStatus()
		case "8":
			a.deleteProject()
		case "9":
			a.requestToJoin()
		case "10":
			a.reviewJoinRequests()
		case "11":
			a.listMembers()
		case "12":
			a.addMember()
		case "13":
			a.removeMember()
		case "0":
			return
		default:
			a.printf("Unknown choice")
		}
	}
}

func (a *App) printProjectLine(project models.Project) {
	a.printf("#%d  %s  [%s]  owner: %s", project.ID, project.Name, project.Status, project.Owner.Username)
}

func (a *App) createProject() {
	name := a.readLine("Name: ")
	description := a.readLine("Description (optional): ")

	project, err := a.projects.CreateProject(services.CreateProjectInput{
		Name:        name,
		Description: description,
		OwnerID:     a.currentUser.ID,
	})
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Created project #%d %q.", project.ID, project.Name)
}

func (a *App) listProjects(searchTerm string) {
	projects, err := a.projects.ListProjects(searchTerm)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(projects) == 0 {
		a.printf("No projects found.")
		return
	}
	for _, project := range projects {
		a.printProjectLine(project)
	}
}

func (a *App) listMyProjects() {
	projects, err := a.projects.ListAccessibleProjects(a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(projects) == 0 {
		a.printf("You are not part of any project yet.")
		return
	}
	for _, project := range projects {
		role := "member"
		if project.OwnerID == a.currentUser.ID {
			role = "owner"
		}
		a.printf("#%d  %s  [%s]  (%s)", project.ID, project.Name, project.Status, role)
	}
}

func (a *App) viewProject() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	project, err := a.projects.GetProject(projectID, a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}

	a.printf("Project #%d", project.ID)
	a.printf("  Name:        %s", project.Name)
	a.printf("  Status:      %s", project.Status)
	a.printf("  Owner:       %s", project.Owner.Username)
	if project.Description != "" {
		a.printf("  Description: %s", project.Description)
	}
	a.printf("  Created:     %s", project.CreatedAt.Format(time.RFC3339))
}

func (a *App) editProject() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	input := services.UpdateProjectInput{
		Name:        a.readOptional("New name (blank to keep): "),
		Description: a.readOptional("New description (blank to keep): "),
	}

	project, err := a.projects.UpdateProject(projectID, a.currentUser.ID, input)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Updated project #%d.", project.ID)
}

func (a *App) changeProjectStatus() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}
	status := a.readLine("New status (in-progress/completed): ")

	project, err := a.projects.UpdateProjectStatus(projectID, a.currentUser.ID, models.ProjectStatus(status))
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Project #%d is now %s.", project.ID, project.Status)
}

func (a *App) deleteProject() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}
	if a.readLine("This removes the project with its tasks and memberships. Type yes to confirm: ") != "yes" {
		a.printf("Cancelled.")
		return
	}

	if err := a.projects.DeleteProject(projectID, a.currentUser.ID); err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Project deleted.")
}

func (a *App) requestToJoin() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	request, err := a.memberships.RequestToJoin(projectID, a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Join request #%d filed. The project owner can now approve it.", request.ID)
}

func (a *App) reviewJoinRequests() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	requests, err := a.memberships.ListPendingRequests(projectID, a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if len(requests) == 0 {
		a.printf("No pending join requests.")
		return
	}
	for _, request := range requests {
		a.printf("#%d  %s  requested %s", request.ID, request.User.Username, request.CreatedAt.Format(time.RFC3339))
	}

	value := a.readLine("Request id to resolve (blank to go back): ")
	if value == "" {
		return
	}
	requestID, err := parseID(value)
	if err != nil {
		a.printf("Invalid id %q", value)
		return
	}

	switch a.readLine("approve or reject? ") {
	case "approve":
		request, err := a.memberships.ApproveRequest(requestID, a.currentUser.ID)
		if err != nil {
			a.printf("Error: %v", err)
			return
		}
		a.printf("Approved. %s is now a member.", request.User.Username)
	case "reject":
		request, err := a.memberships.RejectRequest(requestID, a.currentUser.ID)
		if err != nil {
			a.printf("Error: %v", err)
			return
		}
		a.printf("Rejected request #%d.", request.ID)
	default:
		a.printf("Unknown choice")
	}
}

func (a *App) listMembers() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	project, members, err := a.memberships.ListMembers(projectID, a.currentUser.ID)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}

	a.printf("Members of %q:", project.Name)
	a.printf("  #%d  %s  (owner)", project.OwnerID, project.Owner.Username)
	for _, member := range members {
		a.printf("  #%d  %s  joined %s", member.UserID, member.User.Username, member.JoinedAt.Format(time.RFC3339))
	}
}

func (a *App) addMember() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}

	if users, err := a.auth.ListUsers(); err == nil {
		a.printf("Users:")
		for _, user := range users {
			a.printf("  #%d  %s", user.ID, user.Username)
		}
	}

	targetID, ok := a.readID("User id to add: ")
	if !ok {
		return
	}

	if err := a.memberships.AddMember(projectID, targetID, a.currentUser.ID); err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Member added.")
}

func (a *App) removeMember() {
	projectID, ok := a.readID("Project id: ")
	if !ok {
		return
	}
	targetID, ok := a.readID("User id to remove: ")
	if !ok {
		return
	}

	if err := a.memberships.RemoveMember(projectID, targetID, a.currentUser.ID); err != nil {
		a.printf("Error: %v", err)
		return
	}
	a.printf("Member removed.")
}
