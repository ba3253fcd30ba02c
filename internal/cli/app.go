// Package cli implements the interactive terminal client. It drives the same
// core services as the HTTP handlers, so every rule (membership gates,
// ownership checks, validation) behaves identically in both surfaces.
package cli

import (
	"bufio"
	"io"

	"github.com/highcommand/highcommand/internal/models"
	"github.com/highcommand/highcommand/internal/services"
)

// App is a menu-driven session over the core services. One App serves one
// user at a time; logging out returns to the auth menu.
type App struct {
	in  *bufio.Reader
	out io.Writer
	eof bool

	auth        *services.AuthService
	projects    *services.ProjectService
	memberships *services.MembershipService
	tasks       *services.TaskService
	dashboard   *services.DashboardService

	currentUser *models.User
}

func NewApp(
	in io.Reader,
	out io.Writer,
	auth *services.AuthService,
	projects *services.ProjectService,
	memberships *services.MembershipService,
	tasks *services.TaskService,
	dashboard *services.DashboardService,
) *App {
	return &App{
		in:          bufio.NewReader(in),
		out:         out,
		auth:        auth,
		projects:    projects,
		memberships: memberships,
		tasks:       tasks,
		dashboard:   dashboard,
	}
}

// Run loops the auth menu until a user signs in, then the main menu until
// they exit. Returns nil on a clean exit or end of input.
func (a *App) Run() error {
	a.printf("HighCommand - project and task tracking")

	for !a.eof {
		if a.currentUser == nil {
			if a.authMenu() {
				return nil
			}
			continue
		}
		if a.mainMenu() {
			return nil
		}
	}
	return nil
}

// authMenu returns true when the user chose to exit.
func (a *App) authMenu() bool {
	a.printf("")
	a.printf("1) Log in")
	a.printf("2) Register")
	a.printf("0) Exit")

	switch a.readLine("> ") {
	case "1":
		a.login()
	case "2":
		a.register()
	case "0":
		return true
	default:
		if a.eof {
			return true
		}
		a.printf("Unknown choice")
	}
	return false
}

func (a *App) login() {
	username := a.readLine("Username: ")
	password := a.readPassword("Password: ")

	user, err := a.auth.Authenticate(username, password)
	if err != nil {
		a.printf("Error: %v", err)
		return
	}
	if user == nil {
		a.printf("Invalid username or password.")
		return
	}

	a.currentUser = user
	a.printf("Welcome, %s.", user.Username)
}

func (a *App) register() {
	username := a.readLine("Username: ")
	password := a.readPassword("Password: ")

	user, err := a.auth.Register(services.RegisterInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		a.printf("Error: %v", err)
		return
	}

	// Registration signs the new account in, same as the web surface.
	a.currentUser = user
	a.printf("Account created. Welcome, %s.", user.Username)
}

// mainMenu returns true when the user chose to exit.
func (a *App) mainMenu() bool {
	a.printf("")
	if summary, err := a.dashboard.Summary(a.currentUser.ID); err == nil {
		a.printf("Signed in as %s: %d active projects, %d todo and %d in-progress tasks assigned to you",
			a.currentUser.Username, summary.ActiveProjects, summary.TodoTasks, summary.InProgressTasks)
	} else {
		a.printf("Signed in as %s", a.currentUser.Username)
	}
	a.printf("1) Projects")
	a.printf("2) Tasks")
	a.printf("3) Log out")
	a.printf("0) Exit")

	switch a.readLine("> ") {
	case "1":
		a.projectMenu()
	case "2":
		a.taskMenu()
	case "3":
		a.currentUser = nil
		a.printf("Logged out.")
	case "0":
		return true
	default:
		if a.eof {
			return true
		}
		a.printf("Unknown choice")
	}
	return false
}
