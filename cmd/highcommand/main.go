package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/highcommand/highcommand/internal/cli"
	"github.com/highcommand/highcommand/internal/config"
	"github.com/highcommand/highcommand/internal/database"
	"github.com/highcommand/highcommand/internal/repository"
	"github.com/highcommand/highcommand/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "highcommand",
	Short: "Interactive terminal client for the HighCommand tracker",
	Long: `highcommand opens a menu-driven session against the same database the
HighCommand API serves. Projects, memberships and tasks created here are
immediately visible to web users and vice versa.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClient()
	},
}

func runClient() error {
	cfg := config.Load()

	// Keep the interactive session quiet; errors still surface via the menus.
	logrus.SetLevel(logrus.WarnLevel)

	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	policy := services.NewPolicyService(membershipRepo)
	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, policy)
	membershipService := services.NewMembershipService(projectRepo, userRepo, membershipRepo, policy)
	taskService := services.NewTaskService(taskRepo, projectRepo, policy)
	dashboardService := services.NewDashboardService(projectRepo, taskRepo)

	app := cli.NewApp(os.Stdin, os.Stdout, authService, projectService, membershipService, taskService, dashboardService)
	return app.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
