package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/mkume/task-tracker/internal/client"
	"github.com/mkume/task-tracker/internal/models"
	"github.com/spf13/cobra"
)

var (
	serverFlag string
	tokenFile  string
)

// consoleNotifier prints due-task notifications to the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Notify(title, body string) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", title, body)
}

func newController() (*client.Controller, error) {
	path := tokenFile
	if path == "" {
		var err error
		path, err = client.DefaultTokenPath()
		if err != nil {
			return nil, fmt.Errorf("resolve token path: %w", err)
		}
	}

	api := client.New(serverFlag)
	store := client.NewFileTokenStore(path)
	return client.NewController(api, store, consoleNotifier{}), nil
}

// restoredController returns a controller with the persisted credential
// loaded. Commands that require authentication fail when none is stored.
func restoredController(ctx context.Context, requireAuth bool) (*client.Controller, error) {
	ctl, err := newController()
	if err != nil {
		return nil, err
	}

	ok, err := ctl.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if requireAuth && !ok {
		return nil, client.ErrUnauthenticated
	}
	return ctl, nil
}

func printTasks(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tDUE\tDESCRIPTION")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, due, t.Description)
	}
	w.Flush()
}

var rootCmd = &cobra.Command{
	Use:   "taskcli",
	Short: "taskcli - command-line client for the task tracker",
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <password>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newController()
		if err != nil {
			return err
		}
		if err := ctl.Register(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Registered as %s\n", ctl.User().Username)
		printTasks(ctl.Tasks())
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "Log in and store the credential",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newController()
		if err != nil {
			return err
		}
		if err := ctl.Login(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", ctl.User().Username)
		printTasks(ctl.Tasks())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := newController()
		if err != nil {
			return err
		}
		if err := ctl.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := restoredController(cmd.Context(), true)
		if err != nil {
			return err
		}

		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if username != "" || password != "" {
			var usernamePtr, passwordPtr *string
			if username != "" {
				usernamePtr = &username
			}
			if password != "" {
				passwordPtr = &password
			}
			user, err := ctl.UpdateProfile(cmd.Context(), usernamePtr, passwordPtr)
			if err != nil {
				return err
			}
			fmt.Printf("Profile updated: %s\n", user.Username)
			return nil
		}

		fmt.Printf("id: %s\nusername: %s\n", ctl.User().ID, ctl.User().Username)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := restoredController(cmd.Context(), true)
		if err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		sortBy, _ := cmd.Flags().GetString("sort")
		if status != "" && status != ctl.Filter() {
			if err := ctl.SetFilter(cmd.Context(), status); err != nil {
				return err
			}
		}
		if sortBy != "" && sortBy != ctl.Sort() {
			if err := ctl.SetSort(cmd.Context(), sortBy); err != nil {
				return err
			}
		}

		printTasks(ctl.Tasks())
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title> <description>",
	Short: "Create a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := restoredController(cmd.Context(), true)
		if err != nil {
			return err
		}

		due, _ := cmd.Flags().GetString("due")
		if err := ctl.AddTask(cmd.Context(), args[0], args[1], due); err != nil {
			return err
		}
		printTasks(ctl.Tasks())
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := restoredController(cmd.Context(), true)
		if err != nil {
			return err
		}

		draft, err := ctl.StartEdit(args[0])
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("title") {
			draft.Title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			draft.Description, _ = cmd.Flags().GetString("description")
		}
		if cmd.Flags().Changed("status") {
			draft.Status, _ = cmd.Flags().GetString("status")
		}
		if cmd.Flags().Changed("due") {
			draft.DueDate, _ = cmd.Flags().GetString("due")
		}

		if err := ctl.SaveEdit(cmd.Context()); err != nil {
			return err
		}
		printTasks(ctl.Tasks())
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := restoredController(cmd.Context(), true)
		if err != nil {
			return err
		}
		if err := ctl.SetStatus(cmd.Context(), args[0], string(models.TaskStatusCompleted)); err != nil {
			return err
		}
		printTasks(ctl.Tasks())
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl, err := restoredController(cmd.Context(), true)
		if err != nil {
			return err
		}
		if err := ctl.DeleteTask(cmd.Context(), args[0]); err != nil {
			return err
		}
		printTasks(ctl.Tasks())
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "http://localhost:8080", "server base URL")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "path to the stored credential")

	profileCmd.Flags().String("username", "", "new username")
	profileCmd.Flags().String("password", "", "new password")
	listCmd.Flags().String("status", "", "filter by status (pending, in-progress, completed, all)")
	listCmd.Flags().String("sort", "", "sort as field:direction (createdAt, dueDate, title, status)")
	addCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("description", "", "new description")
	editCmd.Flags().String("status", "", "new status")
	editCmd.Flags().String("due", "", "new due date (YYYY-MM-DD, empty clears)")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, profileCmd, listCmd, addCmd, editCmd, doneCmd, deleteCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
