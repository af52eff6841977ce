package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
	"github.com/tgienger/tasktracker/internal/tracker"
)

const (
	envUser     = "TASKTRACKER_USER"
	envPassword = "TASKTRACKER_PASSWORD"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTaskCmd(r *runner) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.authenticate(username, password)
		},
	}
	cmd.PersistentFlags().StringVarP(&username, "user", "u", "", "username (default $"+envUser+")")
	cmd.PersistentFlags().StringVarP(&password, "password", "p", "", "password (default $"+envPassword+")")

	cmd.AddCommand(
		newTaskAddCmd(r),
		newTaskUpdateCmd(r),
		newTaskDeleteCmd(r),
		newTaskListCmd(r),
		newTaskSearchCmd(r),
		newTaskStatsCmd(r),
		newTaskClearCmd(r),
		newTaskBinCmd(r),
		newTaskRestoreCmd(r),
	)
	return cmd
}

// authenticate checks the credentials given by flag or environment
func (r *runner) authenticate(username, password string) error {
	if username == "" {
		username = os.Getenv(envUser)
	}
	if password == "" {
		password = os.Getenv(envPassword)
	}
	if username == "" || password == "" {
		return fmt.Errorf("%w: --user and --password (or $%s and $%s) are required", errs.ErrAuth, envUser, envPassword)
	}

	d, err := r.deps()
	if err != nil {
		return err
	}
	return d.gate.Login(username, password)
}

// taskFlags are the editable fields shared by add and update
type taskFlags struct {
	description string
	due         string
	priority    string
	status      string
	categories  string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&f.due, "due", "", "due date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "High, Medium or Low (default Medium)")
	cmd.Flags().StringVar(&f.status, "status", "", "Pending, In-Progress or Complete (default Pending)")
	cmd.Flags().StringVarP(&f.categories, "categories", "c", "", "comma-separated categories")
}

// apply copies the flags the user set onto in
func (f *taskFlags) apply(cmd *cobra.Command, in *models.TaskInput) error {
	flags := cmd.Flags()
	if flags.Changed("description") {
		in.Description = f.description
	}
	if flags.Changed("categories") {
		in.Categories = f.categories
	}
	if flags.Changed("due") {
		due, err := models.ParseDate(f.due)
		if err != nil {
			return fmt.Errorf("%w: due date must be YYYY-MM-DD, got %q", errs.ErrValidation, f.due)
		}
		in.DueDate = due
	}
	if flags.Changed("priority") {
		p, ok := models.ParsePriority(f.priority)
		if !ok {
			return fmt.Errorf("%w: unknown priority %q", errs.ErrValidation, f.priority)
		}
		in.Priority = p
	}
	if flags.Changed("status") {
		st, ok := models.ParseStatus(f.status)
		if !ok {
			return fmt.Errorf("%w: unknown status %q", errs.ErrValidation, f.status)
		}
		in.Status = st
	}
	return nil
}

func newTaskAddCmd(r *runner) *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := models.TaskInput{Title: args[0]}
			if err := f.apply(cmd, &in); err != nil {
				return err
			}
			d, err := r.deps()
			if err != nil {
				return err
			}
			task, err := d.tasks.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (due %s, %s)\n", task.Title, task.DueDate, task.Priority)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTaskUpdateCmd(r *runner) *cobra.Command {
	var f taskFlags
	var title string
	cmd := &cobra.Command{
		Use:   "update <title>",
		Short: "Update a task, changing only the given fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			current, err := d.tasks.GetByTitle(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			in := models.InputOf(*current)
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if err := f.apply(cmd, &in); err != nil {
				return err
			}

			task, err := d.tasks.Update(cmd.Context(), current.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", task.Title)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	return cmd
}

func newTaskDeleteCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <title>",
		Aliases: []string{"rm"},
		Short:   "Move a task to the recycle bin",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			if err := d.tasks.DeleteByTitle(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
			return nil
		},
	}
}

func newTaskListCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List active tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.printTasks(cmd, "")
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func newTaskSearchCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "List tasks whose title, description, priority or categories contain term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.printTasks(cmd, args[0])
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func (r *runner) printTasks(cmd *cobra.Command, term string) error {
	d, err := r.deps()
	if err != nil {
		return err
	}
	tasks, err := d.tasks.Search(cmd.Context(), term)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if tasks == nil {
			tasks = []models.Task{}
		}
		return writeJSON(cmd.OutOrStdout(), tasks)
	}
	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return nil
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.DueDate.String(),
			string(t.Priority),
			string(t.Status),
			t.Categories,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Due", "Priority", "Status", "Categories"}, rows))
	return nil
}

func newTaskStatsCmd(r *runner) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asOf := models.Today()
			if date != "" {
				var err error
				if asOf, err = models.ParseDate(date); err != nil {
					return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", errs.ErrValidation, date)
				}
			}

			d, err := r.deps()
			if err != nil {
				return err
			}
			stats, err := d.tasks.Statistics(cmd.Context(), asOf)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Total", "Completed", "Pending", "Due today", "Due this week", "Overdue"}, [][]string{{
				strconv.Itoa(stats.Total),
				strconv.Itoa(stats.Completed),
				strconv.Itoa(stats.Pending),
				strconv.Itoa(stats.DueToday),
				strconv.Itoa(stats.DueWeek),
				strconv.Itoa(stats.Overdue),
			}}))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "compute as of this date, YYYY-MM-DD (default today)")
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func newTaskClearCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")
			out := cmd.OutOrStdout()

			res, err := d.tasks.ClearCompleted(cmd.Context(), func(count int) bool {
				return yes || confirm(cmd.InOrStdin(), out, fmt.Sprintf("Remove %d completed task(s)?", count))
			})
			if err != nil {
				return err
			}

			switch res.Outcome {
			case tracker.ClearNothing:
				fmt.Fprintln(out, "No completed tasks to clear.")
			case tracker.ClearDeclined:
				fmt.Fprintln(out, "Cancelled.")
			case tracker.ClearDone:
				fmt.Fprintf(out, "Cleared %d completed task(s).\n", res.Count)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on in. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newTaskBinCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bin",
		Short: "List the recycle bin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			bin, err := d.tasks.Deleted(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				if bin == nil {
					bin = []models.DeletedTask{}
				}
				return writeJSON(cmd.OutOrStdout(), bin)
			}
			if len(bin) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "The recycle bin is empty.")
				return nil
			}

			rows := make([][]string, 0, len(bin))
			for _, t := range bin {
				rows = append(rows, []string{
					strconv.FormatInt(t.ID, 10),
					t.Title,
					t.DueDate.String(),
					string(t.Priority),
					string(t.Status),
					t.DeletedAt.Format("2006-01-02 15:04:05"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Title", "Due", "Priority", "Status", "Deleted"}, rows))
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print JSON")
	return cmd
}

func newTaskRestoreCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <bin-id>",
		Short: "Restore a task from the recycle bin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("%w: bin id must be a positive number, got %q", errs.ErrValidation, args[0])
			}
			d, err := r.deps()
			if err != nil {
				return err
			}
			task, err := d.tasks.Restore(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %q\n", task.Title)
			return nil
		},
	}
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
