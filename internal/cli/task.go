package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/taskflow/internal/core"
	"github.com/valter-silva-au/taskflow/pkg/models"
)

// taskFlagValues holds the attribute flags shared by "add" and "update".
type taskFlagValues struct {
	title       string
	description string
	status      string
	due         string
	tags        []string
	priority    string
	repeat      string
	every       int
	parent      string
}

func (v *taskFlagValues) register(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().StringVar(&v.title, "title", "", "Task title")
	}
	cmd.Flags().StringVarP(&v.description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&v.status, "status", "", "Status (pending, completed)")
	cmd.Flags().StringVar(&v.due, "due", "", "Due date as YYYY-MM-DD (empty clears)")
	cmd.Flags().StringSliceVar(&v.tags, "tag", nil, "Tag, repeatable or comma-separated (--tag \"\" clears)")
	cmd.Flags().StringVarP(&v.priority, "priority", "p", "", "Priority (high, medium, low; empty clears)")
	cmd.Flags().StringVar(&v.repeat, "repeat", "", "Recurrence frequency (daily, weekly, monthly, yearly; empty clears)")
	cmd.Flags().IntVar(&v.every, "every", 1, "Recurrence interval, used with --repeat")
	cmd.Flags().StringVar(&v.parent, "parent", "", "Parent task ID")
}

// attrs converts the flags the user actually set into TaskAttrs, so that
// omitted flags leave attributes untouched on update.
func (v *taskFlagValues) attrs(cmd *cobra.Command) (core.TaskAttrs, error) {
	var attrs core.TaskAttrs
	changed := cmd.Flags().Changed
	if changed("title") {
		attrs.Title = &v.title
	}
	if changed("description") {
		attrs.Description = &v.description
	}
	if changed("status") {
		attrs.Status = &v.status
	}
	if changed("due") {
		attrs.DueDate = &v.due
	}
	if changed("tag") {
		attrs.Tags = append([]string{}, v.tags...)
	}
	if changed("priority") {
		attrs.Priority = &v.priority
	}
	if changed("every") && !changed("repeat") {
		return core.TaskAttrs{}, &models.ValidationError{Field: "recurrence", Message: "--every requires --repeat"}
	}
	if changed("repeat") {
		rec := &models.Recurrence{Interval: v.every}
		if strings.TrimSpace(v.repeat) != "" {
			freq, err := models.ParseFrequency(v.repeat)
			if err != nil {
				return core.TaskAttrs{}, err
			}
			rec.Frequency = freq
		}
		attrs.Recurrence = rec
	}
	if changed("parent") {
		attrs.ParentTaskID = &v.parent
	}
	return attrs, nil
}

var (
	addFlags    taskFlagValues
	addIDFlag   string
	updateFlags taskFlagValues
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Long: `Add a task for the current owner. A description is required.

Example:
  tfl add "Write report" -d "Quarterly numbers" --due 2025-03-20 --tag work -p high`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		attrs, err := addFlags.attrs(cmd)
		if err != nil {
			return err
		}
		attrs.ID = addIDFlag
		attrs.Title = &args[0]

		task, err := svc.AddTask(attrs)
		if err != nil {
			return fmt.Errorf("adding task: %w", err)
		}
		fmt.Printf("Created task %s\n", task.ID)
		return nil
	},
}

var (
	listTagFlags   []string
	listStatusFlag string
	listOverdue    bool
	listDueBefore  string
	listDueAfter   string
	listDueOn      string
	listSortFlag   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with optional filters",
	Long: `List the current owner's tasks. Filters combine: a task must match all of
them. Tags match case-insensitively and a task needs every given tag.

Sort orders: ` + strings.Join(core.SortNames(), ", ") + `.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		criteria, err := core.ListQuery{
			Tags:      listTagFlags,
			Status:    listStatusFlag,
			Overdue:   listOverdue,
			DueBefore: listDueBefore,
			DueAfter:  listDueAfter,
			DueOn:     listDueOn,
			Sort:      listSortFlag,
		}.Criteria()
		if err != nil {
			return err
		}

		tasks, err := svc.ListTasks(criteria)
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}
		printTaskTable(tasks, svc.Today())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		task, err := svc.FindTaskByID(args[0])
		if err != nil {
			return err
		}
		printTaskDetail(task, svc.Today())
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Change task attributes",
	Long: `Change the attributes given as flags and leave the rest untouched.
Passing an empty value to --due, --priority, --repeat or --tag clears it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		attrs, err := updateFlags.attrs(cmd)
		if err != nil {
			return err
		}
		task, err := svc.UpdateTask(args[0], attrs)
		if err != nil {
			return fmt.Errorf("updating task: %w", err)
		}
		fmt.Printf("Updated task %s\n", task.ID)
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task completed",
	Long: `Mark a task completed. Without an ID, pick from the pending tasks.
Completing a completed task keeps its original completion time.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		var id string
		if len(args) == 1 {
			id = args[0]
		} else if id, err = pickPendingTask(svc); err != nil {
			return err
		}

		task, err := svc.CompleteTask(id)
		if err != nil {
			return fmt.Errorf("completing task: %w", err)
		}
		fmt.Printf("Completed task %s at %s\n", task.ID, models.FormatTimestamp(task.CompletedAt, Location))
		return nil
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Return a completed task to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		task, err := svc.ReopenTask(args[0])
		if err != nil {
			return fmt.Errorf("reopening task: %w", err)
		}
		fmt.Printf("Reopened task %s\n", task.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <task-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		if err := svc.DeleteTask(args[0]); err != nil {
			return fmt.Errorf("deleting task: %w", err)
		}
		fmt.Printf("Deleted task %s\n", args[0])
		return nil
	},
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List overdue tasks and notify observers",
	Long: `List pending tasks whose due date has passed. Every overdue task is
announced to the configured notification observers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		tasks, err := svc.CheckOverdueTasks()
		if err != nil {
			return fmt.Errorf("checking overdue tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No overdue tasks.")
			return nil
		}
		printTaskTable(tasks, svc.Today())
		return nil
	},
}

var dueSoonCmd = &cobra.Command{
	Use:   "due-soon",
	Short: "List tasks due within the due-soon window",
	Long: `List pending tasks due between today and due_soon_days from now, and
announce each to the configured notification observers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := requireService()
		if err != nil {
			return err
		}
		tasks, err := svc.CheckDueSoonTasks()
		if err != nil {
			return fmt.Errorf("checking tasks due soon: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks due soon.")
			return nil
		}
		printTaskTable(tasks, svc.Today())
		return nil
	},
}

func init() {
	addFlags.register(addCmd, false)
	addCmd.Flags().StringVar(&addIDFlag, "id", "", "Explicit task ID (default: generated)")

	updateFlags.register(updateCmd, true)

	listCmd.Flags().StringSliceVar(&listTagFlags, "tag", nil, "Only tasks carrying this tag (repeatable)")
	listCmd.Flags().StringVar(&listStatusFlag, "status", "", "Only tasks in this status (pending, completed)")
	listCmd.Flags().BoolVar(&listOverdue, "overdue", false, "Only overdue tasks")
	listCmd.Flags().StringVar(&listDueBefore, "due-before", "", "Only tasks due on or before YYYY-MM-DD")
	listCmd.Flags().StringVar(&listDueAfter, "due-after", "", "Only tasks due on or after YYYY-MM-DD")
	listCmd.Flags().StringVar(&listDueOn, "due-on", "", "Only tasks due on YYYY-MM-DD")
	listCmd.Flags().StringVar(&listSortFlag, "sort", "", "Sort order ("+strings.Join(core.SortNames(), ", ")+")")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, completeCmd, reopenCmd, deleteCmd, overdueCmd, dueSoonCmd)
}
