package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskmanager/domain"
)

func tasksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and manage tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx, cancel := commandContext()
				defer cancel()

				tasks := a.tasks()
				if err := tasks.Load(ctx); err != nil {
					return err
				}
				printTasks(tasks.Tasks())
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priority, _ := cmd.Flags().GetString("priority")
			return withApp(opts, func(a *app) error {
				ctx, cancel := commandContext()
				defer cancel()

				task, err := a.tasks().Add(ctx, args[0], domain.Priority(priority))
				if err != nil {
					return err
				}
				fmt.Println(task.ID)
				return nil
			})
		},
	}
	add.Flags().StringP("priority", "p", "", "low, medium or urgent")
	cmd.AddCommand(add)

	update := &cobra.Command{
		Use:   "update [id]",
		Short: "Change a task's title, priority or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.TaskPatch{}
			if cmd.Flags().Changed("title") {
				v, _ := cmd.Flags().GetString("title")
				patch.Title = &v
			}
			if cmd.Flags().Changed("priority") {
				v, _ := cmd.Flags().GetString("priority")
				p := domain.Priority(v)
				patch.Priority = &p
			}
			if cmd.Flags().Changed("status") {
				v, _ := cmd.Flags().GetString("status")
				s := domain.Status(v)
				patch.Status = &s
			}
			return withApp(opts, func(a *app) error {
				ctx, cancel := commandContext()
				defer cancel()

				task, err := a.tasks().Update(ctx, args[0], patch)
				if err != nil {
					return err
				}
				printTasks([]domain.Task{*task})
				return nil
			})
		},
	}
	update.Flags().String("title", "", "New title")
	update.Flags().String("priority", "", "low, medium or urgent")
	update.Flags().String("status", "", "pending, in-progress or done")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx, cancel := commandContext()
				defer cancel()
				return a.tasks().Delete(ctx, args[0])
			})
		},
	})

	return cmd
}

// withApp builds the wiring, restores the saved session and runs fn.
func withApp(opts *rootOptions, fn func(a *app) error) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := commandContext()
	defer cancel()
	if err := a.restore(ctx); err != nil {
		return err
	}
	return fn(a)
}

func printTasks(tasks []domain.Task) {
	writeTasks(os.Stdout, tasks)
}

// writeTasks renders tasks as a table, marking completed ones with an x.
func writeTasks(out io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tTITLE")
	for _, t := range tasks {
		mark := " "
		if t.IsCompleted() {
			mark = "x"
		}
		fmt.Fprintf(w, "%s\t[%s] %s\t%s\t%s\n", t.ID, mark, t.Status, t.Priority, t.Title)
	}
	_ = w.Flush()
}
