package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/client"
	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/models"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	planReq  models.PlanRequest
	budget   float64
	degrade  bool
	savePlan bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and manage travel plans",
}

var planGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a plan and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		fallback := client.FallbackFail
		if degrade {
			fallback = client.FallbackDegrade
		}
		c, err := newClient(client.WithFallback(fallback))
		if err != nil {
			return err
		}

		req := planReq
		req.Budget = &budget
		plan, err := c.Generate(cmd.Context(), &req)
		if err != nil {
			return err
		}
		if plan.Degraded {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: generation failed, showing a placeholder plan")
		}

		if savePlan {
			id, err := c.Save(cmd.Context(), plan.TravelPlan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved as %s\n", id)
		}
		return printJSON(cmd.OutOrStdout(), plan)
	},
}

var planSaveCmd = &cobra.Command{
	Use:   "save FILE",
	Short: "Save a plan document read from FILE (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}

		// Output of "plan generate" carries the plan under travel_plan.
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return fmt.Errorf("decode plan: %w", err)
		}
		if inner, ok := envelope["travel_plan"]; ok {
			raw = inner
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		id, err := c.SaveRaw(cmd.Context(), raw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var planHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved plans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		plans, err := c.History(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDESTINATION\tSTART\tDAYS\tTRAVELERS\tBUDGET")
		for _, p := range plans {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0f\n", p.ID, p.Destination, p.StartDate, p.Days, p.Travelers, p.Budget)
		}
		return w.Flush()
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid plan id %q", args[0])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		raw, err := c.GetRaw(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), raw)
	},
}

var planDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a saved plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid plan id %q", args[0])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		return c.Delete(cmd.Context(), id)
	},
}

func init() {
	f := planGenerateCmd.Flags()
	f.StringVarP(&planReq.Destination, "destination", "d", "", "destination")
	f.StringVar(&planReq.StartDate, "start", "", "start date (YYYY-MM-DD)")
	f.IntVar(&planReq.Days, "days", 3, "trip length in days")
	f.IntVar(&planReq.Travelers, "travelers", 1, "number of travelers")
	f.Float64Var(&budget, "budget", 0, "total budget in CNY")
	f.StringSliceVar(&planReq.Preferences, "pref", nil, "preference (repeatable)")
	f.StringVar(&planReq.AdditionalRequirements, "notes", "", "additional requirements")
	f.BoolVar(&degrade, "degrade", false, "fall back to a placeholder plan when generation fails")
	f.BoolVar(&savePlan, "save", false, "save the generated plan")
	_ = planGenerateCmd.MarkFlagRequired("destination")
	_ = planGenerateCmd.MarkFlagRequired("start")

	planCmd.AddCommand(planGenerateCmd, planSaveCmd, planHistoryCmd, planShowCmd, planDeleteCmd)
	rootCmd.AddCommand(planCmd)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
