package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/vantagecrm/vantage-go/pkg/access"
)

func newHRCommand() *Command {
	cmd := &Command{
		Name:        "hr",
		Description: "HR and payroll commands",
		Subcommands: make(map[string]*Command),
		Run:         runHR,
	}
	cmd.Subcommands["employees"] = newHREmployeesCommand()
	cmd.Subcommands["payroll"] = newHRPayrollCommand()
	return cmd
}

func runHR(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: vantage hr <command> [args]")
		fmt.Println("\nAvailable commands:")
		fmt.Println("  employees    List the employee roster")
		fmt.Println("  payroll      List payroll runs")
		return nil
	}

	hrCmd := newHRCommand()
	if subcmd, ok := hrCmd.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}
	return fmt.Errorf("unknown hr subcommand: %s", args[0])
}

func newHREmployeesCommand() *Command {
	cmd := &Command{
		Name:        "employees",
		Description: "List the employee roster",
		Flags:       flag.NewFlagSet("hr employees", flag.ExitOnError),
		Run:         runHREmployees,
	}

	cmd.Flags.Bool("json", false, "Output in JSON format")

	return cmd
}

func runHREmployees(args []string) error {
	cmd := newHREmployeesCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	outputJSON := cmd.Flags.Lookup("json").Value.String() == "true"

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if err := a.requireModule("HRMS", access.Requirement{Permissions: []string{"hr:manage"}}); err != nil {
		return err
	}

	employees, err := a.registry.HR().Employees(ctx)
	if err != nil {
		return fmt.Errorf("failed to list employees: %w", err)
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(employees)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDEPARTMENT\tTITLE\tACTIVE")
	for _, e := range employees {
		active := "✓"
		if !e.IsActive {
			active = "✗"
		}
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n", e.ID, e.FirstName, e.LastName, e.Department, e.Title, active)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d employees\n", len(employees))
	return nil
}

func newHRPayrollCommand() *Command {
	cmd := &Command{
		Name:        "payroll",
		Description: "List payroll runs",
		Flags:       flag.NewFlagSet("hr payroll", flag.ExitOnError),
		Run:         runHRPayroll,
	}

	cmd.Flags.Bool("json", false, "Output in JSON format")

	return cmd
}

func runHRPayroll(args []string) error {
	cmd := newHRPayrollCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	outputJSON := cmd.Flags.Lookup("json").Value.String() == "true"

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	// Payroll additionally needs an HR role, not just the permission.
	if err := a.requireModule("HRMS", access.Requirement{
		Permissions: []string{"hr:manage"},
		Roles:       []string{"ADMIN", "HR_MANAGER"},
	}); err != nil {
		return err
	}

	runs, err := a.registry.HR().PayrollRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list payroll runs: %w", err)
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tPERIOD\tSTATUS\tTOTAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s to %s\t%s\t$%.2f\n",
			run.ID,
			run.PeriodStart.Format("2006-01-02"),
			run.PeriodEnd.Format("2006-01-02"),
			run.Status,
			float64(run.TotalCents)/100)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d payroll runs\n", len(runs))
	return nil
}
