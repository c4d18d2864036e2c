package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/vantagecrm/vantage-go/pkg/access"
	"github.com/vantagecrm/vantage-go/pkg/api"
)

func newLeadsCommand() *Command {
	cmd := &Command{
		Name:        "leads",
		Description: "Lead management commands",
		Subcommands: make(map[string]*Command),
		Run:         runLeads,
	}
	cmd.Subcommands["list"] = newLeadsListCommand()
	cmd.Subcommands["create"] = newLeadsCreateCommand()
	return cmd
}

func runLeads(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: vantage leads <command> [args]")
		fmt.Println("\nAvailable commands:")
		fmt.Println("  list      List the tenant's leads")
		fmt.Println("  create    Create a lead")
		fmt.Println("\nExamples:")
		fmt.Println("  vantage leads list")
		fmt.Println("  vantage leads create -first-name Ada -last-name Lovelace")
		return nil
	}

	leadsCmd := newLeadsCommand()
	if subcmd, ok := leadsCmd.Subcommands[args[0]]; ok {
		return subcmd.Run(args[1:])
	}
	return fmt.Errorf("unknown leads subcommand: %s", args[0])
}

func newLeadsListCommand() *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List the tenant's leads",
		Flags:       flag.NewFlagSet("leads list", flag.ExitOnError),
		Run:         runLeadsList,
	}

	cmd.Flags.Bool("json", false, "Output in JSON format")

	return cmd
}

func runLeadsList(args []string) error {
	cmd := newLeadsListCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	outputJSON := cmd.Flags.Lookup("json").Value.String() == "true"

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if err := a.requireModule("CRM", access.Requirement{Permissions: []string{"leads:read"}}); err != nil {
		return err
	}

	leads, err := a.registry.Leads().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(leads)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tSTATUS\tASSIGNED TO")
	for _, lead := range leads {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
			lead.ID, lead.FirstName, lead.LastName, lead.Company, lead.Status, lead.AssignedTo)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d leads\n", len(leads))
	return nil
}

func newLeadsCreateCommand() *Command {
	cmd := &Command{
		Name:        "create",
		Description: "Create a lead",
		Flags:       flag.NewFlagSet("leads create", flag.ExitOnError),
		Run:         runLeadsCreate,
	}

	cmd.Flags.String("first-name", "", "Lead first name")
	cmd.Flags.String("last-name", "", "Lead last name")
	cmd.Flags.String("email", "", "Lead email")
	cmd.Flags.String("company", "", "Lead company")
	cmd.Flags.String("source", "", "Lead source")

	return cmd
}

func runLeadsCreate(args []string) error {
	cmd := newLeadsCreateCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	firstName := cmd.Flags.Lookup("first-name").Value.String()
	lastName := cmd.Flags.Lookup("last-name").Value.String()
	if firstName == "" || lastName == "" {
		return fmt.Errorf("first and last name required. Usage: vantage leads create -first-name <name> -last-name <name>")
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if err := a.requireModule("CRM", access.Requirement{Permissions: []string{"leads:write"}}); err != nil {
		return err
	}

	lead, err := a.registry.Leads().Create(ctx, api.Lead{
		FirstName: firstName,
		LastName:  lastName,
		Email:     cmd.Flags.Lookup("email").Value.String(),
		Company:   cmd.Flags.Lookup("company").Value.String(),
		Source:    cmd.Flags.Lookup("source").Value.String(),
		Status:    "new",
	})
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	fmt.Printf("Created lead %s (%s %s)\n", lead.ID, lead.FirstName, lead.LastName)
	return nil
}
