package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
)

func newModulesCommand() *Command {
	cmd := &Command{
		Name:        "modules",
		Description: "Show the tenant's licensed modules",
		Flags:       flag.NewFlagSet("modules", flag.ExitOnError),
		Run:         runModules,
	}

	cmd.Flags.Bool("refresh", false, "Re-fetch the module list from the gateway")
	cmd.Flags.Bool("json", false, "Output in JSON format")

	return cmd
}

func runModules(args []string) error {
	cmd := newModulesCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}
	refresh := cmd.Flags.Lookup("refresh").Value.String() == "true"
	outputJSON := cmd.Flags.Lookup("json").Value.String() == "true"

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if !a.sessions.Current().Authenticated {
		return fmt.Errorf("not logged in. Run 'vantage login' first")
	}

	if refresh {
		if err := a.modules.FetchEnabled(ctx); err != nil {
			return fmt.Errorf("module refresh failed: %w", err)
		}
	}

	enabled := a.modules.Enabled()
	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(enabled)
	}

	if len(enabled) == 0 {
		fmt.Println("No modules licensed (or the list has not been fetched; try -refresh)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tENABLED\tCORE")
	for _, m := range enabled {
		enabledMark := "✓"
		if !m.IsEnabled {
			enabledMark = "✗"
		}
		coreMark := ""
		if m.IsCoreModule {
			coreMark = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Code, m.Name, enabledMark, coreMark)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d modules\n", len(enabled))
	return nil
}
