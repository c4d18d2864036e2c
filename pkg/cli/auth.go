package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vantagecrm/vantage-go/pkg/session"
)

func newLoginCommand() *Command {
	cmd := &Command{
		Name:        "login",
		Description: "Sign in to the Vantage gateway",
		Flags:       flag.NewFlagSet("login", flag.ExitOnError),
		Run:         runLogin,
	}

	cmd.Flags.String("email", "", "Account email")
	cmd.Flags.String("password", os.Getenv("VANTAGE_PASSWORD"), "Account password (or set VANTAGE_PASSWORD)")

	return cmd
}

func runLogin(args []string) error {
	cmd := newLoginCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	email := cmd.Flags.Lookup("email").Value.String()
	password := cmd.Flags.Lookup("password").Value.String()
	if email == "" || password == "" {
		return fmt.Errorf("email and password required. Usage: vantage login -email <email> -password <password>")
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	if err := a.sessions.Login(ctx, email, password); err != nil {
		if msg := a.sessions.LastError(); msg != "" {
			return fmt.Errorf("login failed: %s", msg)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	user := a.sessions.Current().User
	fmt.Printf("Logged in as %s (%s)\n", user.FullName(), user.Email)
	fmt.Printf("Tenant: %s\n", user.TenantName)
	fmt.Printf("Licensed modules: %d\n", len(a.modules.Enabled()))
	return nil
}

func newRegisterCommand() *Command {
	cmd := &Command{
		Name:        "register",
		Description: "Create a tenant and its first admin account",
		Flags:       flag.NewFlagSet("register", flag.ExitOnError),
		Run:         runRegister,
	}

	cmd.Flags.String("email", "", "Admin email")
	cmd.Flags.String("password", os.Getenv("VANTAGE_PASSWORD"), "Admin password (or set VANTAGE_PASSWORD)")
	cmd.Flags.String("first-name", "", "Admin first name")
	cmd.Flags.String("last-name", "", "Admin last name")
	cmd.Flags.String("company", "", "Company name; the tenant subdomain is derived from it")

	return cmd
}

func runRegister(args []string) error {
	cmd := newRegisterCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	email := cmd.Flags.Lookup("email").Value.String()
	password := cmd.Flags.Lookup("password").Value.String()
	company := cmd.Flags.Lookup("company").Value.String()
	if email == "" || password == "" || company == "" {
		return fmt.Errorf("email, password and company required. Usage: vantage register -email <email> -password <password> -company <name>")
	}

	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	enabled, err := a.sessions.RegistrationEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to check registration status: %w", err)
	}
	if !enabled {
		return fmt.Errorf("self-service registration is disabled on this gateway")
	}

	subdomain := session.DeriveSubdomain(company)
	err = a.sessions.Register(ctx, session.RegisterParams{
		Email:           email,
		Password:        password,
		FirstName:       cmd.Flags.Lookup("first-name").Value.String(),
		LastName:        cmd.Flags.Lookup("last-name").Value.String(),
		TenantName:      company,
		TenantSubdomain: subdomain,
	})
	if err != nil {
		if msg := a.sessions.LastError(); msg != "" {
			return fmt.Errorf("registration failed: %s", msg)
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	user := a.sessions.Current().User
	fmt.Printf("Registered tenant %s (subdomain %s)\n", user.TenantName, subdomain)
	fmt.Printf("Logged in as %s\n", user.Email)
	return nil
}

func newLogoutCommand() *Command {
	return &Command{
		Name:        "logout",
		Description: "Sign out and clear stored credentials",
		Flags:       flag.NewFlagSet("logout", flag.ExitOnError),
		Run:         runLogout,
	}
}

func runLogout(args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	if err := a.sessions.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func newWhoamiCommand() *Command {
	return &Command{
		Name:        "whoami",
		Description: "Show the current session",
		Flags:       flag.NewFlagSet("whoami", flag.ExitOnError),
		Run:         runWhoami,
	}
}

func runWhoami(args []string) error {
	ctx := context.Background()
	a, err := buildApp(ctx)
	if err != nil {
		return err
	}

	sess := a.sessions.Current()
	if !sess.Authenticated {
		fmt.Println("Not logged in")
		return nil
	}
	if sess.User == nil {
		fmt.Println("Logged in (profile unavailable)")
		return nil
	}

	fmt.Printf("User: %s (%s)\n", sess.User.FullName(), sess.User.Email)
	fmt.Printf("Tenant: %s (%s)\n", sess.User.TenantName, sess.User.TenantID)
	fmt.Printf("Roles: %v\n", sess.User.Roles)
	fmt.Printf("Permissions: %v\n", sess.User.Permissions)
	return nil
}
