package commands

import (
	"context"
	"fmt"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "authenticate and persist the session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "account username (prompted when omitted)",
			},
			&cli.BoolFlag{
				Name:  "auth--auto-login",
				Usage: "save the login so the client can re-authenticate after a backend restart",
			},
		},
		Action: loginAction,
	}
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	client, err := clientFromCommand(ctx, cmd)
	if err != nil {
		return err
	}

	username := cmd.String("username")
	if username == "" {
		fmt.Print("Username: ")
		if _, err := fmt.Scanln(&username); err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // newline after password input
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	user, err := client.Auth.Login(ctx, username, string(passwordBytes))
	if err != nil {
		return friendly(err)
	}

	fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "end the session and wipe stored credentials",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := clientFromCommand(ctx, cmd)
			if err != nil {
				return err
			}
			if err := client.Auth.Logout(ctx); err != nil {
				return friendly(err)
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the current session user",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			client, err := clientFromCommand(ctx, cmd)
			if err != nil {
				return err
			}
			user, err := client.Auth.Me(ctx)
			if err != nil {
				return friendly(err)
			}
			return printData(user)
		},
	}
}
