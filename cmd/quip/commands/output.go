package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/quipworks/quip-go/internal/api"
)

// printData writes the payload as indented JSON to stdout. Logs stay on
// stderr, so command output remains pipeable.
func printData(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// friendly turns classified API errors into actionable CLI messages.
func friendly(err error) error {
	var authErr *api.AuthenticationError
	var restartErr *api.ServerRestartError
	switch {
	case errors.As(err, &authErr):
		return fmt.Errorf("not logged in (run `quip login`): %w", err)
	case errors.As(err, &restartErr):
		return fmt.Errorf("backend restarted or unreachable: %w", err)
	}
	return err
}

// idArg parses the required <id> positional argument.
func idArg(cmd *cli.Command) (int64, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("missing required <id> argument")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
