package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/quipworks/quip-go/internal/api"
)

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "talk to the content assistant",
		Commands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "send a message to the assistant",
				ArgsUsage: "<message>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mode",
						Usage: "generation mode (quote|caption|image)",
						Value: "quote",
					},
				},
				Action: chatSendAction,
			},
			{
				Name:   "history",
				Usage:  "show the conversation so far",
				Action: chatHistoryAction,
			},
		},
	}
}

func chatSendAction(ctx context.Context, cmd *cli.Command) error {
	message := strings.Join(cmd.Args().Slice(), " ")
	if message == "" {
		return fmt.Errorf("missing required <message> argument")
	}

	client, err := clientFromCommand(ctx, cmd)
	if err != nil {
		return err
	}

	reply, err := client.Chat.Send(ctx, api.ChatRequest{
		Message: message,
		Mode:    cmd.String("mode"),
	})
	if err != nil {
		return friendly(err)
	}

	fmt.Println(reply.Content)
	return nil
}

func chatHistoryAction(ctx context.Context, cmd *cli.Command) error {
	client, err := clientFromCommand(ctx, cmd)
	if err != nil {
		return err
	}

	history, err := client.Chat.History(ctx)
	if err != nil {
		return friendly(err)
	}
	for _, msg := range history {
		fmt.Printf("%s: %s\n", msg.Role, msg.Content)
	}
	return nil
}
