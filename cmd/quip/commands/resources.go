package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/quipworks/quip-go/internal/api"
)

// getAction builds a get subcommand action around a service call taking the
// <id> positional argument.
func getAction[T any](fetch func(context.Context, *api.Client, int64) (*T, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := idArg(cmd)
		if err != nil {
			return err
		}
		client, err := clientFromCommand(ctx, cmd)
		if err != nil {
			return err
		}
		item, err := fetch(ctx, client, id)
		if err != nil {
			return friendly(err)
		}
		return printData(item)
	}
}

// deleteAction builds a delete subcommand action around a service call.
func deleteAction(noun string, remove func(context.Context, *api.Client, int64) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		id, err := idArg(cmd)
		if err != nil {
			return err
		}
		client, err := clientFromCommand(ctx, cmd)
		if err != nil {
			return err
		}
		if err := remove(ctx, client, id); err != nil {
			return friendly(err)
		}
		fmt.Printf("Deleted %s %d\n", noun, id)
		return nil
	}
}

func quotesCommand() *cli.Command {
	return &cli.Command{
		Name:  "quotes",
		Usage: "manage quotes",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list quotes",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "filter by category"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					var opts []api.RequestOption
					if category := cmd.String("category"); category != "" {
						opts = append(opts, api.WithQuery("category", category))
					}
					quotes, err := client.Quotes.List(ctx, opts...)
					if err != nil {
						return friendly(err)
					}
					return printData(quotes)
				},
			},
			{
				Name:      "get",
				Usage:     "show one quote",
				ArgsUsage: "<id>",
				Action: getAction(func(ctx context.Context, c *api.Client, id int64) (*api.Quote, error) {
					return c.Quotes.Get(ctx, id)
				}),
			},
			{
				Name:  "create",
				Usage: "add a quote",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "quote text", Required: true},
					&cli.StringFlag{Name: "author", Usage: "attributed author"},
					&cli.StringFlag{Name: "category", Usage: "quote category"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					quote, err := client.Quotes.Create(ctx, api.QuoteInput{
						Text:     cmd.String("text"),
						Author:   cmd.String("author"),
						Category: cmd.String("category"),
					})
					if err != nil {
						return friendly(err)
					}
					return printData(quote)
				},
			},
			{
				Name:      "update",
				Usage:     "modify a quote",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "quote text"},
					&cli.StringFlag{Name: "author", Usage: "attributed author"},
					&cli.StringFlag{Name: "category", Usage: "quote category"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id, err := idArg(cmd)
					if err != nil {
						return err
					}
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					quote, err := client.Quotes.Update(ctx, id, api.QuoteInput{
						Text:     cmd.String("text"),
						Author:   cmd.String("author"),
						Category: cmd.String("category"),
					})
					if err != nil {
						return friendly(err)
					}
					return printData(quote)
				},
			},
			{
				Name:      "delete",
				Usage:     "remove a quote",
				ArgsUsage: "<id>",
				Action: deleteAction("quote", func(ctx context.Context, c *api.Client, id int64) error {
					return c.Quotes.Delete(ctx, id)
				}),
			},
		},
	}
}

func postsCommand() *cli.Command {
	return &cli.Command{
		Name:  "posts",
		Usage: "manage social post drafts",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list posts",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					posts, err := client.Posts.List(ctx)
					if err != nil {
						return friendly(err)
					}
					return printData(posts)
				},
			},
			{
				Name:      "get",
				Usage:     "show one post",
				ArgsUsage: "<id>",
				Action: getAction(func(ctx context.Context, c *api.Client, id int64) (*api.Post, error) {
					return c.Posts.Get(ctx, id)
				}),
			},
			{
				Name:  "create",
				Usage: "draft a post",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "post title", Required: true},
					&cli.StringFlag{Name: "content", Usage: "post body"},
					&cli.StringFlag{Name: "platform", Usage: "target platform"},
					&cli.StringFlag{Name: "status", Usage: "draft|scheduled|published"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					post, err := client.Posts.Create(ctx, api.PostInput{
						Title:    cmd.String("title"),
						Content:  cmd.String("content"),
						Platform: cmd.String("platform"),
						Status:   cmd.String("status"),
					})
					if err != nil {
						return friendly(err)
					}
					return printData(post)
				},
			},
			{
				Name:      "delete",
				Usage:     "remove a post",
				ArgsUsage: "<id>",
				Action: deleteAction("post", func(ctx context.Context, c *api.Client, id int64) error {
					return c.Posts.Delete(ctx, id)
				}),
			},
		},
	}
}

func templatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "browse content templates",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list templates",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "filter by category"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					var opts []api.RequestOption
					if category := cmd.String("category"); category != "" {
						opts = append(opts, api.WithQuery("category", category))
					}
					templates, err := client.Templates.List(ctx, opts...)
					if err != nil {
						return friendly(err)
					}
					return printData(templates)
				},
			},
			{
				Name:      "get",
				Usage:     "show one template",
				ArgsUsage: "<id>",
				Action: getAction(func(ctx context.Context, c *api.Client, id int64) (*api.Template, error) {
					return c.Templates.Get(ctx, id)
				}),
			},
		},
	}
}

func imagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "images",
		Usage: "manage generated images",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list images",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					images, err := client.Images.List(ctx)
					if err != nil {
						return friendly(err)
					}
					return printData(images)
				},
			},
			{
				Name:  "generate",
				Usage: "request image generation",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prompt", Usage: "generation prompt", Required: true},
					&cli.IntFlag{Name: "width", Usage: "image width in pixels"},
					&cli.IntFlag{Name: "height", Usage: "image height in pixels"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					image, err := client.Images.Generate(ctx, api.ImageInput{
						Prompt: cmd.String("prompt"),
						Width:  cmd.Int("width"),
						Height: cmd.Int("height"),
					})
					if err != nil {
						return friendly(err)
					}
					return printData(image)
				},
			},
			{
				Name:      "delete",
				Usage:     "remove an image",
				ArgsUsage: "<id>",
				Action: deleteAction("image", func(ctx context.Context, c *api.Client, id int64) error {
					return c.Images.Delete(ctx, id)
				}),
			},
		},
	}
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "manage accounts (admin)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list users",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					users, err := client.Users.List(ctx)
					if err != nil {
						return friendly(err)
					}
					return printData(users)
				},
			},
			{
				Name:      "get",
				Usage:     "show one user",
				ArgsUsage: "<id>",
				Action: getAction(func(ctx context.Context, c *api.Client, id int64) (*api.User, error) {
					return c.Users.Get(ctx, id)
				}),
			},
			{
				Name:  "create",
				Usage: "register a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "account username", Required: true},
					&cli.StringFlag{Name: "email", Usage: "account email"},
					&cli.StringFlag{Name: "role", Usage: "user|admin"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					client, err := clientFromCommand(ctx, cmd)
					if err != nil {
						return err
					}
					user, err := client.Users.Create(ctx, api.UserInput{
						Username: cmd.String("username"),
						Email:    cmd.String("email"),
						Role:     cmd.String("role"),
					})
					if err != nil {
						return friendly(err)
					}
					return printData(user)
				},
			},
			{
				Name:      "delete",
				Usage:     "remove a user",
				ArgsUsage: "<id>",
				Action: deleteAction("user", func(ctx context.Context, c *api.Client, id int64) error {
					return c.Users.Delete(ctx, id)
				}),
			},
		},
	}
}
