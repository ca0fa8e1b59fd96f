package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// listFlags are the query flags shared by the entry commands.
type listFlags struct {
	sort             []string
	fields           []string
	locale           []string
	filter           string
	populate         string
	publicationState string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.sort, "sort", nil, "sort expressions (title, createdAt:desc)")
	cmd.Flags().StringSliceVar(&f.fields, "fields", nil, "fields to return")
	cmd.Flags().StringSliceVar(&f.locale, "locale", nil, "locales to return")
	cmd.Flags().StringVar(&f.filter, "filter", "", "filter tree as JSON")
	cmd.Flags().StringVar(&f.populate, "populate", "", "relations to populate (*, a,b, or JSON)")
	cmd.Flags().StringVar(&f.publicationState, "publication-state", "", "live or preview")
}

func (f *listFlags) params() (*strapi.Params, error) {
	return buildParams(f.sort, f.fields, f.locale, f.filter, f.populate, f.publicationState)
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "get <type> [id]",
		Short: "Get one entry",
		Long:  "Fetch one entry by id, the single entry of a single type, or the first matching entry",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params, err := flags.params()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var entity strapi.Entity

			if len(args) == 2 {
				entity, err = client.FetchByID(ctx, args[0], args[1], params)
			} else {
				entity, err = client.FetchFirst(ctx, args[0], params)
			}

			if err != nil {
				return err
			}

			if entity == nil {
				cmd.Println("No matching entry")

				return nil
			}

			return renderEntity(entity)
		},
	}

	flags.register(cmd)

	return cmd
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		flags    listFlags
		page     int
		pageSize int
		start    int
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List entries",
		Long:  "Fetch one page of entries of a content type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params, err := flags.params()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var collection *strapi.Collection

			switch {
			case cmd.Flags().Changed("start") || cmd.Flags().Changed("limit"):
				collection, err = client.FetchManyOffsetPaginated(ctx, args[0], params, start, limit)
			case page > 0 || pageSize > 0:
				collection, err = client.FetchManyPagePaginated(ctx, args[0], params, page, pageSize)
			default:
				collection, err = client.FetchMany(ctx, args[0], params)
			}

			if err != nil {
				return err
			}

			return renderEntities(collection.Items, collection.Pagination)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size")
	cmd.Flags().IntVar(&start, "start", 0, "offset start")
	cmd.Flags().IntVar(&limit, "limit", 0, "offset limit")

	return cmd
}

// NewAllCommand creates the all command.
func NewAllCommand() *cobra.Command {
	var (
		flags    listFlags
		pageSize int
		maxPages int
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "all <type>",
		Short: "Fetch every entry",
		Long:  "Traverse the whole collection window by window and print every entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params, err := flags.params()
			if err != nil {
				return err
			}

			entities, err := client.FetchAll(context.Background(), args[0], params, strapi.TraversalOptions{
				PageSize: pageSize,
				Timeout:  timeout,
				MaxPages: maxPages,
			})
			if err != nil {
				return err
			}

			return renderEntities(entities, nil)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "traversal window size")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum number of page requests")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock budget for the traversal")

	return cmd
}

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "create <type>",
		Short: "Create an entry",
		Long:  "Create an entry from inline JSON or a JSON file (--data @entry.json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			fields, err := parseData(data)
			if err != nil {
				return err
			}

			entity, err := client.Create(context.Background(), args[0], fields, nil)
			if err != nil {
				return err
			}

			return renderEntity(entity)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "entry fields as JSON, or @file")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "update <type> <id>",
		Short: "Update an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			fields, err := parseData(data)
			if err != nil {
				return err
			}

			entity, err := client.Update(context.Background(), args[0], args[1], fields, nil)
			if err != nil {
				return err
			}

			return renderEntity(entity)
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "entry fields as JSON, or @file")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <type> <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			entity, err := client.Delete(context.Background(), args[0], args[1], nil)
			if err != nil {
				return err
			}

			cmd.Printf("Deleted %s %s\n", args[0], entity.IDString())

			return nil
		},
	}
}

// NewEndpointCommand creates the endpoint command.
func NewEndpointCommand() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "endpoint <type> [id]",
		Short: "Print the resolved request path",
		Long:  "Resolve a content type to its request path and query string without issuing a request",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params, err := flags.params()
			if err != nil {
				return err
			}

			id := ""
			if len(args) == 2 {
				id = args[1]
			}

			endpoint, err := client.GetEndpoint(args[0], id, params)
			if err != nil {
				return err
			}

			cmd.Println(endpoint)

			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
