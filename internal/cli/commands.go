package cli

import (
	"context"
	"strings"

	"github.com/deppfellow/projects/internal/database"
	"github.com/deppfellow/projects/internal/model"
	"github.com/deppfellow/projects/internal/validation"
	"github.com/spf13/cobra"
)

func (c *Command) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.pipeline.Run(cmd.Context(), "list_projects", func(ctx context.Context) error {
				projects, err := c.app.Services.Projects.FetchAllProjects(ctx)
				if err != nil {
					return err
				}

				if c.opts.JSON {
					return c.out.JSON(projects)
				}

				if len(projects) == 0 {
					c.out.Muted("No projects yet.")
					return nil
				}

				c.out.Section("Projects:")
				for _, project := range projects {
					c.out.Line("  %d: %s", project.ProjectID, project.ProjectName)
				}
				return nil
			})
		},
	}
}

func (c *Command) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project with its materials, steps and categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := validation.ParseID(args[0])
			if err != nil {
				return err
			}

			return c.pipeline.Run(cmd.Context(), "show_project", func(ctx context.Context) error {
				project, err := c.app.Services.Projects.FetchProjectByID(ctx, projectID)
				if err != nil {
					return err
				}

				if c.opts.JSON {
					return c.out.JSON(project)
				}

				c.out.Line("%s", project)
				return nil
			})
		},
	}
}

func (c *Command) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and everything attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := validation.ParseID(args[0])
			if err != nil {
				return err
			}

			return c.pipeline.Run(cmd.Context(), "delete_project", func(ctx context.Context) error {
				if err := c.app.Services.Projects.DeleteProject(ctx, projectID); err != nil {
					return err
				}

				c.out.Success("Project %d was deleted successfully.", projectID)
				return nil
			})
		},
	}
}

func (c *Command) newCategoriesCommand() *cobra.Command {
	categories := &cobra.Command{
		Use:   "categories",
		Short: "Manage project categories",
	}

	categories.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories ordered by name",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.pipeline.Run(cmd.Context(), "list_categories", func(ctx context.Context) error {
					all, err := c.app.Services.Categories.FetchAllCategories(ctx)
					if err != nil {
						return err
					}

					if c.opts.JSON {
						return c.out.JSON(all)
					}

					c.out.Section("Categories:")
					for _, category := range all {
						c.out.Line("  %d: %s", category.CategoryID, category.CategoryName)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a category",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.pipeline.Run(cmd.Context(), "add_category", func(ctx context.Context) error {
					category, err := c.app.Services.Categories.AddCategory(ctx, &model.Category{
						CategoryName: strings.TrimSpace(strings.Join(args, " ")),
					})
					if err != nil {
						return err
					}

					c.out.Success("Category %d: %s was added.", category.CategoryID, category.CategoryName)
					return nil
				})
			},
		},
	)

	return categories
}

func (c *Command) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Apply the schema bundled with this binary.

Running it against an up-to-date database does nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.pipeline.Run(cmd.Context(), "migrate", func(ctx context.Context) error {
				if err := database.Migrate(ctx, c.app.Logger, c.app.DB); err != nil {
					return err
				}

				c.out.Success("Database schema is up to date.")
				return nil
			})
		},
	}
}
