package command

import (
	commandHandler "packetlog/internal/command/handler"

	"github.com/google/wire"
	"github.com/spf13/cobra"
)

var ProviderSet = wire.NewSet(NewCommand, commandHandler.NewMigrateHandler)

// AnnotationOffline marks subcommands that never open the database, so the
// DSN is not required for them.
const AnnotationOffline = "offline"

// Offline reports whether cmd runs without a database connection.
func Offline(cmd *cobra.Command) bool {
	return cmd.Annotations[AnnotationOffline] == "true"
}

type Command struct {
	migrateCommandHandler *commandHandler.MigrateHandler
}

// NewCommand .
func NewCommand(
	migrateCommandHandler *commandHandler.MigrateHandler,
) *Command {
	return &Command{
		migrateCommandHandler: migrateCommandHandler,
	}
}

// Register adds the subcommands. newCmd connects to the database;
// newFields only needs the configuration.
func Register(
	rootCmd *cobra.Command,
	newCmd func() (*Command, func(), error),
	newFields func() (*commandHandler.FieldsHandler, error),
) {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "create the log table for the active schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				command, cleanup, err := newCmd()
				if err != nil {
					return err
				}
				defer cleanup()

				return command.migrateCommandHandler.Migrate(cmd, args)
			},
		},
		&cobra.Command{
			Use:         "fields",
			Short:       "print the input key to column mapping of the active schema",
			Long:        "Print the input key to column mapping of the active schema. DATABASE_URL is not required.",
			Annotations: map[string]string{AnnotationOffline: "true"},
			RunE: func(cmd *cobra.Command, args []string) error {
				fields, err := newFields()
				if err != nil {
					return err
				}
				fields.Print(cmd, args)
				return nil
			},
		},
	)
}
