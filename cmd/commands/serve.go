package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/go-petr/lifemanager/cmd/httpserver"
	"github.com/go-petr/lifemanager/pkg/eventpkg"
	"github.com/go-petr/lifemanager/pkg/mailpkg"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.logger.WithContext(cmd.Context())

		rdb, err := a.redis(ctx)
		if err != nil {
			return err
		}
		defer rdb.Close()

		sender, err := mailpkg.New(a.config.MailBackend, mailpkg.SMTPConfig{
			Host:     a.config.SMTPHost,
			Port:     a.config.SMTPPort,
			Username: a.config.SMTPUsername,
			Password: a.config.SMTPPassword,
			From:     a.config.MailFrom,
		}, a.logger)
		if err != nil {
			a.logger.Error().Err(err).Msg("cannot create mail sender")
			return err
		}

		publisher := eventpkg.New(a.config.Brokers(), a.config.KafkaTransferTopic)
		if c, ok := publisher.(io.Closer); ok {
			defer c.Close()
		}

		server, err := httpserver.New(a.db, a.logger, a.config, httpserver.Dependencies{
			Redis:     rdb,
			Mailer:    mailpkg.NewResilientSender(sender, mailpkg.DefaultResilientConfig(), a.logger),
			Publisher: publisher,
		})
		if err != nil {
			a.logger.Error().Err(err).Msg("cannot create server")
			return err
		}

		a.logger.Info().Str("address", a.config.ServerAddress).Msg("LIFEMANAGER API SERVER HAS STARTED")

		if err := server.Engine.Run(a.config.ServerAddress); err != nil {
			a.logger.Error().Err(err).Msg("cannot start server")
			return err
		}

		return nil
	},
}
