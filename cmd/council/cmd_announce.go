package main

import (
	"errors"

	"github.com/matst80/council-finder/pkg/server"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var announceCmd = &cobra.Command{
	Use:   "announce [municipality code...]",
	Short: "Tell running servers that municipality files were regenerated",
	Long: `announce publishes a data update so running servers drop the cached
stores of the given municipalities. Without codes every municipality is
considered changed.`,
	RunE: runAnnounce,
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if a.cfg.RabbitUrl == "" {
		return errors.New("no rabbit url configured (RABBIT_URL)")
	}
	for _, code := range args {
		if _, ok := a.catalog.Municipality(code); !ok {
			return errors.New("unknown municipality " + code)
		}
	}
	conn, err := amqp.Dial(a.cfg.RabbitUrl)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := server.AnnounceUpdate(conn, a.cfg.RabbitPrefix, args...); err != nil {
		return err
	}
	logger.Info("data update announced", zap.Strings("codes", args), zap.String("prefix", a.cfg.RabbitPrefix))
	return nil
}
