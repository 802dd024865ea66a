package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// PingReport is what `projects ping --json` prints.
type PingReport struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	Environment  string    `json:"environment"`
	Database     string    `json:"database"`
	ResponseTime string    `json:"response_time"`
	Error        string    `json:"error,omitempty"`
}

// newPingCommand checks that the configured database accepts connections.
// A failure is reported, sent to New Relic as a custom event and returned
// so the process exits non-zero.
func (c *Command) newPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check the database connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.pipeline.Run(cmd.Context(), "ping", c.ping)
		},
	}
}

func (c *Command) ping(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	cfg := c.app.Config

	report := PingReport{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: cfg.Primary.Env,
		Database:    cfg.Database.Name,
	}

	start := time.Now()
	err := c.app.DB.Ping(ctx)
	elapsed := time.Since(start)
	report.ResponseTime = elapsed.String()

	if err != nil {
		report.Status = "unhealthy"
		report.Error = err.Error()

		log.Error().
			Err(err).
			Dur("response_time", elapsed).
			Msg("database ping failed")

		if nrApp := c.app.LoggerService.GetApplication(); nrApp != nil {
			nrApp.RecordCustomEvent("PingError", map[string]any{
				"check_type":       "database",
				"operation":        "ping",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
		}
	} else {
		log.Debug().
			Dur("response_time", elapsed).
			Msg("database ping passed")
	}

	if c.opts.JSON {
		if jsonErr := c.out.JSON(report); jsonErr != nil {
			return jsonErr
		}
	} else if err == nil {
		c.out.Success("Database %s is reachable (%s).", report.Database, report.ResponseTime)
	}

	return err
}
