package commands

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/balkashynov/floortrack/internal/notify"
	"github.com/balkashynov/floortrack/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and live metrics stream",
	Long: `Run the HTTP API over the task lifecycle, recompute metrics whenever the
completion log changes and push them to stream subscribers.

Stops gracefully on SIGINT or SIGTERM.`,
	RunE: withApp(func(a *app, cmd *cobra.Command, args []string) error {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		gin.SetMode(a.cfg.Server.Mode)

		addr := a.cfg.Server.Addr
		if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
			addr = flagAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hub := notify.NewHub(log.New(os.Stderr, "[notify] ", log.LstdFlags|log.Lshortfile))
		pipeline := a.pipeline(hub, true, log.New(os.Stderr, "[metrics] ", log.LstdFlags|log.Lshortfile))

		// a pipeline that cannot start takes the server down with it
		pipeDone := make(chan error, 1)
		go func() {
			err := pipeline.Run(ctx)
			if err != nil {
				stop()
			}
			pipeDone <- err
		}()

		srv := server.New(server.Deps{
			Tasks:      a.manager,
			Users:      a.store,
			Categories: a.categories,
			Feed:       hub,
			Logger:     log.New(os.Stderr, "[server] ", log.LstdFlags|log.Lshortfile),
		})

		fmt.Printf("🚀 floortrack %s serving on %s (data in %s)\n", version, addr, a.cfg.DataDir)
		serveErr := srv.Run(ctx, addr)
		stop()
		if err := <-pipeDone; err != nil {
			return fmt.Errorf("metrics pipeline: %w", err)
		}
		if serveErr != nil {
			return fmt.Errorf("server: %w", serveErr)
		}
		return nil
	}),
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}
