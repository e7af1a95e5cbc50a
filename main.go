package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krishnarg04/file-server/session"
)

var rootCmd = &cobra.Command{
	Use:   "file-server",
	Short: "a concurrent static file server over a fixed worker pool",
	Long: `
	file-server: serves files and directory listings from a root
	directory over plain HTTP/1.0, one request per connection,
	processed by a fixed-size worker pool.
`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("host", "127.0.0.1", "address to bind")
	flags.Int("port", 8123, "port to listen on")
	flags.Int("workers", session.DefaultWorkers, "number of workers")
	flags.Int("queue-depth", 0, "pending connection queue size (0 = 4x workers)")
	flags.Duration("read-timeout", session.DefaultReadTimeout, "request read timeout per connection")
	flags.String("root", "", "directory to serve (default: working directory)")
	flags.String("metrics-addr", "", "expose prometheus metrics here (off when empty)")
	flags.Bool("debug", false, "log at debug level")

	viper.BindPFlags(flags)
	viper.SetEnvPrefix("FILESERVER")
	viper.AutomaticEnv()
}

func run(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stdout)
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	root := viper.GetString("root")
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		root = wd
	}

	srv, err := session.New(session.Config{
		Addr:        fmt.Sprintf("%s:%d", viper.GetString("host"), viper.GetInt("port")),
		Root:        root,
		Workers:     viper.GetInt("workers"),
		QueueDepth:  viper.GetInt("queue-depth"),
		ReadTimeout: viper.GetDuration("read-timeout"),
	})
	if err != nil {
		return err
	}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		session.ServeMetrics(addr)
		log.Infof("metrics on http://%s/metrics", addr)
	}

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigC
		log.Infof("got %s, shutting down", sig)
		srv.Close()
	}()

	return srv.ListenAndServe()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithFields(log.Fields{"errmsg": err.Error()}).Error("[file-server]")
		os.Exit(1)
	}
}
