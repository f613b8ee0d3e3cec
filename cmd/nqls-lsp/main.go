// Command nqls-lsp is a Language Server Protocol server for native queries.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/backend"
	"github.com/rlch/nqls/completion"
	"github.com/rlch/nqls/lsp"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "nqls-lsp",
		Version: version,
		Usage:   "Language server for native queries (speaks LSP over stdio)",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "log at debug level",
				Sources: cli.EnvVars("NQLS_LSP_DEBUG"),
			},
		},
		Action: serve,
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	// Set up logging to stderr (stdout is for LSP communication)
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	if cmd.Bool("debug") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting nqls-lsp server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return run(ctx, logger, os.Stdin, os.Stdout)
}

func run(ctx context.Context, logger *zap.Logger, in io.Reader, out io.Writer) error {
	// Create a JSON-RPC stream connection over stdio
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	// Create a client to send notifications to the editor
	client := protocol.ClientDispatcher(conn, logger)

	cfg, err := nqls.LoadConfig(".")
	if errors.Is(err, nqls.ErrConfigNotFound) {
		logger.Warn("No .nqls.yaml found; completion sources are disabled")

		cfg = &nqls.Config{}
	} else if err != nil {
		return err
	}

	opts := []lsp.Option{lsp.WithDebounce(cfg.DebounceInterval())}

	filter, err := completion.CompileFilter(cfg.Completion.Hide)
	if err != nil {
		return err
	}

	if filter != nil {
		opts = append(opts, lsp.WithFilter(filter))
	}

	var sources lsp.Sources

	b, err := backend.Open(ctx, cfg, logger)

	switch {
	case errors.Is(err, nqls.ErrNoSource):
		logger.Warn("No completion source configured")
	case err != nil:
		return err
	default:
		logger.Info("Completion source ready", zap.String("source", b.Describe()))

		sources = lsp.Sources{
			Schema:      b.Schema,
			Questions:   b.Questions,
			Snippets:    b.Snippets,
			QuestionURL: b.QuestionURL,
		}
	}

	server := lsp.NewServer(client, logger, sources, opts...)

	if b != nil {
		err = b.Watch(ctx, func() { server.Reanalyze(ctx) })
		if err != nil {
			logger.Warn("Source watch disabled", zap.Error(err))
		}
	}

	// Register the server handler with the connection
	conn.Go(ctx, protocol.ServerHandler(server, nil))

	// Wait for the connection to close
	<-conn.Done()

	return conn.Err()
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	// Close writer if it's closeable
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
