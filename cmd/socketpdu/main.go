package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/opd-ai/socketpdu"
	"github.com/opd-ai/socketpdu/bus"
	"github.com/opd-ai/socketpdu/config"
	"github.com/opd-ai/socketpdu/pdu"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// Output formats for published PDUs.
const (
	FormatHex  = "hex"
	FormatCBOR = "cbor"
)

// outboundQueue is the capacity of the memory port between bridge and stdout.
const outboundQueue = 256

// CLIConfig holds the parsed command line.
type CLIConfig struct {
	configFile string
	mode       config.Mode
	address    string
	port       string
	mtu        int
	noDelay    bool
	format     string
	logLevel   string
	help       bool

	flags *pflag.FlagSet
}

// parseCLIFlags parses args (without the program name).
func parseCLIFlags(args []string) (*CLIConfig, error) {
	cli := &CLIConfig{}
	fs := pflag.NewFlagSet("socketpdu", pflag.ContinueOnError)
	defaults := config.Default()

	fs.StringVarP(&cli.configFile, "config", "c", "", "YAML configuration file")
	fs.Var(&cli.mode, "mode", "Socket mode (TCP_SERVER, TCP_CLIENT, UDP_SERVER, UDP_CLIENT)")
	fs.StringVarP(&cli.address, "address", "a", "", "Host or IPv4 address (empty binds all interfaces)")
	fs.StringVarP(&cli.port, "port", "p", "", "Port number or service name")
	fs.IntVar(&cli.mtu, "mtu", defaults.MTU, "Maximum bytes per socket write")
	fs.BoolVar(&cli.noDelay, "no-delay", defaults.NoDelay, "Disable Nagle's algorithm on TCP sockets")
	fs.StringVarP(&cli.format, "format", "f", FormatHex, "Output format for received PDUs (hex, cbor)")
	fs.StringVar(&cli.logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.BoolVarP(&cli.help, "help", "h", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cli.flags = fs
	return cli, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer, cli *CLIConfig) {
	fmt.Fprintln(w, "Socket PDU bridge")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Relays stdin lines to a socket and socket reads to stdout.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s [options]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprint(w, cli.flags.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s --mode UDP_SERVER --port 9999\n", os.Args[0])
	fmt.Fprintf(w, "  %s --mode TCP_CLIENT --address 127.0.0.1 --port 8888 --no-delay\n", os.Args[0])
}

// validateCLIConfig checks the options that are not part of config.Config.
func validateCLIConfig(cli *CLIConfig) error {
	switch cli.format {
	case FormatHex, FormatCBOR:
	default:
		return fmt.Errorf("unknown output format %q", cli.format)
	}

	if _, err := logrus.ParseLevel(cli.logLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

// buildConfig merges defaults, the config file, the environment and the
// flags that were set explicitly.
func buildConfig(cli *CLIConfig) (config.Config, error) {
	cfg := config.Default()
	if cli.configFile != "" {
		loaded, err := config.LoadFile(cli.configFile)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	config.ApplyEnvironmentOverrides(&cfg)

	if cli.flags.Changed("mode") {
		cfg.Mode = cli.mode
	}
	if cli.flags.Changed("address") {
		cfg.Address = cli.address
	}
	if cli.flags.Changed("port") {
		cfg.Port = cli.port
	}
	if cli.flags.Changed("mtu") {
		cfg.MTU = cli.mtu
	}
	if cli.flags.Changed("no-delay") {
		cfg.NoDelay = cli.noDelay
	}

	return cfg, cfg.Validate()
}

// setupLogging configures the standard logger to write to stderr.
func setupLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// outputWriter writes published PDUs in the selected format.
type outputWriter struct {
	w   io.Writer
	enc *pdu.Encoder
}

func newOutputWriter(w io.Writer, format string) *outputWriter {
	ow := &outputWriter{w: w}
	if format == FormatCBOR {
		ow.enc = pdu.NewEncoder(w)
	}
	return ow
}

func (o *outputWriter) Write(p pdu.PDU) error {
	if o.enc != nil {
		return o.enc.Encode(p)
	}
	_, err := fmt.Fprintln(o.w, hex.EncodeToString(p.Payload))
	return err
}

// readInbound delivers every line of r to port until r is exhausted or ctx
// is cancelled.
func readInbound(ctx context.Context, r io.Reader, port *bus.MemoryPort) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if err := port.Deliver(pdu.FromBytes([]byte(line))); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// run hosts a bridge until ctx is cancelled or the bridge reports a fault.
func run(ctx context.Context, cfg config.Config, format string, stdin io.Reader, stdout io.Writer) error {
	log := logrus.WithFields(logrus.Fields{
		"component": "socketpdu",
		"mode":      cfg.Mode.String(),
	})

	port := bus.NewMemoryPort(outboundQueue)
	bridge, err := socketpdu.New(ctx, cfg, port, socketpdu.WithLogger(log))
	if err != nil {
		return err
	}
	defer bridge.Stop()

	log.WithField("local_addr", bridge.LocalAddr().String()).Info("Bridge ready")

	inputDone := make(chan error, 1)
	go func() {
		inputDone <- readInbound(ctx, stdin, port)
	}()

	out := newOutputWriter(stdout, format)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-inputDone:
			inputDone = nil
			if err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("Stopped reading stdin")
			} else {
				log.Debug("Reached end of stdin")
			}
		case p := <-port.Outbound():
			if err := out.Write(p); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		case fault, ok := <-bridge.Faults():
			if !ok {
				return nil
			}
			return fault
		}
	}
}

// setupSignalHandling cancels the context on interrupt or termination.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logrus.WithField("signal", sig.String()).Info("Received signal, shutting down")
		cancel()
	}()
}

func main() {
	cli, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cli.help {
		printUsage(os.Stdout, cli)
		os.Exit(0)
	}

	if err := validateCLIConfig(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use --help for usage information.\n")
		os.Exit(1)
	}

	setupLogging(cli.logLevel)

	cfg, err := buildConfig(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	if err := run(ctx, cfg, cli.format, os.Stdin, os.Stdout); err != nil {
		logrus.WithError(err).Error("Bridge failed")
		os.Exit(1)
	}
}
