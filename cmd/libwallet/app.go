package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bitfsorg/libwallet-go/chain"
	"github.com/bitfsorg/libwallet-go/config"
	"github.com/bitfsorg/libwallet-go/network"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	reader  *bufio.Reader
	closers []io.Closer

	cfg   config.Config
	chain *chain.Params
	log   *log.Logger

	// persistent flags
	dataDir      string
	configPath   string
	chainFlag    string
	networkFlag  string
	logLevel     string
	passwordFile string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut}
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
	a.closers = nil
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:               "libwallet",
		Short:             "Deterministic multi-chain wallet",
		Version:           fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.dataDir, "datadir", "", "data directory (default ~/.libwallet)")
	pf.StringVar(&a.configPath, "config", "", "config file (default <datadir>/config)")
	pf.StringVar(&a.chainFlag, "chain", "", "chain ticker, see `libwallet paths`")
	pf.StringVar(&a.networkFlag, "network", "", "mainnet, testnet or regtest")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&a.passwordFile, "password-file", "", "read passwords from this file instead of prompting")

	root.AddCommand(
		a.initCmd(),
		a.deriveCmd(),
		a.fingerprintCmd(),
		a.pathsCmd(),
		a.keystoreCmd(),
		a.balanceCmd(),
		a.sendCmd(),
		a.configCmd(),
	)
	return root
}

// setup resolves configuration with priority flags > environment > file >
// defaults, then configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	dataDir := a.dataDir
	if dataDir == "" {
		dataDir = os.Getenv("LIBWALLET_DATADIR")
	}
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	path := a.configPath
	if path == "" {
		path = config.ConfigPath(dataDir)
	}

	cfg, err := config.LoadConfig(path)
	if errors.Is(err, config.ErrConfigNotFound) && a.configPath == "" {
		cfg, err = config.LoadEnv()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("datadir") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("chain") {
		cfg.Chain = strings.ToUpper(a.chainFlag)
	}
	if flags.Changed("network") {
		cfg.Network = a.networkFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	// A testnet chain picked on the command line implies a testnet network.
	if flags.Changed("chain") && !flags.Changed("network") {
		if p, err := chain.Lookup(cfg.Chain); err == nil && !p.IsMainNet() && cfg.Network == "mainnet" {
			cfg.Network = "testnet"
		}
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	params, err := chain.Lookup(cfg.Chain)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.chain = params
	return a.setupLogging()
}

func (a *app) setupLogging() error {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(strings.ToLower(a.cfg.LogLevel))
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	var out io.Writer = a.errOut
	if a.cfg.LogFile != "" {
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		out = io.MultiWriter(a.errOut, f)
	}
	logger.SetOutput(out)

	a.log = logger
	log.SetOutput(out)
	log.SetLevel(level)
	return nil
}

// provider builds the guarded RPC backend from the resolved config.
func (a *app) provider() (network.Provider, error) {
	rpcCfg, err := network.ResolveConfig(&network.RPCConfig{
		URL:      a.cfg.RPCURL,
		User:     a.cfg.RPCUser,
		Password: a.cfg.RPCPassword,
	}, nil, a.cfg.Network)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(log.Fields{"url": rpcCfg.URL, "network": rpcCfg.Network}).Debug("using rpc backend")
	client := network.NewRPCClient(*rpcCfg, network.WithLogger(a.log))
	return network.NewGuardedProvider(client, network.GuardConfig{Name: "rpc"}, a.log), nil
}

// lockDataDir holds the data directory lock until the app is closed.
func (a *app) lockDataDir() error {
	l, err := config.LockDataDir(a.cfg.DataDir)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, l)
	return nil
}

func (a *app) stdin() *bufio.Reader {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	return a.reader
}

// readLine reads one line from stdin without the trailing newline.
func (a *app) readLine() (string, error) {
	line, err := a.stdin().ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword returns the password from --password-file, a terminal prompt
// or the next stdin line, in that order.
func (a *app) readPassword(prompt string) (string, error) {
	if a.passwordFile != "" {
		data, err := os.ReadFile(a.passwordFile)
		if err != nil {
			return "", fmt.Errorf("read password file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(a.errOut, prompt)
		pw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("could not read password: %w", err)
		}
		return string(pw), nil
	}
	return a.readLine()
}

// readNewPassword asks twice when prompting interactively.
func (a *app) readNewPassword() (string, error) {
	pw, err := a.readPassword("New password: ")
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", errors.New("password must not be empty")
	}
	if f, ok := a.in.(*os.File); ok && a.passwordFile == "" && term.IsTerminal(int(f.Fd())) {
		again, err := a.readPassword("Repeat password: ")
		if err != nil {
			return "", err
		}
		if again != pw {
			return "", errors.New("passwords do not match")
		}
	}
	return pw, nil
}
