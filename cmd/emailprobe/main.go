// Command emailprobe verifies email addresses from the command line and
// prints one JSON result per address.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/optimode/emailprobe"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "emailprobe",
		Short:        "Check whether email addresses are deliverable without sending mail",
		SilenceUsage: true,
	}
	root.AddCommand(newVerifyCmd())
	return root
}

type verifyFlags struct {
	configFile string
	proxyHost  string
	proxyPort  int
	timeout    Duration
	noDomain   bool
	noMailbox  bool
	strict     bool
	workers    int
	logLevel   string
	logFormat  LogFormat
}

func newVerifyCmd() *cobra.Command {
	f := &verifyFlags{}

	cmd := &cobra.Command{
		Use:   "verify <address>...",
		Short: "Verify one or more email addresses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := DefaultConfig()
			if f.configFile != "" {
				var err error
				if conf, err = LoadConfig(f.configFile, conf); err != nil {
					return err
				}
			}
			f.apply(cmd.Flags(), &conf)

			logger, err := newLogger(conf, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runVerify(cmd.Context(), conf, logger, args, cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "TOML config file")
	fl.StringVar(&f.proxyHost, "proxy-host", "", "SOCKS5 proxy host")
	fl.IntVar(&f.proxyPort, "proxy-port", 0, "SOCKS5 proxy port")
	fl.Var(&f.timeout, "timeout", "connect and session timeout, e.g. 10s")
	fl.BoolVar(&f.noDomain, "no-domain", false, "skip the MX based domain check")
	fl.BoolVar(&f.noMailbox, "no-mailbox", false, "skip the SMTP mailbox probe")
	fl.BoolVar(&f.strict, "strict", false, "apply strict RFC 5321 syntax rules")
	fl.IntVar(&f.workers, "workers", 0, "number of addresses verified concurrently")
	fl.StringVar(&f.logLevel, "log-level", "", "log level (debug shows the SMTP dialogue)")
	fl.Var(&f.logFormat, "log-format", "log output format \"json\" or \"text\"")
	return cmd
}

// apply copies explicitly set flags over conf.
func (f *verifyFlags) apply(fs *pflag.FlagSet, conf *Config) {
	if fs.Changed("proxy-host") {
		conf.Proxy.Host = f.proxyHost
	}
	if fs.Changed("proxy-port") {
		conf.Proxy.Port = f.proxyPort
	}
	if fs.Changed("timeout") {
		conf.Verify.Timeout = f.timeout
	}
	if fs.Changed("no-domain") {
		conf.Verify.Domain = !f.noDomain
	}
	if fs.Changed("no-mailbox") {
		conf.Verify.Mailbox = !f.noMailbox
	}
	if fs.Changed("strict") {
		conf.Verify.Strict = f.strict
	}
	if fs.Changed("workers") {
		conf.Verify.Workers = f.workers
	}
	if fs.Changed("log-level") {
		conf.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		conf.Log.Format = f.logFormat
	}
}

func newLogger(conf Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.Out = out

	level, err := logrus.ParseLevel(conf.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Log.Level, err)
	}
	logger.Level = level

	if conf.Log.Format == LFJSON {
		logger.Formatter = &logrus.JSONFormatter{}
	}
	return logger, nil
}

func runVerify(ctx context.Context, conf Config, logger *logrus.Logger, addresses []string, out io.Writer) error {
	v := emailprobe.New(emailprobe.Options{
		Timeout:       conf.Verify.Timeout.AsDuration(),
		VerifyDomain:  conf.Verify.Domain,
		VerifyMailbox: conf.Verify.Mailbox,
		StrictSyntax:  conf.Verify.Strict,
	}).
		WithProbe(emailprobe.ProbeOptions{
			Port:     conf.Probe.Port,
			HeloName: conf.Probe.HeloName,
			MailFrom: conf.Probe.MailFrom,
			DenyList: conf.Probe.DenyList,
		}).
		WithProxyAuth(conf.Proxy.User, conf.Proxy.Password).
		WithTracer(emailprobe.NewLogrusTracer(logger))

	logger.WithFields(logrus.Fields{
		"addresses": len(addresses),
		"proxy":     emailprobe.ProxyEndpoint{Host: conf.Proxy.Host, Port: conf.Proxy.Port}.Address(),
	}).Debug("verifying")

	results, err := v.VerifyMany(ctx, addresses, conf.Proxy.Host, conf.Proxy.Port, emailprobe.ConcurrencyOptions{
		Workers: conf.Verify.Workers,
	})
	if err != nil {
		logger.WithError(err).Error("verification failed")
		return err
	}

	enc := json.NewEncoder(out)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
