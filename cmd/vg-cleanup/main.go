/*
Copyright 2026 The Kubernetes-CSI-Addons Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"k8s.io/client-go/kubernetes"
	"k8s.io/klog/v2"
	"sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/csi-addons/vg-cleanup/internal/teardown"
	"github.com/csi-addons/vg-cleanup/internal/util"
	"github.com/csi-addons/vg-cleanup/internal/version"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors caused by invalid command line arguments.
var errUsage = errors.New("usage error")

// command contains the parsed arguments.
type command struct {
	operation   string
	prefix      string
	volumeGroup string
	dryRun      bool
	force       bool
	verbose     bool
	showVersion bool

	timeout               int
	actionTimeout         time.Duration
	describeFailurePolicy string
	failOnError           bool
	acliPath              string

	sshHost       string
	sshUser       string
	sshKey        string
	sshKnownHosts string

	configMap   string
	schedule    string
	metricsFile string

	// cfg is the resolved configuration, set by resolveConfig.
	cfg util.Config
}

// operation is the interface that all operations implement.
type operation interface {
	// Init validates the arguments and prepares the operation.
	Init(c *command) error
	// Connect sets up the executor the operation runs commands with.
	Connect(c *command, log logr.Logger) error
	// Execute runs the operation until it completes or ctx is done.
	Execute(ctx context.Context) error
}

// operations contains a list of all available operations.
var operations = make(map[string]operation)

// registerOperation adds a new operation struct to the operations map.
func registerOperation(name string, op operation) error {
	if _, ok := operations[name]; ok {
		return fmt.Errorf("operation %q is already registered", name)
	}

	operations[name] = op

	return nil
}

// listOperations returns a sorted list of all operations.
func listOperations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (c *command) bindFlags(fs *flag.FlagSet) {
	cfg := util.NewConfig()

	fs.StringVar(&c.operation, "operation", "Teardown", "operation to run, one of: "+strings.Join(listOperations(), ", "))
	fs.StringVar(&c.prefix, "prefix", "", "volume group name prefix to match (required)")
	fs.StringVar(&c.volumeGroup, "volume-group", "", "volume group to inspect")
	fs.BoolVar(&c.dryRun, "dry-run", false, "perform a dry run, no changes are made")
	fs.BoolVar(&c.force, "force", false, "detach attached VMs instead of skipping the volume group (USE WITH CAUTION)")
	fs.BoolVar(&c.verbose, "verbose", false, "enable verbose output")
	fs.BoolVar(&c.showVersion, "version", false, "print version details")

	fs.IntVar(&c.timeout, "timeout", int(cfg.Timeout/time.Second), "timeout in seconds for listing and describing volume groups")
	fs.DurationVar(&c.actionTimeout, "action-timeout", cfg.ActionTimeout, "timeout for every detach and delete command")
	fs.StringVar(&c.describeFailurePolicy, "on-describe-failure", string(cfg.DescribeFailurePolicy),
		"what to do with a volume group that cannot be described, one of: proceed, skip")
	fs.BoolVar(&c.failOnError, "fail-on-error", cfg.FailOnError, "exit with a non-zero code when a volume group was not deleted")
	fs.StringVar(&c.acliPath, "acli-path", cfg.ACLIPath, "path of the acli binary")

	fs.StringVar(&c.sshHost, "ssh-host", "", "run acli on this CVM over SSH instead of locally")
	fs.StringVar(&c.sshUser, "ssh-user", "nutanix", "SSH user")
	fs.StringVar(&c.sshKey, "ssh-key", "", "SSH private key file")
	fs.StringVar(&c.sshKnownHosts, "ssh-known-hosts", "", "SSH known_hosts file used to verify the CVM host key")

	fs.StringVar(&c.configMap, "config-map", "", "ConfigMap with configuration overrides, in the format `namespace/name`")
	fs.StringVar(&c.schedule, "schedule", "", "cron schedule, run repeatedly until interrupted")
	fs.StringVar(&c.metricsFile, "metrics-file", "", "write the run summary in the Prometheus text format to this file")
}

// validateArgs checks the arguments that do not depend on the ConfigMap,
// so that usage errors are reported before anything is contacted.
func (c *command) validateArgs(fs *flag.FlagSet) error {
	switch c.operation {
	case "Inspect":
		if c.volumeGroup == "" {
			return fmt.Errorf("%w: volume-group not set", errUsage)
		}
	default:
		if c.prefix == "" {
			return fmt.Errorf("%w: %v", errUsage, teardown.ErrPrefixRequired)
		}
	}

	if c.configMap != "" {
		if _, _, err := util.ParseNamespacedName(c.configMap); err != nil {
			return fmt.Errorf("%w: invalid config-map: %v", errUsage, err)
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "timeout":
			if c.timeout <= 0 {
				err = fmt.Errorf("%w: timeout must be positive, got %d", errUsage, c.timeout)
			}
		case "action-timeout":
			if c.actionTimeout <= 0 {
				err = fmt.Errorf("%w: action-timeout must be positive, got %s", errUsage, c.actionTimeout)
			}
		case "on-describe-failure":
			if _, perr := util.ParseDescribeFailurePolicy(c.describeFailurePolicy); perr != nil {
				err = fmt.Errorf("%w: %v", errUsage, perr)
			}
		case "acli-path":
			if c.acliPath == "" {
				err = fmt.Errorf("%w: acli-path must not be empty", errUsage)
			}
		}
	})

	return err
}

// newKubeClient returns the client used to read the ConfigMap.
var newKubeClient = func() (kubernetes.Interface, error) {
	kubeConfig, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get kubeconfig: %w", err)
	}

	return kubernetes.NewForConfig(kubeConfig)
}

// resolveConfig merges the defaults, the optional ConfigMap and the
// flags. A flag given on the command line wins over the ConfigMap.
func (c *command) resolveConfig(ctx context.Context, fs *flag.FlagSet) error {
	cfg := util.NewConfig()

	if c.configMap != "" {
		namespace, name, err := util.ParseNamespacedName(c.configMap)
		if err != nil {
			return fmt.Errorf("%w: invalid config-map: %v", errUsage, err)
		}
		kubeClient, err := newKubeClient()
		if err != nil {
			return fmt.Errorf("unable to create client: %w", err)
		}
		if err = cfg.ReadConfigMap(ctx, kubeClient, namespace, name); err != nil {
			return fmt.Errorf("unable to read configmap: %w", err)
		}
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	if explicit["timeout"] || c.configMap == "" {
		if c.timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive, got %d", errUsage, c.timeout)
		}
		cfg.Timeout = time.Duration(c.timeout) * time.Second
	}
	if explicit["action-timeout"] || c.configMap == "" {
		if c.actionTimeout <= 0 {
			return fmt.Errorf("%w: action-timeout must be positive, got %s", errUsage, c.actionTimeout)
		}
		cfg.ActionTimeout = c.actionTimeout
	}
	if explicit["on-describe-failure"] || c.configMap == "" {
		policy, err := util.ParseDescribeFailurePolicy(c.describeFailurePolicy)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		cfg.DescribeFailurePolicy = policy
	}
	if explicit["fail-on-error"] || c.configMap == "" {
		cfg.FailOnError = c.failOnError
	}
	if explicit["acli-path"] || c.configMap == "" {
		if c.acliPath == "" {
			return fmt.Errorf("%w: acli-path must not be empty", errUsage)
		}
		cfg.ACLIPath = c.acliPath
	}

	c.cfg = cfg

	return nil
}

func main() {
	c := &command{}
	c.bindFlags(flag.CommandLine)
	opts := zap.Options{
		TimeEncoder: zapcore.ISO8601TimeEncoder,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	if c.showVersion {
		version.PrintVersion()
		return
	}

	if c.verbose {
		opts.Level = zapcore.DebugLevel
	}
	log := zap.New(zap.UseFlagOptions(&opts))
	klog.SetLogger(log)

	code := run(c, flag.CommandLine, log)
	klog.Flush()
	os.Exit(code)
}

// run executes the selected operation and returns the exit code.
func run(c *command, fs *flag.FlagSet, log logr.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupLog := log.WithName("setup")
	setupLog.V(1).Info("Starting "+version.Program, version.Info()...)

	op, found := operations[c.operation]
	if !found {
		setupLog.Error(nil, "unknown operation", "operation", c.operation, "available", listOperations())
		return exitUsage
	}

	if err := c.validateArgs(fs); err != nil {
		setupLog.Error(err, "invalid arguments", "operation", c.operation)
		return exitUsage
	}

	if err := c.resolveConfig(ctx, fs); err != nil {
		setupLog.Error(err, "failed to resolve configuration")
		return exitCode(err)
	}

	if err := op.Init(c); err != nil {
		setupLog.Error(err, "failed to initialize operation", "operation", c.operation)
		return exitCode(err)
	}

	if err := op.Connect(c, log); err != nil {
		setupLog.Error(err, "failed to set up executor")
		return exitCode(err)
	}

	if err := op.Execute(ctx); err != nil {
		log.Error(err, "operation failed", "operation", c.operation)
		return exitError
	}

	return exitOK
}

func exitCode(err error) int {
	if errors.Is(err, errUsage) {
		return exitUsage
	}

	return exitError
}
