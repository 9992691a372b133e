/*
Copyright 2023 The Kubernetes-CSI-Addons Authors.

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

package util

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	kerrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// DescribeFailurePolicy decides what happens to a volume group that
// cannot be described.
type DescribeFailurePolicy string

const (
	// DescribeFailureProceed treats the volume group as having no VMs and
	// no disks attached.
	DescribeFailureProceed DescribeFailurePolicy = "proceed"
	// DescribeFailureSkip leaves the volume group untouched.
	DescribeFailureSkip DescribeFailurePolicy = "skip"
)

// ParseDescribeFailurePolicy validates and returns the policy named by s.
func ParseDescribeFailurePolicy(s string) (DescribeFailurePolicy, error) {
	switch p := DescribeFailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DescribeFailureProceed, DescribeFailureSkip:
		return p, nil
	default:
		return "", fmt.Errorf("invalid describe failure policy %q, must be %q or %q",
			s, DescribeFailureProceed, DescribeFailureSkip)
	}
}

// Config holds the configuration options that
// can be overrrided via a config map.
type Config struct {
	Timeout               time.Duration
	ActionTimeout         time.Duration
	DescribeFailurePolicy DescribeFailurePolicy
	FailOnError           bool
	ACLIPath              string
}

const (
	TimeoutKey               = "timeout"
	ActionTimeoutKey         = "action-timeout"
	DescribeFailurePolicyKey = "on-describe-failure"
	FailOnErrorKey           = "fail-on-error"
	ACLIPathKey              = "acli-path"
	defaultTimeout           = time.Second * 30
	defaultActionTimeout     = time.Second * 20
	defaultACLIPath          = "acli"
)

// NewConfig returns a new Config object with default values.
func NewConfig() Config {
	return Config{
		Timeout:               defaultTimeout,
		ActionTimeout:         defaultActionTimeout,
		DescribeFailurePolicy: DescribeFailureProceed,
		ACLIPath:              defaultACLIPath,
	}
}

// ReadConfigMap fetches the config map and updates the
// config options with values read from it. A missing
// config map leaves the config unchanged.
func (cfg *Config) ReadConfigMap(ctx context.Context, kubeClient kubernetes.Interface, namespace, name string) error {
	cm, err := kubeClient.CoreV1().ConfigMaps(namespace).
		Get(ctx, name, metav1.GetOptions{})
	if kerrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get configmap %q: %w", namespace+"/"+name, err)
	}

	return cfg.readConfig(cm.Data)
}

// readConfig reads the config dataMap and updates the
// config options.
func (cfg *Config) readConfig(dataMap map[string]string) error {
	for key, val := range dataMap {
		switch key {
		case TimeoutKey:
			timeout, err := parseTimeout(val)
			if err != nil {
				return fmt.Errorf("failed to parse key %q value %q as duration: %w",
					TimeoutKey, val, err)
			}
			cfg.Timeout = timeout

		case ActionTimeoutKey:
			timeout, err := parseTimeout(val)
			if err != nil {
				return fmt.Errorf("failed to parse key %q value %q as duration: %w",
					ActionTimeoutKey, val, err)
			}
			cfg.ActionTimeout = timeout

		case DescribeFailurePolicyKey:
			policy, err := ParseDescribeFailurePolicy(val)
			if err != nil {
				return fmt.Errorf("failed to parse key %q: %w", DescribeFailurePolicyKey, err)
			}
			cfg.DescribeFailurePolicy = policy

		case FailOnErrorKey:
			failOnError, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("failed to parse key %q value %q as bool: %w",
					FailOnErrorKey, val, err)
			}
			cfg.FailOnError = failOnError

		case ACLIPathKey:
			if val == "" {
				return fmt.Errorf("key %q must not be empty", ACLIPathKey)
			}
			cfg.ACLIPath = val

		default:
			return fmt.Errorf("unknown config key %q", key)
		}
	}

	return nil
}

// parseTimeout accepts a plain number of seconds or a duration string.
func parseTimeout(val string) (time.Duration, error) {
	var timeout time.Duration
	if seconds, err := strconv.Atoi(val); err == nil {
		timeout = time.Duration(seconds) * time.Second
	} else {
		timeout, err = time.ParseDuration(val)
		if err != nil {
			return 0, err
		}
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	return timeout, nil
}

// ParseNamespacedName splits a "namespace/name" reference.
func ParseNamespacedName(ref string) (string, string, error) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid reference %q, expected <namespace>/<name>", ref)
	}

	return parts[0], parts[1], nil
}
