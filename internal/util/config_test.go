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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func TestConfigReadConfigFile(t *testing.T) {
	tests := []struct {
		name      string
		dataMap   map[string]string
		newConfig Config
		wantErr   bool
	}{
		{
			name:      "config map does not exist",
			dataMap:   nil,
			newConfig: NewConfig(),
			wantErr:   false,
		},
		{
			name:      "config map does exist but empty configuration",
			dataMap:   make(map[string]string),
			newConfig: NewConfig(),
			wantErr:   false,
		},
		{
			name: "config map modifies timeout in seconds",
			dataMap: map[string]string{
				"timeout": "60",
			},
			newConfig: Config{
				Timeout:               time.Minute,
				ActionTimeout:         defaultActionTimeout,
				DescribeFailurePolicy: DescribeFailureProceed,
				ACLIPath:              defaultACLIPath,
			},
			wantErr: false,
		},
		{
			name: "config map modifies timeout as duration",
			dataMap: map[string]string{
				"timeout": "2m",
			},
			newConfig: Config{
				Timeout:               time.Minute * 2,
				ActionTimeout:         defaultActionTimeout,
				DescribeFailurePolicy: DescribeFailureProceed,
				ACLIPath:              defaultACLIPath,
			},
			wantErr: false,
		},
		{
			name: "config map modifies timeout but invalid",
			dataMap: map[string]string{
				"timeout": "hours",
			},
			newConfig: NewConfig(),
			wantErr:   true,
		},
		{
			name: "config map modifies timeout but not positive",
			dataMap: map[string]string{
				"timeout": "0",
			},
			newConfig: NewConfig(),
			wantErr:   true,
		},
		{
			name: "config map modifies action-timeout",
			dataMap: map[string]string{
				"action-timeout": "45s",
			},
			newConfig: Config{
				Timeout:               defaultTimeout,
				ActionTimeout:         time.Second * 45,
				DescribeFailurePolicy: DescribeFailureProceed,
				ACLIPath:              defaultACLIPath,
			},
			wantErr: false,
		},
		{
			name: "config map modifies on-describe-failure to skip",
			dataMap: map[string]string{
				"on-describe-failure": "skip",
			},
			newConfig: Config{
				Timeout:               defaultTimeout,
				ActionTimeout:         defaultActionTimeout,
				DescribeFailurePolicy: DescribeFailureSkip,
				ACLIPath:              defaultACLIPath,
			},
			wantErr: false,
		},
		{
			name: "config map has invalid on-describe-failure",
			dataMap: map[string]string{
				"on-describe-failure": "abort",
			},
			newConfig: NewConfig(),
			wantErr:   true,
		},
		{
			name: "config map modifies fail-on-error and acli-path",
			dataMap: map[string]string{
				"fail-on-error": "true",
				"acli-path":     "/usr/local/nutanix/bin/acli",
			},
			newConfig: Config{
				Timeout:               defaultTimeout,
				ActionTimeout:         defaultActionTimeout,
				DescribeFailurePolicy: DescribeFailureProceed,
				FailOnError:           true,
				ACLIPath:              "/usr/local/nutanix/bin/acli",
			},
			wantErr: false,
		},
		{
			name: "config map has invalid fail-on-error",
			dataMap: map[string]string{
				"fail-on-error": "sometimes",
			},
			newConfig: NewConfig(),
			wantErr:   true,
		},
		{
			name: "config map has empty acli-path",
			dataMap: map[string]string{
				"acli-path": "",
			},
			newConfig: NewConfig(),
			wantErr:   true,
		},
		{
			name: "config map contains invalid option",
			dataMap: map[string]string{
				"reclaim-space-timeout": "3m",
			},
			newConfig: NewConfig(),
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		newtt := tt
		t.Run(newtt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			err := cfg.readConfig(newtt.dataMap)
			if newtt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, newtt.newConfig, cfg)
			}
		})
	}
}

func TestConfigReadConfigMap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("config map not found", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		err := cfg.ReadConfigMap(ctx, fake.NewSimpleClientset(), "kube-system", "vg-cleanup-config")
		require.NoError(t, err)
		assert.Equal(t, NewConfig(), cfg)
	})

	t.Run("config map overrides defaults", func(t *testing.T) {
		t.Parallel()
		client := fake.NewSimpleClientset(&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "vg-cleanup-config",
				Namespace: "kube-system",
			},
			Data: map[string]string{
				"timeout":             "10",
				"on-describe-failure": "skip",
			},
		})
		cfg := NewConfig()
		err := cfg.ReadConfigMap(ctx, client, "kube-system", "vg-cleanup-config")
		require.NoError(t, err)
		assert.Equal(t, time.Second*10, cfg.Timeout)
		assert.Equal(t, DescribeFailureSkip, cfg.DescribeFailurePolicy)
		assert.Equal(t, defaultActionTimeout, cfg.ActionTimeout)
	})

	t.Run("config map in another namespace is ignored", func(t *testing.T) {
		t.Parallel()
		client := fake.NewSimpleClientset(&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "vg-cleanup-config",
				Namespace: "default",
			},
			Data: map[string]string{
				"timeout": "10",
			},
		})
		cfg := NewConfig()
		err := cfg.ReadConfigMap(ctx, client, "kube-system", "vg-cleanup-config")
		require.NoError(t, err)
		assert.Equal(t, NewConfig(), cfg)
	})

	t.Run("config map with unknown key", func(t *testing.T) {
		t.Parallel()
		client := fake.NewSimpleClientset(&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      "vg-cleanup-config",
				Namespace: "kube-system",
			},
			Data: map[string]string{
				"prefix": "test-",
			},
		})
		cfg := NewConfig()
		err := cfg.ReadConfigMap(ctx, client, "kube-system", "vg-cleanup-config")
		assert.Error(t, err)
	})
}

func TestParseDescribeFailurePolicy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    DescribeFailurePolicy
		wantErr bool
	}{
		{in: "proceed", want: DescribeFailureProceed},
		{in: "skip", want: DescribeFailureSkip},
		{in: " Skip ", want: DescribeFailureSkip},
		{in: "", wantErr: true},
		{in: "abort", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDescribeFailurePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseNamespacedName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		ref           string
		wantNamespace string
		wantName      string
		wantErr       bool
	}{
		{
			name:          "valid reference",
			ref:           "kube-system/vg-cleanup-config",
			wantNamespace: "kube-system",
			wantName:      "vg-cleanup-config",
		},
		{
			name:    "missing namespace",
			ref:     "/vg-cleanup-config",
			wantErr: true,
		},
		{
			name:    "missing name",
			ref:     "kube-system/",
			wantErr: true,
		},
		{
			name:    "no separator",
			ref:     "vg-cleanup-config",
			wantErr: true,
		},
		{
			name:    "empty",
			ref:     "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		newtt := tt
		t.Run(newtt.name, func(t *testing.T) {
			t.Parallel()
			namespace, name, err := ParseNamespacedName(newtt.ref)
			if newtt.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, newtt.wantNamespace, namespace)
			assert.Equal(t, newtt.wantName, name)
		})
	}
}
