package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaultsValidate(t *testing.T) {
	require.NoError(t, NewConfig().Validate())
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty client id", func(c *Config) { c.ClientID = "" }},
		{"zero dial timeout", func(c *Config) { c.Net.DialTimeout = 0 }},
		{"zero request timeout", func(c *Config) { c.Net.RequestTimeout = 0 }},
		{"zero metadata refresh", func(c *Config) { c.Metadata.RefreshFrequency = 0 }},
		{"bad required acks", func(c *Config) { c.Producer.RequiredAcks = 2 }},
		{"zero producer timeout", func(c *Config) { c.Producer.Timeout = 0 }},
		{"zero flush bytes", func(c *Config) { c.Producer.Flush.Bytes = 0 }},
		{"zero flush messages", func(c *Config) { c.Producer.Flush.Messages = 0 }},
		{"nil partitioner", func(c *Config) { c.Producer.Partitioner = nil }},
		{"too-small max wait", func(c *Config) { c.Consumer.MaxWaitTime = time.Millisecond }},
		{"zero session timeout", func(c *Config) { c.Consumer.Group.SessionTimeout = 0 }},
		{"zero commit every", func(c *Config) { c.Consumer.Offsets.CommitEvery = 0 }},
		{"nil metric registry", func(c *Config) { c.MetricRegistry = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			tc.mutate(conf)
			err := conf.Validate()
			require.Error(t, err)
			var cerr ConfigurationError
			require.ErrorAs(t, err, &cerr)
		})
	}
}
