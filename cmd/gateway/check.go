package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisShick/Throttle/middleware/throttle/domain"
)

// checkCmd valida a configuração sem abrir conexões e imprime o throttle efetivo.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Valida a configuração e mostra o throttle efetivo",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, v, err := loadConfig(cfgFile)
		if err != nil {
			return err
		}

		var rdb redis.Cmdable
		if cfg.needsRedis() {
			// sem ping: o cliente conecta de forma preguiçosa e o check não usa o store
			client := redis.NewClient(redisOptions(cfg.Redis))
			defer func() { _ = client.Close() }()
			rdb = client
		}

		gt, err := buildThrottle(cfg, v, rdb, prometheus.NewRegistry(), zap.NewNop())
		if err != nil {
			return err
		}

		printThrottle(cmd, cfg, gt.engine.Config())
		return nil
	},
}

func printThrottle(cmd *cobra.Command, cfg *Config, tc domain.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "namespace:  %s\n", tc.Namespace)
	fmt.Fprintf(out, "limit:      %d\n", tc.Limit)
	fmt.Fprintf(out, "interval:   %s\n", tc.Interval)
	fmt.Fprintf(out, "status:     %d\n", tc.Status)
	fmt.Fprintf(out, "message:    %q\n", tc.Message)
	if tc.Headers.Valid() {
		fmt.Fprintf(out, "headers:    limit=%s remaining=%s reset=%s\n",
			tc.Headers[domain.HeaderLimit], tc.Headers[domain.HeaderRemaining], tc.Headers[domain.HeaderReset])
	} else {
		fmt.Fprintln(out, "headers:    disabled")
	}

	identifier := "client ip"
	if cfg.Throttle.KeyHeader != "" {
		identifier = "header " + cfg.Throttle.KeyHeader + ", then client ip"
	}
	if cfg.Throttle.TrustXFF {
		identifier += " (trusting X-Forwarded-For)"
	}
	fmt.Fprintf(out, "identifier: %s\n", identifier)
	fmt.Fprintf(out, "store:      %s\n", cfg.Store.Backend)
	fmt.Fprintf(out, "stats:      %s\n", cfg.Stats.Backend)
	fmt.Fprintf(out, "fail_open:  %v\n", cfg.Throttle.FailOpen)

	skip := append([]string(nil), cfg.Throttle.Skip...)
	sort.Strings(skip)
	fmt.Fprintf(out, "skip:       [%s]\n", strings.Join(skip, " "))
}
