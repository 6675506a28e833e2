/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// cachectl inspects and maintains a local sensor-history cache directory.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/carverauto/histcache/pkg/config"
	"github.com/carverauto/histcache/pkg/histcache"
	"github.com/carverauto/histcache/pkg/logger"
	"github.com/carverauto/histcache/pkg/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliOptions struct {
	cacheDir   string
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "cachectl",
		Short:         "Inspect and maintain a sensor-history cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.cacheDir, "cache-dir", "", "cache storage directory (required)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional cache config file (JSON or YAML)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	_ = root.MarkPersistentFlagRequired("cache-dir")

	root.AddCommand(newStatsCmd(opts), newPurgeCmd(opts), newDeleteSourceCmd(opts))

	return root
}

func newStatsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate cache statistics and health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, cleanup, err := openCache(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cleanup()

			return printJSON(mgr.Stats(cmd.Context()))
		},
	}
}

func newPurgeCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <entity-id>",
		Short: "Remove expired data points for one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, cleanup, err := openCache(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cleanup()

			return printJSON(mgr.PurgeOldData(cmd.Context(), args[0]))
		},
	}
}

func newDeleteSourceCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-source <source-id>",
		Short: "Remove every cached entity belonging to a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid source id %q: %w", args[0], err)
			}

			mgr, cleanup, err := openCache(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer cleanup()

			return printJSON(mgr.DeleteSourceCache(cmd.Context(), sourceID))
		},
	}
}

func openCache(ctx context.Context, opts *cliOptions) (*histcache.Manager, func(), error) {
	log, err := logger.New(logger.Config{Output: "stderr", Debug: opts.debug, Level: "warn"})
	if err != nil {
		return nil, nil, err
	}

	cfg := histcache.DefaultConfig()

	if opts.configPath != "" {
		loader := config.NewConfig(log)
		if err := loader.LoadAndValidate(ctx, opts.configPath, &cfg); err != nil {
			return nil, nil, err
		}
	}

	kv, err := storage.NewFileKV(opts.cacheDir, log)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := storage.NewFileBlobStore(opts.cacheDir, log)
	if err != nil {
		_ = kv.Close()

		return nil, nil, err
	}

	mgr := histcache.NewManager(cfg, kv, blobs, nil, log)

	if err := mgr.Initialize(ctx); err != nil {
		_ = kv.Close()
		_ = blobs.Close()

		return nil, nil, err
	}

	cleanup := func() {
		_ = kv.Close()
		_ = blobs.Close()
	}

	return mgr, cleanup, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	return nil
}
