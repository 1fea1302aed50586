// Package e2e holds helpers for the tests running against the live LINZ buckets.
// They only run when LINZSTAC_E2E=1.
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/internetarchive/linzstac/cmd"
	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/crawler"
	"github.com/internetarchive/linzstac/internal/pkg/store"
	"github.com/spf13/cobra"
)

// SkipUnlessEnabled skips t unless live tests are enabled.
func SkipUnlessEnabled(t *testing.T) {
	t.Helper()

	if os.Getenv("LINZSTAC_E2E") != "1" {
		t.Skip("set LINZSTAC_E2E=1 to run tests against the live buckets")
	}
}

// CmdLinzstac returns the root command set up with args.
func CmdLinzstac(args ...string) *cobra.Command {
	cmd := cmd.Prepare()
	cmd.SetArgs(args)
	return cmd
}

// Session loads the catalog of bucket.
func Session(t *testing.T, bucket config.Bucket) *crawler.Session {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	catalogURL := config.CatalogURL(bucket.BaseURL())

	session, err := crawler.Initialize(ctx, store.New(catalogURL, store.DefaultHTTPOptions()), catalogURL, crawler.Options{
		Bucket:                string(bucket),
		ConcurrencyMultiplier: 4,
		Access: store.AccessOptions{
			SkipSignature: true,
			Region:        config.DefaultRegion,
		},
	})
	if err != nil {
		t.Fatalf("unable to load the %s catalog: %v", bucket, err)
	}
	t.Cleanup(session.Close)

	return session
}
