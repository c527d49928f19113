package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/edtrt/edtrt/pkg/storage"
	"github.com/edtrt/edtrt/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "edtctl",
	Short:   "edtctl inspects and bootstraps an EDT runtime's PD roster and DB directory",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("edtctl version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime))
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(applyCmd)

	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterGetCmd)

	statusCmd.Flags().String("addr", "127.0.0.1:9100", "PD's metrics-addr, as passed to edtrtd start --metrics-addr")

	rosterListCmd.Flags().String("data-dir", "./data", "data directory of the PD whose roster copy to read")
	rosterGetCmd.Flags().String("data-dir", "./data", "data directory of the PD whose roster copy to read")

	applyCmd.Flags().StringP("file", "f", "", "YAML manifest to apply (required)")
	applyCmd.Flags().String("data-dir", "./data", "data directory of the PD to write into")
	_ = applyCmd.MarkFlagRequired("file")
}

// status and roster are read-only debug surfaces: edtctl never drives EDT
// submission or the scheduling ops table directly, since this module places
// both the EDT invocation ABI and the user-facing API veneer out of this
// runtime's scope. What it can do is inspect a running PD over HTTP
// (statusCmd) and read/seed the on-disk roster and DB directory a PD
// bootstraps from (rosterCmd, applyCmd) — ordinary operator tooling bundled
// into one CLI rather than split across separate binaries.

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch a PD's /status and /healthz over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		client := &http.Client{Timeout: 5 * time.Second}

		if err := printEndpoint(client, fmt.Sprintf("http://%s/status", addr)); err != nil {
			return fmt.Errorf("status: %w", err)
		}
		fmt.Println()
		if err := printEndpoint(client, fmt.Sprintf("http://%s/healthz", addr)); err != nil {
			return fmt.Errorf("healthz: %w", err)
		}
		return nil
	},
}

func printEndpoint(client *http.Client, url string) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s):\n%s\n", url, resp.Status, strings.TrimSpace(string(body)))
	return nil
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Inspect a PD's on-disk roster copy",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every PD in the roster",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		store, err := storage.NewBoltStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		pds, err := store.ListPDs()
		if err != nil {
			return fmt.Errorf("failed to list pds: %w", err)
		}
		if len(pds) == 0 {
			fmt.Println("No PDs in roster")
			return nil
		}

		schedLoc, _ := store.GetSchedulerLocation()
		fmt.Printf("%-20s %-22s %-9s %-6s %s\n", "LOCATION", "BIND ADDR", "WORKERS", "DOWN", "JOINED")
		for _, pd := range pds {
			role := ""
			if pd.Location == schedLoc {
				role = " (schedulerLocation)"
			}
			fmt.Printf("%-20s %-22s %-9d %-6v %s%s\n",
				pd.Location, pd.BindAddr, pd.NumWorkers, pd.Down,
				time.Unix(pd.JoinedAt, 0).Format(time.RFC3339), role)
		}
		return nil
	},
}

var rosterGetCmd = &cobra.Command{
	Use:   "get LOCATION",
	Short: "Show one PD's roster entry as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		store, err := storage.NewBoltStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		pd, err := store.GetPD(types.PDLocation(args[0]))
		if err != nil {
			return fmt.Errorf("failed to get pd: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pd)
	},
}

// Manifest is a generic apply resource: either a PD roster seed (so a PD can
// be pre-registered before its first boot) or a DB directory entry (for
// a data block an operator knows about ahead of the EDT that will produce
// it — the directory holds only metadata, never payload bytes).
type Manifest struct {
	APIVersion string         `yaml:"apiVersion"`
	Kind       string         `yaml:"kind"`
	Metadata   ManifestMeta   `yaml:"metadata"`
	Spec       map[string]any `yaml:"spec"`
}

type ManifestMeta struct {
	Name string `yaml:"name"`
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a PD or Db manifest to a PD's on-disk store",
	Long: `Seed a PD's bbolt store from a YAML manifest.

Examples:
  # Pre-register a PD in the roster before it first boots
  edtctl apply -f pd.yaml

  # Pre-register a DB's metadata
  edtctl apply -f db.yaml`,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	dataDir, _ := cmd.Flags().GetString("data-dir")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	store, err := storage.NewBoltStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	switch manifest.Kind {
	case "PD":
		return applyPD(store, &manifest)
	case "Db":
		return applyDb(store, &manifest)
	default:
		return fmt.Errorf("unsupported manifest kind: %s", manifest.Kind)
	}
}

func applyPD(store storage.Store, m *Manifest) error {
	bindAddr := getString(m.Spec, "bindAddr", "")
	numWorkers := getInt(m.Spec, "numWorkers", 4)

	record := &storage.PDRecord{
		Location:   types.PDLocation(m.Metadata.Name),
		BindAddr:   bindAddr,
		NumWorkers: numWorkers,
		JoinedAt:   time.Now().Unix(),
	}
	if err := store.CreatePD(record); err != nil {
		return fmt.Errorf("failed to seed pd: %w", err)
	}
	fmt.Printf("✓ PD seeded: %s (bind=%s, workers=%d)\n", m.Metadata.Name, bindAddr, numWorkers)
	return nil
}

func applyDb(store storage.Store, m *Manifest) error {
	size := getInt(m.Spec, "size", 0)
	homePD := getString(m.Spec, "homePD", "")

	db := &types.Db{
		GUID:    types.GUID(m.Metadata.Name),
		Size:    uint64(size),
		HomePD:  types.PDLocation(homePD),
		Created: time.Now(),
	}
	if err := store.PutDb(db); err != nil {
		return fmt.Errorf("failed to seed db: %w", err)
	}
	fmt.Printf("✓ Db seeded: %s (size=%d, homePD=%s)\n", m.Metadata.Name, size, homePD)
	return nil
}

func getString(m map[string]any, key, defaultValue string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return defaultValue
}

func getInt(m map[string]any, key string, defaultValue int) int {
	if v, ok := m[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case float64:
			return int(val)
		}
	}
	return defaultValue
}
