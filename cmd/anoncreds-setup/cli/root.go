// Copyright 2025 MRJCrunch

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MRJCrunch/anoncreds/pkg/config"
	"github.com/MRJCrunch/anoncreds/pkg/issuer"
	"github.com/MRJCrunch/anoncreds/pkg/logging"
	"github.com/MRJCrunch/anoncreds/pkg/repository"
	"github.com/MRJCrunch/anoncreds/pkg/types"
	"github.com/MRJCrunch/anoncreds/pkg/wallet"
)

var (
	flagConfig     string
	flagSchemaName string
	flagVersion    string
	flagIssuerID   string
	flagAttrs      string
	flagRevocation bool
	flagCapacity   int
	flagOutDir     string
)

var rootCmd = &cobra.Command{
	Use:   "anoncreds-setup",
	Short: "Bootstrap an anonymous-credentials issuer",
	Long: `Generates the published artifacts of a credential definition:
the schema, the CL public key, and optionally the revocation key
material with an empty accumulator. Artifacts are written as JSON.`,
	RunE: runSetup,
}

// Execute runs the setup command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	rootCmd.Flags().StringVar(&flagSchemaName, "schema", "", "schema name (required)")
	rootCmd.Flags().StringVar(&flagVersion, "schema-version", "1.0", "schema version")
	rootCmd.Flags().StringVar(&flagIssuerID, "issuer-id", "", "issuer identifier; generated when empty")
	rootCmd.Flags().StringVar(&flagAttrs, "attrs", "", "comma-separated attribute names (required)")
	rootCmd.Flags().BoolVar(&flagRevocation, "revocation", false, "also set up the revocation accumulator")
	rootCmd.Flags().IntVar(&flagCapacity, "capacity", 0, "accumulator capacity; config default when 0")
	rootCmd.Flags().StringVarP(&flagOutDir, "out", "o", ".", "output directory for the JSON artifacts")
	rootCmd.MarkFlagRequired("schema")
	rootCmd.MarkFlagRequired("attrs")
}

func runSetup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	log, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}

	issuerID := flagIssuerID
	if issuerID == "" {
		issuerID = uuid.New().String()
	}
	attrNames := strings.Split(flagAttrs, ",")
	for i := range attrNames {
		attrNames[i] = strings.TrimSpace(attrNames[i])
	}

	repo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}

	key := types.SchemaKey{Name: flagSchemaName, Version: flagVersion, IssuerID: issuerID}
	w := wallet.NewInMemoryWallet(issuerID, repo)
	iss := issuer.New(w, repo, issuer.WithLogger(log))

	schema, err := iss.CreateSchema(ctx, key, attrNames)
	if err != nil {
		return err
	}
	pk, err := iss.GenKeys(ctx, key, issuer.GenKeysOptions{
		Bits:       cfg.PrimeBits,
		Confidence: cfg.SafePrimeConfidence,
	})
	if err != nil {
		return err
	}

	if err := writeArtifact(flagOutDir, "schema.json", schema.ToStrDict()); err != nil {
		return err
	}
	if err := writeArtifact(flagOutDir, "public_key.json", pk.ToStrDict()); err != nil {
		return err
	}

	if flagRevocation {
		capacity := flagCapacity
		if capacity == 0 {
			capacity = cfg.AccumulatorCapacity
		}
		revPK, err := iss.GenRevocationKeys(ctx, key)
		if err != nil {
			return err
		}
		acc, err := iss.IssueAccumulator(ctx, key, uuid.New().String(), capacity)
		if err != nil {
			return err
		}
		if err := writeArtifact(flagOutDir, "revocation_key.json", revPK.ToStrDict()); err != nil {
			return err
		}
		if err := writeArtifact(flagOutDir, "accumulator.json", acc.ToStrDict()); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "issuer %s ready: schema %s/%s (seq %d)\n",
		issuerID, flagSchemaName, flagVersion, schema.SeqID)
	return nil
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch {
	case cfg.DatabaseURL != "":
		return repository.NewPostgresRepository(ctx, cfg.DatabaseURL)
	case cfg.FirestoreProject != "":
		return repository.NewFirestoreRepository(ctx, repository.FirestoreConfig{
			ProjectID:       cfg.FirestoreProject,
			CredentialsFile: cfg.FirestoreCredentials,
			Collection:      cfg.FirestoreCollection,
		})
	default:
		return repository.NewMemoryRepository(), nil
	}
}

func writeArtifact(dir, name string, dict types.StrDict) error {
	data, err := json.MarshalIndent(dict, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
