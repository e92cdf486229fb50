package main

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	httpadapter "ensgrants/contexts/funding/grants-service/adapters/http"
	postgresadapter "ensgrants/contexts/funding/grants-service/adapters/postgres"
	httptransport "ensgrants/contexts/funding/grants-service/transport/http"
	"ensgrants/contexts/identity-access/signature-service/adapters/eip712"
	sigentities "ensgrants/contexts/identity-access/signature-service/domain/entities"
	"ensgrants/internal/platform/config"
	"ensgrants/internal/platform/db"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

const signerKeyEnv = "GRANTS_SIGNER_KEY"

// NewRootCmd returns the grantsctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grantsctl",
		Short:         "Operator tooling for the ENS Grants service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(NewKeygenCmd(), NewSignCmd(), NewMigrateCmd())
	return root
}

// NewKeygenCmd returns the `keygen` command.
func NewKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a secp256k1 key and print it with its address",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			return writeJSON(cmd, map[string]string{
				"address":     eip712.AddressOf(key).String(),
				"private_key": hexutil.Encode(crypto.FromECDSA(key)),
			})
		},
	}
}

// NewSignCmd returns the `sign` command with its round and grant children.
func NewSignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Produce signed RPC request bodies",
	}
	cmd.PersistentFlags().String("key", "", "hex private key (default $"+signerKeyEnv+")")
	cmd.PersistentFlags().String("schema-version", "", "schema version to declare in the body")
	cmd.AddCommand(newSignRoundCmd(), newSignGrantCmd())
	return cmd
}

func newSignRoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Sign a create_round request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := signerKey(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			title, _ := flags.GetString("title")
			description, _ := flags.GetString("description")
			token, _ := flags.GetString("token")

			numbers := map[string]*big.Int{}
			for flag, field := range map[string]string{
				"amount":         "allocation_token_amount",
				"max-winners":    "max_winner_count",
				"proposal-start": "proposal_start",
				"proposal-end":   "proposal_end",
				"voting-start":   "voting_start",
				"voting-end":     "voting_end",
			} {
				raw, _ := flags.GetString(flag)
				value, err := parseUint(flag, raw)
				if err != nil {
					return err
				}
				numbers[field] = value
			}

			address := eip712.AddressOf(key).String()
			token = strings.ToLower(token)
			message := map[string]any{
				"address":                  address,
				"title":                    title,
				"description":              description,
				"allocation_token_address": token,
			}
			for field, value := range numbers {
				message[field] = value
			}
			signature, err := eip712.Sign(typedData(sigentities.RoundSchemaV1, message), key)
			if err != nil {
				return err
			}
			return writeJSON(cmd, httptransport.CreateRoundRequest{
				Method: httpadapter.MethodCreateRound,
				RoundData: &httptransport.RoundData{
					Address:                address,
					Title:                  title,
					Description:            description,
					AllocationTokenAddress: token,
					AllocationTokenAmount:  httptransport.NewUint256(numbers["allocation_token_amount"]),
					MaxWinnerCount:         httptransport.NewUint256(numbers["max_winner_count"]),
					ProposalStart:          httptransport.NewUint256(numbers["proposal_start"]),
					ProposalEnd:            httptransport.NewUint256(numbers["proposal_end"]),
					VotingStart:            httptransport.NewUint256(numbers["voting_start"]),
					VotingEnd:              httptransport.NewUint256(numbers["voting_end"]),
				},
				Signature:     signature,
				SchemaVersion: schemaVersion(cmd),
			})
		},
	}
	cmd.Flags().String("title", "", "round title")
	cmd.Flags().String("description", "", "round description")
	cmd.Flags().String("token", "", "allocation token address")
	cmd.Flags().String("amount", "0", "allocation token amount")
	cmd.Flags().String("max-winners", "1", "maximum number of winners")
	cmd.Flags().String("proposal-start", "0", "proposal window start (unix seconds)")
	cmd.Flags().String("proposal-end", "0", "proposal window end (unix seconds)")
	cmd.Flags().String("voting-start", "0", "voting window start (unix seconds)")
	cmd.Flags().String("voting-end", "0", "voting window end (unix seconds)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newSignGrantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Sign a create_grant request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := signerKey(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			rawRound, _ := flags.GetString("round-id")
			roundID, err := parseUint("round-id", rawRound)
			if err != nil {
				return err
			}
			title, _ := flags.GetString("title")
			description, _ := flags.GetString("description")
			fullText, _ := flags.GetString("full-text")

			address := eip712.AddressOf(key).String()
			signature, err := eip712.Sign(typedData(sigentities.GrantSchemaV2, map[string]any{
				"address":     address,
				"roundId":     roundID,
				"title":       title,
				"description": description,
				"fullText":    fullText,
			}), key)
			if err != nil {
				return err
			}
			return writeJSON(cmd, httptransport.CreateGrantRequest{
				Method: httpadapter.MethodCreateGrant,
				GrantData: &httptransport.GrantData{
					Address:     address,
					RoundID:     httptransport.NewUint256(roundID),
					Title:       title,
					Description: description,
					FullText:    fullText,
				},
				Signature:     signature,
				SchemaVersion: schemaVersion(cmd),
			})
		},
	}
	cmd.Flags().String("round-id", "", "round the grant is submitted to")
	cmd.Flags().String("title", "", "grant title")
	cmd.Flags().String("description", "", "grant description")
	cmd.Flags().String("full-text", "", "full proposal text")
	_ = cmd.MarkFlagRequired("round-id")
	return cmd
}

// NewMigrateCmd returns the `migrate` command.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the grants tables and indexes in POSTGRES_DSN",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pg, err := db.Connect(ctx, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := postgresadapter.NewRepository(pg.DB, nil).Migrate(ctx); err != nil {
				return err
			}
			cmd.Println("grants schema is up to date")
			return nil
		},
	}
}

func typedData(schema sigentities.Schema, message map[string]any) sigentities.TypedData {
	return sigentities.TypedData{
		Domain:  sigentities.CanonicalDomain,
		Schema:  schema,
		Message: message,
	}
}

func schemaVersion(cmd *cobra.Command) string {
	version, _ := cmd.Flags().GetString("schema-version")
	return strings.TrimSpace(version)
}

func signerKey(cmd *cobra.Command) (*ecdsa.PrivateKey, error) {
	raw, _ := cmd.Flags().GetString("key")
	if strings.TrimSpace(raw) == "" {
		raw = os.Getenv(signerKeyEnv)
	}
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if raw == "" {
		return nil, fmt.Errorf("--key or $%s is required", signerKeyEnv)
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid signer key: %w", err)
	}
	return key, nil
}

func parseUint(name string, raw string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(strings.TrimSpace(raw), 0)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("--%s must be an unsigned integer, got %q", name, raw)
	}
	return value, nil
}

func writeJSON(cmd *cobra.Command, payload any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
