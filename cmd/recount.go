/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/mingle-social/apiserver/config"
	"github.com/mingle-social/apiserver/internal/db"
	"github.com/mingle-social/apiserver/internal/store"
	"github.com/spf13/cobra"
)

// recountCmd recomputes the denormalized like/dislike counters on every
// post from the reaction rows. The counters are kept in sync
// transactionally at runtime; this exists as an audit/repair path.
var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Recompute post reaction counters from reaction rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database failed: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		reactionRepo := store.NewReactionRepository(dbConn)
		updated, err := reactionRepo.RecountAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("recount failed: %w", err)
		}

		fmt.Printf("recounted reaction counters on %d posts\n", updated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recountCmd)
}
