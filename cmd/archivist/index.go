package main

import (
	"github.com/spf13/cobra"
)

func init() {
	IndexCommand.AddCommand(&IndexAllCommand)

	inheritPersistentPreRun(&IndexCommand)
	inheritPersistentPreRun(&IndexAllCommand)

	RootCmd.AddCommand(&IndexCommand)
}

var IndexCommand = cobra.Command{
	Use:   "index",
	Short: "Manage the search index",
	Long:  "Manage the search index",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		openStores()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var IndexAllCommand = cobra.Command{
	Use:   "all",
	Short: "Reindex every document",
	Long:  "Reindex every document",
	Run: func(cmd *cobra.Command, args []string) {
		n, err := documentService.Reindex()
		if err != nil {
			logger.Fatalf("error reindexing after %d documents: %v", n, err)
		}
		logger.Printf("%d documents reindexed", n)
	},
}
