package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/archivist/services"
)

var (
	// flags
	actorID     string
	notes       string
	versionType string
)

func init() {
	DocumentCommand.PersistentFlags().StringVar(&actorID, "as", "", "id of the principal running the command")

	DocumentCheckOutCommand.Flags().StringVar(&notes, "notes", "", "checkout notes")
	DocumentVersionCommand.Flags().StringVar(&versionType, "type", string(archivist.Minor), "version type: major or minor")
	DocumentVersionCommand.Flags().StringVar(&notes, "notes", "", "change notes")

	DocumentCommand.AddCommand(&DocumentUploadCommand)
	DocumentCommand.AddCommand(&DocumentCheckOutCommand)
	DocumentCommand.AddCommand(&DocumentCheckInCommand)
	DocumentCommand.AddCommand(&DocumentCancelCommand)
	DocumentCommand.AddCommand(&DocumentVersionCommand)
	DocumentCommand.AddCommand(&DocumentHistoryCommand)

	inheritPersistentPreRun(&DocumentCommand)
	inheritPersistentPreRun(&DocumentUploadCommand)
	inheritPersistentPreRun(&DocumentCheckOutCommand)
	inheritPersistentPreRun(&DocumentCheckInCommand)
	inheritPersistentPreRun(&DocumentCancelCommand)
	inheritPersistentPreRun(&DocumentVersionCommand)
	inheritPersistentPreRun(&DocumentHistoryCommand)

	RootCmd.AddCommand(&DocumentCommand)
}

var DocumentCommand = cobra.Command{
	Use:   "document",
	Short: "Operate on documents",
	Long:  "Operate on documents as a given principal (--as)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		openStores()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func actor() archivist.Principal {
	if actorID == "" {
		logger.Fatal("missing principal, use --as")
	}

	p, err := principals.Get(actorID)
	if err != nil {
		logger.Fatal("error retrieving principal:", err)
	}
	return p
}

var DocumentUploadCommand = cobra.Command{
	Use:   "upload <payload | @file>",
	Short: "Upload a document",
	Long:  "Upload a document described by the argument payload or a file",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("upload wants 1 argument: the document payload")
		}

		var draft services.Draft
		if err := json.Unmarshal(readPayload(args[0]), &draft); err != nil {
			logger.Fatal("error unmarshalling payload:", err)
		}

		doc, err := documentService.Upload(actor(), draft)
		if err != nil {
			logger.Fatal("error uploading document:", err)
		}
		printJSON(doc)
	},
}

var DocumentCheckOutCommand = cobra.Command{
	Use:   "checkout <id>",
	Short: "Check a document out",
	Long:  "Check a document out",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("checkout wants 1 argument: the id of the document")
		}

		p := actor()
		if _, err := documentService.Get(p, args[0]); err != nil {
			logger.Fatal("error retrieving document:", err)
		}

		doc, err := lifecycleService.CheckOut(args[0], p.ID, notes)
		if err != nil {
			logger.Fatal("error checking out:", err)
		}
		printJSON(doc)
	},
}

var DocumentCheckInCommand = cobra.Command{
	Use:   "checkin <id>",
	Short: "Check a document in",
	Long:  "Check a document in, moving it to the next major version",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("checkin wants 1 argument: the id of the document")
		}

		doc, err := lifecycleService.CheckIn(args[0], actor().ID)
		if err != nil {
			logger.Fatal("error checking in:", err)
		}
		printJSON(doc)
	},
}

var DocumentCancelCommand = cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a checkout",
	Long:  "Cancel a checkout. Managers can cancel the checkout of someone else.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("cancel wants 1 argument: the id of the document")
		}

		doc, err := lifecycleService.CancelCheckoutAs(actor(), args[0])
		if err != nil {
			logger.Fatal("error cancelling checkout:", err)
		}
		printJSON(doc)
	},
}

var DocumentVersionCommand = cobra.Command{
	Use:   "version <id> <file-url>",
	Short: "Upload a new version of a document",
	Long:  "Upload a new version of a document",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			logger.Fatal("version wants 2 arguments: the id of the document and the url of the file")
		}

		v, err := lifecycleService.UploadNewVersion(services.UploadRequest{
			DocumentID:  args[0],
			UserID:      actor().ID,
			FileURL:     args[1],
			Type:        archivist.VersionType(versionType),
			ChangeNotes: notes,
		})
		if err != nil {
			logger.Fatal("error uploading version:", err)
		}
		fmt.Println(v.String())
	},
}

var DocumentHistoryCommand = cobra.Command{
	Use:   "history <id>",
	Short: "Print the versions of a document",
	Long:  "Print the versions of a document, oldest first",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("history wants 1 argument: the id of the document")
		}

		if _, err := documentService.Get(actor(), args[0]); err != nil {
			logger.Fatal("error retrieving document:", err)
		}

		records, err := lifecycleService.VersionHistory(args[0])
		if err != nil {
			logger.Fatal("error retrieving history:", err)
		}
		printJSON(records)
	},
}
