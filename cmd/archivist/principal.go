package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bobinette/archivist/jwt"

	"github.com/bobinette/archivist/archivist"
)

func init() {
	PrincipalCommand.AddCommand(&PrincipalAddCommand)
	PrincipalCommand.AddCommand(&PrincipalGetCommand)
	PrincipalCommand.AddCommand(&PrincipalListCommand)

	inheritPersistentPreRun(&PrincipalCommand)
	inheritPersistentPreRun(&PrincipalAddCommand)
	inheritPersistentPreRun(&PrincipalGetCommand)
	inheritPersistentPreRun(&PrincipalListCommand)
	inheritPersistentPreRun(&TokenCommand)

	RootCmd.AddCommand(&PrincipalCommand)
	RootCmd.AddCommand(&TokenCommand)
}

var PrincipalCommand = cobra.Command{
	Use:   "principal",
	Short: "Manage the principals",
	Long:  "Manage the principals: users with their role, clearance and manager flags",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		openStores()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var PrincipalAddCommand = cobra.Command{
	Use:   "add <payload | @file>",
	Short: "Insert or update a principal",
	Long:  "Insert or update a principal based on the argument payload or a file",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("when no filename is specified, the payload must be passed as argument")
		}

		data := readPayload(args[0])

		var p archivist.Principal
		if err := json.Unmarshal(data, &p); err != nil {
			logger.Fatal("error unmarshalling payload:", err)
		}
		if p.ID == "" {
			logger.Fatal("a principal needs an id")
		}
		if p.Clearance != "" && !p.Clearance.Valid() {
			logger.Fatalf("invalid clearance %q", p.Clearance)
		}
		if p.Role == "" {
			p.Role = archivist.RoleUser
		}

		if err := principals.Upsert(&p); err != nil {
			logger.Fatal("error saving principal:", err)
		}
		printJSON(p)
	},
}

var PrincipalGetCommand = cobra.Command{
	Use:   "get <id>",
	Short: "Print a principal",
	Long:  "Print a principal",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("get wants 1 argument: the id of the principal")
		}

		p, err := principals.Get(args[0])
		if err != nil {
			logger.Fatal("error retrieving principal:", err)
		}
		printJSON(p)
	},
}

var PrincipalListCommand = cobra.Command{
	Use:   "list",
	Short: "List the principals",
	Long:  "List the principals",
	Run: func(cmd *cobra.Command, args []string) {
		ps, err := principals.List()
		if err != nil {
			logger.Fatal("error listing principals:", err)
		}
		printJSON(ps)
	},
}

var TokenCommand = cobra.Command{
	Use:   "token <principal-id>",
	Short: "Mint a token for a principal",
	Long:  "Mint a token for a principal. The principal must exist.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadKey()
		openStores()
	},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			logger.Fatal("token wants 1 argument: the id of the principal")
		}

		p, err := principals.Get(args[0])
		if err != nil {
			logger.Fatal("error retrieving principal:", err)
		}

		token, err := jwt.NewEncodeDecoder(key).Encode(p.ID)
		if err != nil {
			logger.Fatal("error signing token:", err)
		}
		fmt.Println(token)
	},
}

// readPayload returns the argument, or the content of the file if the
// argument starts with @.
func readPayload(arg string) []byte {
	if !strings.HasPrefix(arg, "@") {
		return []byte(arg)
	}

	data, err := ioutil.ReadFile(arg[1:])
	if err != nil {
		logger.Fatal(err)
	}
	return data
}
